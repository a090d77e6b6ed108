package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"hostelbooking/internal/config"
	"hostelbooking/internal/database"
	"hostelbooking/internal/domain"
	"hostelbooking/internal/modules/booking"
	"hostelbooking/internal/modules/eligibility"
	"hostelbooking/internal/modules/occupancy"
	"hostelbooking/internal/notification"
	"hostelbooking/internal/pkg/jwt"
	"hostelbooking/internal/pkg/logger"
	"hostelbooking/internal/repository"
)

const hostelID = 1

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.Database.URL, database.WithLogger(log))
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	log.Info("running migrations")
	if err := repository.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	// Child tables first so foreign keys hold.
	log.Info("cleaning old data")
	for _, table := range []string{"payments", "deposits", "bookings", "rooms", "room_types", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.WithError(err).WithField("table", table).Fatal("cleanup failed")
		}
	}

	ctx := context.Background()
	store := repository.NewStore(db, cfg.Database.LockTimeout)
	tokens := jwt.New(cfg.JWT.Secret, cfg.JWT.TTL)

	// ================== USERS ==================
	users := []domain.User{
		{Email: "admin@hostel.local", Name: "Administrator", Role: domain.RoleAdmin},
		{Email: "desk@hostel.local", Name: "Front Desk", Role: domain.RoleStaff},
		{Email: "asel@student.local", Name: "Asel", Role: domain.RoleStudent, Gender: domain.GenderFemale},
		{Email: "bekzat@student.local", Name: "Bekzat", Role: domain.RoleStudent, Gender: domain.GenderMale},
		{Email: "dina@student.local", Name: "Dina", Role: domain.RoleStudent, Gender: domain.GenderFemale},
	}
	for i := range users {
		if err := store.Users().Create(ctx, &users[i]); err != nil {
			log.WithError(err).WithField("email", users[i].Email).Fatal("create user failed")
		}
	}

	// ================== ROOMS ==================
	week := int64(9000)
	types := []struct {
		rt    domain.RoomType
		rooms int
		size  int
	}{
		{domain.RoomType{Name: "Female double", AllowedGenders: []domain.Gender{domain.GenderFemale}, PricePerSemester: 450000, PricePerMonth: 120000, PricePerWeek: &week}, 3, 2},
		{domain.RoomType{Name: "Male double", AllowedGenders: []domain.Gender{domain.GenderMale}, PricePerSemester: 450000, PricePerMonth: 120000, PricePerWeek: &week}, 3, 2},
		{domain.RoomType{Name: "Mixed quad", PricePerSemester: 300000, PricePerMonth: 80000}, 2, 4},
	}
	var rooms []domain.Room
	for i, t := range types {
		t.rt.HostelID = hostelID
		if err := store.Rooms().CreateType(ctx, &t.rt); err != nil {
			log.WithError(err).WithField("room_type", t.rt.Name).Fatal("create room type failed")
		}
		for n := 1; n <= t.rooms; n++ {
			room := domain.Room{
				HostelID:     hostelID,
				RoomTypeID:   t.rt.ID,
				Number:       fmt.Sprintf("%d%02d", i+1, n),
				MaxOccupancy: t.size,
				Status:       domain.RoomAvailable,
			}
			if err := store.Rooms().Create(ctx, &room); err != nil {
				log.WithError(err).WithField("room", room.Number).Fatal("create room failed")
			}
			rooms = append(rooms, room)
		}
	}

	// ================== BOOKINGS ==================
	tracker := occupancy.NewTracker(store, log)
	bookings := booking.NewService(store, eligibility.New(), tracker, notification.NewLogNotifier(log), log, booking.Config{
		BookingFee:      cfg.Booking.Fee,
		PaymentWindow:   cfg.Booking.PaymentWindow,
		AutoCancelGrace: cfg.Booking.AutoCancelGrace,
		SweepBatchSize:  cfg.Booking.SweepBatchSize,
	})

	checkIn := domain.DateOf(time.Now()).AddDate(0, 1, 0)
	view, err := bookings.Create(ctx, booking.CreateInput{
		StudentID:    users[2].ID,
		RoomID:       rooms[0].ID,
		BookingType:  domain.BookingSemester,
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.AddDate(0, 4, 0),
		Notes:        "seeded",
	})
	if err != nil {
		log.WithError(err).Fatal("create booking failed")
	}
	log.WithField("booking_id", view.ID).Info("sample booking created")

	fmt.Println("\nSeed completed. Tokens:")
	for _, u := range users {
		tok, err := tokens.GenerateToken(u.ID, string(u.Role))
		if err != nil {
			log.WithError(err).Fatal("token generation failed")
		}
		fmt.Printf("  %-8s %-24s %s\n", u.Role, u.Email, tok)
	}
}
