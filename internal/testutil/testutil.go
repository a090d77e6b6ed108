// Package testutil builds in-memory databases and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hostelbooking/internal/database"
	"hostelbooking/internal/domain"
	"hostelbooking/internal/repository"
)

// NewDB opens a migrated in-memory SQLite database private to the test.
// The pool holds one connection, so transactions run one at a time.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:hostel_%s_%d?mode=memory&cache=shared&_pragma=busy_timeout(5000)", name, time.Now().UnixNano())

	db, err := database.Connect(dsn,
		database.WithLogLevel(logger.Silent),
		database.WithPool(1, 1, 0),
	)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewStore wraps NewDB in a repository.Store.
func NewStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(NewDB(t), time.Second)
}

func SeedUser(t *testing.T, s *repository.Store, name string, gender domain.Gender) domain.User {
	t.Helper()
	u := domain.User{
		Email:  strings.ToLower(name) + "@example.com",
		Name:   name,
		Role:   domain.RoleStudent,
		Gender: gender,
	}
	require.NoError(t, s.Users().Create(context.Background(), &u))
	return u
}

type RoomOpts struct {
	MaxOccupancy     int
	CurrentOccupancy int
	Status           domain.RoomStatus
	AllowedGenders   []domain.Gender
	PricePerSemester int64
	PricePerMonth    int64
	PricePerWeek     *int64
}

// SeedRoom creates a room type and one room of that type in hostel 1.
func SeedRoom(t *testing.T, s *repository.Store, o RoomOpts) (domain.Room, domain.RoomType) {
	t.Helper()
	ctx := context.Background()

	if o.MaxOccupancy == 0 {
		o.MaxOccupancy = 2
	}
	if o.PricePerSemester == 0 {
		o.PricePerSemester = 900
	}
	if o.PricePerMonth == 0 {
		o.PricePerMonth = 300
	}

	rt := domain.RoomType{
		HostelID:         1,
		Name:             "standard",
		AllowedGenders:   o.AllowedGenders,
		PricePerSemester: o.PricePerSemester,
		PricePerMonth:    o.PricePerMonth,
		PricePerWeek:     o.PricePerWeek,
	}
	require.NoError(t, s.Rooms().CreateType(ctx, &rt))

	room := domain.Room{
		HostelID:         1,
		RoomTypeID:       rt.ID,
		Number:           fmt.Sprintf("R-%d", rt.ID),
		MaxOccupancy:     o.MaxOccupancy,
		CurrentOccupancy: o.CurrentOccupancy,
		Status:           o.Status,
	}
	require.NoError(t, s.Rooms().Create(ctx, &room))
	return room, rt
}

// SeedBooking inserts a booking row as-is, without occupancy side effects.
func SeedBooking(t *testing.T, s *repository.Store, b domain.Booking) domain.Booking {
	t.Helper()
	if b.HostelID == 0 {
		b.HostelID = 1
	}
	if b.BookingType == "" {
		b.BookingType = domain.BookingSemester
	}
	if b.Status == "" {
		b.Status = domain.BookingPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = domain.PaymentPending
	}
	if b.CheckInDate.IsZero() {
		b.CheckInDate = time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC)
	}
	if b.CheckOutDate.IsZero() {
		b.CheckOutDate = b.CheckInDate.AddDate(0, 4, 0)
	}
	if b.PaymentDueDate.IsZero() {
		b.PaymentDueDate = b.CheckInDate.Add(-domain.PaymentWindow)
	}
	if b.AmountDue == 0 && b.AmountPaid < b.TotalAmount {
		b.AmountDue = domain.DueFor(b.TotalAmount, b.AmountPaid)
	}
	require.NoError(t, s.Bookings().Create(context.Background(), &b))
	return b
}
