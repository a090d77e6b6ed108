package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/pkg/apperror"
	"hostelbooking/internal/repository"
	"hostelbooking/internal/testutil"
)

func TestBookingRepository_RoundTrip(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	student := testutil.SeedUser(t, s, "Amina", domain.GenderFemale)
	room, _ := testutil.SeedRoom(t, s, testutil.RoomOpts{})

	b := testutil.SeedBooking(t, s, domain.Booking{
		RoomID:      room.ID,
		StudentID:   student.ID,
		TotalAmount: 900,
		Notes:       "late arrival",
	})
	require.NotZero(t, b.ID)

	got, err := s.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), got.AmountDue)
	assert.Equal(t, "late arrival", got.Notes)
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.True(t, got.CheckInDate.Equal(b.CheckInDate))

	_, err = s.Bookings().GetByID(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestBookingRepository_OneActivePerStudent(t *testing.T) {
	s := testutil.NewStore(t)
	student := testutil.SeedUser(t, s, "Ben", domain.GenderMale)
	room, _ := testutil.SeedRoom(t, s, testutil.RoomOpts{})

	testutil.SeedBooking(t, s, domain.Booking{RoomID: room.ID, StudentID: student.ID, TotalAmount: 900})

	dup := domain.Booking{
		HostelID:       1,
		RoomID:         room.ID,
		StudentID:      student.ID,
		BookingType:    domain.BookingSemester,
		Status:         domain.BookingConfirmed,
		PaymentStatus:  domain.PaymentPending,
		CheckInDate:    time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate:   time.Date(2031, 5, 1, 0, 0, 0, 0, time.UTC),
		PaymentDueDate: time.Date(2030, 12, 20, 0, 0, 0, 0, time.UTC),
		TotalAmount:    900,
		AmountDue:      900,
	}
	err := s.Bookings().Create(context.Background(), &dup)
	require.Error(t, err)
	assert.True(t, repository.IsActiveBookingConflict(err), "got %v", err)

	// Terminal bookings do not count.
	dup.Status = domain.BookingCancelled
	dup.ID = 0
	require.NoError(t, s.Bookings().Create(context.Background(), &dup))
}

func TestRoomRepository_OccupancyDeltas(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	room, _ := testutil.SeedRoom(t, s, testutil.RoomOpts{MaxOccupancy: 2, CurrentOccupancy: 1})

	ok, err := s.Rooms().IncrementOccupancy(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Rooms().IncrementOccupancy(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, ok, "full room must refuse another slot")

	got, err := s.Rooms().GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentOccupancy)

	require.NoError(t, s.Rooms().DecrementOccupancy(ctx, room.ID))
	require.NoError(t, s.Rooms().DecrementOccupancy(ctx, room.ID))
	require.NoError(t, s.Rooms().DecrementOccupancy(ctx, room.ID))

	got, err = s.Rooms().GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentOccupancy)

	assert.ErrorIs(t, s.Rooms().DecrementOccupancy(ctx, 4242), repository.ErrNotFound)
}

func TestRoomRepository_IncrementSkipsMaintenance(t *testing.T) {
	s := testutil.NewStore(t)
	room, _ := testutil.SeedRoom(t, s, testutil.RoomOpts{Status: domain.RoomMaintenance})

	ok, err := s.Rooms().IncrementOccupancy(context.Background(), room.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoomRepository_TypeGenders(t *testing.T) {
	s := testutil.NewStore(t)
	week := int64(80)
	_, rt := testutil.SeedRoom(t, s, testutil.RoomOpts{
		AllowedGenders: []domain.Gender{domain.GenderFemale},
		PricePerWeek:   &week,
	})

	got, err := s.Rooms().GetType(context.Background(), rt.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Gender{domain.GenderFemale}, got.AllowedGenders)
	require.NotNil(t, got.PricePerWeek)
	assert.Equal(t, int64(80), *got.PricePerWeek)
	assert.True(t, got.RestrictsGender())
}

func TestDepositRepository_Balance(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, s, "Chidi", domain.GenderMale)

	for _, d := range []domain.Deposit{
		{UserID: user.ID, Amount: 100, Status: domain.DepositCompleted, DepositType: domain.DepositTopUp, PaymentReference: "pay_1"},
		{UserID: user.ID, Amount: 40, Status: domain.DepositFailed, DepositType: domain.DepositTopUp, PaymentReference: "pay_2"},
		{UserID: user.ID, Amount: -30, Status: domain.DepositCompleted, DepositType: domain.DepositWithdrawal, PaymentReference: "wd_1"},
	} {
		d := d
		require.NoError(t, s.Deposits().Create(ctx, &d))
	}

	bal, err := s.Deposits().Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), bal)

	found, err := s.Deposits().GetByReference(ctx, "pay_2")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.DepositFailed, found.Status)

	missing, err := s.Deposits().GetByReference(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := domain.Deposit{UserID: user.ID, Amount: 5, Status: domain.DepositCompleted, DepositType: domain.DepositTopUp, PaymentReference: "pay_1"}
	assert.ErrorIs(t, s.Deposits().Create(ctx, &dup), repository.ErrDuplicate)
}

func TestStore_InTxRollsBack(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	student := testutil.SeedUser(t, s, "Dana", domain.GenderFemale)
	room, _ := testutil.SeedRoom(t, s, testutil.RoomOpts{})
	b := testutil.SeedBooking(t, s, domain.Booking{RoomID: room.ID, StudentID: student.ID, TotalAmount: 900})

	boom := errors.New("boom")
	err := s.WithBookingLock(ctx, b.ID, func(tx *repository.Tx, locked domain.Booking) error {
		locked.AmountPaid = 500
		locked.AmountDue = 400
		if err := tx.Bookings().Save(ctx, &locked); err != nil {
			return err
		}
		p := domain.Payment{BookingID: b.ID, Amount: 500, Method: domain.MethodCash, Type: domain.PaymentTypeBooking, PaymentDate: time.Now()}
		if err := tx.Payments().Create(ctx, &p); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.AmountPaid)

	cnt, err := s.Payments().CountByBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, cnt)

	err = s.WithBookingLock(ctx, 777, func(*repository.Tx, domain.Booking) error { return nil })
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBookingRepository_Candidates(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()
	room, _ := testutil.SeedRoom(t, s, testutil.RoomOpts{MaxOccupancy: 4})
	now := time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)

	a := testutil.SeedUser(t, s, "A", domain.GenderMale)
	b := testutil.SeedUser(t, s, "B", domain.GenderMale)
	c := testutil.SeedUser(t, s, "C", domain.GenderMale)

	overdue := testutil.SeedBooking(t, s, domain.Booking{
		RoomID: room.ID, StudentID: a.ID, TotalAmount: 900,
		PaymentDueDate: now.Add(-48 * time.Hour),
	})
	stale := testutil.SeedBooking(t, s, domain.Booking{
		RoomID: room.ID, StudentID: b.ID, TotalAmount: 900,
		PaymentStatus:  domain.PaymentOverdue,
		PaymentDueDate: now.AddDate(0, 0, -10),
	})
	noShow := testutil.SeedBooking(t, s, domain.Booking{
		RoomID: room.ID, StudentID: c.ID, TotalAmount: 900, AmountPaid: 900,
		Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid,
		CheckInDate:    now.AddDate(0, 0, -3),
		PaymentDueDate: now.AddDate(0, 0, 5),
	})

	ids, err := s.Bookings().OverdueCandidates(ctx, now, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{overdue.ID}, ids)

	ids, err = s.Bookings().AutoCancelCandidates(ctx, now.Add(-domain.PaymentWindow), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{stale.ID}, ids)

	ids, err = s.Bookings().NoShowCandidates(ctx, domain.DateOf(now), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{noShow.ID}, ids)

	genders, err := s.Bookings().OccupantGenders(ctx, room.ID, a.ID)
	require.NoError(t, err)
	assert.Len(t, genders, 2)
}
