package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/notification"
	"hostelbooking/internal/testutil"
)

func TestMarkOverdueBookings_Idempotent(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	room, _ := testutil.SeedRoom(t, f.store, testutil.RoomOpts{MaxOccupancy: 4})
	a := testutil.SeedUser(t, f.store, "A", domain.GenderMale)
	b := testutil.SeedUser(t, f.store, "B", domain.GenderMale)

	late := testutil.SeedBooking(t, f.store, domain.Booking{
		RoomID: room.ID, StudentID: a.ID, TotalAmount: 900, AmountPaid: 100,
		PaymentStatus:  domain.PaymentPartial,
		PaymentDueDate: testNow.Add(-time.Hour),
	})
	testutil.SeedBooking(t, f.store, domain.Booking{
		RoomID: room.ID, StudentID: b.ID, TotalAmount: 900,
		PaymentDueDate: testNow.Add(time.Hour),
	})

	res, err := f.svc.MarkOverdueBookings(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Job: JobMarkOverdue, Candidates: 1, Changed: 1}, res)

	got, err := f.store.Bookings().GetByID(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentOverdue, got.PaymentStatus)
	assert.Equal(t, domain.BookingPending, got.Status, "overdue marking leaves status alone")
	require.NotNil(t, got.OverdueAt)

	res, err = f.svc.MarkOverdueBookings(ctx, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, res.Changed)
	assert.Equal(t, []notification.EventType{notification.PaymentOverdue}, f.notes.types())
}

func TestAutoCancelUnpaid(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	room, _ := testutil.SeedRoom(t, f.store, testutil.RoomOpts{MaxOccupancy: 2, CurrentOccupancy: 2, Status: domain.RoomOccupied})
	a := testutil.SeedUser(t, f.store, "A", domain.GenderMale)
	b := testutil.SeedUser(t, f.store, "B", domain.GenderMale)

	stale := testutil.SeedBooking(t, f.store, domain.Booking{
		RoomID: room.ID, StudentID: a.ID, TotalAmount: 900,
		PaymentStatus:  domain.PaymentOverdue,
		PaymentDueDate: testNow.AddDate(0, 0, -8),
	})
	recent := testutil.SeedBooking(t, f.store, domain.Booking{
		RoomID: room.ID, StudentID: b.ID, TotalAmount: 900,
		PaymentStatus:  domain.PaymentOverdue,
		PaymentDueDate: testNow.AddDate(0, 0, -2),
	})

	res, err := f.svc.AutoCancelUnpaid(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)

	got, err := f.store.Bookings().GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	assert.Equal(t, domain.ReasonNonPayment, got.CancellationReason)

	got, err = f.store.Bookings().GetByID(ctx, recent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)

	r := f.room(t, room.ID)
	assert.Equal(t, 1, r.CurrentOccupancy)
	assert.Equal(t, domain.RoomAvailable, r.Status)
}

func TestMarkNoShows(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	room, _ := testutil.SeedRoom(t, f.store, testutil.RoomOpts{MaxOccupancy: 2, CurrentOccupancy: 2, Status: domain.RoomOccupied})
	a := testutil.SeedUser(t, f.store, "A", domain.GenderMale)
	b := testutil.SeedUser(t, f.store, "B", domain.GenderMale)

	missed := testutil.SeedBooking(t, f.store, domain.Booking{
		RoomID: room.ID, StudentID: a.ID, TotalAmount: 900, AmountPaid: 900,
		Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid,
		CheckInDate:    domain.DateOf(testNow).AddDate(0, 0, -1),
		PaymentDueDate: testNow,
	})
	today := testutil.SeedBooking(t, f.store, domain.Booking{
		RoomID: room.ID, StudentID: b.ID, TotalAmount: 900, AmountPaid: 900,
		Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentPaid,
		CheckInDate:    domain.DateOf(testNow),
		PaymentDueDate: testNow,
	})

	res, err := f.svc.MarkNoShows(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Job: JobNoShow, Candidates: 1, Changed: 1}, res)

	got, err := f.store.Bookings().GetByID(ctx, missed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingNoShow, got.Status)

	got, err = f.store.Bookings().GetByID(ctx, today.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)

	assert.Equal(t, 1, f.room(t, room.ID).CurrentOccupancy)
}

func TestSweep_FailureDoesNotStopBatch(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	room, _ := testutil.SeedRoom(t, f.store, testutil.RoomOpts{MaxOccupancy: 2, CurrentOccupancy: 2, Status: domain.RoomOccupied})
	a := testutil.SeedUser(t, f.store, "A", domain.GenderMale)
	b := testutil.SeedUser(t, f.store, "B", domain.GenderMale)

	first := testutil.SeedBooking(t, f.store, domain.Booking{
		RoomID: 999, StudentID: a.ID, TotalAmount: 900,
		PaymentStatus:  domain.PaymentOverdue,
		PaymentDueDate: testNow.AddDate(0, 0, -9),
	})
	second := testutil.SeedBooking(t, f.store, domain.Booking{
		RoomID: room.ID, StudentID: b.ID, TotalAmount: 900,
		PaymentStatus:  domain.PaymentOverdue,
		PaymentDueDate: testNow.AddDate(0, 0, -9),
	})

	res, err := f.svc.AutoCancelUnpaid(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Candidates)
	assert.Equal(t, 1, res.Failed, "booking on a missing room cannot release occupancy")
	assert.Equal(t, 1, res.Changed)

	got, err := f.store.Bookings().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status, "failed item rolls back")

	got, err = f.store.Bookings().GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
}
