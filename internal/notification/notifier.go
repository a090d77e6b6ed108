// Package notification delivers booking lifecycle events to interested
// parties after the triggering transaction has committed.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

type EventType string

const (
	BookingCreated    EventType = "booking.created"
	BookingConfirmed  EventType = "booking.confirmed"
	BookingCancelled  EventType = "booking.cancelled"
	BookingCheckedIn  EventType = "booking.checked_in"
	BookingCheckedOut EventType = "booking.checked_out"
	BookingNoShow     EventType = "booking.no_show"
	BookingDeleted    EventType = "booking.deleted"
	PaymentRecorded   EventType = "payment.recorded"
	PaymentOverdue    EventType = "payment.overdue"
	BookingFeePaid    EventType = "payment.booking_fee"
	DepositApplied    EventType = "deposit.applied"
	DepositRegistered EventType = "deposit.registered"
)

type Event struct {
	Type          EventType `json:"type"`
	BookingID     int64     `json:"booking_id,omitempty"`
	UserID        int64     `json:"user_id,omitempty"`
	HostelID      int64     `json:"hostel_id,omitempty"`
	RoomID        int64     `json:"room_id,omitempty"`
	Status        string    `json:"status,omitempty"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	At            time.Time `json:"at"`
}

// Notifier is the outbound port. Implementations must not block for long.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes each event as a structured log line.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	n.log.WithFields(logrus.Fields{
		"event":          ev.Type,
		"booking_id":     ev.BookingID,
		"user_id":        ev.UserID,
		"room_id":        ev.RoomID,
		"status":         ev.Status,
		"payment_status": ev.PaymentStatus,
		"amount":         ev.Amount,
		"reason":         ev.Reason,
	}).Info("notification")
	return nil
}

// Deliver sends ev and logs a failure instead of returning it. Callers use
// it after commit, where a notification error must not undo anything.
func Deliver(ctx context.Context, n Notifier, log logrus.FieldLogger, ev Event) {
	if n == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := n.Notify(ctx, ev); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"event":      ev.Type,
			"booking_id": ev.BookingID,
		}).Warn("notification delivery failed")
	}
}
