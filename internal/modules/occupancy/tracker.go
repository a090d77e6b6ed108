// Package occupancy keeps Room.CurrentOccupancy and Room.Status in line with
// the room's active bookings.
package occupancy

import (
	"context"

	"github.com/sirupsen/logrus"

	"hostelbooking/internal/domain"
	"hostelbooking/internal/metrics"
	"hostelbooking/internal/modules/eligibility"
	"hostelbooking/internal/pkg/apperror"
	"hostelbooking/internal/repository"
)

type Tracker struct {
	store *repository.Store
	log   logrus.FieldLogger
}

func NewTracker(store *repository.Store, log logrus.FieldLogger) *Tracker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tracker{store: store, log: log.WithField("component", "occupancy")}
}

// Occupy takes one slot on the room inside tx and re-derives its status.
// It fails with ErrRoomUnavailable when the room is full or not available.
func (t *Tracker) Occupy(ctx context.Context, tx *repository.Tx, roomID int64) (domain.Room, error) {
	ok, err := tx.Rooms().IncrementOccupancy(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}
	if !ok {
		room, err := tx.Rooms().GetByID(ctx, roomID)
		if err != nil {
			return domain.Room{}, err
		}
		return room, apperror.Wrapf(eligibility.ErrRoomUnavailable,
			"room %d is %s with %d/%d occupants", room.ID, room.Status, room.CurrentOccupancy, room.MaxOccupancy)
	}
	return syncStatus(ctx, tx, roomID)
}

// Release frees one slot on the room inside tx, flooring at zero.
func (t *Tracker) Release(ctx context.Context, tx *repository.Tx, roomID int64) (domain.Room, error) {
	if err := tx.Rooms().DecrementOccupancy(ctx, roomID); err != nil {
		return domain.Room{}, err
	}
	return syncStatus(ctx, tx, roomID)
}

// Refresh re-derives the room status without changing occupancy.
func (t *Tracker) Refresh(ctx context.Context, tx *repository.Tx, roomID int64) (domain.Room, error) {
	return syncStatus(ctx, tx, roomID)
}

func syncStatus(ctx context.Context, tx *repository.Tx, roomID int64) (domain.Room, error) {
	room, err := tx.Rooms().GetByID(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}
	if want := domain.DeriveRoomStatus(room); want != room.Status {
		if err := tx.Rooms().UpdateStatus(ctx, roomID, want); err != nil {
			return domain.Room{}, err
		}
		room.Status = want
	}
	return room, nil
}

type Result struct {
	RoomID         int64             `json:"room_id"`
	OccupancyFrom  int               `json:"occupancy_from"`
	OccupancyTo    int               `json:"occupancy_to"`
	StatusFrom     domain.RoomStatus `json:"status_from"`
	StatusTo       domain.RoomStatus `json:"status_to"`
	ActiveBookings int64             `json:"active_bookings"`
	Corrected      bool              `json:"corrected"`
}

// Reconcile recounts the room's active bookings and repairs drift in
// occupancy or status. It locks the room row for the duration.
func (t *Tracker) Reconcile(ctx context.Context, roomID int64) (Result, error) {
	var res Result
	err := t.store.InTx(ctx, func(tx *repository.Tx) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return err
		}
		count, err := tx.Bookings().CountByRoom(ctx, roomID, domain.ActiveStatuses)
		if err != nil {
			return err
		}

		res = Result{
			RoomID:         roomID,
			OccupancyFrom:  room.CurrentOccupancy,
			StatusFrom:     room.Status,
			ActiveBookings: count,
		}

		occ := int(count)
		if occ > room.MaxOccupancy {
			t.log.WithFields(logrus.Fields{"room_id": roomID, "active": count, "max": room.MaxOccupancy}).
				Warn("room has more active bookings than beds")
			occ = room.MaxOccupancy
		}
		fixed := room
		fixed.CurrentOccupancy = occ
		fixed.Status = domain.DeriveRoomStatus(fixed)
		res.OccupancyTo = fixed.CurrentOccupancy
		res.StatusTo = fixed.Status

		if fixed.CurrentOccupancy != room.CurrentOccupancy {
			if err := tx.Rooms().SetOccupancy(ctx, roomID, fixed.CurrentOccupancy); err != nil {
				return err
			}
			res.Corrected = true
		}
		if fixed.Status != room.Status {
			if err := tx.Rooms().UpdateStatus(ctx, roomID, fixed.Status); err != nil {
				return err
			}
			res.Corrected = true
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if res.Corrected {
		metrics.OccupancyCorrections.Inc()
		t.log.WithFields(logrus.Fields{
			"room_id":        roomID,
			"occupancy_from": res.OccupancyFrom,
			"occupancy_to":   res.OccupancyTo,
			"status_from":    res.StatusFrom,
			"status_to":      res.StatusTo,
		}).Info("occupancy corrected")
	}
	return res, nil
}

type Summary struct {
	Checked   int `json:"checked"`
	Corrected int `json:"corrected"`
	Failed    int `json:"failed"`
}

// ReconcileAll reconciles every room. A failing room is logged and skipped.
func (t *Tracker) ReconcileAll(ctx context.Context) (Summary, error) {
	var sum Summary
	ids, err := t.store.Rooms().ListIDs(ctx)
	if err != nil {
		return sum, err
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res, err := t.Reconcile(ctx, id)
		sum.Checked++
		if err != nil {
			sum.Failed++
			t.log.WithError(err).WithField("room_id", id).Error("reconcile room failed")
			continue
		}
		if res.Corrected {
			sum.Corrected++
		}
	}
	return sum, nil
}
