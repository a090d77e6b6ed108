package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostelbooking/internal/domain"
)

// Store owns the connection and hands out repositories bound either to the
// pool or to a single transaction.
type Store struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewStore(db *gorm.DB, lockTimeout time.Duration) *Store {
	return &Store{db: db, lockTimeout: lockTimeout}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Bookings() *BookingRepository { return NewBookingRepository(s.db) }
func (s *Store) Rooms() *RoomRepository       { return NewRoomRepository(s.db) }
func (s *Store) Users() *UserRepository       { return NewUserRepository(s.db) }
func (s *Store) Payments() *PaymentRepository { return NewPaymentRepository(s.db) }
func (s *Store) Deposits() *DepositRepository { return NewDepositRepository(s.db) }

// Tx is a unit of work. Everything done through it commits or rolls back together.
type Tx struct {
	db *gorm.DB
}

func (t *Tx) Bookings() *BookingRepository { return NewBookingRepository(t.db) }
func (t *Tx) Rooms() *RoomRepository       { return NewRoomRepository(t.db) }
func (t *Tx) Users() *UserRepository       { return NewUserRepository(t.db) }
func (t *Tx) Payments() *PaymentRepository { return NewPaymentRepository(t.db) }
func (t *Tx) Deposits() *DepositRepository { return NewDepositRepository(t.db) }

// InTx runs fn in a transaction. Lock waits are bounded by the store's lock
// timeout on Postgres; exceeding it surfaces as ErrLockTimeout.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		if s.lockTimeout > 0 && gtx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := gtx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(&Tx{db: gtx})
	})
	return translate(err)
}

// WithBookingLock loads the booking under a row lock and runs fn in the
// same transaction. Concurrent callers on one booking run one at a time.
func (s *Store) WithBookingLock(ctx context.Context, bookingID int64, fn func(tx *Tx, b domain.Booking) error) error {
	return s.InTx(ctx, func(tx *Tx) error {
		b, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		return fn(tx, b)
	})
}

func (t *Tx) LockBooking(ctx context.Context, id int64) (domain.Booking, error) {
	var m bookingModel
	if err := t.forUpdate(ctx).First(&m, id).Error; err != nil {
		return domain.Booking{}, translate(err)
	}
	return toDomainBooking(m), nil
}

// LockUser serializes work scoped to one user, such as creating their
// booking or spending their deposit balance.
func (t *Tx) LockUser(ctx context.Context, id int64) (domain.User, error) {
	var m userModel
	if err := t.forUpdate(ctx).First(&m, id).Error; err != nil {
		return domain.User{}, translate(err)
	}
	return toDomainUser(m), nil
}

func (t *Tx) LockRoom(ctx context.Context, id int64) (domain.Room, error) {
	var m roomModel
	if err := t.forUpdate(ctx).First(&m, id).Error; err != nil {
		return domain.Room{}, translate(err)
	}
	return toDomainRoom(m), nil
}

func (t *Tx) forUpdate(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}
