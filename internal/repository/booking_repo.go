package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"hostelbooking/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	HostelID           int64      `gorm:"column:hostel_id;not null;index"`
	RoomID             int64      `gorm:"column:room_id;not null;index"`
	StudentID          int64      `gorm:"column:student_id;not null;index"`
	BookingType        string     `gorm:"column:booking_type;type:varchar(16);not null"`
	Status             string     `gorm:"column:status;type:varchar(16);not null;index"`
	PaymentStatus      string     `gorm:"column:payment_status;type:varchar(16);not null;index"`
	CheckInDate        time.Time  `gorm:"column:check_in_date;not null"`
	CheckOutDate       time.Time  `gorm:"column:check_out_date;not null"`
	TotalAmount        int64      `gorm:"column:total_amount;not null;check:total_amount >= 0"`
	AmountPaid         int64      `gorm:"column:amount_paid;not null;default:0;check:amount_paid >= 0"`
	AmountDue          int64      `gorm:"column:amount_due;not null;default:0;check:amount_due >= 0"`
	BookingFee         int64      `gorm:"column:booking_fee;not null;default:0"`
	BookingFeePaid     bool       `gorm:"column:booking_fee_paid;not null;default:false"`
	PaymentDueDate     time.Time  `gorm:"column:payment_due_date;not null;index"`
	Notes              *string    `gorm:"column:notes;type:text"`
	CancellationReason *string    `gorm:"column:cancellation_reason;type:text"`
	ConfirmedAt        *time.Time `gorm:"column:confirmed_at"`
	CheckedInAt        *time.Time `gorm:"column:checked_in_at"`
	CheckedOutAt       *time.Time `gorm:"column:checked_out_at"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	OverdueAt          *time.Time `gorm:"column:overdue_at"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) domain.Booking {
	return domain.Booking{
		ID:                 m.ID,
		HostelID:           m.HostelID,
		RoomID:             m.RoomID,
		StudentID:          m.StudentID,
		BookingType:        domain.BookingType(m.BookingType),
		Status:             domain.BookingStatus(m.Status),
		PaymentStatus:      domain.PaymentStatus(m.PaymentStatus),
		CheckInDate:        m.CheckInDate.UTC(),
		CheckOutDate:       m.CheckOutDate.UTC(),
		TotalAmount:        m.TotalAmount,
		AmountPaid:         m.AmountPaid,
		AmountDue:          m.AmountDue,
		BookingFee:         m.BookingFee,
		BookingFeePaid:     m.BookingFeePaid,
		PaymentDueDate:     m.PaymentDueDate.UTC(),
		Notes:              deref(m.Notes),
		CancellationReason: deref(m.CancellationReason),
		ConfirmedAt:        m.ConfirmedAt,
		CheckedInAt:        m.CheckedInAt,
		CheckedOutAt:       m.CheckedOutAt,
		CancelledAt:        m.CancelledAt,
		OverdueAt:          m.OverdueAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toBookingModel(b domain.Booking) bookingModel {
	return bookingModel{
		ID:                 b.ID,
		HostelID:           b.HostelID,
		RoomID:             b.RoomID,
		StudentID:          b.StudentID,
		BookingType:        string(b.BookingType),
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		CheckInDate:        b.CheckInDate.UTC(),
		CheckOutDate:       b.CheckOutDate.UTC(),
		TotalAmount:        b.TotalAmount,
		AmountPaid:         b.AmountPaid,
		AmountDue:          b.AmountDue,
		BookingFee:         b.BookingFee,
		BookingFeePaid:     b.BookingFeePaid,
		PaymentDueDate:     b.PaymentDueDate.UTC(),
		Notes:              ptr(b.Notes),
		CancellationReason: ptr(b.CancellationReason),
		ConfirmedAt:        b.ConfirmedAt,
		CheckedInAt:        b.CheckedInAt,
		CheckedOutAt:       b.CheckedOutAt,
		CancelledAt:        b.CancelledAt,
		OverdueAt:          b.OverdueAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(*b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	*b = toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Booking{}, translate(err)
	}
	return toDomainBooking(m), nil
}

// Save writes every mutable column of b, zero values included.
func (r *BookingRepository) Save(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(*b)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return translate(err)
	}
	*b = toDomainBooking(m)
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&bookingModel{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindActiveByStudent returns the student's pending/confirmed/checked_in booking, if any.
func (r *BookingRepository) FindActiveByStudent(ctx context.Context, studentID int64) (*domain.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("status IN ?", statusStrings(domain.ActiveStatuses)).
		Order("id").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	b := toDomainBooking(m)
	return &b, nil
}

func (r *BookingRepository) ListByStudent(ctx context.Context, studentID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var rows []bookingModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainBooking(m))
	}
	return out, nil
}

// CountOverlapping counts bookings on the room in the given statuses whose
// stay intersects [from, to).
func (r *BookingRepository) CountOverlapping(ctx context.Context, roomID int64, from, to time.Time, statuses []domain.BookingStatus) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", statusStrings(statuses)).
		Where("check_in_date < ? AND check_out_date > ?", to.UTC(), from.UTC()).
		Count(&cnt).Error
	return cnt, translate(err)
}

func (r *BookingRepository) CountByRoom(ctx context.Context, roomID int64, statuses []domain.BookingStatus) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("room_id = ? AND status IN ?", roomID, statusStrings(statuses)).
		Count(&cnt).Error
	return cnt, translate(err)
}

// OccupantGenders returns the recorded genders of students holding an
// active booking on the room, excluding the given student.
func (r *BookingRepository) OccupantGenders(ctx context.Context, roomID, excludeStudentID int64) ([]domain.Gender, error) {
	var genders []string
	err := r.db.WithContext(ctx).
		Table("bookings b").
		Joins("JOIN users u ON u.id = b.student_id").
		Where("b.room_id = ? AND b.student_id <> ?", roomID, excludeStudentID).
		Where("b.status IN ?", statusStrings(domain.ActiveStatuses)).
		Pluck("u.gender", &genders).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]domain.Gender, 0, len(genders))
	for _, g := range genders {
		out = append(out, domain.Gender(g))
	}
	return out, nil
}

// OverdueCandidates lists unpaid pending/confirmed bookings whose due date passed.
func (r *BookingRepository) OverdueCandidates(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	return r.pluckIDs(ctx, limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("status IN ?", []string{string(domain.BookingPending), string(domain.BookingConfirmed)}).
			Where("payment_status IN ?", []string{string(domain.PaymentPending), string(domain.PaymentPartial)}).
			Where("payment_due_date < ?", now.UTC())
	})
}

// AutoCancelCandidates lists pending overdue bookings due before cutoff.
func (r *BookingRepository) AutoCancelCandidates(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	return r.pluckIDs(ctx, limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ? AND payment_status = ?", domain.BookingPending, domain.PaymentOverdue).
			Where("payment_due_date < ?", cutoff.UTC())
	})
}

// NoShowCandidates lists confirmed bookings with a check-in date before the given day.
func (r *BookingRepository) NoShowCandidates(ctx context.Context, before time.Time, limit int) ([]int64, error) {
	return r.pluckIDs(ctx, limit, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ? AND checked_in_at IS NULL", domain.BookingConfirmed).
			Where("check_in_date < ?", before.UTC())
	})
}

func (r *BookingRepository) pluckIDs(ctx context.Context, limit int, scope func(*gorm.DB) *gorm.DB) ([]int64, error) {
	var ids []int64
	q := scope(r.db.WithContext(ctx).Model(&bookingModel{})).Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

// IsActiveBookingConflict reports a violation of the one-active-booking index.
func IsActiveBookingConflict(err error) bool {
	return IsDuplicateOf(err, ActiveBookingIndex) || IsDuplicateOf(err, "bookings.student_id")
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
