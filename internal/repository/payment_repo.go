package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hostelbooking/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type paymentModel struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	BookingID      int64     `gorm:"column:booking_id;not null;index"`
	Amount         int64     `gorm:"column:amount;not null;check:amount > 0"`
	Method         string    `gorm:"column:payment_method;type:varchar(24);not null"`
	Type           string    `gorm:"column:payment_type;type:varchar(24);not null"`
	TransactionRef string    `gorm:"column:transaction_ref;type:varchar(128)"`
	PaymentDate    time.Time `gorm:"column:payment_date;not null"`
	ReceivedBy     *int64    `gorm:"column:received_by"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (paymentModel) TableName() string { return "payments" }

func toDomainPayment(m paymentModel) domain.Payment {
	p := domain.Payment{
		ID:             m.ID,
		BookingID:      m.BookingID,
		Amount:         m.Amount,
		Method:         domain.PaymentMethod(m.Method),
		Type:           domain.PaymentType(m.Type),
		TransactionRef: m.TransactionRef,
		PaymentDate:    m.PaymentDate.UTC(),
		CreatedAt:      m.CreatedAt,
	}
	if m.ReceivedBy != nil {
		p.ReceivedBy = *m.ReceivedBy
	}
	return p
}

// Create appends a payment row. Payments are never updated.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	m := paymentModel{
		BookingID:      p.BookingID,
		Amount:         p.Amount,
		Method:         string(p.Method),
		Type:           string(p.Type),
		TransactionRef: p.TransactionRef,
		PaymentDate:    p.PaymentDate,
	}
	if p.ReceivedBy != 0 {
		rb := p.ReceivedBy
		m.ReceivedBy = &rb
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	*p = toDomainPayment(m)
	return nil
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	var rows []paymentModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("payment_date, id").
		Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	out := make([]domain.Payment, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainPayment(m))
	}
	return out, nil
}

func (r *PaymentRepository) CountByBooking(ctx context.Context, bookingID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&paymentModel{}).Where("booking_id = ?", bookingID).Count(&cnt).Error
	return cnt, translate(err)
}
