package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"hostelbooking/internal/domain"
)

type DepositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

type depositModel struct {
	ID               int64      `gorm:"column:id;primaryKey"`
	UserID           int64      `gorm:"column:user_id;not null;index"`
	BookingID        *int64     `gorm:"column:booking_id;index"`
	Amount           int64      `gorm:"column:amount;not null"`
	Status           string     `gorm:"column:status;type:varchar(16);not null"`
	DepositType      string     `gorm:"column:deposit_type;type:varchar(16);not null"`
	PaymentReference *string    `gorm:"column:payment_reference;type:varchar(128);uniqueIndex:idx_deposits_reference"`
	ExpiresAt        *time.Time `gorm:"column:expires_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
}

func (depositModel) TableName() string { return "deposits" }

func toDomainDeposit(m depositModel) domain.Deposit {
	return domain.Deposit{
		ID:               m.ID,
		UserID:           m.UserID,
		BookingID:        m.BookingID,
		Amount:           m.Amount,
		Status:           domain.DepositStatus(m.Status),
		DepositType:      domain.DepositType(m.DepositType),
		PaymentReference: deref(m.PaymentReference),
		ExpiresAt:        m.ExpiresAt,
		CreatedAt:        m.CreatedAt,
	}
}

func (r *DepositRepository) Create(ctx context.Context, d *domain.Deposit) error {
	m := depositModel{
		UserID:           d.UserID,
		BookingID:        d.BookingID,
		Amount:           d.Amount,
		Status:           string(d.Status),
		DepositType:      string(d.DepositType),
		PaymentReference: ptr(d.PaymentReference),
		ExpiresAt:        d.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	*d = toDomainDeposit(m)
	return nil
}

// GetByReference returns nil when no row carries the reference.
func (r *DepositRepository) GetByReference(ctx context.Context, ref string) (*domain.Deposit, error) {
	var m depositModel
	err := r.db.WithContext(ctx).Where("payment_reference = ?", ref).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	d := toDomainDeposit(m)
	return &d, nil
}

// Balance sums the user's completed rows. Withdrawals are stored negative.
func (r *DepositRepository) Balance(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&depositModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND status = ?", userID, domain.DepositCompleted).
		Scan(&total).Error
	if err != nil {
		return 0, translate(err)
	}
	return total, nil
}

func (r *DepositRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Deposit, error) {
	var rows []depositModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	out := make([]domain.Deposit, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainDeposit(m))
	}
	return out, nil
}
