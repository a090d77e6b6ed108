package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hostelbooking/internal/domain"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type roomModel struct {
	ID               int64     `gorm:"column:id;primaryKey"`
	HostelID         int64     `gorm:"column:hostel_id;not null;index"`
	RoomTypeID       int64     `gorm:"column:room_type_id;not null;index"`
	Number           string    `gorm:"column:number;type:varchar(32)"`
	MaxOccupancy     int       `gorm:"column:max_occupancy;not null;check:max_occupancy > 0"`
	CurrentOccupancy int       `gorm:"column:current_occupancy;not null;default:0;check:current_occupancy >= 0"`
	Status           string    `gorm:"column:status;type:varchar(16);not null;default:available"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

type roomTypeModel struct {
	ID               int64                       `gorm:"column:id;primaryKey"`
	HostelID         int64                       `gorm:"column:hostel_id;not null;index"`
	Name             string                      `gorm:"column:name;type:varchar(64)"`
	AllowedGenders   datatypes.JSONSlice[string] `gorm:"column:allowed_genders"`
	PricePerSemester int64                       `gorm:"column:price_per_semester;not null;default:0"`
	PricePerMonth    int64                       `gorm:"column:price_per_month;not null;default:0"`
	PricePerWeek     *int64                      `gorm:"column:price_per_week"`
}

func (roomTypeModel) TableName() string { return "room_types" }

func toDomainRoom(m roomModel) domain.Room {
	return domain.Room{
		ID:               m.ID,
		HostelID:         m.HostelID,
		RoomTypeID:       m.RoomTypeID,
		Number:           m.Number,
		MaxOccupancy:     m.MaxOccupancy,
		CurrentOccupancy: m.CurrentOccupancy,
		Status:           domain.RoomStatus(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toDomainRoomType(m roomTypeModel) domain.RoomType {
	genders := make([]domain.Gender, 0, len(m.AllowedGenders))
	for _, g := range m.AllowedGenders {
		genders = append(genders, domain.Gender(g))
	}
	return domain.RoomType{
		ID:               m.ID,
		HostelID:         m.HostelID,
		Name:             m.Name,
		AllowedGenders:   genders,
		PricePerSemester: m.PricePerSemester,
		PricePerMonth:    m.PricePerMonth,
		PricePerWeek:     m.PricePerWeek,
	}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if room.Status == "" {
		room.Status = domain.RoomAvailable
	}
	m := roomModel{
		ID:               room.ID,
		HostelID:         room.HostelID,
		RoomTypeID:       room.RoomTypeID,
		Number:           room.Number,
		MaxOccupancy:     room.MaxOccupancy,
		CurrentOccupancy: room.CurrentOccupancy,
		Status:           string(room.Status),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	*room = toDomainRoom(m)
	return nil
}

func (r *RoomRepository) CreateType(ctx context.Context, rt *domain.RoomType) error {
	genders := make(datatypes.JSONSlice[string], 0, len(rt.AllowedGenders))
	for _, g := range rt.AllowedGenders {
		genders = append(genders, string(g))
	}
	m := roomTypeModel{
		ID:               rt.ID,
		HostelID:         rt.HostelID,
		Name:             rt.Name,
		AllowedGenders:   genders,
		PricePerSemester: rt.PricePerSemester,
		PricePerMonth:    rt.PricePerMonth,
		PricePerWeek:     rt.PricePerWeek,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err)
	}
	*rt = toDomainRoomType(m)
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (domain.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.Room{}, translate(err)
	}
	return toDomainRoom(m), nil
}

func (r *RoomRepository) GetType(ctx context.Context, id int64) (domain.RoomType, error) {
	var m roomTypeModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return domain.RoomType{}, translate(err)
	}
	return toDomainRoomType(m), nil
}

func (r *RoomRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&roomModel{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

// IncrementOccupancy takes one slot if the room is available and not full.
// It reports false when no slot was taken.
func (r *RoomRepository) IncrementOccupancy(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&roomModel{}).
		Where("id = ? AND status = ? AND current_occupancy < max_occupancy", id, domain.RoomAvailable).
		Updates(map[string]any{
			"current_occupancy": gorm.Expr("current_occupancy + 1"),
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// DecrementOccupancy frees one slot, never going below zero.
func (r *RoomRepository) DecrementOccupancy(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&roomModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_occupancy": gorm.Expr("CASE WHEN current_occupancy > 0 THEN current_occupancy - 1 ELSE 0 END"),
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RoomRepository) SetOccupancy(ctx context.Context, id int64, occupancy int) error {
	return r.update(ctx, id, map[string]any{"current_occupancy": occupancy})
}

func (r *RoomRepository) UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) error {
	return r.update(ctx, id, map[string]any{"status": string(status)})
}

func (r *RoomRepository) update(ctx context.Context, id int64, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&roomModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
