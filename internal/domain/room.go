package domain

import "time"

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomReserved    RoomStatus = "reserved"
)

type Room struct {
	ID               int64      `json:"id"`
	HostelID         int64      `json:"hostel_id"`
	RoomTypeID       int64      `json:"room_type_id"`
	Number           string     `json:"number"`
	MaxOccupancy     int        `json:"max_occupancy"`
	CurrentOccupancy int        `json:"current_occupancy"`
	Status           RoomStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// RoomType carries the gender policy and pricing shared by its rooms.
type RoomType struct {
	ID               int64    `json:"id"`
	HostelID         int64    `json:"hostel_id"`
	Name             string   `json:"name"`
	AllowedGenders   []Gender `json:"allowed_genders"`
	PricePerSemester int64    `json:"price_per_semester"`
	PricePerMonth    int64    `json:"price_per_month"`
	PricePerWeek     *int64   `json:"price_per_week,omitempty"`
}

// AllowsMixed reports whether occupants of different genders may share a room.
func (rt RoomType) AllowsMixed() bool {
	for _, g := range rt.AllowedGenders {
		if g == GenderMixed {
			return true
		}
	}
	return false
}

// RestrictsGender is false when the type declares no policy at all.
func (rt RoomType) RestrictsGender() bool {
	return len(rt.AllowedGenders) > 0 && !rt.AllowsMixed()
}

func (rt RoomType) Allows(g Gender) bool {
	if !rt.RestrictsGender() {
		return true
	}
	for _, a := range rt.AllowedGenders {
		if a == g {
			return true
		}
	}
	return false
}

// DeriveRoomStatus returns the status implied by occupancy. Maintenance and
// reserved are manual overrides and are left alone.
func DeriveRoomStatus(r Room) RoomStatus {
	switch r.Status {
	case RoomMaintenance, RoomReserved:
		return r.Status
	}
	if r.CurrentOccupancy >= r.MaxOccupancy {
		return RoomOccupied
	}
	return RoomAvailable
}

// HasFreeSlot reports whether the room can take one more active booking.
func HasFreeSlot(r Room) bool {
	return r.Status == RoomAvailable && r.CurrentOccupancy < r.MaxOccupancy
}
