package domain

import "time"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleStaff   UserRole = "staff"
	RoleAdmin   UserRole = "admin"
)

type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderMixed          Gender = "mixed"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
)

// Declared is false for students who left gender empty or chose not to say.
func (g Gender) Declared() bool {
	return g != "" && g != GenderPreferNotToSay
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	Gender    Gender    `json:"gender,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Role   UserRole
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

// CanAccess reports whether the actor may see or act on a booking.
func (a Actor) CanAccess(b Booking) bool {
	return a.IsStaff() || b.StudentID == a.UserID
}
