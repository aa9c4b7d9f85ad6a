// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID              int64      `db:"id"`
	UserID          string     `db:"user_id"`
	Name            string     `db:"name"`
	Email           string     `db:"email"`
	PasswordHash    string     `db:"password"`
	PhoneNumber     *string    `db:"phone_number"`
	ProfileImageURL *string    `db:"profile_image_url"`
	BirthDate       *time.Time `db:"birth_date"`
	Gender          *string    `db:"gender"`
	Status          string     `db:"status"`
	Role            string     `db:"role"`
	EmailVerified   bool       `db:"email_verified"`
	PhoneVerified   bool       `db:"phone_verified"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	StatusActive              = "ACTIVE"
	StatusInactive            = "INACTIVE"
	StatusSuspended           = "SUSPENDED"
	StatusPendingVerification = "PENDING_VERIFICATION"
)

const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)

const dateLayout = "2006-01-02"
