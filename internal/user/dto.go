// AngelaMos | 2026
// dto.go

package user

import (
	"net/http"
	"time"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

// UpdateProfileRequest is what a user may change about themselves.
type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty"            validate:"omitempty,min=1,max=100"`
	Email           *string `json:"email,omitempty"           validate:"omitempty,email,max=255"`
	PhoneNumber     *string `json:"phoneNumber,omitempty"     validate:"omitempty,max=20"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty" validate:"omitempty,url,max=500"`
	BirthDate       *string `json:"birthDate,omitempty"       validate:"omitempty,datetime=2006-01-02"`
	Gender          *string `json:"gender,omitempty"          validate:"omitempty,oneof=MALE FEMALE OTHER"`
}

type AdminUpdateUserRequest struct {
	UpdateProfileRequest
	Role          *string `json:"role,omitempty"          validate:"omitempty,oneof=ADMIN USER"`
	Status        *string `json:"status,omitempty"        validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED PENDING_VERIFICATION"`
	EmailVerified *bool   `json:"emailVerified,omitempty"`
	PhoneVerified *bool   `json:"phoneVerified,omitempty"`
}

type UserResponse struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PhoneNumber     *string   `json:"phoneNumber"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	BirthDate       *string   `json:"birthDate"`
	Gender          *string   `json:"gender"`
	Status          string    `json:"status"`
	Role            string    `json:"role"`
	EmailVerified   bool      `json:"emailVerified"`
	PhoneVerified   bool      `json:"phoneVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ListUsersParams struct {
	core.ListParams
	Role   string
	Status string
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"userId":    "user_id",
	"name":      "name",
	"email":     "email",
	"status":    "status",
	"role":      "role",
}

const defaultSort = "createdAt"

func ParseListUsersParams(r *http.Request) ListUsersParams {
	q := r.URL.Query()
	return ListUsersParams{
		ListParams: core.ParseListParams(r),
		Role:       q.Get("role"),
		Status:     q.Get("status"),
	}
}

func ToUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:              u.ID,
		UserID:          u.UserID,
		Name:            u.Name,
		Email:           u.Email,
		PhoneNumber:     u.PhoneNumber,
		ProfileImageURL: u.ProfileImageURL,
		Gender:          u.Gender,
		Status:          u.Status,
		Role:            u.Role,
		EmailVerified:   u.EmailVerified,
		PhoneVerified:   u.PhoneVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	if u.BirthDate != nil {
		d := u.BirthDate.Format(dateLayout)
		resp.BirthDate = &d
	}
	return resp
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
