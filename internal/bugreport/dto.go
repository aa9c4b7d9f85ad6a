// AngelaMos | 2026
// dto.go

package bugreport

import (
	"net/http"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

type CreateRequest struct {
	Title        string         `json:"title"        validate:"required,max=255"`
	Description  string         `json:"description"  validate:"required"`
	ErrorMessage *string        `json:"errorMessage" validate:"omitempty"`
	ErrorStack   *string        `json:"errorStack"   validate:"omitempty"`
	ErrorType    *string        `json:"errorType"    validate:"omitempty,oneof=unknown client_error server_error network_error runtime_error validation_error syntax_error reference_error type_error"`
	ErrorCode    *string        `json:"errorCode"    validate:"omitempty,max=50"`
	URL          *string        `json:"url"          validate:"omitempty,max=2048"`
	UserAgent    *string        `json:"userAgent"    validate:"omitempty,max=1024"`
	Severity     *string        `json:"severity"     validate:"omitempty,oneof=low medium high critical"`
	UserID       *string        `json:"userId"       validate:"omitempty,max=50"`
	AssigneeID   *string        `json:"assigneeId"   validate:"omitempty,max=50"`
	Memo         *string        `json:"memo"`
	Metadata     map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	Title        *string        `json:"title"        validate:"omitempty,min=1,max=255"`
	Description  *string        `json:"description"  validate:"omitempty,min=1"`
	Status       *string        `json:"status"       validate:"omitempty,oneof=open in_progress resolved closed"`
	Severity     *string        `json:"severity"     validate:"omitempty,oneof=low medium high critical"`
	ErrorMessage *string        `json:"errorMessage"`
	ErrorStack   *string        `json:"errorStack"`
	ErrorType    *string        `json:"errorType"    validate:"omitempty,oneof=unknown client_error server_error network_error runtime_error validation_error syntax_error reference_error type_error"`
	ErrorCode    *string        `json:"errorCode"    validate:"omitempty,max=50"`
	AssigneeID   *string        `json:"assigneeId"   validate:"omitempty,max=50"`
	Memo         *string        `json:"memo"`
	Metadata     map[string]any `json:"metadata"`
}

type ListParams struct {
	core.ListParams
	Status     string
	Severity   string
	ErrorType  string
	UserID     string
	AssigneeID string
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
	"severity":  "severity",
	"errorType": "error_type",
}

const defaultSort = "createdAt"

func ParseListParams(r *http.Request) ListParams {
	q := r.URL.Query()
	return ListParams{
		ListParams: core.ParseListParams(r),
		Status:     q.Get("status"),
		Severity:   q.Get("severity"),
		ErrorType:  q.Get("errorType"),
		UserID:     q.Get("userId"),
		AssigneeID: q.Get("assigneeId"),
	}
}

func (p ListParams) where() core.Where {
	var w core.Where

	if p.Search != "" {
		w.ILike(p.Search, "title", "description", "error_message")
	}

	filters := []struct {
		column string
		value  string
	}{
		{"status", p.Status},
		{"severity", p.Severity},
		{"error_type", p.ErrorType},
		{"user_id", p.UserID},
		{"assignee_id", p.AssigneeID},
	}
	for _, f := range filters {
		if f.value != "" {
			w.Eq(f.column, f.value)
		}
	}

	return w
}
