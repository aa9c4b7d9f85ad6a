// AngelaMos | 2026
// entity.go

package bugreport

import (
	"time"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

const (
	ErrorTypeUnknown    = "unknown"
	ErrorTypeClient     = "client_error"
	ErrorTypeServer     = "server_error"
	ErrorTypeNetwork    = "network_error"
	ErrorTypeRuntime    = "runtime_error"
	ErrorTypeValidation = "validation_error"
	ErrorTypeSyntax     = "syntax_error"
	ErrorTypeReference  = "reference_error"
	ErrorTypeType       = "type_error"
)

// BugReport is a client-submitted defect report triaged by admins.
type BugReport struct {
	ID           int64        `db:"id"            json:"id"`
	Title        string       `db:"title"         json:"title"`
	Description  string       `db:"description"   json:"description"`
	ErrorMessage *string      `db:"error_message" json:"errorMessage"`
	ErrorStack   *string      `db:"error_stack"   json:"errorStack"`
	ErrorType    string       `db:"error_type"    json:"errorType"`
	ErrorCode    *string      `db:"error_code"    json:"errorCode"`
	URL          *string      `db:"url"           json:"url"`
	UserAgent    *string      `db:"user_agent"    json:"userAgent"`
	Status       string       `db:"status"        json:"status"`
	Severity     string       `db:"severity"      json:"severity"`
	UserID       *string      `db:"user_id"       json:"userId"`
	AssigneeID   *string      `db:"assignee_id"   json:"assigneeId"`
	Memo         *string      `db:"memo"          json:"memo"`
	Metadata     core.JSONMap `db:"metadata"      json:"metadata"`
	CreatedAt    time.Time    `db:"created_at"    json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at"    json:"updatedAt"`
}
