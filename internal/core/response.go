// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Meta    *PageMeta  `json:"meta,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	ItemCount  int `json:"itemCount"`
}

func NewPageMeta(page, limit, total, itemCount int) *PageMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &PageMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		ItemCount:  itemCount,
	}
}

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Paginated(
	w http.ResponseWriter,
	message string,
	data any,
	page, limit, total, itemCount int,
) {
	JSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    NewPageMeta(page, limit, total, itemCount),
	})
}

func JSONError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}

	JSON(w, appErr.StatusCode, Response{
		Success: false,
		Message: appErr.Message,
		Error: &ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, ValidationError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func Forbidden(w http.ResponseWriter, message string) {
	JSONError(w, ForbiddenError(message))
}

func InternalServerError(w http.ResponseWriter, err error) {
	JSONError(w, InternalError(err))
}
