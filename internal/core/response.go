// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

// Pagination is the standard page descriptor attached to list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type paginatedEnvelope struct {
	Items      any        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{
		Success: false,
		Error:   errorBody{Code: code, Message: message},
	})
}

// OK writes the payload as-is with 200. Success payloads are bare;
// only error responses carry the success/error envelope.
func OK(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func Created(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusCreated, v)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func BadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(w http.ResponseWriter, resource string) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource))
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "authentication required"
	}
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "insufficient permissions"
	}
	writeError(w, http.StatusForbidden, "FORBIDDEN", message)
}

// InternalServerError logs the underlying error and returns a generic
// message. Internals never reach the client.
func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL", "an unexpected error occurred")
}

// JSONError writes an AppError with its own status and code. Anything
// else degrades to a 500.
func JSONError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		writeError(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}
	InternalServerError(w, err)
}

// Paginated writes a list payload with its page descriptor. TotalPages
// is zero when the collection is empty.
func Paginated(w http.ResponseWriter, items any, page, pageSize int, total int64) {
	writeJSON(w, http.StatusOK, paginatedEnvelope{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: TotalPages(total, pageSize),
		},
	})
}

// TotalPages computes ceil(total/pageSize) with 0 for an empty set.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
