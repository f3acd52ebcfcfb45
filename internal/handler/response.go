package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/efreitasn/gbce/internal/domain"
)

// WriteJSON writes data as a single line of JSON.
func WriteJSON(w io.Writer, data any) {
	_ = json.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response with the given error code
// and human-readable message.
func WriteError(w io.Writer, errorCode, message string) {
	WriteJSON(w, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// parseInt parses a named integer argument, reporting failures as
// validation errors.
func parseInt(name, s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{
			Message: fmt.Sprintf("%s must be a valid integer, got %q", name, s),
		}
	}
	return v, nil
}

// formatTime renders timestamps the same way across all responses.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
