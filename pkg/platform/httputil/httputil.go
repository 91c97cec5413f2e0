// Package httputil holds the JSON helpers shared by every handler: response
// writing, error mapping, request decoding, and pagination.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	dErrors "galang/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError maps a coded error to its HTTP status and body. Server-side
// faults keep their message out of the response; the log line carries it.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	body := errorBody{Error: string(code)}
	if status < http.StatusInternalServerError {
		body.ErrorDescription = dErrors.MessageOf(err)
	}
	WriteJSON(w, status, body)
}

// Validatable requests check themselves after decoding.
type Validatable interface {
	Validate() error
}

// Normalizer requests trim and canonicalize their fields before validation.
type Normalizer interface {
	Normalize()
}

// DecodeAndPrepare decodes the JSON body into T, normalizing and validating
// it when T implements the corresponding interfaces. On failure it writes
// the error response and returns false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(r.Context(), "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		var zero T
		return zero, false
	}
	if n, ok := any(&req).(Normalizer); ok {
		n.Normalize()
	}
	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, err)
			var zero T
			return zero, false
		}
	}
	return req, true
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Page holds normalized pagination parameters.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int { return (p.Number - 1) * p.Limit }

// ParsePage reads page and limit query parameters, clamping to sane bounds.
func ParsePage(r *http.Request) Page {
	p := Page{Number: 1, Limit: defaultLimit}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Number = n
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Paginated is the stable listing envelope public clients rely on.
type Paginated struct {
	Data       any `json:"data"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPaginated wraps a result page.
func NewPaginated(data any, page Page, total int) Paginated {
	totalPages := 0
	if total > 0 {
		totalPages = (total + page.Limit - 1) / page.Limit
	}
	return Paginated{
		Data:       data,
		Page:       page.Number,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
