package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeAlreadyActive         = "ALREADY_ACTIVE"
	CodeNotOwner              = "NOT_OWNER"
	CodeNoActiveGame          = "NO_ACTIVE_GAME"
	CodeDeckExhausted         = "DECK_EXHAUSTED"
	CodePersistenceFailure    = "PERSISTENCE_FAILURE"
	CodeHistoryNotFound       = "HISTORY_NOT_FOUND"
	CodePlayerNotFound        = "PLAYER_NOT_FOUND"
	CodeChannelNotAllowed     = "CHANNEL_NOT_ALLOWED"
	CodeChannelAlreadyAllowed = "CHANNEL_ALREADY_ALLOWED"
	CodeChannelNotListed      = "CHANNEL_NOT_LISTED"
	CodeAdminDisabled         = "ADMIN_DISABLED"
	CodeInvalidDisplayName    = "INVALID_DISPLAY_NAME"
	CodeRenderFailed          = "RENDER_FAILED"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// Describe returns the HTTP status and error body err maps to
func Describe(err error) (int, APIError) {
	he := toHTTPError(err)
	return he.status, he.apiError
}

// toHTTPError converts an error to an httpError.
// Persistence is checked before the session errors because a failed history
// save is wrapped around an otherwise successful action.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrPersistence):
		return &httpError{http.StatusServiceUnavailable, APIError{CodePersistenceFailure, "Result could not be saved"}}
	case errors.Is(err, model.ErrAlreadyActive):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyActive, "You already have an active game. Finish it first."}}
	case errors.Is(err, model.ErrNotOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotOwner, "You are not the player."}}
	case errors.Is(err, model.ErrNoActiveGame):
		return &httpError{http.StatusNotFound, APIError{CodeNoActiveGame, "No active game"}}
	case errors.Is(err, model.ErrDeckExhausted):
		return &httpError{http.StatusInternalServerError, APIError{CodeDeckExhausted, "The deck ran out and the game was abandoned"}}
	case errors.Is(err, model.ErrHistoryNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeHistoryNotFound, "No history found."}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrChannelNotAllowed):
		return &httpError{http.StatusForbidden, APIError{CodeChannelNotAllowed, "This channel is not allowed for Blackjack."}}
	case errors.Is(err, model.ErrChannelAlreadyAllowed):
		return &httpError{http.StatusConflict, APIError{CodeChannelAlreadyAllowed, "This channel is already allowed."}}
	case errors.Is(err, model.ErrChannelNotListed):
		return &httpError{http.StatusNotFound, APIError{CodeChannelNotListed, "This channel was not allowed."}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrInvalidAdminKey):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Invalid admin key"}}
	case errors.Is(err, auth.ErrAdminDisabled):
		return &httpError{http.StatusForbidden, APIError{CodeAdminDisabled, "Admin access is not configured"}}
	case errors.Is(err, auth.ErrInvalidName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDisplayName, "Display name must be 1-32 characters"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewAdminRequiredError is returned when an admin route is called without a key
func NewAdminRequiredError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "You need administrator permission to run this command."}}
}

// NewRenderError is returned when the table image cannot be drawn
func NewRenderError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeRenderFailed, "Could not render table"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
