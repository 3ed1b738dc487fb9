package resources

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/itsatony/w4b_v3/server/sensorbridge/api/middleware"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/errors"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// MaxBodyBytes caps the size of every request body
const MaxBodyBytes = 1 << 20

// StatusResponse is the body of every POST route
type StatusResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	nuts.L.Errorf("[API] %s", err.Error())
	respondWithJSON(w, err.Code, StatusResponse{
		Success:   false,
		Message:   err.Message,
		RequestID: err.RequestID,
	})
}

func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
}

// bodyError maps a failed body read or decode to a 413 or a 400.
func bodyError(r *http.Request, err error) *errors.APIError {
	requestID := middleware.RequestIDFromContext(r.Context())
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		apiErr := errors.NewValidationError("request body too large", err).WithRequestID(requestID)
		apiErr.Code = http.StatusRequestEntityTooLarge
		return apiErr
	}
	return errors.NewValidationError("invalid request body", err).WithRequestID(requestID)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondWithResult answers with the status code of the result kind. Failures carry
// the request ID and, for operational errors, the underlying cause.
func respondWithResult(w http.ResponseWriter, r *http.Request, result repository.Result, okMessage, failMessage string) {
	if result.Success {
		respondWithJSON(w, http.StatusOK, StatusResponse{Success: true, Message: okMessage})
		return
	}
	respondWithError(w, failure(result, failMessage).WithRequestID(middleware.RequestIDFromContext(r.Context())))
}

func failure(result repository.Result, failMessage string) *errors.APIError {
	kind := result.Kind
	if kind == errors.ErrorTypeNone {
		kind = errors.ErrorTypeInternal
	}
	var wrapped *errors.APIError
	if stderrors.As(result.Err, &wrapped) {
		if kind == errors.ErrorTypeValidation {
			return errors.New(kind, wrapped.Message, result.Err).WithDetails(wrapped.Details)
		}
		return errors.New(kind, failMessage+": "+wrapped.Cause(), result.Err)
	}
	if result.Err != nil {
		return errors.New(kind, failMessage+": "+result.Err.Error(), result.Err)
	}
	return errors.New(kind, failMessage, nil)
}
