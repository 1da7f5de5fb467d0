package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

const (
	apiVersion  = "2.0"
	errorDomain = "football-stats"

	hiddenErrorMessage = "internal error: please check the logs for details"
)

// envelope follows the Google JSON style guide: data on success, error
// otherwise.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorClass struct {
	httpStatus int
	reason     string
	status     string
}

var internalErrorClass = errorClass{http.StatusInternalServerError, "internalError", "INTERNAL"}

// errorClasses is matched in order with errors.Is.
var errorClasses = []struct {
	target error
	class  errorClass
}{
	{usecase.ErrInvalidInput, errorClass{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, errorClass{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, errorClass{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrDependencyUnavailable, errorClass{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	{usecase.ErrQuotaExceeded, errorClass{http.StatusTooManyRequests, "quotaExceeded", "RESOURCE_EXHAUSTED"}},
	{usecase.ErrProviderResponse, errorClass{http.StatusBadGateway, "providerError", "UNAVAILABLE"}},
	{match.ErrConflict, errorClass{http.StatusConflict, "conflict", "ALREADY_EXISTS"}},
}

func classify(err error) errorClass {
	for _, candidate := range errorClasses {
		if errors.Is(err, candidate.target) {
			return candidate.class
		}
	}
	var missing *usecase.MissingCriticalDataError
	if errors.As(err, &missing) {
		return errorClass{http.StatusBadGateway, "providerError", "UNAVAILABLE"}
	}
	return internalErrorClass
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

// writeText answers job endpoints, which reply with a short status line
// instead of the JSON envelope.
func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, message+"\n")
}

// writeTextError never leaks the text of unclassified errors.
func writeTextError(ctx context.Context, w http.ResponseWriter, err error) {
	class := classify(err)
	markSpanError(ctx, class.httpStatus, err)
	message := err.Error()
	if class == internalErrorClass {
		message = hiddenErrorMessage
	}
	writeText(w, class.httpStatus, message)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: apiVersion, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	class := classify(err)
	markSpanError(ctx, class.httpStatus, err)
	message := err.Error()
	if class == internalErrorClass {
		message = hiddenErrorMessage
	}
	writeJSON(w, class.httpStatus, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    class.httpStatus,
			Message: message,
			Status:  class.status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: class.reason, Message: message}},
		},
	})
}
