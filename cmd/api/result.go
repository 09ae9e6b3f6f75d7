package main

import (
	"errors"
	"net/http"

	"github.com/Mekazstan/course-marketplace-api/internal/auth"
	"github.com/Mekazstan/course-marketplace-api/internal/checkout"
	"github.com/Mekazstan/course-marketplace-api/internal/enrollment"
	"github.com/Mekazstan/course-marketplace-api/internal/payment"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// result is what a handler decided to do. Handlers never write to the
// ResponseWriter themselves; handle interprets the result.
type result interface {
	write(w http.ResponseWriter, r *http.Request, log *zap.Logger)
}

type jsonResult struct {
	status int
	body   interface{}
}

func (res jsonResult) write(w http.ResponseWriter, r *http.Request, log *zap.Logger) {
	respondWithJSON(w, res.status, res.body)
}

type redirectResult struct {
	status   int
	location string
}

func (res redirectResult) write(w http.ResponseWriter, r *http.Request, log *zap.Logger) {
	http.Redirect(w, r, res.location, res.status)
}

type errorResult struct {
	status int
	apiErr ApiError
	cause  error
}

func (res errorResult) write(w http.ResponseWriter, r *http.Request, log *zap.Logger) {
	if res.status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", res.apiErr.Code),
			zap.Error(res.cause),
		)
	}
	respondWithError(w, res.status, res.apiErr)
}

func okResult(body interface{}) result {
	return jsonResult{status: http.StatusOK, body: body}
}

func createdResult(body interface{}) result {
	return jsonResult{status: http.StatusCreated, body: body}
}

func fail(status int, code, message string) errorResult {
	return errorResult{status: status, apiErr: ApiError{Code: code, Message: message}}
}

var (
	errForbidden = errors.New("forbidden")
	errNotFound  = errors.New("not found")
)

// errorFor maps domain errors onto the public error taxonomy.
func errorFor(err error) errorResult {
	var res errorResult
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		res = fail(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.As(err, &verrs):
		res = fail(http.StatusBadRequest, "INVALID_REQUEST", "Request validation failed")
		res.apiErr.Details = validationDetails(verrs)
	case errors.Is(err, errInvalidBody),
		errors.Is(err, checkout.ErrInvalidRequest),
		errors.Is(err, payment.ErrInvalidPayload),
		errors.Is(err, enrollment.ErrNotFree):
		res = fail(http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, payment.ErrInvalidSignature):
		res = fail(http.StatusBadRequest, "INVALID_SIGNATURE", "Payment signature verification failed")
	case errors.Is(err, payment.ErrMisconfiguredSecret):
		res = fail(http.StatusInternalServerError, "MISCONFIGURED_SECRET", "Payment provider is not configured")
	case errors.Is(err, enrollment.ErrEnrollmentFailed):
		res = fail(http.StatusInternalServerError, "ENROLLMENT_FAILED", "Failed to enroll in course")
	case errors.Is(err, errForbidden):
		res = fail(http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource")
	case errors.Is(err, errNotFound), errors.Is(err, enrollment.ErrCourseNotFound):
		res = fail(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	default:
		res = fail(http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
	res.cause = err
	return res
}

func validationDetails(verrs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}

// handle adapts a result-returning handler to net/http.
func (cfg *apiConfig) handle(h func(r *http.Request) result) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := h(r)
		if res == nil {
			res = errorFor(errors.New("handler returned no result"))
		}
		res.write(w, r, cfg.log)
	})
}
