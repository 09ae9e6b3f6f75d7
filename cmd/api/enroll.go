package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/Mekazstan/course-marketplace-api/internal/enrollment"
	"github.com/google/uuid"
)

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", errInvalidBody, name)
	}
	return id, nil
}

func (cfg *apiConfig) loginRedirect(courseID uuid.UUID) string {
	next := cfg.siteURL + "/courses/" + courseID.String()
	return cfg.loginURL + "?next=" + url.QueryEscape(next)
}

// handlerEnrollFree enrolls the caller in a free course. Anonymous callers are
// sent to the login page and brought back to the course afterwards.
func (cfg *apiConfig) handlerEnrollFree(r *http.Request) result {
	courseID, err := pathUUID(r, "id")
	if err != nil {
		return errorFor(err)
	}

	identity, found := GetIdentity(r.Context())
	if !found {
		return redirectResult{status: http.StatusSeeOther, location: cfg.loginRedirect(courseID)}
	}

	outcome, err := cfg.writer.EnrollFree(r.Context(), identity.UserID, courseID)
	if err != nil {
		return errorFor(err)
	}

	return okResult(ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"course_id":        courseID,
			"already_enrolled": outcome == enrollment.AlreadyEnrolled,
		},
	})
}
