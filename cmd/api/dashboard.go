package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Mekazstan/course-marketplace-api/internal/auth"
	"github.com/google/uuid"
)

type enrollmentSummary struct {
	CourseID         uuid.UUID `json:"course_id"`
	CourseTitle      string    `json:"course_title"`
	Status           string    `json:"status"`
	EnrolledAt       string    `json:"enrolled_at"`
	TotalLessons     int64     `json:"total_lessons"`
	CompletedLessons int64     `json:"completed_lessons"`
	ProgressPercent  int       `json:"progress_percent"`
}

func (cfg *apiConfig) handlerListEnrollments(r *http.Request) result {
	identity, found := GetIdentity(r.Context())
	if !found {
		return errorFor(auth.ErrUnauthorized)
	}

	rows, err := cfg.db.ListUserEnrollments(r.Context(), identity.UserID)
	if err != nil {
		return errorFor(fmt.Errorf("failed to list enrollments: %w", err))
	}

	data := make([]enrollmentSummary, 0, len(rows))
	for _, row := range rows {
		percent := 0
		if row.TotalLessons > 0 {
			percent = int(row.CompletedLessons * 100 / row.TotalLessons)
		}
		data = append(data, enrollmentSummary{
			CourseID:         row.CourseID,
			CourseTitle:      row.CourseTitle,
			Status:           string(row.Status),
			EnrolledAt:       row.CreatedAt.Time.Format(time.RFC3339),
			TotalLessons:     row.TotalLessons,
			CompletedLessons: row.CompletedLessons,
			ProgressPercent:  percent,
		})
	}

	return okResult(ApiResponse{Success: true, Data: data})
}
