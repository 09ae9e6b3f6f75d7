package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Mekazstan/course-marketplace-api/internal/auth"
	"github.com/Mekazstan/course-marketplace-api/internal/checkout"
	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type courseResponse struct {
	ID           uuid.UUID             `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Price        int64                 `json:"price"`
	DisplayPrice string                `json:"display_price"`
	Status       database.CourseStatus `json:"status"`
	InstructorID uuid.UUID             `json:"instructor_id"`
	CategoryID   *uuid.UUID            `json:"category_id,omitempty"`
	CreatedAt    string                `json:"created_at"`
	UpdatedAt    string                `json:"updated_at"`
}

type lessonOutline struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Position  int32     `json:"position"`
	IsPreview bool      `json:"is_preview"`
}

func toCourseResponse(c database.Course) courseResponse {
	res := courseResponse{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Price:        c.Price,
		DisplayPrice: checkout.DisplayAmount(c.Price),
		Status:       c.Status,
		InstructorID: c.InstructorID,
		CreatedAt:    c.CreatedAt.Time.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Time.Format(time.RFC3339),
	}
	if c.CategoryID.Valid {
		id := uuid.UUID(c.CategoryID.Bytes)
		res.CategoryID = &id
	}
	return res
}

func canManage(identity auth.Identity, c database.Course) bool {
	return identity.IsAdmin() || identity.UserID == c.InstructorID
}

// loadCourse returns the course when the caller may see it. Unpublished
// courses are only visible to their owner and admins.
func (cfg *apiConfig) loadCourse(r *http.Request, courseID uuid.UUID) (database.Course, error) {
	course, err := cfg.db.GetCourse(r.Context(), courseID)
	if err != nil {
		if database.IsNotFound(err) {
			return database.Course{}, errNotFound
		}
		return database.Course{}, fmt.Errorf("failed to load course: %w", err)
	}
	if course.Status != database.CourseStatusPublished {
		identity, found := GetIdentity(r.Context())
		if !found || !canManage(identity, course) {
			return database.Course{}, errNotFound
		}
	}
	return course, nil
}

// loadManagedCourse returns the course when the caller owns it or is an admin.
func (cfg *apiConfig) loadManagedCourse(r *http.Request, courseID uuid.UUID) (database.Course, error) {
	identity, found := GetIdentity(r.Context())
	if !found {
		return database.Course{}, auth.ErrUnauthorized
	}
	course, err := cfg.db.GetCourse(r.Context(), courseID)
	if err != nil {
		if database.IsNotFound(err) {
			return database.Course{}, errNotFound
		}
		return database.Course{}, fmt.Errorf("failed to load course: %w", err)
	}
	if !canManage(identity, course) {
		return database.Course{}, errForbidden
	}
	return course, nil
}

func (cfg *apiConfig) handlerListCourses(r *http.Request) result {
	courses, err := cfg.db.ListPublishedCourses(r.Context())
	if err != nil {
		return errorFor(fmt.Errorf("failed to list courses: %w", err))
	}

	data := make([]courseResponse, 0, len(courses))
	for _, c := range courses {
		data = append(data, toCourseResponse(c))
	}
	return okResult(ApiResponse{Success: true, Data: data})
}

func (cfg *apiConfig) handlerGetCourse(r *http.Request) result {
	courseID, err := pathUUID(r, "id")
	if err != nil {
		return errorFor(err)
	}
	course, err := cfg.loadCourse(r, courseID)
	if err != nil {
		return errorFor(err)
	}

	lessons, err := cfg.db.ListCourseLessons(r.Context(), course.ID)
	if err != nil {
		return errorFor(fmt.Errorf("failed to list lessons: %w", err))
	}
	outline := make([]lessonOutline, 0, len(lessons))
	for _, l := range lessons {
		outline = append(outline, lessonOutline{ID: l.ID, Title: l.Title, Position: l.Position, IsPreview: l.IsPreview})
	}

	data := map[string]interface{}{
		"course":  toCourseResponse(course),
		"lessons": outline,
	}
	if identity, found := GetIdentity(r.Context()); found {
		enrolled, err := cfg.writer.IsEnrolled(r.Context(), identity.UserID, course.ID)
		if err != nil {
			return errorFor(fmt.Errorf("failed to check enrollment: %w", err))
		}
		data["enrolled"] = enrolled
	}

	return okResult(ApiResponse{Success: true, Data: data})
}

type createCourseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Price       int64  `json:"price" validate:"gte=0"`
	CategoryID  string `json:"category_id" validate:"omitempty,uuid"`
}

func (cfg *apiConfig) handlerCreateCourse(r *http.Request) result {
	identity, found := GetIdentity(r.Context())
	if !found {
		return errorFor(auth.ErrUnauthorized)
	}
	if !identity.CanAuthor() {
		return errorFor(errForbidden)
	}

	var params createCourseRequest
	if err := decodeJSON(r, &params); err != nil {
		return errorFor(err)
	}
	if err := cfg.validate.Struct(params); err != nil {
		return errorFor(err)
	}

	var category pgtype.UUID
	if params.CategoryID != "" {
		id, err := uuid.Parse(params.CategoryID)
		if err != nil {
			return errorFor(fmt.Errorf("%w: category_id", errInvalidBody))
		}
		category = pgtype.UUID{Bytes: id, Valid: true}
	}

	course, err := cfg.db.CreateCourse(r.Context(), database.CreateCourseParams{
		Title:        params.Title,
		Description:  params.Description,
		Price:        params.Price,
		InstructorID: identity.UserID,
		CategoryID:   category,
	})
	if err != nil {
		return errorFor(fmt.Errorf("failed to create course: %w", err))
	}

	return createdResult(ApiResponse{
		Success: true,
		Message: "Course created as draft",
		Data:    toCourseResponse(course),
	})
}

type updateCourseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Price       int64  `json:"price" validate:"gte=0"`
	Status      string `json:"status" validate:"required,oneof=draft published archived"`
}

func (cfg *apiConfig) handlerUpdateCourse(r *http.Request) result {
	courseID, err := pathUUID(r, "id")
	if err != nil {
		return errorFor(err)
	}
	if _, err := cfg.loadManagedCourse(r, courseID); err != nil {
		return errorFor(err)
	}

	var params updateCourseRequest
	if err := decodeJSON(r, &params); err != nil {
		return errorFor(err)
	}
	if err := cfg.validate.Struct(params); err != nil {
		return errorFor(err)
	}

	course, err := cfg.db.UpdateCourse(r.Context(), database.UpdateCourseParams{
		ID:          courseID,
		Title:       params.Title,
		Description: params.Description,
		Price:       params.Price,
		Status:      database.CourseStatus(params.Status),
	})
	if err != nil {
		if database.IsNotFound(err) {
			return errorFor(errNotFound)
		}
		return errorFor(fmt.Errorf("failed to update course: %w", err))
	}

	return okResult(ApiResponse{
		Success: true,
		Message: "Course updated",
		Data:    toCourseResponse(course),
	})
}
