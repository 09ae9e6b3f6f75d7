package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Mekazstan/course-marketplace-api/internal/auth"
	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/google/uuid"
)

type lessonResponse struct {
	ID          uuid.UUID `json:"id"`
	CourseID    uuid.UUID `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	VideoURL    string    `json:"video_url,omitempty"`
	MeetLink    string    `json:"meet_link,omitempty"`
	IsPreview   bool      `json:"is_preview"`
	Position    int32     `json:"position"`
	CreatedAt   string    `json:"created_at"`
}

func toLessonResponse(l database.Lesson) lessonResponse {
	return lessonResponse{
		ID:          l.ID,
		CourseID:    l.CourseID,
		Title:       l.Title,
		Description: l.Description,
		Content:     l.Content,
		VideoURL:    l.VideoUrl,
		MeetLink:    l.MeetLink,
		IsPreview:   l.IsPreview,
		Position:    l.Position,
		CreatedAt:   l.CreatedAt.Time.Format(time.RFC3339),
	}
}

type lessonAccess struct {
	identity auth.Identity
	course   database.Course
	lesson   database.Lesson
}

// loadAccessibleLesson resolves a lesson the caller may open: enrolled
// learners, preview lessons, the course owner and admins.
func (cfg *apiConfig) loadAccessibleLesson(r *http.Request) (lessonAccess, error) {
	identity, found := GetIdentity(r.Context())
	if !found {
		return lessonAccess{}, auth.ErrUnauthorized
	}
	courseID, err := pathUUID(r, "id")
	if err != nil {
		return lessonAccess{}, err
	}
	lessonID, err := pathUUID(r, "lessonId")
	if err != nil {
		return lessonAccess{}, err
	}

	course, err := cfg.loadCourse(r, courseID)
	if err != nil {
		return lessonAccess{}, err
	}
	lesson, err := cfg.db.GetLesson(r.Context(), database.GetLessonParams{ID: lessonID, CourseID: course.ID})
	if err != nil {
		if database.IsNotFound(err) {
			return lessonAccess{}, errNotFound
		}
		return lessonAccess{}, fmt.Errorf("failed to load lesson: %w", err)
	}

	access := lessonAccess{identity: identity, course: course, lesson: lesson}
	if lesson.IsPreview || canManage(identity, course) {
		return access, nil
	}
	enrolled, err := cfg.writer.IsEnrolled(r.Context(), identity.UserID, course.ID)
	if err != nil {
		return lessonAccess{}, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return lessonAccess{}, errForbidden
	}
	return access, nil
}

func (cfg *apiConfig) handlerGetLesson(r *http.Request) result {
	access, err := cfg.loadAccessibleLesson(r)
	if err != nil {
		return errorFor(err)
	}

	lessons, err := cfg.db.ListCourseLessons(r.Context(), access.course.ID)
	if err != nil {
		return errorFor(fmt.Errorf("failed to list lessons: %w", err))
	}
	var prev, next *lessonOutline
	for i, l := range lessons {
		if l.ID != access.lesson.ID {
			continue
		}
		if i > 0 {
			p := lessons[i-1]
			prev = &lessonOutline{ID: p.ID, Title: p.Title, Position: p.Position, IsPreview: p.IsPreview}
		}
		if i < len(lessons)-1 {
			n := lessons[i+1]
			next = &lessonOutline{ID: n.ID, Title: n.Title, Position: n.Position, IsPreview: n.IsPreview}
		}
		break
	}

	completed := false
	progress, err := cfg.db.GetLessonProgress(r.Context(), database.GetLessonProgressParams{
		UserID:   access.identity.UserID,
		LessonID: access.lesson.ID,
	})
	switch {
	case err == nil:
		completed = progress.Completed
	case !database.IsNotFound(err):
		return errorFor(fmt.Errorf("failed to load progress: %w", err))
	}

	return okResult(ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"lesson":    toLessonResponse(access.lesson),
			"completed": completed,
			"prev":      prev,
			"next":      next,
		},
	})
}

type createLessonRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Content     string `json:"content"`
	VideoURL    string `json:"video_url" validate:"omitempty,url"`
	MeetLink    string `json:"meet_link" validate:"omitempty,url"`
	IsPreview   bool   `json:"is_preview"`
	Position    int32  `json:"position" validate:"gte=0"`
}

func (cfg *apiConfig) handlerCreateLesson(r *http.Request) result {
	courseID, err := pathUUID(r, "id")
	if err != nil {
		return errorFor(err)
	}
	course, err := cfg.loadManagedCourse(r, courseID)
	if err != nil {
		return errorFor(err)
	}

	var params createLessonRequest
	if err := decodeJSON(r, &params); err != nil {
		return errorFor(err)
	}
	if err := cfg.validate.Struct(params); err != nil {
		return errorFor(err)
	}

	lesson, err := cfg.db.CreateLesson(r.Context(), database.CreateLessonParams{
		CourseID:    course.ID,
		Title:       params.Title,
		Description: params.Description,
		Content:     params.Content,
		VideoUrl:    params.VideoURL,
		MeetLink:    params.MeetLink,
		IsPreview:   params.IsPreview,
		Position:    params.Position,
	})
	if err != nil {
		return errorFor(fmt.Errorf("failed to create lesson: %w", err))
	}

	return createdResult(ApiResponse{
		Success: true,
		Message: "Lesson created",
		Data:    toLessonResponse(lesson),
	})
}

func (cfg *apiConfig) handlerDeleteLesson(r *http.Request) result {
	courseID, err := pathUUID(r, "id")
	if err != nil {
		return errorFor(err)
	}
	lessonID, err := pathUUID(r, "lessonId")
	if err != nil {
		return errorFor(err)
	}
	if _, err := cfg.loadManagedCourse(r, courseID); err != nil {
		return errorFor(err)
	}

	deleted, err := cfg.db.DeleteLesson(r.Context(), database.DeleteLessonParams{ID: lessonID, CourseID: courseID})
	if err != nil {
		return errorFor(fmt.Errorf("failed to delete lesson: %w", err))
	}
	if deleted == 0 {
		return errorFor(errNotFound)
	}

	return okResult(ApiResponse{Success: true, Message: "Lesson deleted"})
}

type progressRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

func (cfg *apiConfig) handlerUpdateProgress(r *http.Request) result {
	access, err := cfg.loadAccessibleLesson(r)
	if err != nil {
		return errorFor(err)
	}

	var params progressRequest
	if err := decodeJSON(r, &params); err != nil {
		return errorFor(err)
	}
	if err := cfg.validate.Struct(params); err != nil {
		return errorFor(err)
	}

	progress, err := cfg.db.UpsertLessonProgress(r.Context(), database.UpsertLessonProgressParams{
		UserID:    access.identity.UserID,
		LessonID:  access.lesson.ID,
		Completed: *params.Completed,
	})
	if err != nil {
		return errorFor(fmt.Errorf("failed to save progress: %w", err))
	}

	return okResult(ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"lesson_id":  progress.LessonID,
			"completed":  progress.Completed,
			"updated_at": progress.UpdatedAt.Time.Format(time.RFC3339),
		},
	})
}
