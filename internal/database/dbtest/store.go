// Package dbtest provides an in-memory database.Querier for tests. It enforces
// the same uniqueness constraints as the Postgres schema and reports violations
// with the same SQLSTATE, so callers exercise their real error paths.
package dbtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type enrollmentKey struct {
	userID   uuid.UUID
	courseID uuid.UUID
}

type paymentKey struct {
	provider database.PaymentProvider
	orderID  string
}

type progressKey struct {
	userID   uuid.UUID
	lessonID uuid.UUID
}

// Store is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	courses     map[uuid.UUID]database.Course
	lessons     []database.Lesson
	enrollments map[enrollmentKey]database.Enrollment
	payments    []database.Payment
	paymentKeys map[paymentKey]struct{}
	progress    map[progressKey]database.LessonProgress

	// Injected failures, returned instead of performing the write.
	EnrollmentErr error
	PaymentErr    error
	CourseErr     error
}

var _ database.Querier = (*Store)(nil)

func New() *Store {
	return &Store{
		courses:     make(map[uuid.UUID]database.Course),
		enrollments: make(map[enrollmentKey]database.Enrollment),
		paymentKeys: make(map[paymentKey]struct{}),
		progress:    make(map[progressKey]database.LessonProgress),
	}
}

func now() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

// AddCourse seeds a course and returns it with defaults filled in.
func (s *Store) AddCourse(c database.Course) database.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = database.CourseStatusPublished
	}
	if c.InstructorID == uuid.Nil {
		c.InstructorID = uuid.New()
	}
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	s.courses[c.ID] = c
	return c
}

// AddLesson seeds a lesson.
func (s *Store) AddLesson(l database.Lesson) database.Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.CreatedAt = now()
	s.lessons = append(s.lessons, l)
	return l
}

// Enrollments returns every enrollment row.
func (s *Store) Enrollments() []database.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]database.Enrollment, 0, len(s.enrollments))
	for _, e := range s.enrollments {
		out = append(out, e)
	}
	return out
}

// Payments returns every payment row in insertion order.
func (s *Store) Payments() []database.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]database.Payment(nil), s.payments...)
}

func (s *Store) CreateCourse(ctx context.Context, arg database.CreateCourseParams) (database.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CourseErr != nil {
		return database.Course{}, s.CourseErr
	}
	c := database.Course{
		ID:           uuid.New(),
		Title:        arg.Title,
		Description:  arg.Description,
		Price:        arg.Price,
		Status:       database.CourseStatusDraft,
		InstructorID: arg.InstructorID,
		CategoryID:   arg.CategoryID,
		CreatedAt:    now(),
	}
	c.UpdatedAt = c.CreatedAt
	s.courses[c.ID] = c
	return c, nil
}

func (s *Store) GetCourse(ctx context.Context, id uuid.UUID) (database.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CourseErr != nil {
		return database.Course{}, s.CourseErr
	}
	c, ok := s.courses[id]
	if !ok {
		return database.Course{}, pgx.ErrNoRows
	}
	return c, nil
}

func (s *Store) ListPublishedCourses(ctx context.Context) ([]database.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.Course
	for _, c := range s.courses {
		if c.Status == database.CourseStatusPublished {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Time.After(out[j].CreatedAt.Time)
	})
	return out, nil
}

func (s *Store) UpdateCourse(ctx context.Context, arg database.UpdateCourseParams) (database.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[arg.ID]
	if !ok {
		return database.Course{}, pgx.ErrNoRows
	}
	c.Title = arg.Title
	c.Description = arg.Description
	c.Price = arg.Price
	c.Status = arg.Status
	c.UpdatedAt = now()
	s.courses[c.ID] = c
	return c, nil
}

func (s *Store) CreateLesson(ctx context.Context, arg database.CreateLessonParams) (database.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[arg.CourseID]; !ok {
		return database.Lesson{}, &pgconn.PgError{Code: "23503", Message: "lessons_course_id_fkey"}
	}
	l := database.Lesson{
		ID:          uuid.New(),
		CourseID:    arg.CourseID,
		Title:       arg.Title,
		Description: arg.Description,
		Content:     arg.Content,
		VideoUrl:    arg.VideoUrl,
		MeetLink:    arg.MeetLink,
		IsPreview:   arg.IsPreview,
		Position:    arg.Position,
		CreatedAt:   now(),
	}
	s.lessons = append(s.lessons, l)
	return l, nil
}

func (s *Store) GetLesson(ctx context.Context, arg database.GetLessonParams) (database.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lessons {
		if l.ID == arg.ID && l.CourseID == arg.CourseID {
			return l, nil
		}
	}
	return database.Lesson{}, pgx.ErrNoRows
}

func (s *Store) ListCourseLessons(ctx context.Context, courseID uuid.UUID) ([]database.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.Lesson
	for _, l := range s.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	// Stable sort keeps insertion order for equal positions.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (s *Store) DeleteLesson(ctx context.Context, arg database.DeleteLessonParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.lessons {
		if l.ID == arg.ID && l.CourseID == arg.CourseID {
			s.lessons = append(s.lessons[:i], s.lessons[i+1:]...)
			for k := range s.progress {
				if k.lessonID == l.ID {
					delete(s.progress, k)
				}
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, arg database.CreateEnrollmentParams) (database.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EnrollmentErr != nil {
		return database.Enrollment{}, s.EnrollmentErr
	}
	key := enrollmentKey{userID: arg.UserID, courseID: arg.CourseID}
	if _, exists := s.enrollments[key]; exists {
		return database.Enrollment{}, uniqueViolation("enrollments_user_id_course_id_key")
	}
	e := database.Enrollment{
		ID:        uuid.New(),
		UserID:    arg.UserID,
		CourseID:  arg.CourseID,
		Status:    arg.Status,
		CreatedAt: now(),
	}
	s.enrollments[key] = e
	return e, nil
}

func (s *Store) GetEnrollment(ctx context.Context, arg database.GetEnrollmentParams) (database.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[enrollmentKey{userID: arg.UserID, courseID: arg.CourseID}]
	if !ok {
		return database.Enrollment{}, pgx.ErrNoRows
	}
	return e, nil
}

func (s *Store) ListUserEnrollments(ctx context.Context, userID uuid.UUID) ([]database.ListUserEnrollmentsRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.ListUserEnrollmentsRow
	for key, e := range s.enrollments {
		if key.userID != userID {
			continue
		}
		row := database.ListUserEnrollmentsRow{
			ID:          e.ID,
			UserID:      e.UserID,
			CourseID:    e.CourseID,
			Status:      e.Status,
			CreatedAt:   e.CreatedAt,
			CourseTitle: s.courses[e.CourseID].Title,
		}
		for _, l := range s.lessons {
			if l.CourseID != e.CourseID {
				continue
			}
			row.TotalLessons++
			if p, ok := s.progress[progressKey{userID: userID, lessonID: l.ID}]; ok && p.Completed {
				row.CompletedLessons++
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Time.After(out[j].CreatedAt.Time)
	})
	return out, nil
}

func (s *Store) CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PaymentErr != nil {
		return database.Payment{}, s.PaymentErr
	}
	key := paymentKey{provider: arg.Provider, orderID: arg.ProviderOrderID}
	if _, exists := s.paymentKeys[key]; exists {
		return database.Payment{}, uniqueViolation("payments_provider_provider_order_id_key")
	}
	p := database.Payment{
		ID:                uuid.New(),
		UserID:            arg.UserID,
		CourseID:          arg.CourseID,
		Provider:          arg.Provider,
		ProviderOrderID:   arg.ProviderOrderID,
		ProviderPaymentID: arg.ProviderPaymentID,
		Signature:         arg.Signature,
		Amount:            arg.Amount,
		Currency:          arg.Currency,
		Status:            arg.Status,
		CreatedAt:         now(),
	}
	s.paymentKeys[key] = struct{}{}
	s.payments = append(s.payments, p)
	return p, nil
}

func (s *Store) ListPaidPaymentsWithoutEnrollment(ctx context.Context, limit int32) ([]database.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.Payment
	for _, p := range s.payments {
		if int32(len(out)) >= limit {
			break
		}
		if p.Status != "paid" {
			continue
		}
		if _, enrolled := s.enrollments[enrollmentKey{userID: p.UserID, courseID: p.CourseID}]; enrolled {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) UpsertLessonProgress(ctx context.Context, arg database.UpsertLessonProgressParams) (database.LessonProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := database.LessonProgress{
		UserID:    arg.UserID,
		LessonID:  arg.LessonID,
		Completed: arg.Completed,
		UpdatedAt: now(),
	}
	s.progress[progressKey{userID: arg.UserID, lessonID: arg.LessonID}] = p
	return p, nil
}

func (s *Store) GetLessonProgress(ctx context.Context, arg database.GetLessonProgressParams) (database.LessonProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[progressKey{userID: arg.UserID, lessonID: arg.LessonID}]
	if !ok {
		return database.LessonProgress{}, pgx.ErrNoRows
	}
	return p, nil
}
