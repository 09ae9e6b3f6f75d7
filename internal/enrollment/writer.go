// Package enrollment grants course access. Enrollment is idempotent: the
// store's unique (user_id, course_id) constraint is the only guard against
// double enrollment, and losing that race is reported as AlreadyEnrolled.
package enrollment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

var (
	ErrEnrollmentFailed = errors.New("enrollment failed")
	ErrCourseNotFound   = errors.New("course not found")
	ErrNotFree          = errors.New("course is not free")
)

type Outcome int

const (
	Enrolled Outcome = iota + 1
	AlreadyEnrolled
)

func (o Outcome) String() string {
	switch o {
	case Enrolled:
		return "enrolled"
	case AlreadyEnrolled:
		return "already_enrolled"
	default:
		return "unknown"
	}
}

// PaymentMeta is the provider-sourced record of a verified payment.
type PaymentMeta struct {
	Provider  database.PaymentProvider
	OrderID   string
	PaymentID string
	Signature string
	Amount    int64
	Currency  string
	Status    string
	Email     string
}

// Receipt describes a newly created paid enrollment.
type Receipt struct {
	UserID   uuid.UUID
	CourseID uuid.UUID
	Email    string
	Payment  PaymentMeta
}

// Notifier is told about new paid enrollments. Implementations must not block.
type Notifier interface {
	EnrollmentCreated(ctx context.Context, r Receipt)
}

type Writer struct {
	store    database.Querier
	log      *zap.Logger
	notifier Notifier
}

func NewWriter(store database.Querier, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{store: store, log: log}
}

// WithNotifier returns a copy of w that reports new paid enrollments to n.
func (w *Writer) WithNotifier(n Notifier) *Writer {
	cp := *w
	cp.notifier = n
	return &cp
}

// RecordAndEnroll stores the payment (best effort) and then the enrollment.
func (w *Writer) RecordAndEnroll(ctx context.Context, userID, courseID uuid.UUID, meta PaymentMeta) (Outcome, error) {
	log := w.log.With(
		zap.String("user_id", userID.String()),
		zap.String("course_id", courseID.String()),
		zap.String("provider", string(meta.Provider)),
		zap.String("order_id", meta.OrderID),
	)

	if meta.Amount <= 0 {
		log.Warn("payment recorded without a positive amount", zap.Int64("amount", meta.Amount))
	}

	_, err := w.store.CreatePayment(ctx, database.CreatePaymentParams{
		UserID:            userID,
		CourseID:          courseID,
		Provider:          meta.Provider,
		ProviderOrderID:   meta.OrderID,
		ProviderPaymentID: text(meta.PaymentID),
		Signature:         text(meta.Signature),
		Amount:            meta.Amount,
		Currency:          meta.Currency,
		Status:            meta.Status,
	})
	switch {
	case err == nil:
	case database.IsUniqueViolation(err):
		log.Debug("payment already recorded")
	default:
		log.Error("failed to record payment", zap.Error(err))
	}

	outcome, err := w.enroll(ctx, userID, courseID)
	if err != nil {
		log.Error("failed to create enrollment", zap.Error(err))
		return 0, err
	}
	log.Info("paid enrollment processed", zap.Stringer("outcome", outcome))

	if outcome == Enrolled && w.notifier != nil && meta.Email != "" {
		w.notifier.EnrollmentCreated(ctx, Receipt{
			UserID:   userID,
			CourseID: courseID,
			Email:    meta.Email,
			Payment:  meta,
		})
	}
	return outcome, nil
}

// EnrollFree enrolls a user in a course whose price is zero. No payment is recorded.
func (w *Writer) EnrollFree(ctx context.Context, userID, courseID uuid.UUID) (Outcome, error) {
	course, err := w.store.GetCourse(ctx, courseID)
	if err != nil {
		if database.IsNotFound(err) {
			return 0, ErrCourseNotFound
		}
		return 0, fmt.Errorf("failed to load course: %w", err)
	}
	if course.Status != database.CourseStatusPublished {
		return 0, ErrCourseNotFound
	}
	if course.Price > 0 {
		return 0, ErrNotFree
	}

	outcome, err := w.enroll(ctx, userID, courseID)
	if err != nil {
		w.log.Error("failed to create free enrollment",
			zap.String("user_id", userID.String()),
			zap.String("course_id", courseID.String()),
			zap.Error(err),
		)
		return 0, err
	}
	return outcome, nil
}

func (w *Writer) enroll(ctx context.Context, userID, courseID uuid.UUID) (Outcome, error) {
	_, err := w.store.CreateEnrollment(ctx, database.CreateEnrollmentParams{
		UserID:   userID,
		CourseID: courseID,
		Status:   database.EnrollmentStatusActive,
	})
	if err == nil {
		return Enrolled, nil
	}
	if database.IsUniqueViolation(err) {
		return AlreadyEnrolled, nil
	}
	return 0, fmt.Errorf("%w: %v", ErrEnrollmentFailed, err)
}

// IsEnrolled reports whether an active enrollment exists.
func (w *Writer) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	_, err := w.store.GetEnrollment(ctx, database.GetEnrollmentParams{UserID: userID, CourseID: courseID})
	if err == nil {
		return true, nil
	}
	if database.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
