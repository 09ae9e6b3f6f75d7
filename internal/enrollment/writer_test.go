package enrollment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/Mekazstan/course-marketplace-api/internal/database/dbtest"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu       sync.Mutex
	receipts []Receipt
}

func (n *recordingNotifier) EnrollmentCreated(ctx context.Context, r Receipt) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, r)
}

func paidMeta(orderID string) PaymentMeta {
	return PaymentMeta{
		Provider:  database.PaymentProviderRazorpay,
		OrderID:   orderID,
		PaymentID: "pay_1",
		Signature: "sig",
		Amount:    4999,
		Currency:  "usd",
		Status:    "paid",
		Email:     "learner@example.com",
	}
}

func TestRecordAndEnrollIsIdempotent(t *testing.T) {
	store := dbtest.New()
	course := store.AddCourse(database.Course{Title: "Go", Price: 4999})
	notifier := &recordingNotifier{}
	w := NewWriter(store, zap.NewNop()).WithNotifier(notifier)
	userID := uuid.New()
	ctx := context.Background()

	first, err := w.RecordAndEnroll(ctx, userID, course.ID, paidMeta("order_1"))
	if err != nil {
		t.Fatalf("first enrollment failed: %v", err)
	}
	if first != Enrolled {
		t.Errorf("expected Enrolled, got %s", first)
	}

	second, err := w.RecordAndEnroll(ctx, userID, course.ID, paidMeta("order_1"))
	if err != nil {
		t.Fatalf("second enrollment failed: %v", err)
	}
	if second != AlreadyEnrolled {
		t.Errorf("expected AlreadyEnrolled, got %s", second)
	}

	if n := len(store.Enrollments()); n != 1 {
		t.Errorf("expected 1 enrollment, got %d", n)
	}
	payments := store.Payments()
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
	if payments[0].Amount != 4999 || payments[0].Status != "paid" || payments[0].ProviderPaymentID.String != "pay_1" {
		t.Errorf("unexpected payment %+v", payments[0])
	}
	if len(notifier.receipts) != 1 {
		t.Errorf("expected 1 receipt, got %d", len(notifier.receipts))
	}
}

func TestRecordAndEnrollConcurrent(t *testing.T) {
	store := dbtest.New()
	course := store.AddCourse(database.Course{Title: "Go", Price: 4999})
	w := NewWriter(store, zap.NewNop())
	userID := uuid.New()

	const workers = 16
	var wg sync.WaitGroup
	outcomes := make(chan Outcome, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := w.RecordAndEnroll(context.Background(), userID, course.ID, paidMeta("order_race"))
			if err != nil {
				errs <- err
				return
			}
			outcomes <- o
		}()
	}
	wg.Wait()
	close(outcomes)
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	enrolled := 0
	for o := range outcomes {
		if o == Enrolled {
			enrolled++
		}
	}
	if enrolled != 1 {
		t.Errorf("expected exactly one Enrolled outcome, got %d", enrolled)
	}
	if n := len(store.Enrollments()); n != 1 {
		t.Errorf("expected 1 enrollment, got %d", n)
	}
}

func TestRecordAndEnrollPaymentFailureDoesNotBlock(t *testing.T) {
	store := dbtest.New()
	store.PaymentErr = errors.New("connection reset")
	course := store.AddCourse(database.Course{Title: "Go", Price: 4999})
	w := NewWriter(store, zap.NewNop())

	outcome, err := w.RecordAndEnroll(context.Background(), uuid.New(), course.ID, paidMeta("order_2"))
	if err != nil {
		t.Fatalf("expected enrollment despite payment failure, got %v", err)
	}
	if outcome != Enrolled {
		t.Errorf("expected Enrolled, got %s", outcome)
	}
	if len(store.Payments()) != 0 {
		t.Error("expected no payment row")
	}
}

func TestRecordAndEnrollStoreFailure(t *testing.T) {
	store := dbtest.New()
	store.EnrollmentErr = errors.New("connection refused")
	course := store.AddCourse(database.Course{Title: "Go", Price: 4999})
	w := NewWriter(store, zap.NewNop())

	_, err := w.RecordAndEnroll(context.Background(), uuid.New(), course.ID, paidMeta("order_3"))
	if !errors.Is(err, ErrEnrollmentFailed) {
		t.Errorf("expected ErrEnrollmentFailed, got %v", err)
	}
}

func TestEnrollFree(t *testing.T) {
	store := dbtest.New()
	free := store.AddCourse(database.Course{Title: "Intro", Price: 0})
	paid := store.AddCourse(database.Course{Title: "Advanced", Price: 4999})
	draft := store.AddCourse(database.Course{Title: "Draft", Price: 0, Status: database.CourseStatusDraft})
	w := NewWriter(store, zap.NewNop())
	userID := uuid.New()
	ctx := context.Background()

	tests := []struct {
		name     string
		courseID uuid.UUID
		want     Outcome
		wantErr  error
	}{
		{"Free course", free.ID, Enrolled, nil},
		{"Free course again", free.ID, AlreadyEnrolled, nil},
		{"Paid course", paid.ID, 0, ErrNotFree},
		{"Draft course", draft.ID, 0, ErrCourseNotFound},
		{"Missing course", uuid.New(), 0, ErrCourseNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := w.EnrollFree(ctx, userID, tt.courseID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	if len(store.Payments()) != 0 {
		t.Error("free enrollment must not create a payment")
	}
	enrolled, err := w.IsEnrolled(ctx, userID, free.ID)
	if err != nil || !enrolled {
		t.Errorf("expected enrolled, got %v (%v)", enrolled, err)
	}
}
