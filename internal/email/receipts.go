package email

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Mekazstan/course-marketplace-api/internal/checkout"
	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/Mekazstan/course-marketplace-api/internal/enrollment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const receiptTimeout = 30 * time.Second

type CourseGetter interface {
	GetCourse(ctx context.Context, id uuid.UUID) (database.Course, error)
}

// ReceiptNotifier sends enrollment receipts in the background.
type ReceiptNotifier struct {
	service *EmailService
	courses CourseGetter
	siteURL string
	log     *zap.Logger
	wg      sync.WaitGroup
}

var _ enrollment.Notifier = (*ReceiptNotifier)(nil)

func NewReceiptNotifier(service *EmailService, courses CourseGetter, siteURL string, log *zap.Logger) *ReceiptNotifier {
	return &ReceiptNotifier{service: service, courses: courses, siteURL: siteURL, log: log}
}

func (n *ReceiptNotifier) EnrollmentCreated(_ context.Context, r enrollment.Receipt) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), receiptTimeout)
		defer cancel()

		log := n.log.With(zap.String("course_id", r.CourseID.String()), zap.String("order_id", r.Payment.OrderID))

		course, err := n.courses.GetCourse(ctx, r.CourseID)
		if err != nil {
			log.Warn("receipt skipped, course lookup failed", zap.Error(err))
			return
		}

		err = n.service.SendEnrollmentReceipt(r.Email, EnrollmentReceiptData{
			CourseTitle: course.Title,
			CourseURL:   n.siteURL + "/courses/" + course.ID.String(),
			Amount:      checkout.DisplayAmount(r.Payment.Amount),
			Currency:    strings.ToUpper(r.Payment.Currency),
			Provider:    string(r.Payment.Provider),
			OrderID:     r.Payment.OrderID,
		})
		if err != nil {
			log.Error("failed to send enrollment receipt", zap.Error(err))
			return
		}
		log.Info("enrollment receipt sent")
	}()
}

// Wait blocks until in-flight receipts have been attempted.
func (n *ReceiptNotifier) Wait() {
	n.wg.Wait()
}
