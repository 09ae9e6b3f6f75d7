package jobs

import (
	"context"
	"fmt"

	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/Mekazstan/course-marketplace-api/internal/enrollment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultReconcileBatch = 100

type PaymentLister interface {
	ListPaidPaymentsWithoutEnrollment(ctx context.Context, limit int32) ([]database.Payment, error)
}

type Enroller interface {
	RecordAndEnroll(ctx context.Context, userID, courseID uuid.UUID, meta enrollment.PaymentMeta) (enrollment.Outcome, error)
}

type ReconcileResult struct {
	Checked  int
	Enrolled int
	Failed   int
}

// ReconcilePaidEnrollments re-drives enrollment for paid payments that never
// produced one, e.g. when the enrollment insert failed after the payment was
// stored. One batch per run; rows that keep failing are retried next run.
func ReconcilePaidEnrollments(ctx context.Context, payments PaymentLister, writer Enroller, batch int32, log *zap.Logger) (ReconcileResult, error) {
	if batch <= 0 {
		batch = DefaultReconcileBatch
	}

	rows, err := payments.ListPaidPaymentsWithoutEnrollment(ctx, batch)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to list unreconciled payments: %w", err)
	}

	var res ReconcileResult
	for _, p := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++

		outcome, err := writer.RecordAndEnroll(ctx, p.UserID, p.CourseID, enrollment.PaymentMeta{
			Provider:  p.Provider,
			OrderID:   p.ProviderOrderID,
			PaymentID: p.ProviderPaymentID.String,
			Signature: p.Signature.String,
			Amount:    p.Amount,
			Currency:  p.Currency,
			Status:    p.Status,
		})
		if err != nil {
			res.Failed++
			log.Error("reconcile enrollment failed",
				zap.String("payment_id", p.ID.String()),
				zap.String("order_id", p.ProviderOrderID),
				zap.Error(err),
			)
			continue
		}
		if outcome == enrollment.Enrolled {
			res.Enrolled++
		}
	}

	log.Info("reconciliation finished",
		zap.Int("checked", res.Checked),
		zap.Int("enrolled", res.Enrolled),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}
