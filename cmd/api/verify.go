package main

import (
	"fmt"
	"net/http"

	"github.com/Mekazstan/course-marketplace-api/internal/auth"
	"github.com/Mekazstan/course-marketplace-api/internal/checkout"
	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/Mekazstan/course-marketplace-api/internal/enrollment"
	"github.com/Mekazstan/course-marketplace-api/internal/payment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type razorpayVerifyRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
	CourseID  string `json:"courseId" validate:"required,uuid"`
}

// handlerRazorpayVerify enrolls the caller after the browser checkout reports
// success. The signature proves the order/payment pair; the order itself,
// fetched from Razorpay, is authoritative for amount and intent.
func (cfg *apiConfig) handlerRazorpayVerify(r *http.Request) result {
	identity, found := GetIdentity(r.Context())
	if !found {
		return errorFor(auth.ErrUnauthorized)
	}

	var params razorpayVerifyRequest
	if err := decodeJSON(r, &params); err != nil {
		return errorFor(err)
	}
	if err := cfg.validate.Struct(params); err != nil {
		return errorFor(err)
	}
	courseID, err := uuid.Parse(params.CourseID)
	if err != nil {
		return errorFor(fmt.Errorf("%w: courseId", errInvalidBody))
	}

	verification := payment.RazorpayVerification{
		OrderID:   params.OrderID,
		PaymentID: params.PaymentID,
		Signature: params.Signature,
	}
	rzp := cfg.payments.Razorpay
	if err := rzp.VerifyPayment(verification); err != nil {
		cfg.log.Warn("razorpay signature rejected",
			zap.String("order_id", params.OrderID),
			zap.String("user_id", identity.UserID.String()),
			zap.Error(err),
		)
		return errorFor(err)
	}

	// The signature does not cover the course, so without the order's notes
	// there is no way to tell what was paid for. The client retries, and the
	// order.paid webhook carries the notes.
	order, err := rzp.FetchOrder(r.Context(), params.OrderID)
	if err != nil {
		cfg.log.Warn("razorpay order lookup failed",
			zap.String("order_id", params.OrderID),
			zap.Error(err),
		)
		return errorFor(fmt.Errorf("failed to fetch razorpay order: %w", err))
	}
	completion, err := verification.Completion(*order)
	if err != nil {
		return errorFor(err)
	}
	if completion.UserID != identity.UserID || completion.CourseID != courseID {
		return errorFor(fmt.Errorf("%w: order does not belong to this purchase", checkout.ErrInvalidRequest))
	}
	completion.Email = identity.Email

	if _, err := cfg.writer.RecordAndEnroll(r.Context(), completion.UserID, completion.CourseID, paymentMeta(completion)); err != nil {
		return errorFor(err)
	}

	return okResult(map[string]bool{"success": true})
}

func paymentMeta(c payment.Completion) enrollment.PaymentMeta {
	return enrollment.PaymentMeta{
		Provider:  database.PaymentProvider(c.Provider),
		OrderID:   c.OrderID,
		PaymentID: c.PaymentID,
		Signature: c.Signature,
		Amount:    c.Amount,
		Currency:  c.Currency,
		Status:    c.Status,
		Email:     c.Email,
	}
}
