package main

import (
	"fmt"
	"net/http"

	"github.com/Mekazstan/course-marketplace-api/internal/auth"
	"github.com/Mekazstan/course-marketplace-api/internal/checkout"
	"github.com/google/uuid"
)

// Only the course id is read from the body; the amount always comes from the
// stored course.
type courseRequest struct {
	CourseID string `json:"courseId" validate:"required,uuid"`
}

func (cfg *apiConfig) parseCourseRequest(r *http.Request) (uuid.UUID, error) {
	var params courseRequest
	if err := decodeJSON(r, &params); err != nil {
		return uuid.Nil, err
	}
	if err := cfg.validate.Struct(params); err != nil {
		return uuid.Nil, err
	}
	courseID, err := uuid.Parse(params.CourseID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: courseId", errInvalidBody)
	}
	return courseID, nil
}

func buyerFrom(r *http.Request) (checkout.Buyer, error) {
	identity, found := GetIdentity(r.Context())
	if !found {
		return checkout.Buyer{}, auth.ErrUnauthorized
	}
	return checkout.Buyer{UserID: identity.UserID, Email: identity.Email}, nil
}

func (cfg *apiConfig) handlerCreateStripeSession(r *http.Request) result {
	buyer, err := buyerFrom(r)
	if err != nil {
		return errorFor(err)
	}
	courseID, err := cfg.parseCourseRequest(r)
	if err != nil {
		return errorFor(err)
	}

	order, err := cfg.creator.CreateStripeSession(r.Context(), buyer, courseID)
	if err != nil {
		return errorFor(err)
	}

	return okResult(map[string]interface{}{
		"sessionId": order.ID,
		"url":       order.URL,
		"amount":    order.Amount,
		"currency":  order.Currency,
	})
}

func (cfg *apiConfig) handlerCreateRazorpayOrder(r *http.Request) result {
	buyer, err := buyerFrom(r)
	if err != nil {
		return errorFor(err)
	}
	courseID, err := cfg.parseCourseRequest(r)
	if err != nil {
		return errorFor(err)
	}

	order, err := cfg.creator.CreateRazorpayOrder(r.Context(), buyer, courseID)
	if err != nil {
		return errorFor(err)
	}

	return okResult(map[string]interface{}{
		"id":             order.ID,
		"amount":         order.Amount,
		"currency":       order.Currency,
		"receipt":        order.Receipt,
		"display_amount": order.DisplayAmount,
		"key_id":         cfg.payments.Razorpay.KeyID(),
	})
}
