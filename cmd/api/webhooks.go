package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Mekazstan/course-marketplace-api/internal/payment"
	"go.uber.org/zap"
)

// Stripe documents 64KB as the upper bound for event payloads.
const maxWebhookBytes = 64 << 10

var webhookReceived = map[string]bool{"received": true}

func readWebhookBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if len(body) > maxWebhookBytes {
		return nil, fmt.Errorf("%w: payload too large", errInvalidBody)
	}
	return body, nil
}

// alreadyProcessed consults the delivery log. Lookup failures fall through to
// normal processing.
func (cfg *apiConfig) alreadyProcessed(ctx context.Context, provider payment.Provider, eventID string) bool {
	seen, err := cfg.webhooks.Seen(ctx, string(provider), eventID)
	if err != nil {
		cfg.log.Warn("webhook dedupe lookup failed", zap.String("provider", string(provider)), zap.Error(err))
		return false
	}
	return seen
}

func (cfg *apiConfig) markProcessed(ctx context.Context, provider payment.Provider, eventID string) {
	if _, err := cfg.webhooks.Mark(ctx, string(provider), eventID); err != nil {
		cfg.log.Warn("webhook dedupe record failed", zap.String("provider", string(provider)), zap.Error(err))
	}
}

func (cfg *apiConfig) handlerStripeWebhook(r *http.Request) result {
	payload, err := readWebhookBody(r)
	if err != nil {
		return errorFor(err)
	}

	event, err := cfg.payments.Stripe.ConstructEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		cfg.log.Warn("stripe webhook rejected", zap.Error(err))
		return errorFor(err)
	}

	log := cfg.log.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))

	if cfg.alreadyProcessed(r.Context(), payment.ProviderStripe, event.ID) {
		log.Debug("stripe event already processed")
		return okResult(webhookReceived)
	}

	switch string(event.Type) {
	case payment.StripeEventCheckoutCompleted, payment.StripeEventAsyncPaymentSucceeded:
		checkoutEvent, err := payment.ParseCheckoutEvent(event)
		if err != nil {
			return errorFor(err)
		}
		if !checkoutEvent.Paid() {
			log.Info("checkout session not paid yet", zap.String("payment_status", string(checkoutEvent.Session.PaymentStatus)))
			return okResult(webhookReceived)
		}

		completion, err := checkoutEvent.Completion()
		if err != nil {
			return errorFor(err)
		}
		if _, err := cfg.writer.RecordAndEnroll(r.Context(), completion.UserID, completion.CourseID, paymentMeta(completion)); err != nil {
			return errorFor(err)
		}
	default:
		log.Debug("stripe event ignored")
	}

	cfg.markProcessed(r.Context(), payment.ProviderStripe, event.ID)
	return okResult(webhookReceived)
}

func (cfg *apiConfig) handlerRazorpayWebhook(r *http.Request) result {
	body, err := readWebhookBody(r)
	if err != nil {
		return errorFor(err)
	}

	event, err := cfg.payments.Razorpay.ConstructWebhookEvent(body, r.Header.Get("X-Razorpay-Signature"))
	if err != nil {
		cfg.log.Warn("razorpay webhook rejected", zap.Error(err))
		return errorFor(err)
	}

	eventID := r.Header.Get("X-Razorpay-Event-Id")
	log := cfg.log.With(zap.String("event_id", eventID), zap.String("event_type", event.Event))

	if cfg.alreadyProcessed(r.Context(), payment.ProviderRazorpay, eventID) {
		log.Debug("razorpay event already processed")
		return okResult(webhookReceived)
	}

	switch event.Event {
	case payment.RazorpayEventOrderPaid:
		completion, err := event.Completion()
		if err != nil {
			return errorFor(err)
		}
		if _, err := cfg.writer.RecordAndEnroll(r.Context(), completion.UserID, completion.CourseID, paymentMeta(completion)); err != nil {
			return errorFor(err)
		}
	default:
		log.Debug("razorpay event ignored")
	}

	cfg.markProcessed(r.Context(), payment.ProviderRazorpay, eventID)
	return okResult(webhookReceived)
}
