package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	StripeEventCheckoutCompleted     = "checkout.session.completed"
	StripeEventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// BackendURL overrides the Stripe API host. Used by tests.
	BackendURL string
}

// StripeProvider wraps a per-provider Stripe API client. The client is built on
// first use so a process without Stripe credentials can still start.
type StripeProvider struct {
	cfg StripeConfig

	once sync.Once
	api  *client.API
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	return &StripeProvider{cfg: cfg}
}

func (s *StripeProvider) client() (*client.API, error) {
	if s.cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: STRIPE_SECRET_KEY", ErrMisconfiguredSecret)
	}
	s.once.Do(func() {
		var backends *stripe.Backends
		if s.cfg.BackendURL != "" {
			backends = &stripe.Backends{
				API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
					URL:               stripe.String(s.cfg.BackendURL),
					MaxNetworkRetries: stripe.Int64(0),
				}),
			}
		}
		s.api = client.New(s.cfg.SecretKey, backends)
	})
	return s.api, nil
}

type CheckoutSessionParams struct {
	CourseID      string
	UserID        string
	Title         string
	Description   string
	Amount        int64
	Currency      string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	api, err := s.client()
	if err != nil {
		return nil, err
	}

	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(params.Title),
	}
	if params.Description != "" {
		product.Description = stripe.String(params.Description)
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(params.Currency),
					ProductData: product,
					UnitAmount:  stripe.Int64(params.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		ClientReferenceID: stripe.String(params.UserID),
		Metadata:          params.Metadata,
	}
	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	sessionParams.Context = ctx

	sess, err := api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess, nil
}

// ConstructEvent verifies the Stripe-Signature envelope and decodes the event.
func (s *StripeProvider) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	if s.cfg.WebhookSecret == "" {
		return stripe.Event{}, fmt.Errorf("%w: STRIPE_WEBHOOK_SECRET", ErrMisconfiguredSecret)
	}
	if strings.TrimSpace(signature) == "" {
		return stripe.Event{}, fmt.Errorf("%w: missing Stripe-Signature header", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return event, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

// StripeCheckoutCompleted is the typed form of a checkout.session.* event.
type StripeCheckoutCompleted struct {
	EventID string
	Session stripe.CheckoutSession
}

// ParseCheckoutEvent decodes the checkout session carried by a verified event.
func ParseCheckoutEvent(event stripe.Event) (StripeCheckoutCompleted, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return StripeCheckoutCompleted{}, fmt.Errorf("%w: event has no data", ErrInvalidPayload)
	}
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return StripeCheckoutCompleted{}, fmt.Errorf("%w: checkout session: %v", ErrInvalidPayload, err)
	}
	return StripeCheckoutCompleted{EventID: event.ID, Session: sess}, nil
}

// Paid reports whether the session's funds have been captured. Delayed payment
// methods complete the session first and pay later.
func (e StripeCheckoutCompleted) Paid() bool {
	return e.Session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
}

func (e StripeCheckoutCompleted) Completion() (Completion, error) {
	if e.Session.ID == "" {
		return Completion{}, fmt.Errorf("%w: session id missing", ErrInvalidPayload)
	}
	userID, courseID, err := parseIntent(e.Session.Metadata)
	if err != nil {
		return Completion{}, err
	}

	email := e.Session.CustomerEmail
	if e.Session.CustomerDetails != nil && e.Session.CustomerDetails.Email != "" {
		email = e.Session.CustomerDetails.Email
	}

	var paymentID string
	if e.Session.PaymentIntent != nil {
		paymentID = e.Session.PaymentIntent.ID
	}

	return Completion{
		Provider:  ProviderStripe,
		UserID:    userID,
		CourseID:  courseID,
		OrderID:   e.Session.ID,
		PaymentID: paymentID,
		Amount:    e.Session.AmountTotal,
		Currency:  string(e.Session.Currency),
		Status:    string(e.Session.PaymentStatus),
		Email:     email,
	}, nil
}
