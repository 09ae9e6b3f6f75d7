package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	razorpayAPIBase = "https://api.razorpay.com"

	RazorpayEventOrderPaid = "order.paid"
)

type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	// BaseURL overrides the Razorpay API host. Used by tests.
	BaseURL string
}

// RazorpayProvider talks to the Razorpay Orders API over REST. The HTTP client
// is created once on first use.
type RazorpayProvider struct {
	cfg RazorpayConfig

	once sync.Once
	http *resty.Client
}

func NewRazorpayProvider(cfg RazorpayConfig) *RazorpayProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = razorpayAPIBase
	}
	return &RazorpayProvider{cfg: cfg}
}

// KeyID is the public key the browser checkout needs.
func (p *RazorpayProvider) KeyID() string {
	return p.cfg.KeyID
}

func (p *RazorpayProvider) client() (*resty.Client, error) {
	if p.cfg.KeyID == "" || p.cfg.KeySecret == "" {
		return nil, fmt.Errorf("%w: RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET", ErrMisconfiguredSecret)
	}
	p.once.Do(func() {
		p.http = resty.New().
			SetBaseURL(strings.TrimSuffix(p.cfg.BaseURL, "/")).
			SetBasicAuth(p.cfg.KeyID, p.cfg.KeySecret).
			SetHeader("Content-Type", "application/json").
			SetTimeout(20 * time.Second)
	})
	return p.http, nil
}

// Notes decodes Razorpay's notes field, which is an empty JSON array when unset.
type Notes map[string]string

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || trimmed[0] == '[' {
		*n = Notes{}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*n = m
	return nil
}

type RazorpayOrderParams struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Notes    Notes  `json:"notes"`
}

type RazorpayOrder struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	Notes      Notes  `json:"notes"`
	CreatedAt  int64  `json:"created_at"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (p *RazorpayProvider) CreateOrder(ctx context.Context, params RazorpayOrderParams) (*RazorpayOrder, error) {
	rc, err := p.client()
	if err != nil {
		return nil, err
	}

	params.Currency = strings.ToUpper(params.Currency)

	var order RazorpayOrder
	var apiErr razorpayErrorResponse
	resp, err := rc.R().
		SetContext(ctx).
		SetBody(params).
		SetResult(&order).
		SetError(&apiErr).
		Post("/v1/orders")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("razorpay error (%d): %s %s", resp.StatusCode(), apiErr.Error.Code, apiErr.Error.Description)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay error: order id missing from response")
	}

	return &order, nil
}

func (p *RazorpayProvider) FetchOrder(ctx context.Context, orderID string) (*RazorpayOrder, error) {
	rc, err := p.client()
	if err != nil {
		return nil, err
	}

	var order RazorpayOrder
	var apiErr razorpayErrorResponse
	resp, err := rc.R().
		SetContext(ctx).
		SetPathParam("id", orderID).
		SetResult(&order).
		SetError(&apiErr).
		Get("/v1/orders/{id}")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("razorpay error (%d): %s %s", resp.StatusCode(), apiErr.Error.Code, apiErr.Error.Description)
	}

	return &order, nil
}

// RazorpayVerification is the client-submitted proof of a completed checkout.
type RazorpayVerification struct {
	OrderID   string
	PaymentID string
	Signature string
}

func (p *RazorpayProvider) VerifyPayment(v RazorpayVerification) error {
	return VerifyPaymentSignature(v.OrderID, v.PaymentID, v.Signature, p.cfg.KeySecret)
}

// Completion combines a verified checkout with the order it paid for. The
// order's notes are authoritative for the enrolling user and course.
func (v RazorpayVerification) Completion(order RazorpayOrder) (Completion, error) {
	userID, courseID, err := parseIntent(order.Notes)
	if err != nil {
		return Completion{}, err
	}
	amount := order.AmountPaid
	if amount == 0 {
		amount = order.Amount
	}
	return Completion{
		Provider:  ProviderRazorpay,
		UserID:    userID,
		CourseID:  courseID,
		OrderID:   v.OrderID,
		PaymentID: v.PaymentID,
		Signature: v.Signature,
		Amount:    amount,
		Currency:  strings.ToLower(order.Currency),
		Status:    StatusPaid,
	}, nil
}

type razorpayPaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Email    string `json:"email"`
}

// RazorpayWebhookEvent is the typed envelope of a Razorpay webhook delivery.
type RazorpayWebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity razorpayPaymentEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity RazorpayOrder `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// ConstructWebhookEvent verifies the X-Razorpay-Signature header and decodes the body.
func (p *RazorpayProvider) ConstructWebhookEvent(body []byte, signature string) (RazorpayWebhookEvent, error) {
	var event RazorpayWebhookEvent
	if err := VerifyWebhookSignature(body, signature, p.cfg.WebhookSecret); err != nil {
		return event, err
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return event, nil
}

func (e RazorpayWebhookEvent) Completion() (Completion, error) {
	order := e.Payload.Order.Entity
	pay := e.Payload.Payment.Entity
	if order.ID == "" {
		return Completion{}, fmt.Errorf("%w: order entity missing", ErrInvalidPayload)
	}
	userID, courseID, err := parseIntent(order.Notes)
	if err != nil {
		return Completion{}, err
	}

	amount := pay.Amount
	if amount == 0 {
		amount = order.AmountPaid
	}
	currency := pay.Currency
	if currency == "" {
		currency = order.Currency
	}

	return Completion{
		Provider:  ProviderRazorpay,
		UserID:    userID,
		CourseID:  courseID,
		OrderID:   order.ID,
		PaymentID: pay.ID,
		Amount:    amount,
		Currency:  strings.ToLower(currency),
		Status:    StatusPaid,
		Email:     pay.Email,
	}, nil
}
