package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestNotesDecodesEmptyArray(t *testing.T) {
	var order RazorpayOrder
	if err := json.Unmarshal([]byte(`{"id":"order_1","notes":[]}`), &order); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if order.Notes == nil || len(order.Notes) != 0 {
		t.Errorf("expected empty notes, got %#v", order.Notes)
	}

	if err := json.Unmarshal([]byte(`{"id":"order_1","notes":{"courseId":"c"}}`), &order); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if order.Notes["courseId"] != "c" {
		t.Errorf("expected courseId note, got %#v", order.Notes)
	}
}

func TestRazorpayOrders(t *testing.T) {
	userID := uuid.New()
	courseID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "rzp_test_secret" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/orders":
			var params RazorpayOrderParams
			if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if params.Amount != 4999 || params.Currency != "USD" {
				t.Errorf("unexpected order params %+v", params)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id": "order_1", "entity": "order", "amount": params.Amount, "amount_paid": 0,
				"amount_due": params.Amount, "currency": params.Currency, "receipt": params.Receipt,
				"status": "created", "notes": params.Notes,
			})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/orders/order_1":
			fmt.Fprintf(w, `{"id":"order_1","entity":"order","amount":4999,"amount_paid":4999,"currency":"USD","status":"paid","notes":{"courseId":%q,"userId":%q}}`, courseID, userID)
		default:
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"code":"BAD_REQUEST_ERROR","description":"The id provided does not exist"}}`)
		}
	}))
	defer server.Close()

	provider := NewRazorpayProvider(RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "rzp_test_secret", BaseURL: server.URL})
	ctx := context.Background()

	order, err := provider.CreateOrder(ctx, RazorpayOrderParams{
		Amount:   4999,
		Currency: "usd",
		Receipt:  "rcpt_abc",
		Notes:    Intent(userID, courseID),
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.ID != "order_1" || order.Receipt != "rcpt_abc" || order.Notes[MetadataCourseID] != courseID.String() {
		t.Errorf("unexpected order %+v", order)
	}

	fetched, err := provider.FetchOrder(ctx, "order_1")
	if err != nil {
		t.Fatalf("FetchOrder failed: %v", err)
	}

	v := RazorpayVerification{OrderID: "order_1", PaymentID: "pay_1"}
	v.Signature = SignPayment(v.OrderID, v.PaymentID, "rzp_test_secret")
	if err := provider.VerifyPayment(v); err != nil {
		t.Fatalf("VerifyPayment failed: %v", err)
	}
	c, err := v.Completion(*fetched)
	if err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	if c.UserID != userID || c.CourseID != courseID || c.Amount != 4999 || c.Currency != "usd" || c.Status != StatusPaid {
		t.Errorf("unexpected completion %+v", c)
	}

	if _, err := provider.FetchOrder(ctx, "order_missing"); err == nil {
		t.Error("expected error for unknown order")
	}
}

func TestRazorpayMissingCredentials(t *testing.T) {
	provider := NewRazorpayProvider(RazorpayConfig{})
	if _, err := provider.CreateOrder(context.Background(), RazorpayOrderParams{Amount: 100}); !errors.Is(err, ErrMisconfiguredSecret) {
		t.Errorf("expected ErrMisconfiguredSecret, got %v", err)
	}
}

func TestRazorpayWebhookEvent(t *testing.T) {
	secret := "rzp_webhook_secret"
	userID := uuid.New()
	courseID := uuid.New()
	body := []byte(fmt.Sprintf(`{
		"event": "order.paid",
		"payload": {
			"payment": {"entity": {"id": "pay_9", "order_id": "order_9", "amount": 4999, "currency": "USD", "status": "captured", "email": "learner@example.com"}},
			"order": {"entity": {"id": "order_9", "amount": 4999, "amount_paid": 4999, "currency": "USD", "status": "paid", "notes": {"courseId": %q, "userId": %q}}}
		},
		"created_at": 1700000000
	}`, courseID, userID))

	provider := NewRazorpayProvider(RazorpayConfig{WebhookSecret: secret})

	event, err := provider.ConstructWebhookEvent(body, SignWebhook(body, secret))
	if err != nil {
		t.Fatalf("ConstructWebhookEvent failed: %v", err)
	}
	if event.Event != RazorpayEventOrderPaid {
		t.Errorf("expected order.paid, got %s", event.Event)
	}
	c, err := event.Completion()
	if err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
	if c.OrderID != "order_9" || c.PaymentID != "pay_9" || c.Amount != 4999 || c.Currency != "usd" || c.Email != "learner@example.com" {
		t.Errorf("unexpected completion %+v", c)
	}

	if _, err := provider.ConstructWebhookEvent(body, SignWebhook(body, "wrong")); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}

	empty := []byte(`{"event":"order.paid","payload":{"order":{"entity":{"id":"order_9","notes":[]}}}}`)
	event, err = provider.ConstructWebhookEvent(empty, SignWebhook(empty, secret))
	if err != nil {
		t.Fatalf("ConstructWebhookEvent failed: %v", err)
	}
	if _, err := event.Completion(); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload for empty notes, got %v", err)
	}
}
