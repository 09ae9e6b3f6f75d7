package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func stripeSignatureHeader(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeCreateCheckoutSession(t *testing.T) {
	userID := uuid.New()
	courseID := uuid.New()

	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = map[string]string{
			"amount":   r.PostForm.Get("line_items[0][price_data][unit_amount]"),
			"currency": r.PostForm.Get("line_items[0][price_data][currency]"),
			"course":   r.PostForm.Get("metadata[courseId]"),
			"user":     r.PostForm.Get("metadata[userId]"),
			"ref":      r.PostForm.Get("client_reference_id"),
			"mode":     r.PostForm.Get("mode"),
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_123","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_123"}`)
	}))
	defer server.Close()

	provider := NewStripeProvider(StripeConfig{SecretKey: "sk_test_123", BackendURL: server.URL})
	sess, err := provider.CreateCheckoutSession(context.Background(), CheckoutSessionParams{
		CourseID:   courseID.String(),
		UserID:     userID.String(),
		Title:      "Go for Backend Engineers",
		Amount:     4999,
		Currency:   "usd",
		SuccessURL: "https://example.com/courses/x?success=true",
		CancelURL:  "https://example.com/courses/x?canceled=true",
		Metadata:   Intent(userID, courseID),
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession failed: %v", err)
	}
	if sess.ID != "cs_test_123" {
		t.Errorf("expected session id cs_test_123, got %s", sess.ID)
	}

	want := map[string]string{
		"amount":   "4999",
		"currency": "usd",
		"course":   courseID.String(),
		"user":     userID.String(),
		"ref":      userID.String(),
		"mode":     "payment",
	}
	for k, v := range want {
		if gotForm[k] != v {
			t.Errorf("form %s: expected %q, got %q", k, v, gotForm[k])
		}
	}
}

func TestStripeMissingSecretKey(t *testing.T) {
	provider := NewStripeProvider(StripeConfig{})
	_, err := provider.CreateCheckoutSession(context.Background(), CheckoutSessionParams{Amount: 100, Currency: "usd"})
	if !errors.Is(err, ErrMisconfiguredSecret) {
		t.Errorf("expected ErrMisconfiguredSecret, got %v", err)
	}
}

func TestStripeConstructEvent(t *testing.T) {
	secret := "whsec_test"
	userID := uuid.New()
	courseID := uuid.New()
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"payment_status": "paid",
			"amount_total": 4999,
			"currency": "usd",
			"payment_intent": "pi_1",
			"customer_details": {"email": "learner@example.com"},
			"metadata": {"courseId": %q, "userId": %q}
		}}
	}`, courseID, userID))

	provider := NewStripeProvider(StripeConfig{WebhookSecret: secret})

	t.Run("Valid event", func(t *testing.T) {
		event, err := provider.ConstructEvent(payload, stripeSignatureHeader(payload, secret))
		if err != nil {
			t.Fatalf("ConstructEvent failed: %v", err)
		}
		checkout, err := ParseCheckoutEvent(event)
		if err != nil {
			t.Fatalf("ParseCheckoutEvent failed: %v", err)
		}
		if !checkout.Paid() {
			t.Error("expected session to be paid")
		}
		c, err := checkout.Completion()
		if err != nil {
			t.Fatalf("Completion failed: %v", err)
		}
		if c.UserID != userID || c.CourseID != courseID {
			t.Errorf("unexpected intent %s/%s", c.UserID, c.CourseID)
		}
		if c.OrderID != "cs_test_1" || c.PaymentID != "pi_1" || c.Amount != 4999 || c.Email != "learner@example.com" {
			t.Errorf("unexpected completion %+v", c)
		}
	})

	t.Run("Wrong secret", func(t *testing.T) {
		_, err := provider.ConstructEvent(payload, stripeSignatureHeader(payload, "whsec_other"))
		if !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature, got %v", err)
		}
	})

	t.Run("Missing header", func(t *testing.T) {
		_, err := provider.ConstructEvent(payload, "")
		if !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("expected ErrInvalidSignature, got %v", err)
		}
	})

	t.Run("Missing webhook secret", func(t *testing.T) {
		_, err := NewStripeProvider(StripeConfig{}).ConstructEvent(payload, stripeSignatureHeader(payload, secret))
		if !errors.Is(err, ErrMisconfiguredSecret) {
			t.Errorf("expected ErrMisconfiguredSecret, got %v", err)
		}
	})
}

func TestStripeCompletionRequiresMetadata(t *testing.T) {
	checkout := StripeCheckoutCompleted{}
	checkout.Session.ID = "cs_test_1"
	checkout.Session.Metadata = map[string]string{MetadataCourseID: "not-a-uuid"}

	if _, err := checkout.Completion(); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}
