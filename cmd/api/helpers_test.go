package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mekazstan/course-marketplace-api/internal/auth"
	"github.com/Mekazstan/course-marketplace-api/internal/checkout"
	"github.com/Mekazstan/course-marketplace-api/internal/database/dbtest"
	"github.com/Mekazstan/course-marketplace-api/internal/dedupe"
	"github.com/Mekazstan/course-marketplace-api/internal/enrollment"
	"github.com/Mekazstan/course-marketplace-api/internal/payment"
	"github.com/Mekazstan/course-marketplace-api/internal/ratelimit"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	testJWTSecret             = "test-jwt-secret"
	testRazorpayKeyID         = "rzp_test_key"
	testRazorpaySecret        = "rzp_test_secret"
	testRazorpayWebhookSecret = "rzp_webhook_secret"
	testStripeWebhookSecret   = "whsec_test"
	testSiteURL               = "https://courses.example.com"
	testLoginURL              = "https://id.example.com/login"
)

var errFakeStore = errors.New("connection reset by peer")

type testOptions struct {
	rateLimit         int
	razorpayAPIBroken bool
}

// fakeRazorpay serves the subset of the Orders API the service uses.
type fakeRazorpay struct {
	mu     sync.Mutex
	orders map[string]payment.RazorpayOrder
	next   int
	broken bool
}

func (f *fakeRazorpay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if f.broken {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":{"code":"SERVER_ERROR","description":"upstream unavailable"}}`)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/orders":
		var params payment.RazorpayOrderParams
		json.NewDecoder(r.Body).Decode(&params)
		f.next++
		order := payment.RazorpayOrder{
			ID:        fmt.Sprintf("order_test%d", f.next),
			Entity:    "order",
			Amount:    params.Amount,
			AmountDue: params.Amount,
			Currency:  params.Currency,
			Receipt:   params.Receipt,
			Status:    "created",
			Notes:     params.Notes,
		}
		f.orders[order.ID] = order
		json.NewEncoder(w).Encode(order)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/orders/"):
		order, ok := f.orders[strings.TrimPrefix(r.URL.Path, "/v1/orders/")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"code":"BAD_REQUEST_ERROR","description":"The id provided does not exist"}}`)
			return
		}
		order.AmountPaid = order.Amount
		order.AmountDue = 0
		order.Status = "paid"
		json.NewEncoder(w).Encode(order)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeRazorpay) order(id string) (payment.RazorpayOrder, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	return order, ok
}

func (f *fakeRazorpay) seed(order payment.RazorpayOrder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.ID] = order
}

func (f *fakeRazorpay) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type testEnv struct {
	api      *apiConfig
	handler  http.Handler
	store    *dbtest.Store
	redis    *miniredis.Miniredis
	razorpay *fakeRazorpay
}

func newTestEnv(t *testing.T, opts testOptions) *testEnv {
	t.Helper()
	if opts.rateLimit == 0 {
		opts.rateLimit = 100
	}

	store := dbtest.New()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	rzp := &fakeRazorpay{orders: make(map[string]payment.RazorpayOrder), broken: opts.razorpayAPIBroken}
	rzpServer := httptest.NewServer(rzp)
	t.Cleanup(rzpServer.Close)

	stripeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_session","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_session"}`)
	}))
	t.Cleanup(stripeServer.Close)

	payments := payment.NewPaymentService(
		payment.StripeConfig{
			SecretKey:     "sk_test_123",
			WebhookSecret: testStripeWebhookSecret,
			BackendURL:    stripeServer.URL,
		},
		payment.RazorpayConfig{
			KeyID:         testRazorpayKeyID,
			KeySecret:     testRazorpaySecret,
			WebhookSecret: testRazorpayWebhookSecret,
			BaseURL:       rzpServer.URL,
		},
	)

	limiter, err := ratelimit.New(redisClient, "test:ratelimit", opts.rateLimit, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}

	logger := zap.NewNop()
	api := &apiConfig{
		db:        store,
		jwtSecret: testJWTSecret,
		siteURL:   testSiteURL,
		loginURL:  testLoginURL,
		log:       logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		payments:  payments,
		creator: checkout.NewCreator(store, payments.Stripe, payments.Razorpay, checkout.Config{
			Currency: "usd",
			SiteURL:  testSiteURL,
		}, logger),
		writer:   enrollment.NewWriter(store, logger),
		limiter:  limiter,
		webhooks: dedupe.New(redisClient, "test:webhook", time.Hour),
	}

	return &testEnv{api: api, handler: api.routes(), store: store, redis: mr, razorpay: rzp}
}

func tokenFor(t *testing.T, identity auth.Identity) string {
	t.Helper()
	token, err := auth.MakeJWT(identity, testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var res ErrorResponse
	decodeBody(t, rr, &res)
	return res.Error.Code
}

func stripeSignatureHeader(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
