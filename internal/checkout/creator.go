// Package checkout creates provider payment objects for a course purchase.
// The charged amount is always the stored course price.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mekazstan/course-marketplace-api/internal/auth"
	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/Mekazstan/course-marketplace-api/internal/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

var ErrInvalidRequest = errors.New("invalid checkout request")

const descriptionLimit = 100

type StripeSessions interface {
	CreateCheckoutSession(ctx context.Context, params payment.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type RazorpayOrders interface {
	CreateOrder(ctx context.Context, params payment.RazorpayOrderParams) (*payment.RazorpayOrder, error)
}

type Buyer struct {
	UserID uuid.UUID
	Email  string
}

// Order is the provider object handed back to the client to start payment.
type Order struct {
	Provider      payment.Provider `json:"provider"`
	ID            string           `json:"id"`
	Amount        int64            `json:"amount"`
	Currency      string           `json:"currency"`
	DisplayAmount string           `json:"display_amount"`
	Receipt       string           `json:"receipt,omitempty"`
	URL           string           `json:"url,omitempty"`
}

type Config struct {
	Currency string
	SiteURL  string
}

type Creator struct {
	store    database.Querier
	stripe   StripeSessions
	razorpay RazorpayOrders
	cfg      Config
	log      *zap.Logger
}

func NewCreator(store database.Querier, sessions StripeSessions, orders RazorpayOrders, cfg Config, log *zap.Logger) *Creator {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Creator{store: store, stripe: sessions, razorpay: orders, cfg: cfg, log: log}
}

func (c *Creator) CreateStripeSession(ctx context.Context, buyer Buyer, courseID uuid.UUID) (*Order, error) {
	course, err := c.purchasable(ctx, buyer, courseID)
	if err != nil {
		return nil, err
	}

	courseURL := c.cfg.SiteURL + "/courses/" + course.ID.String()
	sess, err := c.stripe.CreateCheckoutSession(ctx, payment.CheckoutSessionParams{
		CourseID:      course.ID.String(),
		UserID:        buyer.UserID.String(),
		Title:         course.Title,
		Description:   truncate(course.Description, descriptionLimit),
		Amount:        course.Price,
		Currency:      c.cfg.Currency,
		SuccessURL:    courseURL + "?success=true",
		CancelURL:     courseURL + "?canceled=true",
		CustomerEmail: buyer.Email,
		Metadata:      payment.Intent(buyer.UserID, course.ID),
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("stripe checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("course_id", course.ID.String()),
		zap.String("user_id", buyer.UserID.String()),
		zap.Int64("amount", course.Price),
	)

	return &Order{
		Provider:      payment.ProviderStripe,
		ID:            sess.ID,
		Amount:        course.Price,
		Currency:      c.cfg.Currency,
		DisplayAmount: DisplayAmount(course.Price),
		URL:           sess.URL,
	}, nil
}

func (c *Creator) CreateRazorpayOrder(ctx context.Context, buyer Buyer, courseID uuid.UUID) (*Order, error) {
	course, err := c.purchasable(ctx, buyer, courseID)
	if err != nil {
		return nil, err
	}

	receipt := Receipt(course.ID, buyer.UserID)
	order, err := c.razorpay.CreateOrder(ctx, payment.RazorpayOrderParams{
		Amount:   course.Price,
		Currency: c.cfg.Currency,
		Receipt:  receipt,
		Notes:    payment.Intent(buyer.UserID, course.ID),
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("razorpay order created",
		zap.String("order_id", order.ID),
		zap.String("course_id", course.ID.String()),
		zap.String("user_id", buyer.UserID.String()),
		zap.Int64("amount", course.Price),
	)

	return &Order{
		Provider:      payment.ProviderRazorpay,
		ID:            order.ID,
		Amount:        course.Price,
		Currency:      c.cfg.Currency,
		DisplayAmount: DisplayAmount(course.Price),
		Receipt:       receipt,
	}, nil
}

func (c *Creator) purchasable(ctx context.Context, buyer Buyer, courseID uuid.UUID) (database.Course, error) {
	if buyer.UserID == uuid.Nil {
		return database.Course{}, auth.ErrUnauthorized
	}
	if courseID == uuid.Nil {
		return database.Course{}, fmt.Errorf("%w: courseId is required", ErrInvalidRequest)
	}

	course, err := c.store.GetCourse(ctx, courseID)
	if err != nil {
		if database.IsNotFound(err) {
			return database.Course{}, fmt.Errorf("%w: course not found", ErrInvalidRequest)
		}
		return database.Course{}, fmt.Errorf("failed to load course: %w", err)
	}
	if course.Status != database.CourseStatusPublished {
		return database.Course{}, fmt.Errorf("%w: course is not available", ErrInvalidRequest)
	}
	if course.Price <= 0 {
		return database.Course{}, fmt.Errorf("%w: course is free", ErrInvalidRequest)
	}
	return course, nil
}

// Receipt builds the Razorpay receipt for a purchase. Razorpay caps receipts at 40 characters.
func Receipt(courseID, userID uuid.UUID) string {
	return "rcpt_" + courseID.String()[:8] + "_" + userID.String()[:8]
}

// DisplayAmount renders minor units as a decimal string, e.g. 4999 -> "49.99".
// Config rejects currencies that do not have two decimal places.
func DisplayAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
