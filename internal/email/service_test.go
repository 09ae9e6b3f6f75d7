package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"

	"github.com/Mekazstan/course-marketplace-api/internal/database"
	"github.com/Mekazstan/course-marketplace-api/internal/database/dbtest"
	"github.com/Mekazstan/course-marketplace-api/internal/enrollment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

type mailbox struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mailbox) send(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
	return nil
}

func newTestService(t *testing.T, box *mailbox) *EmailService {
	t.Helper()
	service, err := NewEmailService(Config{
		Host:      "smtp.example.com",
		Port:      "587",
		Username:  "mailer",
		Password:  "password",
		FromEmail: "noreply@example.com",
		FromName:  "Course Marketplace",
	})
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}
	service.send = box.send
	return service
}

func TestSendEnrollmentReceipt(t *testing.T) {
	box := &mailbox{}
	service := newTestService(t, box)

	err := service.SendEnrollmentReceipt("learner@example.com", EnrollmentReceiptData{
		CourseTitle: "Go <Advanced>",
		CourseURL:   "https://courses.example.com/courses/1",
		Amount:      "49.99",
		Currency:    "USD",
		Provider:    "razorpay",
		OrderID:     "order_1",
	})
	if err != nil {
		t.Fatalf("SendEnrollmentReceipt() error = %v", err)
	}

	if len(box.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(box.sent))
	}
	mail := box.sent[0]
	if mail.addr != "smtp.example.com:587" || mail.from != "noreply@example.com" || mail.to[0] != "learner@example.com" {
		t.Errorf("unexpected envelope %+v", mail)
	}
	if !strings.Contains(mail.msg, "49.99 USD") {
		t.Error("expected amount in body")
	}
	if !strings.Contains(mail.msg, "Go &lt;Advanced&gt;") {
		t.Error("expected course title to be escaped")
	}
}

func TestSendEmailUnknownTemplate(t *testing.T) {
	service := newTestService(t, &mailbox{})
	if err := service.SendEmail(EmailData{To: "a@example.com", TemplateKey: "missing"}); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestSendEmailTransportError(t *testing.T) {
	box := &mailbox{err: errors.New("connection refused")}
	service := newTestService(t, box)
	if err := service.SendEnrollmentReceipt("a@example.com", EnrollmentReceiptData{CourseTitle: "Go"}); err == nil {
		t.Error("expected transport error")
	}
}

func TestReceiptNotifier(t *testing.T) {
	box := &mailbox{}
	service := newTestService(t, box)
	store := dbtest.New()
	course := store.AddCourse(database.Course{Title: "Go for Backend Engineers", Price: 4999})

	notifier := NewReceiptNotifier(service, store, "https://courses.example.com", zap.NewNop())
	notifier.EnrollmentCreated(context.Background(), enrollment.Receipt{
		UserID:   uuid.New(),
		CourseID: course.ID,
		Email:    "learner@example.com",
		Payment: enrollment.PaymentMeta{
			Provider: database.PaymentProviderStripe,
			OrderID:  "cs_test_1",
			Amount:   4999,
			Currency: "usd",
		},
	})
	notifier.Wait()

	if len(box.sent) != 1 {
		t.Fatalf("expected 1 receipt, got %d", len(box.sent))
	}
	if !strings.Contains(box.sent[0].msg, "Subject: You're enrolled in Go for Backend Engineers") {
		t.Errorf("unexpected message %s", box.sent[0].msg)
	}
	if !strings.Contains(box.sent[0].msg, "/courses/"+course.ID.String()) {
		t.Error("expected course link")
	}
}
