package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

type Config struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	cfg       Config
	templates map[string]*template.Template
	send      sendFunc
}

type EmailData struct {
	To          string
	Subject     string
	TemplateKey string
	Data        interface{}
}

const templateEnrollmentReceipt = "enrollment_receipt"

func NewEmailService(cfg Config) (*EmailService, error) {
	service := &EmailService{
		cfg:       cfg,
		templates: make(map[string]*template.Template),
		send:      smtp.SendMail,
	}

	if err := service.loadTemplates(); err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return service, nil
}

func (s *EmailService) loadTemplates() error {
	templates := map[string]string{
		templateEnrollmentReceipt: enrollmentReceiptTemplate,
	}

	for key, body := range templates {
		tmpl, err := template.New(key).Parse(body)
		if err != nil {
			return fmt.Errorf("template %s: %w", key, err)
		}
		s.templates[key] = tmpl
	}

	return nil
}

func (s *EmailService) SendEmail(data EmailData) error {
	tmpl, ok := s.templates[data.TemplateKey]
	if !ok {
		return fmt.Errorf("template %s not found", data.TemplateKey)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data.Data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	message := fmt.Sprintf("From: %s <%s>\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s", s.cfg.FromName, s.cfg.FromEmail, data.To, data.Subject, body.String())

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	if err := s.send(addr, auth, s.cfg.FromEmail, []string{data.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

type EnrollmentReceiptData struct {
	CourseTitle string
	CourseURL   string
	Amount      string
	Currency    string
	Provider    string
	OrderID     string
}

func (s *EmailService) SendEnrollmentReceipt(to string, data EnrollmentReceiptData) error {
	return s.SendEmail(EmailData{
		To:          to,
		Subject:     fmt.Sprintf("You're enrolled in %s", data.CourseTitle),
		TemplateKey: templateEnrollmentReceipt,
		Data:        data,
	})
}

const enrollmentReceiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Enrollment receipt</title>
</head>
<body>
    <h1>Welcome to {{.CourseTitle}}</h1>
    <p>Your payment of {{.Amount}} {{.Currency}} was received.</p>
    <table>
        <tr><td>Provider</td><td>{{.Provider}}</td></tr>
        <tr><td>Order</td><td>{{.OrderID}}</td></tr>
    </table>
    <p><a href="{{.CourseURL}}">Start learning</a></p>
</body>
</html>
`
