package payment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Provider string

const (
	ProviderStripe   Provider = "stripe"
	ProviderRazorpay Provider = "razorpay"
)

const (
	MetadataCourseID = "courseId"
	MetadataUserID   = "userId"

	StatusPaid = "paid"
)

// Completion is a verified, validated payment completion for one provider
// object. It carries everything the enrollment writer needs.
type Completion struct {
	Provider  Provider
	UserID    uuid.UUID
	CourseID  uuid.UUID
	OrderID   string
	PaymentID string
	Signature string
	Amount    int64
	Currency  string
	Status    string
	Email     string
}

// Intent returns the metadata attached to a provider object at creation time.
func Intent(userID, courseID uuid.UUID) map[string]string {
	return map[string]string{
		MetadataCourseID: courseID.String(),
		MetadataUserID:   userID.String(),
	}
}

func parseIntent(metadata map[string]string) (userID, courseID uuid.UUID, err error) {
	userID, err = uuid.Parse(strings.TrimSpace(metadata[MetadataUserID]))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: metadata userId: %v", ErrInvalidPayload, err)
	}
	courseID, err = uuid.Parse(strings.TrimSpace(metadata[MetadataCourseID]))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: metadata courseId: %v", ErrInvalidPayload, err)
	}
	return userID, courseID, nil
}
