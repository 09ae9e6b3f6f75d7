package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SignPayment returns the hex HMAC-SHA256 Razorpay issues to the client for a
// completed checkout: HMAC(orderID + "|" + paymentID, keySecret).
func SignPayment(orderID, paymentID, secret string) string {
	return sign([]byte(orderID+"|"+paymentID), secret)
}

// VerifyPaymentSignature checks a client-submitted Razorpay checkout signature.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) error {
	if secret == "" {
		return ErrMisconfiguredSecret
	}
	if orderID == "" || paymentID == "" {
		return fmt.Errorf("%w: order and payment ids are required", ErrInvalidSignature)
	}
	return verify([]byte(orderID+"|"+paymentID), signature, secret)
}

// SignWebhook returns the hex HMAC-SHA256 of a raw webhook body.
func SignWebhook(body []byte, secret string) string {
	return sign(body, secret)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the raw body.
func VerifyWebhookSignature(body []byte, signature, secret string) error {
	if secret == "" {
		return ErrMisconfiguredSecret
	}
	return verify(body, signature, secret)
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// verify compares the supplied signature to the expected lowercase hex digest
// byte for byte. Hex is not decoded first, so a case change is a mismatch.
func verify(payload []byte, signature, secret string) error {
	expected := sign(payload, secret)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}
	return nil
}
