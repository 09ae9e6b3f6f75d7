package payment

// PaymentService groups the configured provider clients. It is built once per
// process and injected into the components that need it.
type PaymentService struct {
	Stripe   *StripeProvider
	Razorpay *RazorpayProvider
}

func NewPaymentService(stripeCfg StripeConfig, razorpayCfg RazorpayConfig) *PaymentService {
	return &PaymentService{
		Stripe:   NewStripeProvider(stripeCfg),
		Razorpay: NewRazorpayProvider(razorpayCfg),
	}
}
