package backend

// Order is the gateway order issued by the backend.
type Order struct {
	ID               string `json:"id"`
	AmountMinorUnits int64  `json:"amount"`
	Currency         string `json:"currency"`
}

// Verification is the triple returned by the checkout widget on completion.
type Verification struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type VerifyResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
