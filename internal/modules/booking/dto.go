package booking

import "astrobooking/internal/domain"

type SelectTypeRequest struct {
	TypeID string `json:"type_id" binding:"required"`
}

type SelectDateRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD in the booking time zone
}

type SelectTimeRequest struct {
	Time string `json:"time" binding:"required"`
}

type ContactRequest = domain.Contact

// CheckoutCompleteRequest carries the widget's success handler payload as-is.
type CheckoutCompleteRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

type CheckoutFailedRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Reason  string `json:"reason"`
}

type CheckoutDismissedRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

type SessionResponse struct {
	Session View `json:"session"`
}
