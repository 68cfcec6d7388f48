package payment

import "astrobooking/internal/domain"

type AttemptResponse struct {
	Attempt *domain.PaymentAttempt `json:"attempt"`
}

type AttemptListResponse struct {
	Attempts []domain.PaymentAttempt `json:"attempts"`
}
