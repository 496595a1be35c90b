// internal/domain/billing/entity.go
package billing

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	UserName  string        `json:"user_name"`
	Plan      string        `json:"plan,omitempty"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Method    string        `json:"method"`
	Reference string        `json:"reference,omitempty"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Refundable reports whether a refund may be requested for the payment.
func (p Payment) Refundable() bool {
	return p.Status == PaymentCompleted
}

// UpdatePaymentRequest corrects a payment record by hand.
type UpdatePaymentRequest struct {
	Status    PaymentStatus `json:"status,omitempty"`
	Reference string        `json:"reference,omitempty"`
	Note      string        `json:"note,omitempty"`
}
