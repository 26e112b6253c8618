// services/payments.go
package services

import (
	"log"

	"salonbook-backend/models"
)

// RefundLogger is the default payment collaborator: the gateway call is
// external to this system, so the stand-in just records that a refund
// was requested. The booking cancel flow has already marked the payment
// REFUNDED in its own transaction.
type RefundLogger struct{}

func (RefundLogger) RequestRefund(payment models.Payment) error {
	log.Printf("Refund requested for payment %s (booking %s, amount %.2f, provider %s)",
		payment.ID, payment.BookingID, payment.Amount, payment.Provider)
	return nil
}
