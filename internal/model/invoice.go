package model

import "time"

// Invoice statuses.
const (
	InvoiceDraft = "Draft"
	InvoiceSent  = "Sent"
	InvoicePaid  = "Paid"
)

// Invoice is a billing record for a customer.
type Invoice struct {
	ID            string    `json:"id"`
	Number        string    `json:"number"`
	WorkspaceID   string    `json:"workspaceId,omitempty"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail,omitempty"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
