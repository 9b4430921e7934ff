package webhook

import (
	"encoding/json"
	"errors"
	"math"
)

var (
	// ErrMalformed occurs when the body is not parseable JSON.
	ErrMalformed = errors.New("malformed notification body")
	// ErrMissingField occurs when a required field is absent from the payload.
	ErrMissingField = errors.New("notification missing required field")
	// ErrInvalidAmount occurs when the amount field is not a positive integer.
	ErrInvalidAmount = errors.New("notification amount invalid")
)

// Notification is the canonical form of an inbound payment event, produced
// before any business logic runs.
type Notification struct {
	Description   string
	Amount        int64
	TransactionID string // optional; empty when the provider sent none
	Status        string // optional; empty when the provider sent none
}

// payload mirrors the union of field names observed across bank webhook
// providers. Providers disagree on spelling; only one alias per concern is
// expected to be set.
type payload struct {
	Description     string   `json:"description"`
	Content         string   `json:"content"`
	TransferContent string   `json:"transferContent"`
	TransferAmount  *float64 `json:"transferAmount"`
	Amount          *float64 `json:"amount"`
	ID              string   `json:"id"`
	TransactionID   string   `json:"transactionId"`
	ReferenceCode   string   `json:"referenceCode"`
	Status          string   `json:"status"`
	TransferStatus  string   `json:"transferStatus"`
}

// Normalize parses a raw webhook body into a canonical Notification,
// resolving field aliases and validating the required fields.
func Normalize(body []byte) (Notification, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Notification{}, ErrMalformed
	}

	description := firstNonEmpty(p.Description, p.Content, p.TransferContent)
	if description == "" {
		return Notification{}, ErrMissingField
	}

	raw := p.TransferAmount
	if raw == nil {
		raw = p.Amount
	}
	if raw == nil {
		return Notification{}, ErrMissingField
	}
	if math.IsNaN(*raw) || math.IsInf(*raw, 0) {
		return Notification{}, ErrInvalidAmount
	}
	amount := int64(*raw)
	if float64(amount) != *raw || amount <= 0 {
		return Notification{}, ErrInvalidAmount
	}

	return Notification{
		Description:   description,
		Amount:        amount,
		TransactionID: firstNonEmpty(p.TransactionID, p.ID, p.ReferenceCode),
		Status:        firstNonEmpty(p.Status, p.TransferStatus),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
