package shop

import "time"

// DepositRequest captures a user's request to top up their balance.
type DepositRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Amount int64  `json:"amount" validate:"omitempty,gt=0"`
}

// DepositResponse returns the transfer memo code and QR for the bank app.
type DepositResponse struct {
	Code      string    `json:"code"`
	Amount    int64     `json:"amount,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	QRPNG     []byte    `json:"qr_png,omitempty"`
}

// PurchaseRequest captures a key purchase attempt.
type PurchaseRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Tier   string `json:"tier" validate:"required"`
}

// PurchaseResponse returns the allocated key and the post-purchase balance.
type PurchaseResponse struct {
	ReceiptID  string `json:"receipt_id"`
	Tier       string `json:"tier"`
	Price      int64  `json:"price"`
	Key        string `json:"key"`
	NewBalance int64  `json:"new_balance"`
}

// AddKeysRequest captures an admin restock.
type AddKeysRequest struct {
	Keys []string `json:"keys" validate:"required,min=1,dive,required"`
}
