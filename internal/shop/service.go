package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/keyvend/keyvend/internal/intent"
	"github.com/keyvend/keyvend/internal/inventory"
	"github.com/keyvend/keyvend/internal/ledger"
	"github.com/keyvend/keyvend/internal/metrics"
	"github.com/keyvend/keyvend/internal/notification"
)

var (
	// ErrInvalidTier occurs when a purchase names a tier without a price.
	ErrInvalidTier = errors.New("unrecognized tier")
	// ErrOutOfStock occurs when the tier's key queue is empty. The debited
	// amount has already been refunded when this is returned.
	ErrOutOfStock = errors.New("tier out of stock")
)

// Service composes the ledger, inventory, and intent tracker into the
// user-facing deposit, balance, and purchase operations.
type Service struct {
	ledger    ledger.Ledger
	inventory inventory.Store
	tracker   intent.Tracker
	notifier  notification.Notifier
	prices    map[string]int64
	intentTTL time.Duration

	// bankAccount is baked into the deposit QR payload so the user's
	// banking app can prefill the transfer.
	bankAccount string

	// strictAmount mirrors the reconciler policy: when set, deposits must
	// declare the amount up front so the webhook can verify it.
	strictAmount bool

	logger *slog.Logger
}

// NewService builds the shop service. prices is the tier price table and
// doubles as the recognized tier set.
func NewService(l ledger.Ledger, inv inventory.Store, tr intent.Tracker, n notification.Notifier, prices map[string]int64, intentTTL time.Duration, bankAccount string, strictAmount bool, logger *slog.Logger) *Service {
	return &Service{
		ledger:       l,
		inventory:    inv,
		tracker:      tr,
		notifier:     n,
		prices:       prices,
		intentTTL:    intentTTL,
		bankAccount:  bankAccount,
		strictAmount: strictAmount,
		logger:       logger,
	}
}

// PurchaseResult is what a successful purchase hands back: the key exactly once.
type PurchaseResult struct {
	ReceiptID  string
	Tier       string
	Price      int64
	Key        string
	NewBalance int64
}

// Purchase debits the tier price and allocates one key. An empty tier is
// reported before the ledger is touched; when stock empties between that
// check and allocation, the debit is refunded before ErrOutOfStock is
// reported. Either way a failed purchase never moves the balance.
func (s *Service) Purchase(ctx context.Context, user, tier string) (PurchaseResult, error) {
	price, ok := s.prices[tier]
	if !ok {
		metrics.Purchases.WithLabelValues("invalid_tier").Inc()
		return PurchaseResult{}, ErrInvalidTier
	}

	remaining, err := s.inventory.Remaining(ctx, tier)
	if err != nil {
		return PurchaseResult{}, err
	}
	if remaining == 0 {
		metrics.Purchases.WithLabelValues("out_of_stock").Inc()
		return PurchaseResult{}, ErrOutOfStock
	}

	balance, err := s.ledger.Debit(ctx, user, price)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			metrics.Purchases.WithLabelValues("insufficient_funds").Inc()
		}
		return PurchaseResult{}, err
	}

	key, err := s.inventory.TakeOne(ctx, tier)
	if err != nil {
		if errors.Is(err, inventory.ErrEmpty) {
			if _, refundErr := s.ledger.Credit(ctx, user, price); refundErr != nil {
				// Refund failure leaves the user short; surface loudly.
				s.logger.Error("refund after out-of-stock failed",
					"user", user, "tier", tier, "amount", price, "error", refundErr)
				return PurchaseResult{}, fmt.Errorf("refund after out-of-stock: %w", refundErr)
			}
			metrics.Purchases.WithLabelValues("out_of_stock").Inc()
			return PurchaseResult{}, ErrOutOfStock
		}
		return PurchaseResult{}, err
	}

	result := PurchaseResult{
		ReceiptID:  uuid.NewString(),
		Tier:       tier,
		Price:      price,
		Key:        key,
		NewBalance: balance,
	}

	metrics.Purchases.WithLabelValues("delivered").Inc()

	if sendErr := s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindKeyDelivered,
		Destination: user,
		Body:        fmt.Sprintf("Key for tier %s delivered, receipt %s", tier, result.ReceiptID),
	}); sendErr != nil {
		s.logger.Warn("key delivery notification failed", "user", user, "error", sendErr)
	}

	return result, nil
}

// DepositResult carries everything the user needs to wire the transfer.
type DepositResult struct {
	Code      string
	Amount    int64
	ExpiresAt time.Time
	QRPNG     []byte
}

// RequestDeposit registers a pending deposit and returns the memo code plus
// a QR of the transfer reference. In strict-amount mode the amount is
// required; otherwise zero means "any amount".
func (s *Service) RequestDeposit(ctx context.Context, user string, amount int64) (DepositResult, error) {
	if amount < 0 || (s.strictAmount && amount == 0) {
		return DepositResult{}, ledger.ErrInvalidAmount
	}

	it, err := s.tracker.Create(ctx, user, amount)
	if err != nil {
		return DepositResult{}, fmt.Errorf("create intent: %w", err)
	}

	png, err := qrcode.Encode(s.qrPayload(it.Code, amount), qrcode.Medium, 256)
	if err != nil {
		// The code alone is enough to complete the transfer.
		s.logger.Warn("deposit qr encode failed", "code", it.Code, "error", err)
		png = nil
	}

	return DepositResult{
		Code:      it.Code,
		Amount:    amount,
		ExpiresAt: it.CreatedAt.Add(s.intentTTL),
		QRPNG:     png,
	}, nil
}

// BalanceOf reports the user's current balance.
func (s *Service) BalanceOf(ctx context.Context, user string) (int64, error) {
	return s.ledger.Balance(ctx, user)
}

// AddKeys appends keys to a tier's queue (admin operation).
func (s *Service) AddKeys(ctx context.Context, tier string, keys []string) error {
	return s.inventory.AddKeys(ctx, tier, keys)
}

// Remaining reports how many keys a tier has left (admin operation).
func (s *Service) Remaining(ctx context.Context, tier string) (int, error) {
	return s.inventory.Remaining(ctx, tier)
}

// Price returns the configured price for a tier.
func (s *Service) Price(tier string) (int64, bool) {
	price, ok := s.prices[tier]
	return price, ok
}

func (s *Service) qrPayload(code string, amount int64) string {
	if s.bankAccount == "" {
		return code
	}
	if amount > 0 {
		return fmt.Sprintf("%s|%d|%s", s.bankAccount, amount, code)
	}
	return fmt.Sprintf("%s|%s", s.bankAccount, code)
}
