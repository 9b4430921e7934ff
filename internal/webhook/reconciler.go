package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/keyvend/keyvend/internal/dedup"
	"github.com/keyvend/keyvend/internal/intent"
	"github.com/keyvend/keyvend/internal/ledger"
	"github.com/keyvend/keyvend/internal/metrics"
	"github.com/keyvend/keyvend/internal/notification"
)

// Outcome names the terminal state a notification reached.
type Outcome string

const (
	OutcomeCredited       Outcome = "credited"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeIgnoredStatus  Outcome = "ignored_status"
	OutcomeNoMatch        Outcome = "no_match"
	OutcomeAmountMismatch Outcome = "amount_mismatch"
)

// Result reports what the reconciler did with a notification.
type Result struct {
	Outcome    Outcome
	User       string
	Code       string
	Amount     int64
	NewBalance int64
}

// Reconciler matches inbound payment notifications to pending deposit
// intents and applies credits exactly once per external transaction.
type Reconciler struct {
	ledger       ledger.Ledger
	tracker      intent.Tracker
	recorder     dedup.Recorder
	notifier     notification.Notifier
	strictAmount bool
	successState string
	logger       *slog.Logger
}

// NewReconciler wires the reconciliation pipeline. strictAmount enforces the
// intent's expected amount; successState is the sentinel an optional status
// field must carry.
func NewReconciler(l ledger.Ledger, t intent.Tracker, r dedup.Recorder, n notification.Notifier, strictAmount bool, successState string, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		ledger:       l,
		tracker:      t,
		recorder:     r,
		notifier:     n,
		strictAmount: strictAmount,
		successState: successState,
		logger:       logger,
	}
}

// Process runs a normalized notification through the gates: status check,
// dedup, intent match, amount check, then credit. Every early exit is a
// no-op on shared state. Errors mean storage trouble, never a business
// mismatch.
func (r *Reconciler) Process(ctx context.Context, n Notification) (Result, error) {
	if n.Status != "" && n.Status != r.successState {
		return r.done(Result{Outcome: OutcomeIgnoredStatus}), nil
	}

	if n.TransactionID != "" {
		seen, err := r.recorder.Seen(ctx, n.TransactionID)
		if err != nil {
			return Result{}, fmt.Errorf("dedup lookup: %w", err)
		}
		if seen {
			return r.done(Result{Outcome: OutcomeDuplicate}), nil
		}
	}

	matched, err := r.tracker.FindByText(ctx, n.Description)
	if err != nil {
		if errors.Is(err, intent.ErrNotFound) {
			return r.done(Result{Outcome: OutcomeNoMatch}), nil
		}
		return Result{}, fmt.Errorf("intent lookup: %w", err)
	}

	// Strict mode treats a mismatched amount as a non-match so a partial
	// transfer cannot validate an arbitrary memo code. The intent stays
	// pending for the real transfer.
	if r.strictAmount && matched.Amount > 0 && matched.Amount != n.Amount {
		r.logger.Warn("deposit amount mismatch",
			"code", matched.Code, "expected", matched.Amount, "received", n.Amount)
		return r.done(Result{Outcome: OutcomeAmountMismatch, Code: matched.Code}), nil
	}

	// Consume is the claim: of two racing deliveries only one gets the
	// intent back, so only one reaches the credit below.
	claimed, err := r.tracker.Consume(ctx, matched.Code)
	if err != nil {
		if errors.Is(err, intent.ErrNotFound) {
			return r.done(Result{Outcome: OutcomeDuplicate}), nil
		}
		return Result{}, fmt.Errorf("consume intent: %w", err)
	}

	balance, err := r.ledger.Credit(ctx, claimed.User, n.Amount)
	if err != nil {
		return Result{}, fmt.Errorf("credit %s: %w", claimed.User, err)
	}

	txID := n.TransactionID
	if txID == "" {
		txID = claimed.Code
	}
	if _, err := r.recorder.MarkOnce(ctx, txID); err != nil {
		// The credit is committed; a failed mark is logged, not rolled back.
		r.logger.Error("record processed transaction", "tx_id", txID, "error", err)
	}

	metrics.CreditedAmount.Add(float64(n.Amount))

	if sendErr := r.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindDepositCredited,
		Destination: claimed.User,
		Body:        fmt.Sprintf("Deposit of %d confirmed, new balance %d", n.Amount, balance),
	}); sendErr != nil {
		r.logger.Warn("deposit notification failed", "user", claimed.User, "error", sendErr)
	}

	return r.done(Result{
		Outcome:    OutcomeCredited,
		User:       claimed.User,
		Code:       claimed.Code,
		Amount:     n.Amount,
		NewBalance: balance,
	}), nil
}

func (r *Reconciler) done(res Result) Result {
	metrics.WebhookEvents.WithLabelValues(string(res.Outcome)).Inc()
	return res
}
