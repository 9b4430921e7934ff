package shop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/keyvend/keyvend/internal/intent"
	"github.com/keyvend/keyvend/internal/inventory"
	"github.com/keyvend/keyvend/internal/ledger"
	"github.com/keyvend/keyvend/internal/logging"
	"github.com/keyvend/keyvend/internal/notification"
)

var testPrices = map[string]int64{"day": 15_000, "week": 80_000, "month": 250_000}

func newTestService() (*Service, ledger.Ledger, inventory.Store) {
	l := ledger.NewMemory()
	inv := inventory.NewMemory([]string{"day", "week", "month"})
	tr := intent.NewMemory()
	logger := logging.Discard()
	svc := NewService(l, inv, tr, notification.NewLoggerNotifier(nil), testPrices, 15*time.Minute, "", true, logger)
	return svc, l, inv
}

func TestPurchase_DeliversKeyAndDebits(t *testing.T) {
	svc, l, inv := newTestService()
	ctx := context.Background()

	ledger.SeedBalance(l, "user-a", 20_000)
	if err := inv.AddKeys(ctx, "day", []string{"K1"}); err != nil {
		t.Fatalf("add keys: %v", err)
	}

	result, err := svc.Purchase(ctx, "user-a", "day")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Key != "K1" {
		t.Fatalf("expected key K1, got %s", result.Key)
	}
	if result.NewBalance != 5_000 {
		t.Fatalf("expected balance 5000, got %d", result.NewBalance)
	}
	if result.ReceiptID == "" {
		t.Fatal("expected a receipt id")
	}

	remaining, _ := inv.Remaining(ctx, "day")
	if remaining != 0 {
		t.Fatalf("expected empty inventory, got %d", remaining)
	}
}

func TestPurchase_EmptyTierWithZeroBalance(t *testing.T) {
	svc, l, _ := newTestService()
	ctx := context.Background()

	// Empty stock is reported before funds are checked, so even a broke
	// buyer sees out-of-stock rather than insufficient funds.
	_, err := svc.Purchase(ctx, "user-a", "day")
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}

	balance, _ := l.Balance(ctx, "user-a")
	if balance != 0 {
		t.Fatalf("failed purchase must not move balance, got %d", balance)
	}
}

func TestPurchase_EmptyTierNeverDebits(t *testing.T) {
	svc, l, _ := newTestService()
	ctx := context.Background()

	ledger.SeedBalance(l, "user-a", 20_000)

	_, err := svc.Purchase(ctx, "user-a", "day")
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}

	balance, _ := l.Balance(ctx, "user-a")
	if balance != 20_000 {
		t.Fatalf("empty tier must not move balance, got %d", balance)
	}
}

// emptiedStore reports stock that is gone by allocation time, the window
// where a concurrent buyer drains the tier between check and take.
type emptiedStore struct {
	inventory.Store
}

func (s emptiedStore) Remaining(ctx context.Context, tier string) (int, error) {
	return 1, nil
}

func TestPurchase_RefundsDebitWhenStockEmptiesMidPurchase(t *testing.T) {
	l := ledger.NewMemory()
	inv := emptiedStore{inventory.NewMemory([]string{"day", "week", "month"})}
	tr := intent.NewMemory()
	svc := NewService(l, inv, tr, notification.NewLoggerNotifier(nil), testPrices, 15*time.Minute, "", true, logging.Discard())
	ctx := context.Background()

	ledger.SeedBalance(l, "user-a", 20_000)

	_, err := svc.Purchase(ctx, "user-a", "day")
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}

	balance, _ := l.Balance(ctx, "user-a")
	if balance != 20_000 {
		t.Fatalf("debit must be refunded when the tier empties, got %d", balance)
	}
}

func TestPurchase_UnknownTierRejected(t *testing.T) {
	svc, l, _ := newTestService()
	ctx := context.Background()

	ledger.SeedBalance(l, "user-a", 500_000)

	_, err := svc.Purchase(ctx, "user-a", "year")
	if !errors.Is(err, ErrInvalidTier) {
		t.Fatalf("expected invalid tier, got %v", err)
	}

	balance, _ := l.Balance(ctx, "user-a")
	if balance != 500_000 {
		t.Fatalf("invalid tier must not move balance, got %d", balance)
	}
}

func TestPurchase_ConcurrentBuyersSingleWinner(t *testing.T) {
	svc, l, inv := newTestService()
	ctx := context.Background()

	// Balance covers exactly one purchase even though stock covers two.
	ledger.SeedBalance(l, "user-a", 20_000)
	inv.AddKeys(ctx, "day", []string{"K1", "K2"})

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(ctx, "user-a", "day")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, short int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ledger.ErrInsufficientFunds):
			short++
		default:
			t.Fatalf("unexpected purchase error: %v", err)
		}
	}
	if succeeded != 1 || short != 1 {
		t.Fatalf("expected exactly one successful purchase, got %d success %d short", succeeded, short)
	}

	balance, _ := l.Balance(ctx, "user-a")
	if balance != 5_000 {
		t.Fatalf("expected balance 5000 after one purchase, got %d", balance)
	}
	remaining, _ := inv.Remaining(ctx, "day")
	if remaining != 1 {
		t.Fatalf("expected one key left, got %d", remaining)
	}
}

func TestRequestDeposit_StrictModeRequiresAmount(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.RequestDeposit(ctx, "user-a", 0); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount in strict mode, got %v", err)
	}
	if _, err := svc.RequestDeposit(ctx, "user-a", -100); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for negative deposit, got %v", err)
	}

	result, err := svc.RequestDeposit(ctx, "user-a", 50_000)
	if err != nil {
		t.Fatalf("request deposit: %v", err)
	}
	if result.Code == "" {
		t.Fatal("expected a memo code")
	}
	if len(result.QRPNG) == 0 {
		t.Fatal("expected a QR payload")
	}
	if !result.ExpiresAt.After(time.Now()) {
		t.Fatalf("expiry must be in the future, got %v", result.ExpiresAt)
	}
}

func TestRequestDeposit_FreeAmountModeAllowsZero(t *testing.T) {
	l := ledger.NewMemory()
	inv := inventory.NewMemory([]string{"day"})
	tr := intent.NewMemory()
	svc := NewService(l, inv, tr, notification.NewLoggerNotifier(nil), testPrices, 15*time.Minute, "", false, logging.Discard())

	result, err := svc.RequestDeposit(context.Background(), "user-a", 0)
	if err != nil {
		t.Fatalf("request deposit: %v", err)
	}
	if result.Code == "" {
		t.Fatal("expected a memo code")
	}
}

func TestBalanceOf_DefaultsToZero(t *testing.T) {
	svc, _, _ := newTestService()

	balance, err := svc.BalanceOf(context.Background(), "user-new")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected zero balance, got %d", balance)
	}
}
