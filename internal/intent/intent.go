package intent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound occurs when no pending intent matches a lookup or the code was
// already consumed or swept.
var ErrNotFound = errors.New("intent not found")

// Intent is a requested, not-yet-confirmed deposit. The code is what the
// user puts in their bank transfer memo; a zero Amount means any positive
// amount is acceptable (free-amount policy).
type Intent struct {
	User      string
	Amount    int64
	Code      string
	CreatedAt time.Time
}

// Tracker stores pending deposit intents keyed by matching code.
//
// Consume is a claim: exactly one caller gets the intent back, everyone
// racing behind it gets ErrNotFound. That claim is what prevents a doubled
// webhook delivery from crediting twice before the processed-transaction
// gate catches up.
type Tracker interface {
	Create(ctx context.Context, user string, amount int64) (Intent, error)
	FindByText(ctx context.Context, text string) (Intent, error)
	Consume(ctx context.Context, code string) (Intent, error)
	ExpireOlderThan(ctx context.Context, maxAge time.Duration) (int, error)
}

// codePrefix marks deposit memo codes, matching what users have been trained
// to type into their banking app.
const codePrefix = "NAP"

// newCode derives a memo code from fresh uuid entropy. Codes are long and
// uppercase to keep accidental substring collisions in free-text transfer
// descriptions unlikely.
func newCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return codePrefix + raw[:12]
}
