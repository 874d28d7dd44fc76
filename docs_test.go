package accessledger_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/accessledger"
	"github.com/xraph/accessledger/store/memory"
	"github.com/xraph/accessledger/token"
)

// TestDocumentationExamples verifies that the examples in the documentation
// compile and run.
func TestDocumentationExamples(t *testing.T) {
	// Quick Start example from the package docs.
	t.Run("QuickStartExample", func(t *testing.T) {
		bank := token.NewBank()

		l, err := accessledger.New(memory.New(), bank, "ledger-account", "operator",
			accessledger.WithLogger(slog.Default()),
		)
		if err != nil {
			t.Fatal(err)
		}

		ctx := context.Background()
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer l.Stop()

		// The operator defines a price point.
		opCtx := accessledger.WithCaller(ctx, "operator")
		tierID, err := l.AddTier(opCtx, accessledger.NewAmount(5))
		if err != nil {
			t.Fatal(err)
		}

		// A buyer funds an allowance and activates a key.
		if err := bank.Mint("alice", accessledger.NewAmount(1000)); err != nil {
			t.Fatal(err)
		}
		bank.Approve("alice", "ledger-account", accessledger.NewAmount(1000))

		hash := accessledger.KeyHashFromSecret([]byte("my-secret"))
		userCtx := accessledger.WithCaller(ctx, "alice")
		if err := l.ActivateKey(userCtx, hash, tierID, 100*time.Second); err != nil {
			t.Fatal(err)
		}

		active, err := l.IsKeyActive(ctx, hash)
		if err != nil {
			t.Fatal(err)
		}
		if !active {
			t.Fatal("freshly activated key must be active")
		}

		// Anyone may realize accrued profit.
		if err := l.RealizeProfit(ctx, hash); err != nil {
			t.Fatal(err)
		}
	})
}
