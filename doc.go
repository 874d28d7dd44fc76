// Package accessledger provides a metered-access accounting ledger for Go
// applications.
//
// AccessLedger is designed as a library, not a service. Applications sell
// time-bounded access keys priced per second on operator-defined tiers,
// collect prepaid tokens up front, and recognize revenue only as access
// time is actually consumed. It provides:
//
//   - Prepaid access keys identified by caller-supplied 32-byte hashes
//   - Append-only pricing tiers with archive semantics
//   - Accrual accounting: paid value splits into realized, accrued and
//     refundable portions that always sum back to the price paid
//   - Pro-rata refunds on deactivation and operator-only withdrawal of
//     realized profit
//   - Pluggable storage (in-memory and bbolt built-in)
//   - Audit trail and Prometheus metrics via the plugin system
//
// # Quick Start
//
// Create a ledger instance with your preferred store and token backend:
//
//	import (
//	    "github.com/xraph/accessledger"
//	    "github.com/xraph/accessledger/store/memory"
//	    "github.com/xraph/accessledger/token"
//	)
//
//	bank := token.NewBank()
//	l, err := accessledger.New(memory.New(), bank, "ledger-account", "operator")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Core Concepts
//
// Tiers define per-second prices. Only the operator manages them:
//
//	opCtx := accessledger.WithCaller(ctx, "operator")
//	tierID, err := l.AddTier(opCtx, accessledger.NewAmount(5))
//
// Keys are sold against a tier for a duration. The buyer approves a token
// allowance first, then activates:
//
//	hash := accessledger.KeyHashFromSecret([]byte("my-secret"))
//	userCtx := accessledger.WithCaller(ctx, "alice")
//	err = l.ActivateKey(userCtx, hash, tierID, 100*time.Second)
//
// Revenue is recognized as time passes. Anyone can realize; only the
// operator withdraws:
//
//	err = l.RealizeProfit(ctx, hash)
//	amount, err := l.Withdraw(opCtx)
//
// # Plugins
//
// Lifecycle hooks extend the engine without touching it:
//
//	l, err := accessledger.New(store, bank, account, operator,
//	    accessledger.WithPlugin(observability.New(prometheus.DefaultRegisterer)),
//	    accessledger.WithPlugin(audithook.New(recorder)),
//	)
package accessledger
