// Package plugin provides an extensible hook system for AccessLedger.
// Plugins can hook into lifecycle events to extend functionality — audit
// trails, metrics, external notification — without touching the engine.
package plugin

import (
	"context"

	"github.com/xraph/accessledger/event"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, ledger any) error
}

// OnShutdown is called when the ledger is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Tier registry hooks
// ──────────────────────────────────────────────────

// OnTierAdded is called when the operator appends a new tier.
type OnTierAdded interface {
	Plugin
	OnTierAdded(ctx context.Context, ev event.TierAdded) error
}

// OnTierArchived is called when the operator archives a tier.
type OnTierArchived interface {
	Plugin
	OnTierArchived(ctx context.Context, ev event.TierArchived) error
}

// ──────────────────────────────────────────────────
// Key lifecycle hooks
// ──────────────────────────────────────────────────

// OnKeyActivated is called when a new key is created.
type OnKeyActivated interface {
	Plugin
	OnKeyActivated(ctx context.Context, ev event.KeyActivated) error
}

// OnKeyExtended is called when an active key's window grows.
type OnKeyExtended interface {
	Plugin
	OnKeyExtended(ctx context.Context, ev event.KeyExtended) error
}

// OnKeyReactivated is called when an expired key is extended.
type OnKeyReactivated interface {
	Plugin
	OnKeyReactivated(ctx context.Context, ev event.KeyReactivated) error
}

// OnKeyDeactivated is called when an owner forfeits a key's remaining time.
type OnKeyDeactivated interface {
	Plugin
	OnKeyDeactivated(ctx context.Context, ev event.KeyDeactivated) error
}

// ──────────────────────────────────────────────────
// Revenue hooks
// ──────────────────────────────────────────────────

// OnProfitRealized is called whenever accrued profit is recognized,
// including the implicit realization inside extend and deactivate.
type OnProfitRealized interface {
	Plugin
	OnProfitRealized(ctx context.Context, ev event.ProfitRealized) error
}

// OnWithdrawal is called when the operator drains the realized balance.
type OnWithdrawal interface {
	Plugin
	OnWithdrawal(ctx context.Context, ev event.Withdrawal) error
}
