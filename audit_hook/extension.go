// Package audithook bridges ledger lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not depend on
// any concrete audit store. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
package audithook

import (
	"context"
	"log/slog"

	"github.com/xraph/accessledger/event"
	"github.com/xraph/accessledger/id"
	"github.com/xraph/accessledger/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin           = (*Extension)(nil)
	_ plugin.OnTierAdded      = (*Extension)(nil)
	_ plugin.OnTierArchived   = (*Extension)(nil)
	_ plugin.OnKeyActivated   = (*Extension)(nil)
	_ plugin.OnKeyExtended    = (*Extension)(nil)
	_ plugin.OnKeyReactivated = (*Extension)(nil)
	_ plugin.OnKeyDeactivated = (*Extension)(nil)
	_ plugin.OnProfitRealized = (*Extension)(nil)
	_ plugin.OnWithdrawal     = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one audit-trail entry.
type AuditEvent struct {
	ID         id.ID          `json:"id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided
// Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Tier lifecycle hooks
// ──────────────────────────────────────────────────

// OnTierAdded implements plugin.OnTierAdded.
func (e *Extension) OnTierAdded(ctx context.Context, ev event.TierAdded) error {
	return e.record(ctx, ActionTierAdded, SeverityInfo,
		ResourceTier, CategoryPricing,
		"tier_id", ev.TierID,
		"price", ev.Price.String(),
	)
}

// OnTierArchived implements plugin.OnTierArchived.
func (e *Extension) OnTierArchived(ctx context.Context, ev event.TierArchived) error {
	return e.record(ctx, ActionTierArchived, SeverityInfo,
		ResourceTier, CategoryPricing,
		"tier_id", ev.TierID,
	)
}

// ──────────────────────────────────────────────────
// Key lifecycle hooks
// ──────────────────────────────────────────────────

// OnKeyActivated implements plugin.OnKeyActivated.
func (e *Extension) OnKeyActivated(ctx context.Context, ev event.KeyActivated) error {
	return e.record(ctx, ActionKeyActivated, SeverityInfo,
		ResourceKey, CategoryAccess,
		"key_hash", ev.KeyHash.String(),
		"owner", string(ev.Owner),
		"duration_s", ev.Duration,
	)
}

// OnKeyExtended implements plugin.OnKeyExtended.
func (e *Extension) OnKeyExtended(ctx context.Context, ev event.KeyExtended) error {
	return e.record(ctx, ActionKeyExtended, SeverityInfo,
		ResourceKey, CategoryAccess,
		"key_hash", ev.KeyHash.String(),
		"duration_s", ev.Duration,
	)
}

// OnKeyReactivated implements plugin.OnKeyReactivated.
func (e *Extension) OnKeyReactivated(ctx context.Context, ev event.KeyReactivated) error {
	return e.record(ctx, ActionKeyReactivated, SeverityInfo,
		ResourceKey, CategoryAccess,
		"key_hash", ev.KeyHash.String(),
		"duration_s", ev.Duration,
	)
}

// OnKeyDeactivated implements plugin.OnKeyDeactivated.
func (e *Extension) OnKeyDeactivated(ctx context.Context, ev event.KeyDeactivated) error {
	return e.record(ctx, ActionKeyDeactivated, SeverityWarning,
		ResourceKey, CategoryAccess,
		"key_hash", ev.KeyHash.String(),
	)
}

// ──────────────────────────────────────────────────
// Revenue hooks
// ──────────────────────────────────────────────────

// OnProfitRealized implements plugin.OnProfitRealized.
func (e *Extension) OnProfitRealized(ctx context.Context, ev event.ProfitRealized) error {
	return e.record(ctx, ActionProfitRealized, SeverityInfo,
		ResourceRevenue, CategoryAccounting,
		"key_hash", ev.KeyHash.String(),
		"amount", ev.Amount.String(),
	)
}

// OnWithdrawal implements plugin.OnWithdrawal.
func (e *Extension) OnWithdrawal(ctx context.Context, ev event.Withdrawal) error {
	return e.record(ctx, ActionWithdrawal, SeverityWarning,
		ResourceRevenue, CategoryAccounting,
		"operator", string(ev.Operator),
		"amount", ev.Amount.String(),
	)
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, resource, category string,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2)
	var resourceID string
	for i := 0; i+1 < len(kvPairs); i += 2 {
		k, ok := kvPairs[i].(string)
		if !ok {
			continue
		}
		meta[k] = kvPairs[i+1]
		if resourceID == "" {
			if s, ok := kvPairs[i+1].(string); ok {
				resourceID = s
			}
		}
	}

	evt := &AuditEvent{
		ID:         id.NewAuditID(),
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    OutcomeSuccess,
		Severity:   severity,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
