package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/xraph/accessledger/event"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so emitting an event is a slice walk, not a
// type switch.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit           []OnInit
	onShutdown       []OnShutdown
	onTierAdded      []OnTierAdded
	onTierArchived   []OnTierArchived
	onKeyActivated   []OnKeyActivated
	onKeyExtended    []OnKeyExtended
	onKeyReactivated []OnKeyReactivated
	onKeyDeactivated []OnKeyDeactivated
	onProfitRealized []OnProfitRealized
	onWithdrawal     []OnWithdrawal
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnTierAdded); ok {
		r.onTierAdded = append(r.onTierAdded, v)
	}
	if v, ok := p.(OnTierArchived); ok {
		r.onTierArchived = append(r.onTierArchived, v)
	}
	if v, ok := p.(OnKeyActivated); ok {
		r.onKeyActivated = append(r.onKeyActivated, v)
	}
	if v, ok := p.(OnKeyExtended); ok {
		r.onKeyExtended = append(r.onKeyExtended, v)
	}
	if v, ok := p.(OnKeyReactivated); ok {
		r.onKeyReactivated = append(r.onKeyReactivated, v)
	}
	if v, ok := p.(OnKeyDeactivated); ok {
		r.onKeyDeactivated = append(r.onKeyDeactivated, v)
	}
	if v, ok := p.(OnProfitRealized); ok {
		r.onProfitRealized = append(r.onProfitRealized, v)
	}
	if v, ok := p.(OnWithdrawal); ok {
		r.onWithdrawal = append(r.onWithdrawal, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.implementedInterfaces(p),
	)

	return nil
}

// implementedInterfaces returns a list of hook interfaces implemented by the
// plugin, for the registration log line.
func (r *Registry) implementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	check := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	check(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	check(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	check(reflect.TypeOf((*OnTierAdded)(nil)).Elem(), "OnTierAdded")
	check(reflect.TypeOf((*OnTierArchived)(nil)).Elem(), "OnTierArchived")
	check(reflect.TypeOf((*OnKeyActivated)(nil)).Elem(), "OnKeyActivated")
	check(reflect.TypeOf((*OnKeyExtended)(nil)).Elem(), "OnKeyExtended")
	check(reflect.TypeOf((*OnKeyReactivated)(nil)).Elem(), "OnKeyReactivated")
	check(reflect.TypeOf((*OnKeyDeactivated)(nil)).Elem(), "OnKeyDeactivated")
	check(reflect.TypeOf((*OnProfitRealized)(nil)).Elem(), "OnProfitRealized")
	check(reflect.TypeOf((*OnWithdrawal)(nil)).Elem(), "OnWithdrawal")

	return interfaces
}

// Get returns a plugin by name, or nil.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.plugins)
}

// hookError logs a failed hook. Hook failures never abort ledger operations.
func (r *Registry) hookError(p Plugin, hook string, err error) {
	r.logger.Error("plugin hook failed",
		"plugin", p.Name(),
		"hook", hook,
		"error", err,
	)
}

// ──────────────────────────────────────────────────
// Dispatch
// ──────────────────────────────────────────────────

// EmitInit notifies all OnInit plugins.
func (r *Registry) EmitInit(ctx context.Context, ledger any) {
	r.mu.RLock()
	hooks := r.onInit
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnInit(ctx, ledger); err != nil {
			r.hookError(h, "OnInit", err)
		}
	}
}

// EmitShutdown notifies all OnShutdown plugins.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	hooks := r.onShutdown
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnShutdown(ctx); err != nil {
			r.hookError(h, "OnShutdown", err)
		}
	}
}

// EmitTierAdded notifies all OnTierAdded plugins.
func (r *Registry) EmitTierAdded(ctx context.Context, ev event.TierAdded) {
	r.mu.RLock()
	hooks := r.onTierAdded
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnTierAdded(ctx, ev); err != nil {
			r.hookError(h, "OnTierAdded", err)
		}
	}
}

// EmitTierArchived notifies all OnTierArchived plugins.
func (r *Registry) EmitTierArchived(ctx context.Context, ev event.TierArchived) {
	r.mu.RLock()
	hooks := r.onTierArchived
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnTierArchived(ctx, ev); err != nil {
			r.hookError(h, "OnTierArchived", err)
		}
	}
}

// EmitKeyActivated notifies all OnKeyActivated plugins.
func (r *Registry) EmitKeyActivated(ctx context.Context, ev event.KeyActivated) {
	r.mu.RLock()
	hooks := r.onKeyActivated
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnKeyActivated(ctx, ev); err != nil {
			r.hookError(h, "OnKeyActivated", err)
		}
	}
}

// EmitKeyExtended notifies all OnKeyExtended plugins.
func (r *Registry) EmitKeyExtended(ctx context.Context, ev event.KeyExtended) {
	r.mu.RLock()
	hooks := r.onKeyExtended
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnKeyExtended(ctx, ev); err != nil {
			r.hookError(h, "OnKeyExtended", err)
		}
	}
}

// EmitKeyReactivated notifies all OnKeyReactivated plugins.
func (r *Registry) EmitKeyReactivated(ctx context.Context, ev event.KeyReactivated) {
	r.mu.RLock()
	hooks := r.onKeyReactivated
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnKeyReactivated(ctx, ev); err != nil {
			r.hookError(h, "OnKeyReactivated", err)
		}
	}
}

// EmitKeyDeactivated notifies all OnKeyDeactivated plugins.
func (r *Registry) EmitKeyDeactivated(ctx context.Context, ev event.KeyDeactivated) {
	r.mu.RLock()
	hooks := r.onKeyDeactivated
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnKeyDeactivated(ctx, ev); err != nil {
			r.hookError(h, "OnKeyDeactivated", err)
		}
	}
}

// EmitProfitRealized notifies all OnProfitRealized plugins.
func (r *Registry) EmitProfitRealized(ctx context.Context, ev event.ProfitRealized) {
	r.mu.RLock()
	hooks := r.onProfitRealized
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnProfitRealized(ctx, ev); err != nil {
			r.hookError(h, "OnProfitRealized", err)
		}
	}
}

// EmitWithdrawal notifies all OnWithdrawal plugins.
func (r *Registry) EmitWithdrawal(ctx context.Context, ev event.Withdrawal) {
	r.mu.RLock()
	hooks := r.onWithdrawal
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnWithdrawal(ctx, ev); err != nil {
			r.hookError(h, "OnWithdrawal", err)
		}
	}
}
