// Package observability provides a Prometheus metrics extension that
// records ledger lifecycle event counts and realized token flow.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xraph/accessledger/event"
	"github.com/xraph/accessledger/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin           = (*MetricsExtension)(nil)
	_ plugin.OnTierAdded      = (*MetricsExtension)(nil)
	_ plugin.OnTierArchived   = (*MetricsExtension)(nil)
	_ plugin.OnKeyActivated   = (*MetricsExtension)(nil)
	_ plugin.OnKeyExtended    = (*MetricsExtension)(nil)
	_ plugin.OnKeyReactivated = (*MetricsExtension)(nil)
	_ plugin.OnKeyDeactivated = (*MetricsExtension)(nil)
	_ plugin.OnProfitRealized = (*MetricsExtension)(nil)
	_ plugin.OnWithdrawal     = (*MetricsExtension)(nil)
)

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Ledger plugin to automatically track ledger activity.
type MetricsExtension struct {
	// Tier metrics
	TiersAdded    prometheus.Counter
	TiersArchived prometheus.Counter

	// Key metrics
	KeysActivated   prometheus.Counter
	KeysExtended    prometheus.Counter
	KeysReactivated prometheus.Counter
	KeysDeactivated prometheus.Counter
	SecondsSold     prometheus.Counter

	// Revenue metrics
	Realizations   prometheus.Counter
	RealizedTotal  prometheus.Counter
	Withdrawals    prometheus.Counter
	WithdrawnTotal prometheus.Counter
}

// New creates a MetricsExtension registering its collectors with reg.
func New(reg prometheus.Registerer) *MetricsExtension {
	factory := promauto.With(reg)

	return &MetricsExtension{
		TiersAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "accessledger_tiers_added_total",
			Help: "Number of pricing tiers registered.",
		}),
		TiersArchived: factory.NewCounter(prometheus.CounterOpts{
			Name: "accessledger_tiers_archived_total",
			Help: "Number of pricing tiers archived.",
		}),
		KeysActivated: factory.NewCounter(prometheus.CounterOpts{
			Name: "accessledger_keys_activated_total",
			Help: "Number of access keys activated.",
		}),
		KeysExtended: factory.NewCounter(prometheus.CounterOpts{
			Name: "accessledger_keys_extended_total",
			Help: "Number of active-key extensions.",
		}),
		KeysReactivated: factory.NewCounter(prometheus.CounterOpts{
			Name: "accessledger_keys_reactivated_total",
			Help: "Number of expired keys brought back by extension.",
		}),
		KeysDeactivated: factory.NewCounter(prometheus.CounterOpts{
			Name: "accessledger_keys_deactivated_total",
			Help: "Number of keys deactivated with refund.",
		}),
		SecondsSold: factory.NewCounter(prometheus.CounterOpts{
			Name: "accessledger_seconds_sold_total",
			Help: "Total prepaid seconds sold across activations and extensions.",
		}),
		Realizations: factory.NewCounter(prometheus.CounterOpts{
			Name: "accessledger_realizations_total",
			Help: "Number of nonzero profit realizations.",
		}),
		RealizedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "accessledger_realized_tokens_total",
			Help: "Total token value recognized as realized profit.",
		}),
		Withdrawals: factory.NewCounter(prometheus.CounterOpts{
			Name: "accessledger_withdrawals_total",
			Help: "Number of operator withdrawals.",
		}),
		WithdrawnTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "accessledger_withdrawn_tokens_total",
			Help: "Total token value withdrawn by the operator.",
		}),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability" }

// OnTierAdded implements plugin.OnTierAdded.
func (m *MetricsExtension) OnTierAdded(_ context.Context, _ event.TierAdded) error {
	m.TiersAdded.Inc()
	return nil
}

// OnTierArchived implements plugin.OnTierArchived.
func (m *MetricsExtension) OnTierArchived(_ context.Context, _ event.TierArchived) error {
	m.TiersArchived.Inc()
	return nil
}

// OnKeyActivated implements plugin.OnKeyActivated.
func (m *MetricsExtension) OnKeyActivated(_ context.Context, ev event.KeyActivated) error {
	m.KeysActivated.Inc()
	m.SecondsSold.Add(float64(ev.Duration))
	return nil
}

// OnKeyExtended implements plugin.OnKeyExtended.
func (m *MetricsExtension) OnKeyExtended(_ context.Context, ev event.KeyExtended) error {
	m.KeysExtended.Inc()
	m.SecondsSold.Add(float64(ev.Duration))
	return nil
}

// OnKeyReactivated implements plugin.OnKeyReactivated.
func (m *MetricsExtension) OnKeyReactivated(_ context.Context, ev event.KeyReactivated) error {
	m.KeysReactivated.Inc()
	m.SecondsSold.Add(float64(ev.Duration))
	return nil
}

// OnKeyDeactivated implements plugin.OnKeyDeactivated.
func (m *MetricsExtension) OnKeyDeactivated(_ context.Context, _ event.KeyDeactivated) error {
	m.KeysDeactivated.Inc()
	return nil
}

// OnProfitRealized implements plugin.OnProfitRealized.
// Amounts beyond float64 precision are reported approximately; the exact
// balance always comes from the ledger itself.
func (m *MetricsExtension) OnProfitRealized(_ context.Context, ev event.ProfitRealized) error {
	m.Realizations.Inc()
	m.RealizedTotal.Add(ev.Amount.Float64())
	return nil
}

// OnWithdrawal implements plugin.OnWithdrawal.
func (m *MetricsExtension) OnWithdrawal(_ context.Context, ev event.Withdrawal) error {
	m.Withdrawals.Inc()
	m.WithdrawnTotal.Add(ev.Amount.Float64())
	return nil
}
