package accessledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/xraph/accessledger/plugin"
	"github.com/xraph/accessledger/store"
	"github.com/xraph/accessledger/token"
	"github.com/xraph/accessledger/types"
)

// Ledger is the metered-access accounting engine. It sells time-bounded
// access keys priced per second, tracks accrued and realized revenue per
// key, and holds collected tokens until the operator withdraws the
// realized portion.
//
// Mutating operations run one at a time. An overlapping or re-entrant
// mutating call fails with ErrReentrantCall instead of blocking, which
// also defends against a token implementation calling back into the
// ledger mid-transfer.
type Ledger struct {
	store   store.Store
	token   token.Token
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   clockwork.Clock

	// account is the address holding collected tokens; operator is the
	// only caller allowed to manage tiers and withdraw realized profit.
	account  types.Address
	operator types.Address

	busy atomic.Bool

	// Background realization sweep
	realizeInterval time.Duration
	stopChan        chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup

	batchLimit int
}

// DefaultBatchLimit caps the number of entries a single batch operation
// accepts unless overridden with WithBatchLimit.
const DefaultBatchLimit = 100

// New creates a Ledger backed by the given store and token, collecting
// payments into account and granting operator privileges to operator.
func New(s store.Store, tok token.Token, account, operator types.Address, opts ...Option) (*Ledger, error) {
	if s == nil || tok == nil {
		return nil, ErrInvalidInput
	}
	if account.IsZero() || operator.IsZero() {
		return nil, ErrInvalidInput
	}

	l := &Ledger{
		store:      s,
		token:      tok,
		plugins:    plugin.NewRegistry(),
		logger:     slog.Default(),
		clock:      clockwork.NewRealClock(),
		account:    account,
		operator:   operator,
		stopChan:   make(chan struct{}),
		batchLimit: DefaultBatchLimit,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithClock sets the time source. Tests inject a fake clock here.
func WithClock(clock clockwork.Clock) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithBatchLimit sets the maximum batch size for ActivateKeys and
// RealizeProfitMany. Non-positive values are ignored.
func WithBatchLimit(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.batchLimit = n
		}
	}
}

// WithRealizeInterval enables the background realization sweep, which
// periodically realizes accrued revenue across all keys so the
// withdrawable balance tracks usage without callers having to poll
// RealizeProfit themselves.
func WithRealizeInterval(interval time.Duration) Option {
	return func(l *Ledger) {
		l.realizeInterval = interval
	}
}

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// Account returns the address holding collected tokens.
func (l *Ledger) Account() types.Address { return l.account }

// Operator returns the operator address.
func (l *Ledger) Operator() types.Address { return l.operator }

// Start verifies store connectivity, initializes plugins, and launches
// the realization sweep when one is configured.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.store.Ping(ctx); err != nil {
		return err
	}

	l.plugins.EmitInit(ctx, l)

	if l.realizeInterval > 0 {
		l.wg.Add(1)
		go l.realizeSweepWorker(ctx)
	}

	l.logger.Info("ledger started",
		"account", string(l.account),
		"operator", string(l.operator),
		"realize_interval", l.realizeInterval,
	)

	return nil
}

// Stop shuts down the Ledger. Subsequent calls are no-ops.
func (l *Ledger) Stop() error {
	var err error
	l.stopOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()

		ctx := context.Background()
		l.plugins.EmitShutdown(ctx)

		err = l.store.Close()
	})
	return err
}

// realizeSweepWorker periodically realizes accrued revenue for all keys.
func (l *Ledger) realizeSweepWorker(ctx context.Context) {
	defer l.wg.Done()

	ticker := l.clock.NewTicker(l.realizeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.Chan():
			l.runRealizeSweep(ctx)
		}
	}
}

func (l *Ledger) runRealizeSweep(ctx context.Context) {
	start := l.clock.Now()

	n, err := l.realizeAll(ctx)
	if err != nil {
		if errors.Is(err, ErrReentrantCall) {
			// A mutating operation is in flight; the next tick catches up.
			l.logger.Debug("realization sweep skipped, ledger busy")
			return
		}
		l.logger.Error("realization sweep failed", "error", err)
		return
	}

	l.logger.Debug("realization sweep complete",
		"keys_realized", n,
		"elapsed_ms", l.clock.Since(start).Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Caller identity
// ──────────────────────────────────────────────────

type callerKey struct{}

// WithCaller returns a context carrying the caller address for
// authorization checks.
func WithCaller(ctx context.Context, caller types.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom extracts the caller address from the context, if any.
func CallerFrom(ctx context.Context) (types.Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(types.Address)
	if !ok || caller.IsZero() {
		return "", false
	}
	return caller, true
}

// caller extracts the caller address or fails with ErrNoCaller.
func (l *Ledger) caller(ctx context.Context) (types.Address, error) {
	caller, ok := CallerFrom(ctx)
	if !ok {
		return "", ErrNoCaller
	}
	return caller, nil
}

// requireOperator ensures the context caller is the operator.
func (l *Ledger) requireOperator(ctx context.Context) error {
	caller, err := l.caller(ctx)
	if err != nil {
		return err
	}
	if caller != l.operator {
		return ErrNotOperator
	}
	return nil
}

// ──────────────────────────────────────────────────
// Serial execution guard
// ──────────────────────────────────────────────────

// begin claims the mutation guard. Callers must pair it with end.
func (l *Ledger) begin() error {
	if !l.busy.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

func (l *Ledger) end() {
	l.busy.Store(false)
}

// ──────────────────────────────────────────────────
// Time
// ──────────────────────────────────────────────────

// now returns the current time as whole unix seconds. Each operation
// samples it exactly once so all arithmetic within the operation agrees
// on a single instant.
func (l *Ledger) now() uint64 {
	return uint64(l.clock.Now().Unix())
}

// durationSeconds validates a duration and converts it to whole seconds.
func durationSeconds(d time.Duration) (uint64, error) {
	if d < 0 || d%time.Second != 0 {
		return 0, ErrInvalidDuration
	}
	return uint64(d / time.Second), nil
}
