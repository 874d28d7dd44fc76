package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/xraph/accessledger/event"
	"github.com/xraph/accessledger/types"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	ctx := context.Background()

	if err := m.OnKeyActivated(ctx, event.KeyActivated{Owner: "alice", Duration: 100}); err != nil {
		t.Fatal(err)
	}
	if err := m.OnKeyExtended(ctx, event.KeyExtended{Duration: 50}); err != nil {
		t.Fatal(err)
	}
	if err := m.OnProfitRealized(ctx, event.ProfitRealized{Amount: types.NewAmount(500)}); err != nil {
		t.Fatal(err)
	}
	if err := m.OnWithdrawal(ctx, event.Withdrawal{Operator: "op", Amount: types.NewAmount(500)}); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(m.KeysActivated); got != 1 {
		t.Errorf("keys activated: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SecondsSold); got != 150 {
		t.Errorf("seconds sold: got %v, want 150", got)
	}
	if got := testutil.ToFloat64(m.RealizedTotal); got != 500 {
		t.Errorf("realized total: got %v, want 500", got)
	}
	if got := testutil.ToFloat64(m.Withdrawals); got != 1 {
		t.Errorf("withdrawals: got %v, want 1", got)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = New(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration panic")
		}
	}()
	_ = New(reg)
}
