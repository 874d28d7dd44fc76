package audithook

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/accessledger/event"
	"github.com/xraph/accessledger/id"
	"github.com/xraph/accessledger/types"
)

func TestRecordsKeyActivation(t *testing.T) {
	var got []*AuditEvent
	e := New(RecorderFunc(func(_ context.Context, ev *AuditEvent) error {
		got = append(got, ev)
		return nil
	}))

	ev := event.KeyActivated{
		KeyHash:  types.KeyHashFromSecret([]byte("audit")),
		Owner:    "alice",
		Duration: 100,
	}
	if err := e.OnKeyActivated(context.Background(), ev); err != nil {
		t.Fatal(err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Action != ActionKeyActivated {
		t.Errorf("action: got %q", got[0].Action)
	}
	if got[0].ID.Prefix() != id.PrefixAudit {
		t.Errorf("expected audit ID, got %q", got[0].ID.String())
	}
	if got[0].Metadata["owner"] != "alice" {
		t.Errorf("metadata owner: got %v", got[0].Metadata["owner"])
	}
}

func TestActionFiltering(t *testing.T) {
	var count int
	rec := RecorderFunc(func(context.Context, *AuditEvent) error {
		count++
		return nil
	})

	e := New(rec, WithDisabledActions(ActionProfitRealized))

	ctx := context.Background()
	if err := e.OnProfitRealized(ctx, event.ProfitRealized{Amount: types.NewAmount(1)}); err != nil {
		t.Fatal(err)
	}
	if err := e.OnWithdrawal(ctx, event.Withdrawal{Operator: "op", Amount: types.NewAmount(1)}); err != nil {
		t.Fatal(err)
	}

	if count != 1 {
		t.Fatalf("expected only withdrawal recorded, got %d events", count)
	}
}

func TestRecorderFailureIsSwallowed(t *testing.T) {
	e := New(RecorderFunc(func(context.Context, *AuditEvent) error {
		return errors.New("backend down")
	}))

	// A broken backend must never fail the ledger operation.
	if err := e.OnTierAdded(context.Background(), event.TierAdded{TierID: 0, Price: types.NewAmount(5)}); err != nil {
		t.Fatal(err)
	}
}
