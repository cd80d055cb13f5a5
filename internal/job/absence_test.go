package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeMarker struct {
	calls []string
	n     int64
	err   error
}

func (f *fakeMarker) MarkAbsent(_ context.Context, date string) (int64, error) {
	f.calls = append(f.calls, date)
	return f.n, f.err
}

func TestAbsenceJob_Run(t *testing.T) {
	m := &fakeMarker{n: 4}
	j, err := NewAbsenceJob("0 18 * * 1-5", time.UTC, m, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAbsenceJob failed: %v", err)
	}

	if got := j.Run(context.Background()); got != 4 {
		t.Errorf("Run = %d, want 4", got)
	}
	if len(m.calls) != 1 || m.calls[0] != "" {
		t.Errorf("expected one call for today, got %v", m.calls)
	}
}

func TestAbsenceJob_RunError(t *testing.T) {
	m := &fakeMarker{err: errors.New("db down")}
	j, err := NewAbsenceJob("@daily", time.UTC, m, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAbsenceJob failed: %v", err)
	}
	if got := j.Run(context.Background()); got != 0 {
		t.Errorf("Run = %d, want 0", got)
	}
}

func TestAbsenceJob_BadSpec(t *testing.T) {
	if _, err := NewAbsenceJob("not a cron", time.UTC, &fakeMarker{}, zap.NewNop()); err == nil {
		t.Error("expected an error for an invalid spec")
	}
}

func TestAbsenceJob_StartStop(t *testing.T) {
	j, err := NewAbsenceJob("@daily", time.UTC, &fakeMarker{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAbsenceJob failed: %v", err)
	}
	j.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.Stop(ctx)
	if ctx.Err() != nil {
		t.Error("Stop should return before the deadline when idle")
	}
}
