package screening

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

type stubAnalyzer struct {
	mu      sync.Mutex
	results map[string]*risk.AnalysisResult
	calls   []AnalyzeRequest
}

func (a *stubAnalyzer) Analyze(ctx context.Context, req *AnalyzeRequest) (*Screening, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, *req)
	r, ok := a.results[req.Entity]
	if !ok {
		return nil, errors.New(errors.ErrCodeDatabaseError, "corpus unavailable")
	}
	return &Screening{ID: "id-" + req.Entity, Result: r, Profile: risk.BuildProfile(r)}, nil
}

func (a *stubAnalyzer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func newStubAnalyzer() *stubAnalyzer {
	return &stubAnalyzer{results: map[string]*risk.AnalysisResult{
		"Northstar": risk.NewFoundResult("Northstar Logistics Ltd", []risk.EvidenceItem{
			{PredictedRisk: risk.TypologySanctions, Confidence: 0.9},
		}),
		"Quiet Co": risk.NotFoundResult("Quiet Co"),
	}}
}

func TestWatchlist_InvalidSchedule(t *testing.T) {
	_, err := NewWatchlistMonitor(newStubAnalyzer(), WatchlistConfig{Schedule: "every tuesday"}, nil, nil)
	assert.True(t, errors.IsValidation(err))
}

func TestWatchlist_RunOnce(t *testing.T) {
	a := newStubAnalyzer()
	m, err := NewWatchlistMonitor(a, WatchlistConfig{
		Schedule: "@hourly",
		Mode:     ModeLive,
		Entities: []string{"Northstar", "Broken", "Quiet Co"},
	}, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, m.LastReport())

	report := m.RunOnce(context.Background())
	assert.Equal(t, 2, report.Screened)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, WatchlistAlert{
		ScreeningID: "id-Northstar",
		Entity:      "Northstar Logistics Ltd",
		RiskScore:   report.Alerts[0].RiskScore,
		Critical:    true,
	}, report.Alerts[0])
	assert.Positive(t, report.Alerts[0].RiskScore)
	assert.Same(t, report, m.LastReport())

	for _, c := range a.calls {
		assert.Equal(t, "live", c.Mode)
	}
}

func TestWatchlist_CancelledSweepCountsRemainingAsFailed(t *testing.T) {
	m, err := NewWatchlistMonitor(newStubAnalyzer(), WatchlistConfig{
		Schedule: "@hourly",
		Entities: []string{"Northstar", "Quiet Co"},
	}, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := m.RunOnce(ctx)
	assert.Zero(t, report.Screened)
	assert.Equal(t, 2, report.Failed)
}

func TestWatchlist_Scheduled(t *testing.T) {
	a := newStubAnalyzer()
	m, err := NewWatchlistMonitor(a, WatchlistConfig{
		Schedule: "* * * * * *",
		Entities: []string{"Quiet Co"},
	}, nil, nil)
	require.NoError(t, err)

	m.Start()
	assert.Eventually(t, func() bool { return a.callCount() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, m.Stop(ctx))
	assert.NotNil(t, m.LastReport())
}

//Personal.AI order the ending
