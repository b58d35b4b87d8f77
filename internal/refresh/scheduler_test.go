package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msticdev/msmonitor/internal/metrics"
	"github.com/msticdev/msmonitor/internal/predict"
	"github.com/msticdev/msmonitor/internal/store"
	"github.com/msticdev/msmonitor/internal/synth"
)

const testSources = `
sources:
  - name: AzureAD
    teams: [Identity Protection]
    data_types: [SignIn Logs]
    processes: [Ingestion]
    regions: [US, EU]
    sla_minutes: 15
`

var metricsOnce sync.Once
var sharedMetrics *metrics.Metrics

// Prometheus collectors register globally; share one set across tests.
func testMetrics() *metrics.Metrics {
	metricsOnce.Do(func() { sharedMetrics = metrics.NewMetrics() })
	return sharedMetrics
}

func newTestScheduler(t *testing.T, pub Publisher) (*Scheduler, *store.MemoryStore, *synth.Loader) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSources), 0o644))

	loader := synth.NewLoader(path, false, slog.Default())
	_, err := loader.Load()
	require.NoError(t, err)

	st := store.NewMemoryStore()
	sched := NewScheduler(
		loader,
		predict.NewGenerator(nil),
		st,
		testMetrics(),
		pub,
		slog.Default(),
		time.Hour,
		time.Hour,
	)
	return sched, st, loader
}

func TestScheduler_RefreshCatalogPopulatesStore(t *testing.T) {
	sched, st, _ := newTestScheduler(t, nil)

	sched.RefreshCatalog()
	snap := st.Catalog()
	assert.Len(t, snap.Pipelines, 2)
	assert.NotZero(t, snap.Version)
}

func TestScheduler_RefreshPredictionsPopulatesStore(t *testing.T) {
	sched, st, _ := newTestScheduler(t, nil)

	sched.RefreshPredictions()
	snap := st.Predictions()
	assert.Len(t, snap.Predictions, len(predict.DefaultRoster))
	assert.NotEmpty(t, snap.Cycle)
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) PublishAlertSnapshot(*store.CatalogSnapshot) error {
	p.calls++
	return fmt.Errorf("bus unavailable")
}

func TestScheduler_PublisherFailureDoesNotBlockRefresh(t *testing.T) {
	pub := &failingPublisher{}
	sched, st, _ := newTestScheduler(t, pub)

	sched.RefreshCatalog()
	assert.Equal(t, 1, pub.calls)
	assert.NotEmpty(t, st.Catalog().Pipelines)
}

func TestScheduler_FailedCycleKeepsPreviousSnapshot(t *testing.T) {
	sched, st, loader := newTestScheduler(t, nil)

	sched.RefreshCatalog()
	good := st.Catalog()
	require.NotEmpty(t, good.Pipelines)

	// Simulate a table that turns invalid after load.
	loader.Table().Sources[0].Teams = nil
	sched.RefreshCatalog()

	after := st.Catalog()
	assert.Equal(t, good.Version, after.Version, "failed cycle must not replace the snapshot")
	assert.Equal(t, good.Pipelines, after.Pipelines)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	sched, st, _ := newTestScheduler(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	// The initial cycle runs before the first tick.
	require.Eventually(t, func() bool { return st.Ready() }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}

func TestScheduler_TriggerManualIsNonBlocking(t *testing.T) {
	sched, _, _ := newTestScheduler(t, nil)
	// No Run loop draining the channel; repeated triggers must not block.
	for i := 0; i < 5; i++ {
		sched.TriggerManual()
	}
}
