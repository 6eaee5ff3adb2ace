package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/hourgate/internal/config"
	"github.com/loykin/hourgate/internal/history/sqlite"
	"github.com/loykin/hourgate/internal/process"
	"github.com/loykin/hourgate/internal/scheduler"
)

type fakeController struct {
	mu      sync.Mutex
	running map[string]bool
	stops   int
}

func (f *fakeController) Start(_ context.Context, p process.Spec) process.CommandResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running[p.ExecutableName()] = true
	return process.CommandResult{Command: "start " + p.LaunchPath}
}

func (f *fakeController) Stop(_ context.Context, p process.Spec) process.CommandResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	delete(f.running, p.ExecutableName())
	return process.CommandResult{Command: "kill " + p.ExecutableName()}
}

func (f *fakeController) IsRunning(_ context.Context, p process.Spec) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running[p.ExecutableName()], nil
}

func (f *fakeController) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func testConfig(closeAt, openAt string) *config.Config {
	return &config.Config{
		Scheduler: scheduler.Config{
			Close:  closeAt,
			Open:   openAt,
			Period: time.Hour,
			Processes: []process.Spec{
				{Name: "SyncA", Executable: "SyncA", LaunchPath: "/opt/SyncA/SyncA.appref-ms"},
			},
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clockAt(h, m int) func() time.Time {
	return func() time.Time { return time.Date(2024, 3, 10, h, m, 0, 0, time.Local) }
}

func TestHostClosesInsideWindowAndRecordsHistory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "history.db")
	cfg := testConfig("19:05", "19:10")
	cfg.HistoryDSN = dsn

	ctrl := &fakeController{running: map[string]bool{"SyncA": true}}
	h := New(cfg, quietLogger(),
		WithController(ctrl),
		WithClock(clockAt(19, 6)),
		WithRegisterer(prometheus.NewRegistry()))

	require.NoError(t, h.OnStart(nil))
	require.Eventually(t, func() bool { return ctrl.stopCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return h.Status().LastTick != nil }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "armed", h.Status().State)

	h.OnStop()
	assert.Equal(t, "stopped", h.Status().State)

	sink, err := sqlite.New(dsn)
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()
	events, err := sink.Recent(context.Background(), "SyncA", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "close", string(events[0].Type))
}

func TestHostInvalidScheduleStaysStopped(t *testing.T) {
	cfg := testConfig("7pm", "19:10")
	cfg.ServerListen = "127.0.0.1:0"
	h := New(cfg, quietLogger(),
		WithController(&fakeController{running: map[string]bool{}}),
		WithRegisterer(prometheus.NewRegistry()))

	err := h.OnStart(nil)
	require.Error(t, err)
	assert.Equal(t, "stopped", h.Status().State)

	// the status server still reports the disarmed schedule
	addr, err := h.StatusAddr()
	require.NoError(t, err)
	resp, err := http.Get("http://" + addr + "/status")
	require.NoError(t, err)
	var st scheduler.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	_ = resp.Body.Close()
	assert.Equal(t, "stopped", st.State)

	h.OnStop()
	h.OnStop()
}

func TestHostServesStatus(t *testing.T) {
	cfg := testConfig("19:05", "19:10")
	cfg.ServerListen = "127.0.0.1:0"
	h := New(cfg, quietLogger(),
		WithController(&fakeController{running: map[string]bool{}}),
		WithClock(clockAt(12, 0)),
		WithRegisterer(prometheus.NewRegistry()))

	require.NoError(t, h.OnStart([]string{"run"}))
	defer h.OnStop()

	addr, err := h.StatusAddr()
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/status")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st scheduler.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "armed", st.State)
	assert.Equal(t, "19:05-19:10", st.Window)
}

func TestHostStatusBeforeStart(t *testing.T) {
	h := New(testConfig("19:05", "19:10"), nil)
	assert.Equal(t, "stopped", h.Status().State)
	_, err := h.StatusAddr()
	assert.Error(t, err)
}
