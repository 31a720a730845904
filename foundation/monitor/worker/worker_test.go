package worker_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abumaher/syncwatch/foundation/monitor/rpc"
	"github.com/abumaher/syncwatch/foundation/monitor/state"
	"github.com/abumaher/syncwatch/foundation/monitor/worker"
	"github.com/abumaher/syncwatch/foundation/registry"
)

// mockStorage is an in-memory registry.Storage for testing.
type mockStorage struct {
	file registry.File
}

func (m *mockStorage) Load() (registry.File, error) { return m.file, nil }
func (m *mockStorage) Save(file registry.File) error {
	return nil
}

// mockNotifier records deliveries.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockNotifier) Send(ctx context.Context, title string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, message)

	return nil
}

func (m *mockNotifier) sendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.messages)
}

// eventRecorder captures evHandler output for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) ev(v string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, fmt.Sprintf(v, args...))
}

func (r *eventRecorder) contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, event := range r.events {
		if strings.Contains(event, substr) {
			return true
		}
	}

	return false
}

// newSyncedNodeServer fakes a node that reports itself fully synced.
func newSyncedNodeServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("error: decoding request: %v", err)
		}

		switch req.Method {
		case "system_syncState":
			fmt.Fprint(w, `{"jsonrpc":"2.0","result":{"startingBlock":0,"currentBlock":100,"highestBlock":100},"id":1}`)
		case "system_health":
			fmt.Fprint(w, `{"jsonrpc":"2.0","result":{"peers":5,"isSyncing":false,"shouldHavePeers":true},"id":1}`)
		}
	}))
}

func TestCycleIsolatesNodeFailures(t *testing.T) {
	nodeA := newSyncedNodeServer(t)
	defer nodeA.Close()

	// node-b is unreachable: bring a server up for a valid URL, then stop it.
	nodeB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	nodeB.Close()

	storage := &mockStorage{
		file: registry.File{
			NtfyTopic: "alerts",
			Nodes: map[string]registry.Node{
				"node-a": {URL: nodeA.URL},
				"node-b": {URL: nodeB.URL},
			},
		},
	}

	reg, err := registry.New(storage, nil)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	notifier := &mockNotifier{}
	recorder := &eventRecorder{}

	st, err := state.New(state.Config{
		Registry:  reg,
		Client:    rpc.New(time.Second),
		Notifier:  notifier,
		EvHandler: recorder.ev,
	})
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	// A long interval keeps the background G idle; the initial cycle runs
	// synchronously inside Run.
	worker.Run(st, time.Hour, recorder.ev)
	defer st.Shutdown()

	// node-a was processed normally and notified.
	if notifier.sendCount() != 1 {
		t.Fatalf("error: expected 1 notification for node-a, got %d", notifier.sendCount())
	}
	if !reg.Notified("node-a") {
		t.Error("error: expected node-a to be marked notified")
	}

	statuses := st.Statuses()
	status, exists := statuses["node-a"]
	if !exists {
		t.Fatal("error: expected a status entry for node-a")
	}
	if !status.Synced {
		t.Error("error: expected node-a to report synced")
	}

	// node-b was skipped, logged, and did not poison the cycle.
	if _, exists := statuses["node-b"]; exists {
		t.Error("error: expected no status entry for unreachable node-b")
	}
	if !recorder.contains("node-b: unreachable") {
		t.Error("error: expected node-b to be logged as unreachable")
	}
	if recorder.contains("node-b: ERROR") {
		t.Error("error: expected no hard error for node-b")
	}
}

func TestRepeatedCyclesNotifyOnce(t *testing.T) {
	nodeA := newSyncedNodeServer(t)
	defer nodeA.Close()

	storage := &mockStorage{
		file: registry.File{
			NtfyTopic: "alerts",
			Nodes: map[string]registry.Node{
				"node-a": {URL: nodeA.URL},
			},
		},
	}

	reg, err := registry.New(storage, nil)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	notifier := &mockNotifier{}
	recorder := &eventRecorder{}

	st, err := state.New(state.Config{
		Registry:  reg,
		Client:    rpc.New(time.Second),
		Notifier:  notifier,
		EvHandler: recorder.ev,
	})
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	worker.Run(st, time.Hour, recorder.ev)
	defer st.Shutdown()

	// Drive extra cycles directly, as the ticker would.
	if w, ok := st.Worker.(*worker.Worker); ok {
		w.Sync()
		w.Sync()
	} else {
		t.Fatal("error: expected the worker to be registered with the state")
	}

	if notifier.sendCount() != 1 {
		t.Errorf("error: expected 1 notification across cycles, got %d", notifier.sendCount())
	}
}

func TestShutdown(t *testing.T) {
	nodeA := newSyncedNodeServer(t)
	defer nodeA.Close()

	storage := &mockStorage{
		file: registry.File{
			NtfyTopic: "alerts",
			Nodes:     map[string]registry.Node{"node-a": {URL: nodeA.URL}},
		},
	}

	reg, err := registry.New(storage, nil)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	st, err := state.New(state.Config{
		Registry: reg,
		Client:   rpc.New(time.Second),
		Notifier: &mockNotifier{},
	})
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	recorder := &eventRecorder{}
	worker.Run(st, 10*time.Millisecond, recorder.ev)

	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		st.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("error: shutdown did not complete in time")
	}
}
