// Package state manages the sync status and notification lifecycle of the
// monitored nodes.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abumaher/syncwatch/foundation/monitor/rpc"
	"github.com/abumaher/syncwatch/foundation/registry"
)

// EventHandler defines a function that is called when events occur in the
// processing of monitoring nodes.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for the background polling operation.
type Worker interface {
	Shutdown()
}

// Notifier interface represents the behavior required to be implemented by
// any package providing push-notification delivery.
type Notifier interface {
	Send(ctx context.Context, title string, message string) error
}

// NodeStatus is the externally visible status of a single node, served by
// the status API.
type NodeStatus struct {
	URL          string    `json:"url"`
	CurrentBlock uint64    `json:"current_block"`
	TargetBlock  uint64    `json:"target_block"`
	Peers        int       `json:"peers"`
	Syncing      bool      `json:"syncing"`
	Synced       bool      `json:"synced"`
	Notified     bool      `json:"notified"`
	Metrics      Metrics   `json:"metrics"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Config represents the dependencies required to create a State.
type Config struct {
	Registry  *registry.Registry
	Client    *rpc.Client
	Notifier  Notifier
	EvHandler EventHandler
}

// State manages the monitoring state of all configured nodes.
type State struct {
	mu sync.RWMutex

	registry  *registry.Registry
	client    *rpc.Client
	notifier  Notifier
	evHandler EventHandler

	history map[string]observation
	latest  map[string]NodeStatus

	// Worker is the polling loop driving this state. It is registered by the
	// worker package during startup.
	Worker Worker
}

// New constructs a new State for monitoring the registered nodes.
func New(cfg Config) (*State, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Notifier == nil {
		return nil, errors.New("notifier is required")
	}

	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	st := State{
		registry:  cfg.Registry,
		client:    cfg.Client,
		notifier:  cfg.Notifier,
		evHandler: ev,
		history:   make(map[string]observation),
		latest:    make(map[string]NodeStatus),
	}

	return &st, nil
}

// Shutdown stops the polling worker if one is registered.
func (s *State) Shutdown() {
	if s.Worker != nil {
		s.Worker.Shutdown()
	}
}

// Nodes returns a copy of the registered nodes.
func (s *State) Nodes() map[string]registry.Node {
	return s.registry.CopyNodes()
}

// Topic returns the ntfy topic notifications are published to.
func (s *State) Topic() string {
	return s.registry.Topic()
}

// QuerySyncState fetches a fresh sync snapshot for the specified node URL.
func (s *State) QuerySyncState(ctx context.Context, url string) (rpc.SyncSnapshot, error) {
	return s.client.SyncState(ctx, url)
}

// Synced reports whether a snapshot represents a fully synced node. A single
// block of lag is tolerated because the chain head keeps advancing while the
// node is polled.
func Synced(snap rpc.SyncSnapshot) bool {
	if snap.TargetBlock == 0 {
		return false
	}

	return !snap.IsSyncing || snap.CurrentBlock+1 >= snap.TargetBlock
}

// RecordSnapshot folds a fresh snapshot into the node's history and returns
// the metrics derived from it.
func (s *State) RecordSnapshot(name string, snap rpc.SyncSnapshot) Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hasPrev := s.history[name]
	metrics := computeMetrics(prev, hasPrev, snap)

	s.history[name] = observation{block: snap.CurrentBlock, at: snap.Timestamp}

	node := s.registry.CopyNodes()[name]
	s.latest[name] = NodeStatus{
		URL:          node.URL,
		CurrentBlock: snap.CurrentBlock,
		TargetBlock:  snap.TargetBlock,
		Peers:        snap.Peers,
		Syncing:      snap.IsSyncing,
		Synced:       Synced(snap),
		Notified:     node.Notified,
		Metrics:      metrics,
		UpdatedAt:    snap.Timestamp,
	}

	return metrics
}

// Statuses returns the most recent status of every node that has been
// polled at least once.
func (s *State) Statuses() map[string]NodeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make(map[string]NodeStatus, len(s.latest))
	for name, status := range s.latest {
		statuses[name] = status
	}

	return statuses
}

// EvaluateNotify delivers the full-sync notification for a node exactly once.
// The notified flag is only persisted after a successful delivery, so a
// failed delivery is retried on the next cycle in which the node is still
// synced. The flag is never reset here when a notified node falls behind
// again; re-arming is an operator decision.
func (s *State) EvaluateNotify(ctx context.Context, name string, snap rpc.SyncSnapshot) error {
	notified := s.registry.Notified(name)

	if !Synced(snap) {
		if notified {
			s.evHandler("state: node %s is syncing again after notification, flag left set", name)
		}
		return nil
	}

	if notified {
		return nil
	}

	message := fmt.Sprintf("Node %s is now fully synced at block %d", name, snap.CurrentBlock)
	if err := s.notifier.Send(ctx, "Node synced", message); err != nil {
		return fmt.Errorf("notifying for node %s: %w", name, err)
	}

	if err := s.registry.MarkNotified(name); err != nil {
		return fmt.Errorf("recording notification for node %s: %w", name, err)
	}

	s.mu.Lock()
	if status, exists := s.latest[name]; exists {
		status.Notified = true
		s.latest[name] = status
	}
	s.mu.Unlock()

	s.evHandler("state: notified: node %s fully synced at block %d", name, snap.CurrentBlock)

	return nil
}
