// Package registry maintains the set of monitored nodes and the durable
// record of which nodes have already been notified.
package registry

import (
	"fmt"
	"sync"
)

// Storage interface represents the behavior required to be implemented by any
// package providing durability for the registry document.
type Storage interface {
	Load() (File, error)
	Save(File) error
}

// Registry manages the in-memory copy of the registry document and keeps it
// in sync with the backing storage.
type Registry struct {
	mu sync.RWMutex

	file    File
	storage Storage

	evHandler func(v string, args ...any)
}

// New constructs a Registry by loading and validating the document from the
// provided storage.
func New(storage Storage, evHandler func(v string, args ...any)) (*Registry, error) {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	file, err := storage.Load()
	if err != nil {
		return nil, err
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}

	r := Registry{
		file:      file,
		storage:   storage,
		evHandler: evHandler,
	}

	return &r, nil
}

// Topic returns the ntfy topic notifications are published to.
func (r *Registry) Topic() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.file.NtfyTopic
}

// CopyNodes makes a copy of the current set of monitored nodes.
func (r *Registry) CopyNodes() map[string]Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := make(map[string]Node, len(r.file.Nodes))
	for name, node := range r.file.Nodes {
		nodes[name] = node
	}

	return nodes
}

// Notified reports whether a notification was already delivered for the
// specified node.
func (r *Registry) Notified(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.file.Nodes[name].Notified
}

// MarkNotified records that a notification was delivered for the specified
// node and persists the document. If persisting fails the in-memory flag is
// rolled back so the operation is retried on a later cycle.
func (r *Registry) MarkNotified(name string) error {
	return r.setNotified(name, true)
}

// ResetNotified re-arms notifications for the specified node and persists
// the document.
func (r *Registry) ResetNotified(name string) error {
	return r.setNotified(name, false)
}

func (r *Registry) setNotified(name string, notified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, exists := r.file.Nodes[name]
	if !exists {
		return fmt.Errorf("node %q not found in registry", name)
	}

	previous := node.Notified
	node.Notified = notified
	r.file.Nodes[name] = node

	if err := r.storage.Save(r.file); err != nil {
		node.Notified = previous
		r.file.Nodes[name] = node
		return fmt.Errorf("persisting registry: %w", err)
	}

	r.evHandler("registry: node %s notified flag set to %t", name, notified)

	return nil
}
