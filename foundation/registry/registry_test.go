package registry_test

import (
	"errors"
	"testing"

	"github.com/abumaher/syncwatch/foundation/registry"
)

// mockStorage is an in-memory registry.Storage for testing.
type mockStorage struct {
	file    registry.File
	loadErr error
	saveErr error
	saves   int
}

func (m *mockStorage) Load() (registry.File, error) {
	if m.loadErr != nil {
		return registry.File{}, m.loadErr
	}

	return m.file, nil
}

func (m *mockStorage) Save(file registry.File) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}

	nodes := make(map[string]registry.Node, len(file.Nodes))
	for name, node := range file.Nodes {
		nodes[name] = node
	}
	m.file = registry.File{NtfyTopic: file.NtfyTopic, Nodes: nodes}

	return nil
}

func validFile() registry.File {
	return registry.File{
		NtfyTopic: "alerts",
		Nodes: map[string]registry.Node{
			"node-a": {URL: "http://127.0.0.1:9944"},
		},
	}
}

func TestNotifiedLifecycle(t *testing.T) {
	storage := &mockStorage{file: validFile()}

	reg, err := registry.New(storage, nil)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	if reg.Notified("node-a") {
		t.Fatal("error: expected node-a to start un-notified")
	}

	if err := reg.MarkNotified("node-a"); err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	if !reg.Notified("node-a") {
		t.Error("error: expected node-a to be notified")
	}
	if !storage.file.Nodes["node-a"].Notified {
		t.Error("error: expected notified flag to be persisted")
	}
	if storage.saves != 1 {
		t.Errorf("error: expected 1 save, got %d", storage.saves)
	}

	if err := reg.ResetNotified("node-a"); err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	if reg.Notified("node-a") {
		t.Error("error: expected node-a to be re-armed")
	}
	if storage.file.Nodes["node-a"].Notified {
		t.Error("error: expected reset flag to be persisted")
	}
}

func TestMarkNotifiedRollback(t *testing.T) {
	storage := &mockStorage{file: validFile()}

	reg, err := registry.New(storage, nil)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	storage.saveErr = errors.New("disk full")

	if err := reg.MarkNotified("node-a"); err == nil {
		t.Fatal("error: expected an error when persisting fails")
	}

	if reg.Notified("node-a") {
		t.Error("error: expected notified flag to roll back on persist failure")
	}
}

func TestUnknownNode(t *testing.T) {
	storage := &mockStorage{file: validFile()}

	reg, err := registry.New(storage, nil)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	if err := reg.MarkNotified("nope"); err == nil {
		t.Error("error: expected an error for an unknown node")
	}
	if storage.saves != 0 {
		t.Errorf("error: expected no saves, got %d", storage.saves)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		file registry.File
	}{
		{
			name: "missing topic",
			file: registry.File{
				Nodes: map[string]registry.Node{"a": {URL: "http://127.0.0.1:9944"}},
			},
		},
		{
			name: "no nodes",
			file: registry.File{NtfyTopic: "alerts"},
		},
		{
			name: "bad url",
			file: registry.File{
				NtfyTopic: "alerts",
				Nodes:     map[string]registry.Node{"a": {URL: "not a url"}},
			},
		},
		{
			name: "missing url",
			file: registry.File{
				NtfyTopic: "alerts",
				Nodes:     map[string]registry.Node{"a": {}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := registry.New(&mockStorage{file: tt.file}, nil); err == nil {
				t.Error("error: expected a validation error")
			}
		})
	}
}

func TestLoadFailure(t *testing.T) {
	storage := &mockStorage{loadErr: errors.New("no such file")}

	if _, err := registry.New(storage, nil); err == nil {
		t.Error("error: expected load errors to surface")
	}
}

func TestCopyNodesIsolation(t *testing.T) {
	storage := &mockStorage{file: validFile()}

	reg, err := registry.New(storage, nil)
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	nodes := reg.CopyNodes()
	nodes["node-a"] = registry.Node{URL: "http://evil", Notified: true}

	if reg.Notified("node-a") {
		t.Error("error: expected mutations of the copy to not affect the registry")
	}
}
