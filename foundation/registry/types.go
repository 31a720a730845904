package registry

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Node represents a single monitored node entry in the registry file. The
// Notified flag is the durable record that a full-sync notification has
// already been delivered for this node.
type Node struct {
	URL      string `json:"url" validate:"required,url"`
	Notified bool   `json:"notified"`
}

// File represents the on-disk registry document. Node entries are keyed by
// their unique operator-chosen name.
type File struct {
	NtfyTopic string          `json:"ntfy_topic" validate:"required"`
	Nodes     map[string]Node `json:"nodes" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Validate checks the registry document honors the schema constraints.
func (f File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid registry: %w", err)
	}

	return nil
}

// Sample returns a registry document with placeholder entries for the
// init tooling.
func Sample() File {
	return File{
		NtfyTopic: "my-sync-alerts",
		Nodes: map[string]Node{
			"mainnet-1": {URL: "http://127.0.0.1:9944"},
			"testnet-1": {URL: "http://127.0.0.1:9945"},
		},
	}
}
