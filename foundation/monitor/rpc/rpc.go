// Package rpc issues the JSON-RPC queries that read a node's sync state.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultTimeout = 5 * time.Second

// Client provides access to the sync related RPC surface of a node. A single
// Client is shared across all monitored nodes.
type Client struct {
	http *http.Client
}

// New constructs a Client with the specified per-request timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// SyncState queries the specified node for its current sync progress and
// connectivity. It issues the system_syncState and system_health calls and
// folds both results into a single snapshot.
func (c *Client) SyncState(ctx context.Context, url string) (SyncSnapshot, error) {
	var ss syncState
	if err := c.call(ctx, url, "system_syncState", &ss); err != nil {
		return SyncSnapshot{}, err
	}

	var h health
	if err := c.call(ctx, url, "system_health", &h); err != nil {
		return SyncSnapshot{}, err
	}

	snapshot := SyncSnapshot{
		CurrentBlock: ss.CurrentBlock,
		TargetBlock:  ss.HighestBlock,
		Peers:        h.Peers,
		IsSyncing:    h.IsSyncing,
		Timestamp:    time.Now().UTC(),
	}

	return snapshot, nil
}

// call performs a single JSON-RPC request and decodes the result into the
// provided value.
func (c *Client) call(ctx context.Context, url string, method string, result any) error {
	payload, err := json.Marshal(request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  []any{},
		ID:      1,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &NetworkError{URL: url, Err: fmt.Errorf("status code %d", resp.StatusCode)}
	}

	var rpcResp response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return &ProtocolError{URL: url, Err: err}
	}

	if rpcResp.Error != nil {
		return &ProtocolError{URL: url, Err: fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)}
	}

	if len(rpcResp.Result) == 0 {
		return &ProtocolError{URL: url, Err: errors.New("missing result")}
	}

	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return &ProtocolError{URL: url, Err: fmt.Errorf("decoding %s result: %w", method, err)}
	}

	return nil
}
