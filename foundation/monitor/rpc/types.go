package rpc

import (
	"encoding/json"
	"time"
)

// request is the JSON-RPC 2.0 envelope sent to a node.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

// response is the JSON-RPC 2.0 envelope returned by a node.
type response struct {
	Result json.RawMessage `json:"result"`
	Error  *responseError  `json:"error"`
}

type responseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// syncState is the result shape of the system_syncState call.
type syncState struct {
	StartingBlock uint64 `json:"startingBlock"`
	CurrentBlock  uint64 `json:"currentBlock"`
	HighestBlock  uint64 `json:"highestBlock"`
}

// health is the result shape of the system_health call.
type health struct {
	Peers           int  `json:"peers"`
	IsSyncing       bool `json:"isSyncing"`
	ShouldHavePeers bool `json:"shouldHavePeers"`
}

// SyncSnapshot captures the sync related state of a node at a single point
// in time.
type SyncSnapshot struct {
	CurrentBlock uint64
	TargetBlock  uint64
	Peers        int
	IsSyncing    bool
	Timestamp    time.Time
}
