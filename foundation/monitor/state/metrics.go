package state

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/abumaher/syncwatch/foundation/monitor/rpc"
)

// blockInterval is the assumed block production time used to express the
// remaining block count as a wall-clock age.
const blockInterval = 6 * time.Second

// Metrics holds the progress figures derived from a node's snapshot history.
type Metrics struct {
	BlocksRemaining uint64        `json:"blocks_remaining"`
	RatePerSec      float64       `json:"rate_per_sec"`
	Percent         float64       `json:"percent"`
	HasPercent      bool          `json:"has_percent"`
	ETA             time.Duration `json:"eta"`
	HasETA          bool          `json:"has_eta"`
	BlockAge        time.Duration `json:"block_age"`
}

// ETAString renders the ETA for humans, or "unknown" while the rate can't be
// established yet.
func (m Metrics) ETAString() string {
	if !m.HasETA {
		return "unknown"
	}

	return FormatDuration(m.ETA)
}

// PercentString renders the progress percentage, or "n/a" while the node has
// no target block.
func (m Metrics) PercentString() string {
	if !m.HasPercent {
		return "n/a"
	}

	return fmt.Sprintf("%.2f%%", m.Percent)
}

// observation is a single (block, time) measurement kept per node to derive
// the sync rate between consecutive cycles.
type observation struct {
	block uint64
	at    time.Time
}

// computeMetrics derives the progress figures for a snapshot given the
// previous observation for the same node. The rate is clamped to zero on
// non-monotonic block or clock readings.
func computeMetrics(prev observation, hasPrev bool, snap rpc.SyncSnapshot) Metrics {
	var m Metrics

	if snap.TargetBlock > snap.CurrentBlock {
		m.BlocksRemaining = snap.TargetBlock - snap.CurrentBlock
	}
	m.BlockAge = time.Duration(m.BlocksRemaining) * blockInterval

	if snap.TargetBlock > 0 {
		m.HasPercent = true
		m.Percent = float64(snap.CurrentBlock) / float64(snap.TargetBlock) * 100
		m.Percent = math.Min(math.Max(m.Percent, 0), 100)
	}

	if hasPrev {
		elapsed := snap.Timestamp.Sub(prev.at).Seconds()
		if elapsed > 0 && snap.CurrentBlock > prev.block {
			m.RatePerSec = float64(snap.CurrentBlock-prev.block) / elapsed
		}
	}

	if m.RatePerSec > 0 {
		m.HasETA = true
		m.ETA = time.Duration(float64(m.BlocksRemaining)/m.RatePerSec) * time.Second
	}

	return m
}

// FormatDuration converts a duration into a compact human-readable form
// like "1d 2h 3m 4s".
func FormatDuration(d time.Duration) string {
	total := int64(d.Seconds())
	if total < 0 {
		total = 0
	}

	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	return strings.Join(parts, " ")
}
