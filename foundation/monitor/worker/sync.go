package worker

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/abumaher/syncwatch/foundation/monitor/rpc"
	"github.com/abumaher/syncwatch/foundation/monitor/state"
)

// Sync performs one polling cycle over every registered node. Failures are
// isolated per node so one unreachable node never blocks the rest of the
// cycle.
func (w *Worker) Sync() {
	traceID := uuid.NewString()

	w.evHandler("worker: sync: started: traceid[%s]", traceID)
	defer w.evHandler("worker: sync: completed: traceid[%s]", traceID)

	ctx := context.Background()

	for name, node := range w.state.Nodes() {
		snap, err := w.state.QuerySyncState(ctx, node.URL)
		if err != nil {
			var netErr *rpc.NetworkError
			switch {
			case errors.As(err, &netErr):
				w.evHandler("worker: sync: %s: unreachable: %s", name, err)
			default:
				w.evHandler("worker: sync: %s: ERROR: %s", name, err)
			}
			continue
		}

		metrics := w.state.RecordSnapshot(name, snap)

		w.evHandler("worker: sync: %s: current[%d] target[%d] synced[%t] progress[%s] remaining[%d] rate[%.2f blk/s] eta[%s] age[%s]",
			name, snap.CurrentBlock, snap.TargetBlock, state.Synced(snap), metrics.PercentString(),
			metrics.BlocksRemaining, metrics.RatePerSec, metrics.ETAString(), state.FormatDuration(metrics.BlockAge))

		if snap.Peers == 0 {
			w.evHandler("worker: sync: %s: degraded: no peers connected", name)
		}

		if err := w.state.EvaluateNotify(ctx, name, snap); err != nil {
			w.evHandler("worker: sync: %s: ERROR: %s", name, err)
		}
	}
}
