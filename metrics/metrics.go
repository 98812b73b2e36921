// Package metrics provides observability for the chain engine.
package metrics

import "time"

// Metrics is the instrumentation surface of the chain engine. All methods are
// purely observational; the protocol result never depends on them.
type Metrics interface {
	// SetTipHeight records the height of the current chain tip.
	SetTipHeight(height uint64)

	// IncBlocksAccepted counts blocks that extended the tip.
	IncBlocksAccepted()

	// IncBlocksRejected counts rejected blocks by rejection reason.
	IncBlocksRejected(reason string)

	// AddTxsApplied counts transactions applied by accepted blocks.
	AddTxsApplied(count int)

	// IncTxsRejected counts transaction rejections by reason.
	IncTxsRejected(reason string)

	// SetAccountCount records the number of non-zero accounts in state.
	SetAccountCount(count int)

	// ObserveSubmitDuration records the wall time of one SubmitBlock call.
	ObserveSubmitDuration(d time.Duration)

	// SetBlockSize records the canonical size of the latest accepted block.
	SetBlockSize(size int)
}
