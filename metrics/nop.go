package metrics

import "time"

// NopMetrics is a no-op implementation of the Metrics interface.
// Use this when metrics collection is disabled.
type NopMetrics struct{}

// NewNopMetrics creates a new NopMetrics instance.
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

func (m *NopMetrics) SetTipHeight(height uint64)            {}
func (m *NopMetrics) IncBlocksAccepted()                    {}
func (m *NopMetrics) IncBlocksRejected(reason string)       {}
func (m *NopMetrics) AddTxsApplied(count int)               {}
func (m *NopMetrics) IncTxsRejected(reason string)          {}
func (m *NopMetrics) SetAccountCount(count int)             {}
func (m *NopMetrics) ObserveSubmitDuration(d time.Duration) {}
func (m *NopMetrics) SetBlockSize(size int)                 {}

var _ Metrics = (*NopMetrics)(nil)
