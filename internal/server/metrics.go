package server

import (
	"sync/atomic"
	"time"

	"github.com/Brownie44l1/fileserver/internal/response"
)

// Metrics holds server runtime metrics
type Metrics struct {
	ConnectionsTotal  atomic.Int64
	ActiveConnections atomic.Int64
	ResponsesOK       atomic.Int64
	Responses4xx      atomic.Int64
	Responses5xx      atomic.Int64
	Aborted           atomic.Int64 // closed without a complete response
	BytesSent         atomic.Int64

	TotalLatencyNs atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordResponse records a response that was written in full
func (m *Metrics) RecordResponse(code response.StatusCode, bodyBytes int64, duration time.Duration) {
	m.BytesSent.Add(bodyBytes)
	m.TotalLatencyNs.Add(duration.Nanoseconds())

	switch {
	case code.IsSuccess():
		m.ResponsesOK.Add(1)
	case code.IsClientError():
		m.Responses4xx.Add(1)
	case code.IsServerError():
		m.Responses5xx.Add(1)
	}
}

func (m *Metrics) RecordAborted() {
	m.Aborted.Add(1)
}

// AverageLatency returns average latency of completed responses
func (m *Metrics) AverageLatency() time.Duration {
	completed := m.ResponsesOK.Load() + m.Responses4xx.Load() + m.Responses5xx.Load()
	if completed == 0 {
		return 0
	}
	return time.Duration(m.TotalLatencyNs.Load() / completed)
}

type MetricsSnapshot struct {
	ConnectionsTotal  int64
	ActiveConnections int64
	ResponsesOK       int64
	Responses4xx      int64
	Responses5xx      int64
	Aborted           int64
	BytesSent         int64
	AverageLatency    time.Duration
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ConnectionsTotal:  m.ConnectionsTotal.Load(),
		ActiveConnections: m.ActiveConnections.Load(),
		ResponsesOK:       m.ResponsesOK.Load(),
		Responses4xx:      m.Responses4xx.Load(),
		Responses5xx:      m.Responses5xx.Load(),
		Aborted:           m.Aborted.Load(),
		BytesSent:         m.BytesSent.Load(),
		AverageLatency:    m.AverageLatency(),
	}
}
