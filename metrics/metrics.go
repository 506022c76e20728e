// Package metrics implements optional Prometheus instrumentation of the
// session engine: counters for frames sent/received, RFQ round trips,
// backend errors, and COPY rows. Wired as a nil-safe session.Hooks
// implementation so an unconfigured *Collector is always safe to pass in.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pgwireclient/pgwire/pkg/types"
	"github.com/pgwireclient/pgwire/session"
)

var _ session.Hooks = (*Collector)(nil)

// Collector bundles the counters a Session reports through, satisfying
// session.Hooks. A nil *Collector is safe to use: every method no-ops.
type Collector struct {
	FramesSent         *prometheus.CounterVec
	FramesReceived     *prometheus.CounterVec
	ReadyForQueryTotal prometheus.Counter
	BackendErrors      prometheus.Counter
	CopyRows           prometheus.Counter
}

// NewCollector builds a Collector and registers its metrics with reg. Pass
// prometheus.NewRegistry() for an isolated registry, or nil to use the
// default global one.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Number of frontend messages sent, by message type.",
		}, []string{"type"}),
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Number of backend messages received, by message type.",
		}, []string{"type"}),
		ReadyForQueryTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ready_for_query_total",
			Help:      "Number of ReadyForQuery messages observed.",
		}),
		BackendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Number of ErrorResponse messages observed.",
		}),
		CopyRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "copy_rows_total",
			Help:      "Number of CopyData frames observed during COPY.",
		}),
	}

	reg.MustRegister(c.FramesSent, c.FramesReceived, c.ReadyForQueryTotal, c.BackendErrors, c.CopyRows)
	return c
}

// FrameSent implements session.Hooks.
func (c *Collector) FrameSent(t types.FrontendMessage) {
	if c == nil {
		return
	}

	c.FramesSent.WithLabelValues(t.String()).Inc()
}

// FrameReceived implements session.Hooks.
func (c *Collector) FrameReceived(t types.BackendMessage) {
	if c == nil {
		return
	}

	c.FramesReceived.WithLabelValues(t.String()).Inc()
}

// ReadyForQuery implements session.Hooks.
func (c *Collector) ReadyForQuery() {
	if c == nil {
		return
	}

	c.ReadyForQueryTotal.Inc()
}

// BackendErrorObserved implements session.Hooks.
func (c *Collector) BackendErrorObserved() {
	if c == nil {
		return
	}

	c.BackendErrors.Inc()
}

// CopyRow implements session.Hooks.
func (c *Collector) CopyRow() {
	if c == nil {
		return
	}

	c.CopyRows.Inc()
}
