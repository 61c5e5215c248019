package session

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Bootstrap outcomes recorded on the bootstrap counter.
const (
	OutcomeNoToken       = "no_token"
	OutcomeAuthenticated = "authenticated"
	OutcomeRejected      = "rejected"
	OutcomeDiscarded     = "discarded"
)

// Metrics holds the session's metric instruments. A nil *Metrics records nothing.
type Metrics struct {
	BootstrapCounter metric.Int64Counter
	ResolveDuration  metric.Float64Histogram
	LogoutCounter    metric.Int64Counter
}

// NewMetrics creates the instruments on provider, or on the global provider when nil.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter("shopadmin/session")

	bootstraps, err := meter.Int64Counter(
		"session.bootstrap.count",
		metric.WithDescription("Session bootstraps by outcome"),
		metric.WithUnit("{bootstrap}"),
	)
	if err != nil {
		return nil, err
	}

	resolveDuration, err := meter.Float64Histogram(
		"session.account.resolve.duration",
		metric.WithDescription("Account resolver call duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}

	logouts, err := meter.Int64Counter(
		"session.logout.count",
		metric.WithDescription("Logouts, by whether the server acknowledged"),
		metric.WithUnit("{logout}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		BootstrapCounter: bootstraps,
		ResolveDuration:  resolveDuration,
		LogoutCounter:    logouts,
	}, nil
}

func (m *Metrics) recordBootstrap(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.BootstrapCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) recordResolve(ctx context.Context, started time.Time, ok bool) {
	if m == nil {
		return
	}
	m.ResolveDuration.Record(ctx, float64(time.Since(started).Milliseconds()),
		metric.WithAttributes(attribute.Bool("success", ok)))
}

func (m *Metrics) recordLogout(ctx context.Context, acknowledged bool) {
	if m == nil {
		return
	}
	m.LogoutCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("acknowledged", acknowledged)))
}
