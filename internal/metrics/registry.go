package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds all domain-specific metrics for the application.
type Registry struct {
	meter metric.Meter

	// Assessment metrics
	AssessmentDuration metric.Float64Histogram
	AssessmentCounter  metric.Int64Counter
	RiskScore          metric.Int64Histogram
	AmountSubScore     metric.Int64Histogram
	TimeSubScore       metric.Int64Histogram
	RecipientSubScore  metric.Int64Histogram

	// List override metrics
	BlacklistHitCounter metric.Int64Counter
	WhitelistHitCounter metric.Int64Counter
	ListLookupFailures  metric.Int64Counter

	// System metrics
	HistoryFetchDuration metric.Float64Histogram
	APIRequestDuration   metric.Float64Histogram
	APIRequestCounter    metric.Int64Counter
	AssessmentsPerSecond metric.Float64ObservableGauge

	mu             sync.RWMutex
	assessed       int64
	lastAssessed   int64
	lastSampleTime time.Time
}

// NewRegistry creates a metrics registry backed by the named otel meter.
func NewRegistry(meterName string) (*Registry, error) {
	r := &Registry{
		meter:          otel.Meter(meterName),
		lastSampleTime: time.Now(),
	}

	if err := r.initAssessmentMetrics(); err != nil {
		return nil, err
	}
	if err := r.initListMetrics(); err != nil {
		return nil, err
	}
	if err := r.initSystemMetrics(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Registry) initAssessmentMetrics() error {
	var err error

	r.AssessmentDuration, err = r.meter.Float64Histogram(
		"tre.assessment.duration",
		metric.WithDescription("Duration of a full risk assessment in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 500),
	)
	if err != nil {
		return err
	}

	r.AssessmentCounter, err = r.meter.Int64Counter(
		"tre.assessment.total",
		metric.WithDescription("Total assessments by decision"),
	)
	if err != nil {
		return err
	}

	r.RiskScore, err = r.meter.Int64Histogram(
		"tre.assessment.risk_score",
		metric.WithDescription("Distribution of aggregate risk scores"),
		metric.WithExplicitBucketBoundaries(0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	)
	if err != nil {
		return err
	}

	subScoreBuckets := metric.WithExplicitBucketBoundaries(0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100)

	r.AmountSubScore, err = r.meter.Int64Histogram(
		"tre.detector.amount_score",
		metric.WithDescription("Amount detector sub-score distribution"),
		subScoreBuckets,
	)
	if err != nil {
		return err
	}

	r.TimeSubScore, err = r.meter.Int64Histogram(
		"tre.detector.time_score",
		metric.WithDescription("Time detector sub-score distribution"),
		subScoreBuckets,
	)
	if err != nil {
		return err
	}

	r.RecipientSubScore, err = r.meter.Int64Histogram(
		"tre.detector.recipient_score",
		metric.WithDescription("Recipient detector sub-score distribution"),
		subScoreBuckets,
	)
	return err
}

func (r *Registry) initListMetrics() error {
	var err error

	r.BlacklistHitCounter, err = r.meter.Int64Counter(
		"tre.list.blacklist_hits",
		metric.WithDescription("Assessments forced to BLOCK by a blacklisted payee"),
	)
	if err != nil {
		return err
	}

	r.WhitelistHitCounter, err = r.meter.Int64Counter(
		"tre.list.whitelist_hits",
		metric.WithDescription("Assessments capped by a whitelisted payee"),
	)
	if err != nil {
		return err
	}

	r.ListLookupFailures, err = r.meter.Int64Counter(
		"tre.list.lookup_failures",
		metric.WithDescription("List lookups that failed and degraded to unknown"),
	)
	return err
}

func (r *Registry) initSystemMetrics() error {
	var err error

	r.HistoryFetchDuration, err = r.meter.Float64Histogram(
		"tre.history.fetch_duration",
		metric.WithDescription("Duration of user history fetches in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	r.APIRequestDuration, err = r.meter.Float64Histogram(
		"tre.api.request_duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	r.APIRequestCounter, err = r.meter.Int64Counter(
		"tre.api.requests_total",
		metric.WithDescription("Total HTTP requests by route and status"),
	)
	if err != nil {
		return err
	}

	r.AssessmentsPerSecond, err = r.meter.Float64ObservableGauge(
		"tre.assessment.throughput_per_second",
		metric.WithDescription("Current assessment throughput per second"),
		metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			now := time.Now()
			elapsed := now.Sub(r.lastSampleTime).Seconds()
			if elapsed > 0 {
				o.Observe(float64(r.assessed-r.lastAssessed) / elapsed)
			}
			r.lastAssessed = r.assessed
			r.lastSampleTime = now
			return nil
		}),
	)
	return err
}

// RecordAssessment records the outcome of one completed assessment.
func (r *Registry) RecordAssessment(ctx context.Context, decision string, score, amountScore, timeScore, recipientScore int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("decision", decision))
	r.AssessmentCounter.Add(ctx, 1, attrs)
	r.AssessmentDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	r.RiskScore.Record(ctx, int64(score))
	r.AmountSubScore.Record(ctx, int64(amountScore))
	r.TimeSubScore.Record(ctx, int64(timeScore))
	r.RecipientSubScore.Record(ctx, int64(recipientScore))

	r.mu.Lock()
	r.assessed++
	r.mu.Unlock()
}

// RecordAPIRequest records one served HTTP request.
func (r *Registry) RecordAPIRequest(ctx context.Context, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	r.APIRequestCounter.Add(ctx, 1, attrs)
	r.APIRequestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}
