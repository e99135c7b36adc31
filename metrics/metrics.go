package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pccafe_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pccafe_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pccafe_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"limiter"},
	)

	// Metering Metrics
	MeterTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pccafe_meter_ticks_total",
			Help: "Metering ticks by result",
		},
		[]string{"result"},
	)

	MeterUsersDecremented = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pccafe_meter_users_decremented",
			Help: "Users whose remaining time was decremented by the last tick",
		},
	)

	SeatsOccupied = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pccafe_seats_occupied",
			Help: "Seats currently bound to a user",
		},
	)

	// Order Metrics
	OrdersCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pccafe_orders_created_total",
			Help: "Orders created by payment method",
		},
		[]string{"payment_method"},
	)

	TimePurchasedSeconds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pccafe_time_purchased_seconds_total",
			Help: "Usage seconds added, by source",
		},
		[]string{"source"},
	)
)

func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordTick(affected int64, err error) {
	if err != nil {
		MeterTicksTotal.WithLabelValues("error").Inc()
		return
	}
	MeterTicksTotal.WithLabelValues("ok").Inc()
	MeterUsersDecremented.Set(float64(affected))
}
