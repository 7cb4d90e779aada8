package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the customer booking flow.
type BookingMetrics struct {
	submissionsTotal *prometheus.CounterVec
	submitLatency    *prometheus.HistogramVec
	togglesTotal     *prometheus.CounterVec
	sessionsActive   prometheus.Gauge
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doorstep",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submission attempts by outcome",
		}, []string{"category", "outcome"}),
		submitLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "doorstep",
			Subsystem: "booking",
			Name:      "submit_latency_seconds",
			Help:      "Latency of a submission attempt including the Booking Service call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"category"}),
		togglesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doorstep",
			Subsystem: "booking",
			Name:      "selection_toggles_total",
			Help:      "Selection toggles by direction",
		}, []string{"category", "action"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "doorstep",
			Subsystem: "booking",
			Name:      "sessions_active",
			Help:      "Booking sessions opened and not yet closed by this process",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.submitLatency, m.togglesTotal, m.sessionsActive)
	return m
}

func (m *BookingMetrics) ObserveSubmission(category, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(category, outcome).Inc()
	m.submitLatency.WithLabelValues(category).Observe(seconds)
}

func (m *BookingMetrics) ObserveToggle(category string, selected bool) {
	if m == nil {
		return
	}
	action := "remove"
	if selected {
		action = "add"
	}
	m.togglesTotal.WithLabelValues(category, action).Inc()
}

func (m *BookingMetrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
}

func (m *BookingMetrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

// AppointmentMetrics exposes counters for the reference Booking Service.
type AppointmentMetrics struct {
	createdTotal  prometheus.Counter
	rejectedTotal *prometheus.CounterVec
	replaysTotal  prometheus.Counter
	publishErrors prometheus.Counter
}

func NewAppointmentMetrics(reg prometheus.Registerer) *AppointmentMetrics {
	m := &AppointmentMetrics{
		createdTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "doorstep",
			Subsystem: "appointments",
			Name:      "created_total",
			Help:      "Appointments stored",
		}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doorstep",
			Subsystem: "appointments",
			Name:      "rejected_total",
			Help:      "Appointment requests refused by validation",
		}, []string{"reason"}),
		replaysTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "doorstep",
			Subsystem: "appointments",
			Name:      "idempotent_replays_total",
			Help:      "Requests answered from a stored idempotency key",
		}),
		publishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "doorstep",
			Subsystem: "appointments",
			Name:      "publish_errors_total",
			Help:      "Domain events that failed to publish",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.rejectedTotal, m.replaysTotal, m.publishErrors)
	return m
}

func (m *AppointmentMetrics) ObserveCreated() {
	if m == nil {
		return
	}
	m.createdTotal.Inc()
}

func (m *AppointmentMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(reason).Inc()
}

func (m *AppointmentMetrics) ObserveReplay() {
	if m == nil {
		return
	}
	m.replaysTotal.Inc()
}

func (m *AppointmentMetrics) ObservePublishError() {
	if m == nil {
		return
	}
	m.publishErrors.Inc()
}
