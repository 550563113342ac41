package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	contractx "github.com/tanpawarit/omnidim-call-relay/relay/contract"
)

const (
	namespace = "callrelay"

	// otherPurpose buckets every caller-supplied purpose outside the known set.
	otherPurpose = "other"
)

var knownPurposes = map[string]struct{}{
	contractx.PurposeDentalAppointment:     {},
	contractx.PurposeRestaurantReservation: {},
	contractx.PurposeMedicalAppointment:    {},
	contractx.PurposeGeneralInquiry:        {},
}

var (
	// callsTotal counts per-number dispatch outcomes.
	// Labels: purpose (one of the four known purposes or "other"), status (dispatched, failed)
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatch",
		Name:      "calls_total",
		Help:      "Outbound call dispatch attempts by call purpose and outcome",
	}, []string{"purpose", "status"})

	// rejectedTotal counts dispatch requests refused before any call was placed.
	// Labels: reason (not_configured, no_phone_numbers, bad_request)
	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatch",
		Name:      "rejected_total",
		Help:      "Dispatch requests rejected before dialing",
	}, []string{"reason"})

	// remoteLatencySeconds measures OmniDimension round trips.
	// Labels: operation (dispatch, fetch_log), outcome (ok, error)
	remoteLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "omnidim",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests to the OmniDimension API",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"operation", "outcome"})

	// httpRequestsTotal counts served API requests.
	// Labels: route, code
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served by route and status code",
	}, []string{"route", "code"})
)

func RecordCall(purpose string, status string) {
	callsTotal.WithLabelValues(purposeLabel(purpose), status).Inc()
}

func purposeLabel(purpose string) string {
	if _, ok := knownPurposes[purpose]; ok {
		return purpose
	}
	return otherPurpose
}

func RecordRejected(reason string) {
	rejectedTotal.WithLabelValues(reason).Inc()
}

// ObserveRemote records the latency of one OmniDimension request started at
// start.
func ObserveRemote(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	remoteLatencySeconds.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

func RecordHTTPRequest(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler exposes the default registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
