package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "heirloom"

// Registry holds every collector exported on /metrics
var Registry = prometheus.NewRegistry()

var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	AllocationsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocations_created_total",
		Help:      "Crypto allocations created.",
	})

	Disbursements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "disbursements_total",
		Help:      "Disbursement runs by outcome.",
	}, []string{"outcome"})

	AllocationsDisbursed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocations_disbursed_total",
		Help:      "Allocations moved to disbursed.",
	})

	InheritedAssetsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inherited_assets_created_total",
		Help:      "Inherited crypto assets cloned into beneficiary accounts.",
	})

	InheritanceTriggered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inheritance_triggered_total",
		Help:      "Owners marked deceased by an approved verification.",
	})

	VerificationDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_decisions_total",
		Help:      "Verification requests reviewed, by resulting status.",
	}, []string{"status"})

	AccessTokenChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_token_checks_total",
		Help:      "Beneficiary access token verifications by result.",
	}, []string{"result"})

	AccessTokensSwept = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_tokens_swept_total",
		Help:      "Expired beneficiary access tokens cleared.",
	})

	MessagesDelivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_delivered_total",
		Help:      "Time capsule messages released, by delivery condition.",
	}, []string{"condition"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestDuration,
		AllocationsCreated,
		Disbursements,
		AllocationsDisbursed,
		InheritedAssetsCreated,
		InheritanceTriggered,
		VerificationDecisions,
		AccessTokenChecks,
		AccessTokensSwept,
		MessagesDelivered,
	)
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// Middleware observes request latency labelled by the matched route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
