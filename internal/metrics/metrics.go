// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ガード判定の結果ラベル。
const (
	OutcomeAllow        = "allow"
	OutcomeLogin        = "login"
	OutcomeRoleFallback = "role_fallback"
)

// MetricsCollector はメトリクス収集のインターフェース。
// APIクライアント、ルートガード、認証ハンドラーから利用する。
type MetricsCollector interface {
	RecordAPIRequest(method, endpoint string, status int, duration time.Duration)
	RecordGuardDecision(route, outcome string)
	RecordLogin(success bool)
	RecordLogout()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	guardDecision *prometheus.CounterVec
	logins        *prometheus.CounterVec
	logouts       prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manabi_api_requests_total",
			Help: "バックエンドAPI呼び出しの合計数（status=0はネットワークエラー）",
		}, []string{"method", "endpoint", "status_code"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "manabi_api_request_duration_seconds",
			Help:    "バックエンドAPI呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		guardDecision: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manabi_guard_decisions_total",
			Help: "ルートガードの判定結果別の合計数",
		}, []string{"route", "outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manabi_logins_total",
			Help: "ログイン試行の結果別の合計数",
		}, []string{"result"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "manabi_logouts_total",
			Help: "ログアウトの合計数",
		}),
	}

	reg.MustRegister(
		c.apiRequests,
		c.apiLatency,
		c.guardDecision,
		c.logins,
		c.logouts,
	)

	return c
}

// RecordAPIRequest はAPI呼び出しを記録する。
// endpointはパスパラメータを含むため、カーディナリティを抑えるためにテンプレート化する。
func (c *Collector) RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	endpoint = EndpointLabel(endpoint)
	c.apiRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	c.apiLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordGuardDecision はルートガードの判定を記録する。
func (c *Collector) RecordGuardDecision(route, outcome string) {
	c.guardDecision.WithLabelValues(route, outcome).Inc()
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

// RecordLogout はログアウトを記録する。
func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

// EndpointLabel は /courses/:id 形式のパスをラベル用にテンプレート化する。
func EndpointLabel(endpoint string) string {
	const prefix = "/courses/"
	if len(endpoint) <= len(prefix) || endpoint[:len(prefix)] != prefix {
		return endpoint
	}
	rest := endpoint[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return prefix + ":id" + rest[i:]
		}
	}
	return prefix + ":id"
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordAPIRequest(string, string, int, time.Duration) {}
func (Nop) RecordGuardDecision(string, string) {}
func (Nop) RecordLogin(bool) {}
func (Nop) RecordLogout() {}
