// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやミドルウェアから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordSignupSuccess()
	RecordSignupFailure()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordTodoCreated()
	RecordTodoCompleted()
	RecordTodoDeleted()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	signupSuccess  prometheus.Counter
	signupFail     prometheus.Counter
	loginSuccess   prometheus.Counter
	loginFail      prometheus.Counter
	todoCreated    prometheus.Counter
	todoCompleted  prometheus.Counter
	todoDeleted    prometheus.Counter
}

// コンパイル時のインターフェース実装チェック
var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoapi_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "todoapi_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		signupSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoapi_signup_success_total",
			Help: "サインアップ成功の合計数",
		}),
		signupFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoapi_signup_fail_total",
			Help: "サインアップ失敗の合計数",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoapi_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoapi_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		todoCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoapi_todo_created_total",
			Help: "作成されたTodoの合計数",
		}),
		todoCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoapi_todo_completed_total",
			Help: "完了状態が更新されたTodoの合計数",
		}),
		todoDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoapi_todo_deleted_total",
			Help: "削除されたTodoの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.signupSuccess,
		c.signupFail,
		c.loginSuccess,
		c.loginFail,
		c.todoCreated,
		c.todoCompleted,
		c.todoDeleted,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordSignupSuccess はサインアップ成功を記録する。
func (c *Collector) RecordSignupSuccess() {
	c.signupSuccess.Inc()
}

// RecordSignupFailure はサインアップ失敗を記録する。
func (c *Collector) RecordSignupFailure() {
	c.signupFail.Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordTodoCreated はTodo作成を記録する。
func (c *Collector) RecordTodoCreated() {
	c.todoCreated.Inc()
}

// RecordTodoCompleted はTodo完了状態の更新を記録する。
func (c *Collector) RecordTodoCompleted() {
	c.todoCompleted.Inc()
}

// RecordTodoDeleted はTodo削除を記録する。
func (c *Collector) RecordTodoDeleted() {
	c.todoDeleted.Inc()
}

// NoopCollector は何も記録しないMetricsCollector実装。
// メトリクスが不要なテストで使用する。
type NoopCollector struct{}

var _ MetricsCollector = (*NoopCollector)(nil)

func (NoopCollector) RecordHTTPStatus(statusCode int)             {}
func (NoopCollector) RecordRequestLatency(duration time.Duration) {}
func (NoopCollector) RecordSignupSuccess()                        {}
func (NoopCollector) RecordSignupFailure()                        {}
func (NoopCollector) RecordLoginSuccess()                         {}
func (NoopCollector) RecordLoginFailure()                         {}
func (NoopCollector) RecordTodoCreated()                          {}
func (NoopCollector) RecordTodoCompleted()                        {}
func (NoopCollector) RecordTodoDeleted()                          {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
