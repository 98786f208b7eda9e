// Package metrics 提供白名单 dApp 的 Prometheus 指标收集
//
// 所有方法都允许 nil 接收者，未注入 Collector 的组件无需判空。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const namespace = "whitelist"

// 调用结果标签
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Collector 指标收集器，持有独立的 Registry，避免测试之间重复注册
type Collector struct {
	registry *prometheus.Registry

	contractCalls   *prometheus.CounterVec
	txConfirmation  prometheus.Histogram
	whitelistCount  prometheus.Gauge
	pageTransitions *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector 创建指标收集器
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		contractCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "contract",
				Name:      "calls_total",
				Help:      "Total number of whitelist contract calls by operation and result",
			},
			[]string{"op", "result"},
		),
		txConfirmation: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "contract",
				Name:      "tx_confirmation_seconds",
				Help:      "Time from submission to on-chain confirmation of a transaction",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
			},
		),
		whitelistCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "page",
				Name:      "whitelisted_addresses",
				Help:      "Last observed number of whitelisted addresses",
			},
		),
		pageTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "page",
				Name:      "phase_transitions_total",
				Help:      "Page state machine transitions by target phase",
			},
			[]string{"phase"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "path"},
		),
	}
}

// Registry 返回底层 Registry
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler 返回 /metrics 处理器
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ContractCalls 合约调用计数器
func (c *Collector) ContractCalls() *prometheus.CounterVec {
	if c == nil {
		return nil
	}
	return c.contractCalls
}

// ObserveContractCall 记录一次合约调用
func (c *Collector) ObserveContractCall(op string, err error) {
	if c == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	c.contractCalls.WithLabelValues(op, result).Inc()
}

// ObserveConfirmation 记录交易确认耗时
func (c *Collector) ObserveConfirmation(d time.Duration) {
	if c == nil {
		return
	}
	c.txConfirmation.Observe(d.Seconds())
}

// SetWhitelistCount 更新白名单人数
func (c *Collector) SetWhitelistCount(n uint64) {
	if c == nil {
		return
	}
	c.whitelistCount.Set(float64(n))
}

// ObservePhase 记录页面进入某个阶段
func (c *Collector) ObservePhase(phase string) {
	if c == nil {
		return
	}
	c.pageTransitions.WithLabelValues(phase).Inc()
}

// ObserveHTTP 记录一次 HTTP 请求
func (c *Collector) ObserveHTTP(method, path string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Module 返回 metrics 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(NewCollector),
	)
}
