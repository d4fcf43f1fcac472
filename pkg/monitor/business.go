package monitor

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SessionMetrics 定义钱包会话引擎的业务监控指标
type SessionMetrics struct {
	ConnectAttemptsTotal        prometheus.Counter
	ConnectFailuresTotal        *prometheus.CounterVec
	TransactionsSubmittedTotal  prometheus.Counter
	TransactionsReconciledTotal *prometheus.CounterVec
	ReconcileDuration           prometheus.Histogram
	PendingTransactions         prometheus.Gauge
	BalanceRefreshTotal         prometheus.Counter
}

// Global Metrics Instance
var Session *SessionMetrics

var initOnce sync.Once

// Init 初始化业务指标 (幂等, promauto 重复注册会 panic)
func Init() {
	initOnce.Do(func() {
		Session = &SessionMetrics{
			ConnectAttemptsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "wallet_session_connect_attempts_total",
				Help: "The total number of wallet connect attempts",
			}),
			ConnectFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "wallet_session_connect_failures_total",
				Help: "Connect failures by error kind",
			}, []string{"kind"}),
			TransactionsSubmittedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "wallet_session_tx_submitted_total",
				Help: "The total number of submitted transactions",
			}),
			TransactionsReconciledTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "wallet_session_tx_reconciled_total",
				Help: "Reconciled transactions by terminal status",
			}, []string{"status"}),
			ReconcileDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "wallet_session_reconcile_duration_seconds",
				Help:    "Time from submission to terminal status",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
			}),
			PendingTransactions: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "wallet_session_pending_transactions",
				Help: "Transactions currently awaiting confirmation",
			}),
			BalanceRefreshTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "wallet_session_balance_refresh_total",
				Help: "The total number of balance refreshes",
			}),
		}
	})
}
