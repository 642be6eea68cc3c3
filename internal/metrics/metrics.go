package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 审批流创建数
	flowsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flows_created_total",
			Help: "Total number of approval flows created",
		},
		[]string{"flow_type"}, // sequential, quick
	)

	// 审批操作数
	approvalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approvals_total",
			Help: "Total number of approval operations",
		},
		[]string{"action", "flow_status"}, // approve/reject x pending/approved/rejected
	)

	// 权限拒绝数
	permissionDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_denials_total",
			Help: "Total number of denied approval attempts",
		},
		[]string{"reason"},
	)

	// 一致性修复数
	consistencyRepairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "consistency_repairs_total",
			Help: "Total number of document/flow consistency repairs",
		},
	)

	// 管理员越权操作数
	overridesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overrides_total",
			Help: "Total number of admin override operations",
		},
		[]string{"action"}, // approve, reject, skip
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		},
	)

	// 审批流状态分布
	flowsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flows_by_status",
			Help: "Number of approval flows by status",
		},
		[]string{"status"},
	)
)

var (
	once sync.Once
)

func init() {
	// 注册指标
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(flowsCreatedTotal)
	prometheus.MustRegister(approvalsTotal)
	prometheus.MustRegister(permissionDenialsTotal)
	prometheus.MustRegister(consistencyRepairsTotal)
	prometheus.MustRegister(overridesTotal)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(databaseConnectionsMax)
	prometheus.MustRegister(flowsByStatus)

	// 注册 Go 运行时指标（只注册一次）
	once.Do(func() {
		// 尝试注册 Go 运行时指标，如果已注册则忽略错误
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordFlowCreated 记录审批流创建
func RecordFlowCreated(flowType string) {
	flowsCreatedTotal.WithLabelValues(flowType).Inc()
}

// RecordApproval 记录审批操作及其落盘后的流状态
func RecordApproval(action, flowStatus string) {
	approvalsTotal.WithLabelValues(action, flowStatus).Inc()
}

// RecordPermissionDenial 记录被拒绝的审批尝试
func RecordPermissionDenial(reason string) {
	permissionDenialsTotal.WithLabelValues(reason).Inc()
}

// RecordConsistencyRepair 记录一次一致性修复
func RecordConsistencyRepair() {
	consistencyRepairsTotal.Inc()
}

// RecordOverride 记录管理员越权操作
func RecordOverride(action string) {
	overridesTotal.WithLabelValues(action).Inc()
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))

	return nil
}

// UpdateFlowsByStatus 更新审批流状态分布指标
func UpdateFlowsByStatus(status string, count float64) {
	flowsByStatus.WithLabelValues(status).Set(count)
}
