package app

import (
	"time"

	"go-punchsync/internal/attendance"
	"go-punchsync/internal/employee"
	"go-punchsync/internal/messaging/kafka"
	"go-punchsync/internal/source"
	"go-punchsync/internal/source/accesslog"
	"go-punchsync/internal/source/devicelog"
	"go-punchsync/internal/sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func registerModules(router *gin.Engine, deps *Deps, cfg Config) {
	syncService := NewSyncService(deps, cfg)
	syncHandler := sync.NewHandler(syncService)

	api := router.Group("/api/v1")
	{
		sync.RegisterRoutes(api, syncHandler)
	}
}

// NewSyncService assembles the full pipeline: adapters, resolver, idempotent
// writer, watermarks, run lock and outbox. Shared by the API and the console
// command.
func NewSyncService(deps *Deps, cfg Config) sync.Service {
	logger := zap.L()

	employeeRepo := employee.NewRepository(deps.GormDB)
	writer := attendance.NewWriter(deps.GormDB, cfg.DedupeSideRecords)
	watermarkRepo := sync.NewWatermarkRepository(deps.GormDB)
	outboxRepo := kafka.NewOutboxRepository(deps.SQLDB)

	var lock sync.Locker
	if deps.Redis != nil {
		lock = sync.NewRunLock(deps.Redis, cfg.LockTTL)
	}

	var runners []*sync.Orchestrator

	if deps.DeviceLogDB != nil {
		adapter := devicelog.NewAdapter(deps.DeviceLogDB, devicelog.Config{
			EmployeesTable: cfg.DeviceLogEmployeesTable,
			Lookback:       time.Duration(cfg.DeviceLogLookbackDays) * 24 * time.Hour,
		}, logger)

		runners = append(runners, newRunner(adapter, employeeRepo, writer, watermarkRepo, lock, outboxRepo, cfg.DeviceLogAutoCreate, logger))
	}

	if deps.AccessLogDB != nil {
		adapter := accesslog.NewAdapter(deps.AccessLogDB, accesslog.Config{
			Table:           cfg.AccessLogTable,
			Lookback:        time.Duration(cfg.AccessLogLookbackDays) * 24 * time.Hour,
			UnprocessedOnly: cfg.AccessLogUnprocessedOnly,
		}, logger)

		runners = append(runners, newRunner(adapter, employeeRepo, writer, watermarkRepo, lock, outboxRepo, cfg.AccessLogAutoCreate, logger))
	}

	return sync.NewService(runners, watermarkRepo, logger)
}

func newRunner(
	adapter source.Adapter,
	employeeRepo employee.Repository,
	writer attendance.Writer,
	watermarkRepo sync.WatermarkRepository,
	lock sync.Locker,
	outboxRepo kafka.OutboxRepository,
	autoCreate bool,
	logger *zap.Logger,
) *sync.Orchestrator {
	resolver := sync.NewResolver(employeeRepo, writer, sync.ResolverConfig{
		SourceName:          adapter.Name(),
		AutoCreateEmployees: autoCreate,
	}, logger)

	return sync.NewOrchestrator(adapter, resolver, watermarkRepo, lock, outboxRepo, logger)
}
