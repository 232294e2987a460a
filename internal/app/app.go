package app

import (
	"database/sql"
	"os"
	"strconv"
	"time"

	"go-punchsync/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr   string // optional, enables the per-source run lock
	KafkaBroker string // optional for the API, required by the worker

	// source DSNs must include parseTime=true so timestamps scan as time.Time
	DeviceLogDSN            string
	DeviceLogEmployeesTable string
	DeviceLogLookbackDays   int
	DeviceLogAutoCreate     bool

	AccessLogDSN             string
	AccessLogTable           string
	AccessLogLookbackDays    int
	AccessLogUnprocessedOnly bool
	AccessLogAutoCreate      bool

	DedupeSideRecords bool
	LockTTL           time.Duration
}

func LoadConfig() Config {
	return Config{
		Port: getenv("PORT", "3000"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		RedisAddr:   os.Getenv("REDIS_ADDR"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),

		DeviceLogDSN:            os.Getenv("DEVICELOG_DSN"),
		DeviceLogEmployeesTable: getenv("DEVICELOG_EMPLOYEES_TABLE", "Employees"),
		DeviceLogLookbackDays:   getenvInt("DEVICELOG_LOOKBACK_DAYS", 30),
		DeviceLogAutoCreate:     getenvBool("DEVICELOG_AUTO_CREATE", false),

		AccessLogDSN:             os.Getenv("ACCESSLOG_DSN"),
		AccessLogTable:           getenv("ACCESSLOG_TABLE", "hik_attendance_logs"),
		AccessLogLookbackDays:    getenvInt("ACCESSLOG_LOOKBACK_DAYS", 7),
		AccessLogUnprocessedOnly: getenvBool("ACCESSLOG_UNPROCESSED_ONLY", true),
		AccessLogAutoCreate:      getenvBool("ACCESSLOG_AUTO_CREATE", true),

		DedupeSideRecords: getenvBool("SYNC_DEDUPE_SIDE_RECORDS", false),
		LockTTL:           time.Duration(getenvInt("SYNC_LOCK_TTL_MINUTES", 10)) * time.Minute,
	}
}

// Deps holds every external connection a binary needs; Close releases them.
type Deps struct {
	GormDB      *gorm.DB
	SQLDB       *sql.DB
	DeviceLogDB *sql.DB
	AccessLogDB *sql.DB
	Redis       *redis.Client
}

func Connect(cfg Config) (*Deps, error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost, cfg.DBUser, cfg.DBPassword,
		cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
		5,
	)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	deps := &Deps{GormDB: gormDB, SQLDB: sqlDB}

	if cfg.DeviceLogDSN != "" {
		deps.DeviceLogDB, err = connection.ConnectMySQLWithRetry(cfg.DeviceLogDSN, 5)
		if err != nil {
			return nil, err
		}
	}
	if cfg.AccessLogDSN != "" {
		deps.AccessLogDB, err = connection.ConnectMySQLWithRetry(cfg.AccessLogDSN, 5)
		if err != nil {
			return nil, err
		}
	}

	if cfg.RedisAddr != "" {
		deps.Redis, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
		if err != nil {
			return nil, err
		}
	}

	return deps, nil
}

func (d *Deps) Close() {
	if d.SQLDB != nil {
		_ = d.SQLDB.Close()
	}
	if d.DeviceLogDB != nil {
		_ = d.DeviceLogDB.Close()
	}
	if d.AccessLogDB != nil {
		_ = d.AccessLogDB.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}

// BuildApp wires dependencies and routes for the API binary.
func BuildApp(router *gin.Engine) error {
	cfg := LoadConfig()

	deps, err := Connect(cfg)
	if err != nil {
		return err
	}

	registerModules(router, deps, cfg)
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
