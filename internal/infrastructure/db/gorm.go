package db

import (
	"fmt"
	"time"

	"assetfin-backend/internal/infrastructure/logging"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	SlowThreshold   time.Duration
}

func DefaultPool() Pool {
	return Pool{
		MaxOpenConns:    30,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
		SlowThreshold:   500 * time.Millisecond,
	}
}

// gormWriter routes gorm's printf-style output (slow queries, errors) into zap.
type gormWriter struct{ log logging.Logger }

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warn(fmt.Sprintf(format, args...))
}

func newGormLogger(log logging.Logger, slow time.Duration) logger.Interface {
	return logger.New(gormWriter{log: log.Named("gorm")}, logger.Config{
		SlowThreshold:             slow,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func OpenGorm(dsn string, log logging.Logger, pool Pool) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), log, pool)
}

// OpenGormWithDialector opens gorm over dial, tunes the pool and pings.
func OpenGormWithDialector(dial gorm.Dialector, log logging.Logger, pool Pool) (*gorm.DB, error) {
	if log == nil {
		log = logging.NewNop()
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: newGormLogger(log, pool.SlowThreshold),
		// pinged explicitly below, after the pool is tuned
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("gorm: ping: %w", err)
	}
	log.Info("database connected", logging.Int("max_open_conns", pool.MaxOpenConns))
	return db, nil
}
