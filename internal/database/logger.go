package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// logger routes gorm output through the charm logger.
type logger struct {
	log   *log.Logger
	level gormlogger.LogLevel
}

func newLogger() *logger {
	return &logger{
		log:   log.Default().WithPrefix("database"),
		level: gormlogger.Warn,
	}
}

func (l *logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &logger{log: l.log, level: level}
}

func (l *logger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *logger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *logger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.log.Error("query failed", "error", err, "elapsed", elapsed, "rows", rows, "sql", sql)
	case elapsed > slowQueryThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Warn("slow query", "elapsed", elapsed, "rows", rows, "sql", sql)
	default:
		// per-query output follows the charm debug level
		if l.log.GetLevel() <= log.DebugLevel {
			sql, rows := fc()
			l.log.Debug("query", "elapsed", elapsed, "rows", rows, "sql", sql)
		}
	}
}
