package infra

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"

	"backend/internal/logger"
)

// traceLogger 把 GORM 的日志流接入全局 zap
// SQL 回显降级为 debug，记录未找到不算错误，避免业务查询刷屏
type traceLogger struct {
	level         gormLogger.LogLevel
	slowThreshold time.Duration
}

func newTraceLogger(level gormLogger.LogLevel) *traceLogger {
	return &traceLogger{
		level:         level,
		slowThreshold: 200 * time.Millisecond,
	}
}

// LogMode 返回指定级别的副本
func (l *traceLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *traceLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Info {
		logger.Get().Sugar().Infof(msg, args...)
	}
}

func (l *traceLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Warn {
		logger.Get().Sugar().Warnf(msg, args...)
	}
}

func (l *traceLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormLogger.Error {
		logger.Get().Sugar().Errorf(msg, args...)
	}
}

// Trace 记录单条 SQL：出错记 error，超过慢查询阈值记 warn，其余 debug
func (l *traceLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormLogger.Silent {
		return
	}

	sql, rows := fc()
	elapsed := time.Since(begin)
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && !errors.Is(err, gormLogger.ErrRecordNotFound):
		logger.Get().Error("SQL 执行失败", append(fields, zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		logger.Get().Warn("SQL 慢查询", fields...)
	case l.level >= gormLogger.Info:
		logger.Get().Debug("SQL", fields...)
	}
}
