package util

import (
	"time"

	"go.uber.org/zap"
)

// Trace 记录耗时，用法: defer util.Trace("decode", fields...)()
func Trace(name string, fields ...zap.Field) func() {
	start := time.Now()
	return func() {
		Logger.Debug(name, append(fields, zap.Duration("cost", time.Since(start)))...)
	}
}
