package util

import (
	"time"

	"go.uber.org/zap"
)

// Trace 记录一段操作的耗时，用法：defer util.Trace("decode")()
func Trace(msg string, fields ...zap.Field) func() {
	start := time.Now()
	return func() {
		Logger.Debug(msg, append(fields, zap.Duration("cost", time.Since(start)))...)
	}
}
