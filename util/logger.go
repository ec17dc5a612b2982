package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger = zap.NewNop()

// InitLogger release 模式输出 JSON，其它模式输出带颜色的开发日志
func InitLogger(mode string) error {
	var config zap.Config

	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}

	Logger = logger
	return nil
}

func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
