// Package logger provides structured logging for the RideMyWay service.
//
// It wraps Uber's zap logger and exposes a process-wide Log. Log is a no-op
// logger until InitLogger is called, so packages may log unconditionally.
//
//	logger.InitLogger("debug") // Options: debug, info, warn, error
//
//	logger.Log.Info("ride created",
//	    zap.Uint("ride_id", ride.ID),
//	    zap.Uint("driver_id", ride.DriverID),
//	)
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log = zap.NewNop()

func InitLogger(level string) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zap.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	Log = l
}
