package sweeper

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewCleanupLog opens an append-only audit log at path. Each entry is a
// single "[timestamp] message" line. The returned func flushes and closes
// the file.
func NewCleanupLog(path string) (*zap.Logger, func(), error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}

	sink, closeSink, err := zap.Open(path)
	if err != nil {
		return nil, nil, err
	}

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + t.UTC().Format(time.RFC3339) + "]")
		},
		EncodeDuration: zapcore.StringDurationEncoder,
	})

	l := zap.New(zapcore.NewCore(encoder, sink, zapcore.InfoLevel))
	return l, func() {
		_ = l.Sync()
		closeSink()
	}, nil
}
