package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	JSON    bool
	Debug   bool
	Service string
	Version string
}

// New builds the process logger. Logs go to stderr so that commands printing
// results on stdout stay machine-readable.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if opts.JSON {
		encoding = "json"
	}

	if opts.Debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.MillisDurationEncoder,
		},
	}

	if opts.JSON {
		// Console output stays compact for local runs.
		cfg.InitialFields = map[string]any{}
		for _, f := range StringFields(
			StringField{Key: FieldService, Value: opts.Service},
			StringField{Key: FieldVersion, Value: opts.Version},
		) {
			cfg.InitialFields[f.Key] = f.String
		}
	}

	return cfg.Build()
}

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Preview is a string field holding at most limit runes of s.
func Preview(key, s string, limit int) zap.Field {
	return zap.String(key, TruncateForLog(s, limit))
}
