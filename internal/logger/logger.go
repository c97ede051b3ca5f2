package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger flavour.
type Options struct {
	ServiceName string
	Environment string
	Level       string
	Format      string
	// Debug forces the debug level regardless of Level
	Debug bool
}

// New creates a logger instance based on options.
func New(opts Options) (*zap.Logger, error) {
	var config zap.Config

	if opts.Environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	if opts.Debug {
		level = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	if opts.Format == "console" {
		config.Encoding = "console"
	} else {
		config.Encoding = "json"
	}

	config.InitialFields = map[string]interface{}{
		"service": opts.ServiceName,
		"env":     opts.Environment,
	}
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	if hostname, err := os.Hostname(); err == nil {
		logger = logger.With(zap.String("hostname", hostname))
	}

	return logger, nil
}

// WithRequest tags a logger with the id of an inbound scrape request and
// the item it targets.
func WithRequest(logger *zap.Logger, requestID, itemID string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)

	if requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if itemID != "" {
		fields = append(fields, zap.String("item_id", itemID))
	}

	if len(fields) > 0 {
		return logger.With(fields...)
	}
	return logger
}
