package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

// NewLogger builds the zap logger for either binary. MORTGAGE_LOGGING_LEVEL
// and MORTGAGE_LOGGING_FORMAT override the configured values; a non-empty
// logLevelOverride from the command line overrides both.
func NewLogger(loggingConfig LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	loggingConfig = withLoggingEnv(loggingConfig)
	if logLevelOverride != "" {
		loggingConfig.Level = logLevelOverride
	}

	level, err := parseLevel(loggingConfig.Level)
	if err != nil {
		return nil, err
	}

	zapConfig, err := baseLoggerConfig(loggingConfig.Format)
	if err != nil {
		return nil, err
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	if loggingConfig.OutputFile != "" {
		if err := prepareLogFile(loggingConfig.OutputFile); err != nil {
			return nil, err
		}
		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func withLoggingEnv(loggingConfig LoggingConfig) LoggingConfig {
	v := newViper()
	if level := v.GetString("logging.level"); level != "" {
		loggingConfig.Level = level
	}
	if format := v.GetString("logging.format"); format != "" {
		loggingConfig.Format = format
	}
	return loggingConfig
}

// parseLevel accepts debug, info, warn (or warning) and error in any case.
func parseLevel(text string) (zapcore.Level, error) {
	if text == "" {
		text = defaultLogLevel
	}
	name := strings.ToLower(strings.TrimSpace(text))
	if name == "warning" {
		name = "warn"
	}

	level, err := zapcore.ParseLevel(name)
	if err != nil || level > zapcore.ErrorLevel {
		return level, fmt.Errorf("invalid log level: %s", text)
	}
	return level, nil
}

func baseLoggerConfig(format string) (zap.Config, error) {
	if format == "" {
		format = defaultLogFormat
	}
	switch strings.ToLower(format) {
	case "console":
		return zap.NewDevelopmentConfig(), nil
	case "json":
		return zap.NewProductionConfig(), nil
	}
	return zap.Config{}, fmt.Errorf("invalid log format: %s", format)
}

// prepareLogFile creates the log directory and checks the file is writable,
// so a bad path fails here rather than on the first write.
func prepareLogFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file.Close()
}
