package app

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/kardexlabs/kardex/pkg/logging"
)

// NewLogger creates a configured logger based on the application
// configuration. Log level precedence (highest to lowest):
//  1. -v/--verbose flag (shortcut for debug)
//  2. -q/--quiet flag (shortcut for warn)
//  3. LOG_LEVEL environment variable
//  4. Default (info)
func NewLogger(config *Config) logging.Logger {
	level := determineLogLevel(config)

	var writer = os.Stderr
	if config.LogFormat == "json" {
		return zerolog.New(writer).Level(level).With().Timestamp().Logger()
	}

	console := zerolog.ConsoleWriter{
		Out:        writer,
		TimeFormat: time.Kitchen,
		NoColor:    config.NoColor || os.Getenv("NO_COLOR") != "",
	}
	logger := zerolog.New(console).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

func determineLogLevel(config *Config) zerolog.Level {
	if config.Verbose && config.Quiet {
		fmt.Fprintln(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet")
		return zerolog.WarnLevel
	}
	if config.Verbose {
		return zerolog.DebugLevel
	}
	if config.Quiet {
		return zerolog.WarnLevel
	}

	if config.LogLevel != "" {
		level, err := zerolog.ParseLevel(config.LogLevel)
		if err == nil {
			return level
		}
		fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using info\n", config.LogLevel)
	}
	return zerolog.InfoLevel
}
