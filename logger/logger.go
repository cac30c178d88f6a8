package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger represents a structured logger
type Logger struct {
	logger zerolog.Logger
}

var (
	// Default is the default logger instance
	Default *Logger
)

// Init initializes the logger from LOG_LEVEL and APP_ENVIRONMENT
func Init() {
	level := getLogLevel()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	// Console writer keeps local runs readable
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	Default = &Logger{logger: zerolog.New(output).With().Timestamp().Logger()}

	Default.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// Nop returns a logger that discards everything, for tests
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// getLogLevel returns the log level from environment variable
func getLogLevel() zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if os.Getenv("APP_ENVIRONMENT") == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithField creates a new logger carrying key
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }

func (l *Logger) Info() *zerolog.Event { return l.logger.Info() }

func (l *Logger) Warn() *zerolog.Event { return l.logger.Warn() }

func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }

// Fatal logs and exits the process once the event is sent
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }

// Info logs a formatted info message on the default logger
func Info(format string, v ...interface{}) {
	ensure()
	Default.Info().Msgf(format, v...)
}

// Warn logs a formatted warning on the default logger
func Warn(format string, v ...interface{}) {
	ensure()
	Default.Warn().Msgf(format, v...)
}

func ensure() {
	if Default == nil {
		Init()
	}
}

// ForComponent creates a logger tagged with a component name
func ForComponent(component string) *Logger {
	ensure()
	return Default.WithField("component", component)
}

// ForCrawler creates a logger for a specific page crawler
func ForCrawler(crawlerName string) *Logger {
	ensure()
	return Default.WithField("crawler", crawlerName)
}

func ForOrchestrator() *Logger { return ForComponent("orchestrator") }

func ForStore() *Logger { return ForComponent("store") }

func ForServer() *Logger { return ForComponent("server") }

func ForCollector() *Logger { return ForComponent("collector") }

func ForPublisher() *Logger { return ForComponent("publisher") }

func ForCache() *Logger { return ForComponent("cache") }
