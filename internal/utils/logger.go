package utils

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// serviceTagHook stamps every entry with the service name, so lines
// from this process stay attributable once logs are aggregated.
type serviceTagHook struct {
	service string
}

// Levels implements logrus.Hook interface.
func (h *serviceTagHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook interface.
func (h *serviceTagHook) Fire(entry *logrus.Entry) error {
	entry.Data["service"] = h.service
	return nil
}

// InitLogger configures the global logger. LOG_LEVEL picks the
// threshold (default info); LOG_FORMAT=json switches to structured
// output for log shippers.
func InitLogger(serviceName string) {
	Logger.SetOutput(os.Stdout)

	logLevelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", logLevelStr)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	Logger.AddHook(&serviceTagHook{service: serviceName})
}
