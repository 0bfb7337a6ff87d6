package utils

import (
	"os" // Output stream

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// InitLogger configures the global logrus logger.
// Production gets JSON lines, development keeps the readable text format.
func InitLogger(level string, json bool) {
	logrus.SetOutput(os.Stdout)
	if json {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel // Unknown names fall back to info
	}
	logrus.SetLevel(lvl)
}
