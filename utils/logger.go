package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// InitLogger configures the shared logger from LOG_LEVEL / LOG_FORMAT.
func InitLogger() {
	Log = logrus.New()
	Log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger().WithFields(fields)
}

func logger() *logrus.Logger {
	if Log == nil {
		InitLogger()
	}
	return Log
}
