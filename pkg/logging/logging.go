package logging

import (
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests never go through main, so the logger has to exist from package init.
func init() {
	Init("japap")
}

func Init(service string) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)
	if os.Getenv("JAPAP_ENV") == "prod" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	Log = logger.WithFields(logrus.Fields{"service": service})
}

// Capture logs err and forwards it to Sentry.
func Capture(err error, msg string, fields logrus.Fields) {
	if err == nil {
		return
	}
	Log.WithFields(fields).WithError(err).Error(msg)
	sentry.CaptureException(err)
}
