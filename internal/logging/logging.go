// Package logging configures structured logging and keeps credentials out of
// log output and user-facing error text.
package logging

import (
	"github.com/sirupsen/logrus"
)

// New returns a configured logger. Unknown levels fall back to info.
func New(level string) *logrus.Logger {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return log
}
