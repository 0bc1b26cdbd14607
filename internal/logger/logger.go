package logger

import (
	"io"
	"strings"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing plain text to w at the given level.
// An empty level means warn.
func New(w io.Writer, level string) (*logrus.Logger, error) {
	l := logrus.New()
	if w == nil {
		w = io.Discard
	}
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
	})

	level = strings.TrimSpace(level)
	if level == "" {
		level = "warn"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}
	l.SetLevel(lvl)
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
