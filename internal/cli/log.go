package cli

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// newLogger creates a text logger with short timestamps, e.g. "14:32:01.45".
func newLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.00",
	})
	return l
}

// progress logs the elapsed time of an operation when done.
type progress struct {
	logger logrus.FieldLogger
	start  time.Time
}

func newProgress(l logrus.FieldLogger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
