package logger

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const projectName = "mtv-rhythm-generator"

var (
	once          sync.Once
	projectLogger *logrus.Entry
)

// GetProjectLogger returns the logger shared by every package of the project.
func GetProjectLogger() *logrus.Entry {
	once.Do(func() {
		l := logrus.New()
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		projectLogger = l.WithField("name", projectName)
	})
	return projectLogger
}

// SetLevel changes the project log level, e.g. "debug" or "warn".
func SetLevel(name string) error {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", name)
	}
	GetProjectLogger().Logger.SetLevel(level)
	return nil
}

// SetOutput redirects the project logger, e.g. away from the terminal while a TUI owns it.
func SetOutput(w io.Writer) {
	GetProjectLogger().Logger.SetOutput(w)
}
