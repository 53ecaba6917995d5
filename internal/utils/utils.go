package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log writes to stderr so command output on stdout stays machine-readable.
var Log = &logrus.Logger{
	Out:       os.Stderr,
	Formatter: &logrus.TextFormatter{FullTimestamp: true},
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.InfoLevel,
}

// SetLogLevel accepts debug, info, warn(ing), error and fatal.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil || lvl == logrus.TraceLevel || lvl == logrus.PanicLevel {
		return fmt.Errorf("unknown log level %q (available: debug, info, warn, error, fatal)", level)
	}
	Log.SetLevel(lvl)
	return nil
}
