package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LevelTrace = "trace"
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Init configures the standard logrus logger. JSON output is used outside
// development; when file is set, entries are also written to a rotating file.
func Init(level, file string, jsonFormat bool) {
	switch level {
	case LevelTrace:
		logrus.SetLevel(logrus.TraceLevel)
	case LevelDebug:
		logrus.SetLevel(logrus.DebugLevel)
	case LevelWarn:
		logrus.SetLevel(logrus.WarnLevel)
	case LevelError:
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
	if jsonFormat {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	logrus.SetOutput(Output(file))
}

// Output returns stderr, or stderr tee'd into a lumberjack-rotated file.
func Output(file string) io.Writer {
	if file == "" {
		return os.Stderr
	}
	return io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   file,
		MaxSize:    128,
		MaxAge:     30,
		MaxBackups: 30,
	})
}
