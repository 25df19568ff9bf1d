package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

type Level = logrus.Level

const (
	ErrorLevel = logrus.ErrorLevel
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
	TraceLevel = logrus.TraceLevel
)

// Fields attached to a structured entry.
type Fields = logrus.Fields

var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Formatter = &logrus.TextFormatter{
		DisableLevelTruncation: true,
		PadLevelText:           true,
		TimestampFormat:        "2006/01/02 15:04:05",
		FullTimestamp:          true,
	}
	return l
}

func SetLevel(level Level) {
	Logger.SetLevel(level)
}

func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

func WithFields(fields Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

func Log(level Level, args ...any) {
	Logger.Logln(level, args...)
}

func Logf(level Level, format string, args ...any) {
	Logger.Logf(level, format, args...)
}

func Debug(args ...any) {
	Logger.Debugln(args...)
}

func Debugf(format string, args ...any) {
	Logger.Debugf(format, args...)
}

func Info(args ...any) {
	Logger.Infoln(args...)
}

func Infof(format string, args ...any) {
	Logger.Infof(format, args...)
}

func Warn(args ...any) {
	Logger.Warnln(args...)
}

func Warnf(format string, args ...any) {
	Logger.Warnf(format, args...)
}

func Error(args ...any) {
	Logger.Errorln(args...)
}

func Errorf(format string, args ...any) {
	Logger.Errorf(format, args...)
}

func Fatal(args ...any) {
	Logger.Fatalln(args...)
}
