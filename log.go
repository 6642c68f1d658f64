package csniff

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface every decoder and the session controller
// accept; satisfied by logrus today, but callers can supply their own.
type Logger interface {
	Info(...interface{})
	Debug(...interface{})
	Error(...interface{})
	Warn(...interface{})

	Infof(string, ...interface{})
	Debugf(string, ...interface{})
	Errorf(string, ...interface{})
	Warnf(string, ...interface{})

	// ChildLogger returns a Logger that tags every line with the given
	// fields, e.g. the capture device name or a Kind from errors.go.
	ChildLogger(tags map[string]interface{}) Logger
}

var logger Logger
var loggerMu sync.Mutex

func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

func GetLogger() Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logger == nil {
		logger = buildDefaultLogger()
	}

	return logger
}

// LogKindError logs err against log, tagging the line with the Kind a
// caller's CauseKind(err) would see. DeviceNotFound/BadAddress/BadPairSpec
// are caller mistakes and log at Warn; everything else (IoError, Timeout,
// MalformedFrame, EncodeOverflow, DumpIoError, Unsupported) is logged at
// Error since it reflects a failure in the capture itself.
func LogKindError(log Logger, err error, msg string) {
	if err == nil {
		return
	}

	kind := CauseKind(err)
	l := log.ChildLogger(map[string]interface{}{"kind": kind.String()})

	switch kind {
	case KindDeviceNotFound, KindBadAddress, KindBadPairSpec:
		l.Warnf("%s: %v", msg, err)
	default:
		l.Errorf("%s: %v", msg, err)
	}
}

type defaultLogger struct {
	*logrus.Entry
}

func buildDefaultLogger() Logger {
	l := &logrus.Logger{
		Formatter: &logrus.TextFormatter{DisableTimestamp: true},
		Level:     logrus.InfoLevel,
		Out:       os.Stderr,
		Hooks:     make(logrus.LevelHooks),
	}

	return &defaultLogger{Entry: l.WithFields(map[string]interface{}{})}
}

func (d *defaultLogger) ChildLogger(ff map[string]interface{}) Logger {
	nl := &defaultLogger{d.Entry.WithFields(ff)}
	return nl
}
