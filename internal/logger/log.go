// Package logger wraps logrus with the field helpers the console uses to
// tag entries with the component, operator and error that produced them.
package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

type Log struct {
	*logrus.Entry
}

// InitLogger builds the logger a command hands to every component it wires.
// Unknown levels fall back to info.
func InitLogger(level string) *Log {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(parseLevel(level))
	return &Log{Entry: logrus.NewEntry(l)}
}

// Discard returns a logger that drops everything.
func Discard() *Log {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Log{Entry: logrus.NewEntry(l)}
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	}
	return logrus.InfoLevel
}

func (l *Log) WithField(key string, value interface{}) *Log {
	return &Log{l.Entry.WithField(key, value)}
}

func (l *Log) WithEntryName(entryName string) *Log {
	return l.WithField("EntryName", entryName)
}

func (l *Log) WithErr(err error) *Log {
	if err == nil {
		return l
	}
	return l.WithField("Err", err.Error())
}

func (l *Log) WithOperator(operator interface{}) *Log {
	return l.WithField("Operator", operator)
}
