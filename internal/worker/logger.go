package worker

import (
	"github.com/sirupsen/logrus"

	"github.com/notifeed/notifeed/internal/shared/logger"
)

// asynqLogger adapts our logrus entry to asynq's Logger interface.
type asynqLogger struct {
	log *logrus.Entry
}

func newAsynqLogger() *asynqLogger {
	return &asynqLogger{log: logger.New("worker")}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug(args...) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info(args...) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn(args...) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error(args...) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Fatal(args...) }
