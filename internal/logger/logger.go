package logger

import (
	"go.uber.org/zap"
)

var log *zap.Logger

// Init настраивает глобальный логгер. В dev-режиме — человекочитаемый вывод.
func Init(isDev bool) error {
	var err error
	if isDev {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	return err
}

func L() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
