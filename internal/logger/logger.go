package logger

import (
	"go.uber.org/zap"
)

// NewNamed creates a named zap logger appropriate for the environment:
// human-readable development output in development, JSON elsewhere.
func NewNamed(appEnv, service string) (*zap.Logger, error) {
	var log *zap.Logger
	var err error

	if appEnv == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}

	return log.Named(service), nil
}
