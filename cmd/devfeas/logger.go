package main

import (
	"github.com/rgehrsitz/devfeas/internal/calculation"
	"go.uber.org/zap"
)

// newLogger returns a development logger under --debug. Otherwise warnings and
// errors only, so stderr stays quiet for a clean run.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// zapEngineLogger adapts a zap logger to calculation.Logger
type zapEngineLogger struct {
	s *zap.SugaredLogger
}

func engineLogger(l *zap.Logger) calculation.Logger {
	return zapEngineLogger{s: l.With(zap.String("op", "engine")).Sugar()}
}

func (z zapEngineLogger) Debugf(format string, args ...any) { z.s.Debugf(format, args...) }
func (z zapEngineLogger) Infof(format string, args ...any)  { z.s.Infof(format, args...) }
func (z zapEngineLogger) Warnf(format string, args ...any)  { z.s.Warnf(format, args...) }
func (z zapEngineLogger) Errorf(format string, args ...any) { z.s.Errorf(format, args...) }
