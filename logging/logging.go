// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package logging adapts go.uber.org/zap (the backing logger the teacher
// repo's own log/nolog.go wraps) into the small facade every long-lived
// netproof component takes, the way the teacher repo's poll.set and
// config.Validator take a logger.
package logging

import "go.uber.org/zap"

// Logger is the facade netproof components depend on. It is intentionally
// narrow: components never need zap's full surface, only leveled,
// structured logging with a With() for scoping.
type Logger interface {
	With(fields ...zap.Field) Logger
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

// zapLogger implements Logger over a *zap.Logger.
type zapLogger struct {
	z *zap.Logger
}

// New returns a production logger scoped with "component", so log lines
// from different subsystems are filterable downstream.
func New(component string) Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return zapLogger{z: z.With(zap.String("component", component))}
}

func (l zapLogger) With(fields ...zap.Field) Logger {
	return zapLogger{z: l.z.With(fields...)}
}

func (l zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l zapLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// NoOp returns a logger that discards everything, grounded on the
// teacher's log.NoLog type (log/nolog.go), for tests that don't want log
// noise but still need to satisfy the Logger parameter.
func NoOp() Logger {
	return zapLogger{z: zap.NewNop()}
}
