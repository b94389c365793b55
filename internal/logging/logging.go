/*
DESCRIPTION
  logging.go provides the Logger interface used throughout the fmv
  codec and its command-line tools, backed by zap. The interface shape
  mirrors the key-value, leveled logging convention used across the
  av module's commands (see cmd/looper and cmd/rv).

AUTHORS
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package logging provides a small leveled Logger interface and a zap-backed
// implementation suitable for both file and console output.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the leveled, structured logging interface used throughout this
// module. Params are interpreted as alternating key, value pairs.
type Logger interface {
	Debug(msg string, params ...interface{})
	Info(msg string, params ...interface{})
	Warning(msg string, params ...interface{})
	Error(msg string, params ...interface{})
	Fatal(msg string, params ...interface{})
}

// New returns a Logger that writes JSON lines to path, rotated by
// lumberjack, and additionally to stderr when console is true.
func New(path string, console bool) Logger {
	ljLogger := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     28, // days
	}

	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(ljLogger), zapcore.DebugLevel)
	if console {
		consoleEnc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		core = zapcore.NewTee(core, zapcore.NewCore(consoleEnc, zapcore.AddSync(os.Stderr), zapcore.DebugLevel))
	}
	return &zapLogger{z: zap.New(core)}
}

// NoOp returns a Logger that discards everything, used as the default when
// no Logger is supplied to an Encoder or Decoder.
func NoOp() Logger { return noOp{} }

type zapLogger struct{ z *zap.Logger }

func fields(params []interface{}) []zap.Field {
	fs := make([]zap.Field, 0, len(params)/2)
	for i := 0; i+1 < len(params); i += 2 {
		key, ok := params[i].(string)
		if !ok {
			continue
		}
		fs = append(fs, zap.Any(key, params[i+1]))
	}
	return fs
}

func (l *zapLogger) Debug(msg string, params ...interface{})   { l.z.Debug(msg, fields(params)...) }
func (l *zapLogger) Info(msg string, params ...interface{})    { l.z.Info(msg, fields(params)...) }
func (l *zapLogger) Warning(msg string, params ...interface{}) { l.z.Warn(msg, fields(params)...) }
func (l *zapLogger) Error(msg string, params ...interface{})   { l.z.Error(msg, fields(params)...) }
func (l *zapLogger) Fatal(msg string, params ...interface{})   { l.z.Fatal(msg, fields(params)...) }

type noOp struct{}

func (noOp) Debug(string, ...interface{})   {}
func (noOp) Info(string, ...interface{})    {}
func (noOp) Warning(string, ...interface{}) {}
func (noOp) Error(string, ...interface{})   {}
func (noOp) Fatal(string, ...interface{})   {}
