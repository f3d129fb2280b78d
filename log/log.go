// Package log provides the module-scoped logger used throughout xscanner.
//
// It follows the same convention the teacher codebase uses in
// storage/database/db_manager.go: a single named logger is built once per
// package with log.NewModuleLogger(name), and every call site attaches
// key-value context rather than formatting a sentence.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base *zap.SugaredLogger

func init() {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(zap.InfoLevel),
	)
	base = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// SetLevel adjusts the global logging verbosity. debug=true enables
// debug-level output; the default is info.
func SetLevel(debug bool) {
	lvl := zap.InfoLevel
	if debug {
		lvl = zap.DebugLevel
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(lvl),
	)
	base = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// Logger is a contextual, module-named logger.
type Logger struct {
	name string
	kv   []interface{}
}

// NewModuleLogger returns a Logger scoped to the given module name, e.g.
// "analyzer" or "cache/badger".
func NewModuleLogger(module string) *Logger {
	return &Logger{name: module}
}

// With returns a derived Logger carrying additional key-value context.
func (l *Logger) With(kv ...interface{}) *Logger {
	nkv := make([]interface{}, 0, len(l.kv)+len(kv))
	nkv = append(nkv, l.kv...)
	nkv = append(nkv, kv...)
	return &Logger{name: l.name, kv: nkv}
}

func (l *Logger) fields(kv []interface{}) []interface{} {
	all := make([]interface{}, 0, len(l.kv)+len(kv)+2)
	all = append(all, "module", l.name)
	all = append(all, l.kv...)
	all = append(all, kv...)
	return all
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	base.Debugw(msg, l.fields(kv)...)
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	base.Infow(msg, l.fields(kv)...)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	base.Warnw(msg, l.fields(kv)...)
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	base.Errorw(msg, l.fields(kv)...)
}

// Fatal logs at fatal level and terminates the process. Reserved for
// initialization failures (see common.KindInitialization).
func (l *Logger) Fatal(msg string, kv ...interface{}) {
	base.Fatalw(msg, l.fields(kv)...)
}
