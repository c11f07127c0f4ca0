package gateway

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// WireLog appends every gateway request and response to a log sink. A failed
// or disabled sink degrades to a no-op: the primary gateway result is never
// replaced by a logging failure.
type WireLog struct {
	log *zap.Logger
}

// NewWireLog builds a wire log writing to path. When disabled, or when the
// sink cannot be opened, the returned WireLog discards everything.
func NewWireLog(enabled bool, path string) *WireLog {
	if !enabled || path == "" {
		return &WireLog{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WireLog{}
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		return &WireLog{}
	}

	return &WireLog{log: log}
}

// Request records an outbound gateway request.
func (w *WireLog) Request(method, url string, body []byte) {
	if w == nil || w.log == nil {
		return
	}
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("url", url),
	}
	if len(body) > 0 {
		fields = append(fields, zap.ByteString("body", body))
	}
	w.log.Info("gateway request", fields...)
}

// Response records an inbound gateway response.
func (w *WireLog) Response(status int, body []byte) {
	if w == nil || w.log == nil {
		return
	}
	w.log.Info("gateway response",
		zap.Int("status", status),
		zap.ByteString("body", body),
	)
}

// Failure records a transport-level failure.
func (w *WireLog) Failure(err error) {
	if w == nil || w.log == nil {
		return
	}
	w.log.Error("gateway transport failure", zap.Error(err))
}

// Sync flushes any buffered log entries. Flush errors are discarded.
func (w *WireLog) Sync() {
	if w == nil || w.log == nil {
		return
	}
	_ = w.log.Sync()
}
