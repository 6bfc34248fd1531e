package bgzip

import (
	"bytes"
	"sync"

	"go.uber.org/zap"
)

// logWriter logs each complete line written to it.
type logWriter struct {
	mu     sync.Mutex
	logger *zap.Logger
	buf    bytes.Buffer
}

func newLogWriter(l *zap.Logger) *logWriter {
	return &logWriter{logger: l}
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(bytes.TrimRight(w.buf.Next(i+1), "\r\n"))
		if line != "" {
			w.logger.Info(line)
		}
	}
	return len(p), nil
}

// Flush logs any trailing partial line.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.logger.Info(w.buf.String())
		w.buf.Reset()
	}
}
