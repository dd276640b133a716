package log

import (
	"fmt"
	"sync"
	"time"
)

// HTTP log buffer is separate from the main logger
var httpLogBuffer *LogBuffer
var httpLogBufferOnce sync.Once

// GetHTTPLogBuffer returns the HTTP log buffer instance, creating it if necessary
func GetHTTPLogBuffer() *LogBuffer {
	httpLogBufferOnce.Do(func() {
		httpLogBuffer = NewLogBuffer(1000) // Keep last 1000 HTTP log entries
	})
	return httpLogBuffer
}

// LogHTTPRequest records a completed request in the HTTP log buffer and emits it
// through zap at info (or error) level
func LogHTTPRequest(requestID, method, path string, status int, duration time.Duration, size int, remoteAddr string, err error) {
	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "info",
		Message:   fmt.Sprintf("%s %s %d %v %d bytes", method, path, status, duration, size),
		Fields: map[string]any{
			"request_id":  requestID,
			"method":      method,
			"path":        path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"size":        size,
			"remote_addr": remoteAddr,
		},
	}

	if err != nil {
		entry.Level = "error"
		entry.Fields["error"] = err.Error()
		Errorw(entry.Message, "request_id", requestID, "status", status, "error", err)
	} else {
		Infow(entry.Message, "request_id", requestID, "status", status, "duration_ms", duration.Milliseconds())
	}

	GetHTTPLogBuffer().AddEntry(entry)
}
