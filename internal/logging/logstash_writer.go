// Package logging mirrors application log output to a Logstash TCP input.
package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	defaultDialTimeout  = 2 * time.Second
	defaultWriteTimeout = time.Second
	defaultRetryWindow  = 5 * time.Second
)

// LogstashWriter forwards log lines over a single TCP connection. Writes
// never block the caller on network trouble: while Logstash is unreachable,
// lines are dropped and reconnects are rate-limited to the retry window.
type LogstashWriter struct {
	addr string

	mu        sync.Mutex
	conn      net.Conn
	nextRetry time.Time
	closed    bool
}

// NewLogstashWriter returns a writer safe for concurrent use.
func NewLogstashWriter(addr string) (*LogstashWriter, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("logstash: empty address")
	}
	return &LogstashWriter{addr: addr}, nil
}

// Write implements io.Writer. A dropped line still reports success so the
// standard log package never sees the network failure.
func (w *LogstashWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	line := make([]byte, len(p))
	copy(line, p)
	if line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}
	if !w.connectLocked() {
		return len(p), nil
	}

	_ = w.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	if _, err := w.conn.Write(line); err != nil {
		w.conn.Close()
		w.conn = nil
		w.nextRetry = time.Now().Add(defaultRetryWindow)
	}
	return len(p), nil
}

func (w *LogstashWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *LogstashWriter) connectLocked() bool {
	if w.conn != nil {
		return true
	}
	if !w.nextRetry.IsZero() && time.Now().Before(w.nextRetry) {
		return false
	}
	conn, err := net.DialTimeout("tcp", w.addr, defaultDialTimeout)
	if err != nil {
		w.nextRetry = time.Now().Add(defaultRetryWindow)
		return false
	}
	w.conn = conn
	w.nextRetry = time.Time{}
	return true
}
