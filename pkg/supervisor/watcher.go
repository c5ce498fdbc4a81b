package supervisor

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/cuemby/warren-vm/pkg/log"
	"github.com/cuemby/warren-vm/pkg/types"
)

const (
	pollInterval = 100 * time.Millisecond
	logTailBytes = 4096
)

// watch owns the post-spawn state machine for one session: poll the log
// for the readiness token (advisory), dial the RPC port (authoritative),
// then run the line-oriented read loop until EOF. It is the sole producer
// of ready/rpc/error events and always ends by calling markStopped, a
// ticker-poll-then-connect shape generalized from a single readiness
// check into this two-stage handshake.
func (s *Supervisor) watch(inst *instance) {
	logger := log.WithComponent("supervisor").With().Str("session_id", inst.id).Logger()

	readyDeadline := time.Now().Add(s.cfg.ReadyTimeout)
	if found := pollForToken(inst.logPath, "READY", pollInterval, readyDeadline); !found {
		logger.Warn().Msg("readiness token not observed before deadline; proceeding to connect attempt anyway")
	}

	connectDeadline := time.Now().Add(s.cfg.ConnectTimeout)
	conn, err := dialUntil("127.0.0.1", RpcPort, pollInterval, connectDeadline)
	if err != nil {
		tail := readTail(inst.logPath, logTailBytes)
		logger.Error().Err(err).Msg("rpc connect failed")
		s.sink.Emit(EventError, fmt.Sprintf("rpc connect failed: %v\n--- log tail ---\n%s", err, tail))
		s.markStopped(inst, err.Error())
		return
	}

	inst.setWriter(conn)
	s.setStatus(types.StatusReady)
	s.sink.Emit(EventReady, "")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.sink.Emit(EventRPC, line)
	}

	s.markStopped(inst, "")
}

// pollForToken polls path for the literal substring token on interval
// until deadline. Returns false (not an error) if the deadline passes
// first — the log token is only a hint; the authoritative readiness
// signal is a successful RPC connect, so the caller proceeds to dial
// regardless of what this returns.
func pollForToken(path, token string, interval time.Duration, deadline time.Time) bool {
	for {
		data, err := os.ReadFile(path)
		if err == nil && strings.Contains(string(data), token) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

// dialUntil retries a TCP connect on interval until deadline, returning
// the last error on timeout.
func dialUntil(host string, port int, interval time.Duration, deadline time.Time) (net.Conn, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	var lastErr error
	for {
		conn, err := net.DialTimeout("tcp", addr, interval)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if time.Now().After(deadline) {
			return nil, lastErr
		}
		time.Sleep(interval)
	}
}

// readTail returns up to n trailing bytes of the file at path, or an
// empty string if it cannot be read.
func readTail(path string, n int64) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ""
	}
	offset := info.Size() - n
	if offset < 0 {
		offset = 0
	}
	buf := make([]byte, info.Size()-offset)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return ""
	}
	return string(buf)
}
