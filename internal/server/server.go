// Package server exposes a Backend over the Redis serialization
// protocol, so any Redis client can use the cache for ad hoc storage.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/redcon"
	"v.io/v23/glob"

	"github.com/nanw1103/yumako/internal/logging"
)

// DefaultAddr is the address the cache server listens on by default.
const DefaultAddr = ":6389"

// errBadPattern reports a KEYS pattern that does not parse as a glob.
var errBadPattern = errors.New("invalid pattern")

// respWriter is the subset of redcon.Conn the command handlers write
// replies to. Tests substitute a recording implementation.
type respWriter interface {
	WriteString(str string)
	WriteBulk(bulk []byte)
	WriteInt(num int)
	WriteNull()
	WriteError(msg string)
	WriteArray(count int)
}

// knownCommands guards the per-command metric label set.
var knownCommands = map[string]bool{
	"ping":    true,
	"echo":    true,
	"set":     true,
	"get":     true,
	"exists":  true,
	"del":     true,
	"keys":    true,
	"dbsize":  true,
	"flushdb": true,
	"quit":    true,
}

// Server serves a Backend over the Redis protocol.
type Server struct {
	addr    string
	backend Backend
	log     logging.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by the server.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// New creates a Server for addr backed by backend.
func New(addr string, backend Backend, opts ...Option) *Server {
	s := &Server{
		addr:    addr,
		backend: backend,
		log:     logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves connections until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	srv := redcon.NewServer(s.addr,
		func(conn redcon.Conn, cmd redcon.Command) {
			if s.handle(conn, cmd) {
				if err := conn.Close(); err != nil {
					s.log.Warn("Failed to close connection from %s: %v", conn.RemoteAddr(), err)
				}
			}
		},
		func(conn redcon.Conn) bool {
			connectionsTotal.Inc()
			s.log.Debug("accepted connection from %s", conn.RemoteAddr())
			return true
		},
		func(conn redcon.Conn, err error) {
			if err != nil {
				s.log.Debug("connection from %s closed: %v", conn.RemoteAddr(), err)
			}
		},
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info("cache server listening on %s", s.addr)

	select {
	case <-ctx.Done():
		if err := srv.Close(); err != nil {
			return fmt.Errorf("failed to close cache server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("cache server stopped unexpectedly: %w", err)
		}
		return nil
	}
}

// handle dispatches one command and reports whether the connection
// should be closed afterwards.
func (s *Server) handle(w respWriter, cmd redcon.Command) (closeConn bool) {
	name := strings.ToLower(string(cmd.Args[0]))
	if !knownCommands[name] {
		commandsTotal.WithLabelValues("unknown").Inc()
		errorsTotal.Inc()
		w.WriteError("ERR unknown command '" + name + "'")
		return false
	}
	commandsTotal.WithLabelValues(name).Inc()

	args := cmd.Args[1:]
	switch name {
	case "ping":
		if len(args) > 1 {
			wrongArity(w, name)
			return false
		}
		if len(args) == 1 {
			w.WriteBulk(args[0])
		} else {
			w.WriteString("PONG")
		}

	case "echo":
		if len(args) != 1 {
			wrongArity(w, name)
			return false
		}
		w.WriteBulk(args[0])

	case "set":
		if len(args) != 2 {
			wrongArity(w, name)
			return false
		}
		if err := s.backend.Set(string(args[0]), args[1]); err != nil {
			s.backendError(w, name, err)
			return false
		}
		w.WriteString("OK")

	case "get":
		if len(args) != 1 {
			wrongArity(w, name)
			return false
		}
		value, ok, err := s.backend.Get(string(args[0]))
		if err != nil {
			s.backendError(w, name, err)
			return false
		}
		if !ok {
			lookupsTotal.WithLabelValues("miss").Inc()
			w.WriteNull()
			return false
		}
		lookupsTotal.WithLabelValues("hit").Inc()
		w.WriteBulk(value)

	case "exists":
		if len(args) < 1 {
			wrongArity(w, name)
			return false
		}
		count := 0
		for _, key := range args {
			present, err := s.backend.Contains(string(key))
			if err != nil {
				s.backendError(w, name, err)
				return false
			}
			if present {
				count++
			}
		}
		w.WriteInt(count)

	case "del":
		if len(args) < 1 {
			wrongArity(w, name)
			return false
		}
		count := 0
		for _, key := range args {
			removed, err := s.backend.Delete(string(key))
			if err != nil {
				s.backendError(w, name, err)
				return false
			}
			if removed {
				count++
			}
		}
		w.WriteInt(count)

	case "keys":
		if len(args) != 1 {
			wrongArity(w, name)
			return false
		}
		keys, err := s.matchKeys(string(args[0]))
		if errors.Is(err, errBadPattern) {
			errorsTotal.Inc()
			w.WriteError("ERR invalid pattern")
			return false
		}
		if err != nil {
			s.backendError(w, name, err)
			return false
		}
		w.WriteArray(len(keys))
		for _, key := range keys {
			w.WriteBulk([]byte(key))
		}

	case "dbsize":
		if len(args) != 0 {
			wrongArity(w, name)
			return false
		}
		n, err := s.backend.Len()
		if err != nil {
			s.backendError(w, name, err)
			return false
		}
		w.WriteInt(n)

	case "flushdb":
		if len(args) != 0 {
			wrongArity(w, name)
			return false
		}
		if err := s.backend.Clear(); err != nil {
			s.backendError(w, name, err)
			return false
		}
		w.WriteString("OK")

	case "quit":
		w.WriteString("OK")
		return true
	}

	return false
}

// matchKeys returns backend keys matching a glob pattern.
func (s *Server) matchKeys(pattern string) ([]string, error) {
	keys, err := s.backend.Keys()
	if err != nil {
		return nil, err
	}
	if pattern == "*" {
		return keys, nil
	}

	parsed, err := glob.Parse(pattern)
	if err != nil {
		return nil, errBadPattern
	}
	matcher := parsed.Head()
	var matched []string
	for _, key := range keys {
		if matcher.Match(key) {
			matched = append(matched, key)
		}
	}
	return matched, nil
}

// backendError reports a failed backend call to the client and the log.
func (s *Server) backendError(w respWriter, name string, err error) {
	errorsTotal.Inc()
	s.log.Error("%s failed: %v", name, err)
	w.WriteError("ERR " + err.Error())
}

func wrongArity(w respWriter, name string) {
	errorsTotal.Inc()
	w.WriteError("ERR wrong number of arguments for '" + name + "' command")
}
