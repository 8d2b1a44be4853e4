// Package zsim is an in-memory stand-in for the design server. It answers
// the same text data items the real server does, which lets the codec, the
// object model and the CLI run end to end without a live installation.
package zsim

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// row holds one surface's state: the three column families plus any solves
// registered against its columns.
type row struct {
	data   map[int]string
	aux    map[int]string
	extra  map[int]string
	solves map[int]string
}

func newRow(surfaceType string) *row {
	return &row{
		data:   map[int]string{0: surfaceType},
		aux:    map[int]string{},
		extra:  map[int]string{},
		solves: map[int]string{},
	}
}

func (r *row) clone() *row {
	c := newRow("")
	for k, v := range r.data {
		c.data[k] = v
	}
	for k, v := range r.aux {
		c.aux[k] = v
	}
	for k, v := range r.extra {
		c.extra[k] = v
	}
	for k, v := range r.solves {
		c.solves[k] = v
	}
	return c
}

// Text columns answer empty strings when unset; everything else answers a
// server-style zero.
func defaultData(column int) string {
	switch column {
	case 1, 4, 7, 9:
		return ""
	}
	return "0.00000000000000000000E+000"
}

// Server simulates the design server: a mutable lens in server memory and a
// frontend copy exchanged by PushLens/GetRefresh. A mutex guards the state
// so tests may drive it from multiple goroutines, though the real server
// would not tolerate that.
type Server struct {
	mu          sync.Mutex
	rows        []*row
	frontend    []*row
	pushEnabled bool
	history     []string
	failures    []string
}

// New creates a simulator holding the minimal two-surface lens.
func New() *Server {
	return &Server{
		rows:        []*row{newRow("STANDARD"), newRow("STANDARD")},
		pushEnabled: true,
	}
}

// SetPushEnabled toggles the frontend push capability.
func (s *Server) SetPushEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushEnabled = enabled
}

// FailNext makes the next request whose item starts with prefix fail at the
// transport, once. Multiple registrations stack.
func (s *Server) FailNext(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, prefix)
}

// History returns every item received so far, in order.
func (s *Server) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// SurfaceCount returns the current number of surfaces in server memory.
func (s *Server) SurfaceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Solve returns the raw solve record for (surface, target column), if any.
func (s *Server) Solve(surf, target int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if surf < 0 || surf >= len(s.rows) {
		return "", false
	}
	rec, ok := s.rows[surf].solves[target]
	return rec, ok
}

// Request implements the call-and-reply channel.
func (s *Server) Request(ctx context.Context, item string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, item)
	for i, prefix := range s.failures {
		if strings.HasPrefix(item, prefix) {
			s.failures = append(s.failures[:i], s.failures[i+1:]...)
			return "", fmt.Errorf("simulated transport failure on %q", item)
		}
	}

	fields := strings.Split(item, ",")
	switch fields[0] {
	case "GetVersion":
		return "130000", nil
	case "GetSystem":
		return fmt.Sprintf("%d,0,1,0,0,0,20,1,1", len(s.rows)-1), nil
	case "PushLensPermission":
		if s.pushEnabled {
			return "1", nil
		}
		return "0", nil
	case "PushLens":
		if !s.pushEnabled {
			return "-999", nil
		}
		s.frontend = cloneRows(s.rows)
		return "0", nil
	case "GetRefresh":
		if s.frontend != nil {
			s.rows = cloneRows(s.frontend)
		}
		return "0", nil
	case "InsertSurface":
		return s.insertSurface(fields[1:])
	case "DeleteSurface":
		return s.deleteSurface(fields[1:])
	case "GetSurfaceData":
		return s.getColumn(fields[1:], func(r *row) map[int]string { return r.data })
	case "SetSurfaceData":
		return s.setColumn(fields[1:], func(r *row) map[int]string { return r.data })
	case "GetSurfaceParameter":
		return s.getColumn(fields[1:], func(r *row) map[int]string { return r.aux })
	case "SetSurfaceParameter":
		return s.setColumn(fields[1:], func(r *row) map[int]string { return r.aux })
	case "GetExtra":
		return s.getColumn(fields[1:], func(r *row) map[int]string { return r.extra })
	case "SetExtra":
		return s.setColumn(fields[1:], func(r *row) map[int]string { return r.extra })
	case "SetSolve":
		return s.setSolve(fields[1:])
	case "GetSolve":
		return s.getSolve(fields[1:])
	}
	return "BAD COMMAND", nil
}

func cloneRows(rows []*row) []*row {
	out := make([]*row, len(rows))
	for i, r := range rows {
		out[i] = r.clone()
	}
	return out
}

func (s *Server) surfaceArg(fields []string) (int, error) {
	if len(fields) < 1 {
		return 0, fmt.Errorf("missing surface number")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 || n >= len(s.rows) {
		return 0, fmt.Errorf("bad surface number %q", fields[0])
	}
	return n, nil
}

func (s *Server) insertSurface(fields []string) (string, error) {
	if len(fields) < 1 {
		return "BAD COMMAND", nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 || n > len(s.rows)-1 {
		return "BAD COMMAND", nil
	}
	s.rows = append(s.rows, nil)
	copy(s.rows[n+1:], s.rows[n:])
	s.rows[n] = newRow("STANDARD")
	return "0", nil
}

func (s *Server) deleteSurface(fields []string) (string, error) {
	n, err := s.surfaceArg(fields)
	if err != nil || n < 1 {
		return "BAD COMMAND", nil
	}
	s.rows = append(s.rows[:n], s.rows[n+1:]...)
	return "0", nil
}

func (s *Server) getColumn(fields []string, family func(*row) map[int]string) (string, error) {
	n, err := s.surfaceArg(fields)
	if err != nil || len(fields) < 2 {
		return "BAD COMMAND", nil
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return "BAD COMMAND", nil
	}
	if v, ok := family(s.rows[n])[col]; ok {
		return v, nil
	}
	return defaultData(col), nil
}

func (s *Server) setColumn(fields []string, family func(*row) map[int]string) (string, error) {
	n, err := s.surfaceArg(fields)
	if err != nil || len(fields) < 3 {
		return "BAD COMMAND", nil
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return "BAD COMMAND", nil
	}
	// The payload may itself contain commas (free-text columns).
	payload := strings.Join(fields[2:], ",")
	family(s.rows[n])[col] = payload
	return payload, nil
}

func (s *Server) setSolve(fields []string) (string, error) {
	n, err := s.surfaceArg(fields)
	if err != nil || len(fields) < 2 {
		return "BAD COMMAND", nil
	}
	target, err := strconv.Atoi(fields[1])
	if err != nil {
		return "BAD COMMAND", nil
	}
	rec := strings.Join(fields[2:], ",")
	s.rows[n].solves[target] = rec
	return rec, nil
}

func (s *Server) getSolve(fields []string) (string, error) {
	n, err := s.surfaceArg(fields)
	if err != nil || len(fields) < 2 {
		return "BAD COMMAND", nil
	}
	target, err := strconv.Atoi(fields[1])
	if err != nil {
		return "BAD COMMAND", nil
	}
	if rec, ok := s.rows[n].solves[target]; ok {
		return rec, nil
	}
	return "0", nil
}
