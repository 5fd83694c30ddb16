package stream

import (
	"math/rand"
	"net"
	"sync"
)

// Sink is a pooled output destination for decoded strings. Connections are
// dialed lazily and picked at random per write; a connection whose write
// fails is dropped from the pool so the next write redials.
type Sink struct {
	mu       sync.Mutex
	pool     []net.Conn
	poolSize int
	dial     func() (net.Conn, error)
}

// Write sends p to one pooled connection, implementing io.Writer so the
// server can treat sink and client output uniformly. Writes from concurrent
// connections are serialized so their lines do not interleave.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.conn()
	if err != nil {
		return 0, err
	}

	n, err := conn.Write(p)
	if err != nil {
		s.drop(conn)
	}
	return n, err
}

func (s *Sink) refill() error {
	for len(s.pool) < s.poolSize {
		conn, err := s.dial()
		if err != nil {
			return err
		}

		s.pool = append(s.pool, conn)
	}

	return nil
}

func (s *Sink) conn() (net.Conn, error) {
	if err := s.refill(); err != nil {
		return nil, err
	}

	if s.poolSize == 1 {
		return s.pool[0], nil
	}

	return s.pool[rand.Intn(len(s.pool))], nil
}

func (s *Sink) drop(failed net.Conn) {
	failed.Close()
	for i, conn := range s.pool {
		if conn == failed {
			s.pool = append(s.pool[:i], s.pool[i+1:]...)
			return
		}
	}
}
