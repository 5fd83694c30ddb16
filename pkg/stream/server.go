// Package stream provides a unix-socket service that splits incoming JSON
// streams into values and emits the decoded form of every string literal
// they contain, either back to the client or to a forwarding sink.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"net"
	"sync"

	litJson "github.com/BLAZED-sh/jsonlit/pkg/json"
	"github.com/rs/zerolog"
)

// clientState tracks a client connection and its lexer for debugging.
type clientState struct {
	conn      net.Conn
	lexer     *litJson.StreamLexer
	createdAt int64 // Unix timestamp
}

// Server accepts JSON streams on unix sockets and answers each value with
// its decoded string literals, newline-delimited. When a Sink is configured
// the decoded strings are forwarded there instead of echoed to the client.
type Server struct {
	sink       *Sink
	listeners  []net.Listener
	context    context.Context
	cancelFunc context.CancelFunc
	listening  bool
	logger     zerolog.Logger
	bufferSize int
	maxRead    int

	// Tracking active connections for debugging
	activeConnections      sync.Map // map[string]*clientState
	activeConnectionsCount int64
}

// NewUnixSocketServer creates a Server. forwardPath is the unix socket the
// decoded strings are forwarded to; when empty they are written back to the
// originating client.
func NewUnixSocketServer(forwardPath string, bufferSize, maxRead int) *Server {
	var sink *Sink
	if forwardPath != "" {
		sink = &Sink{
			pool:     []net.Conn{},
			poolSize: 1,
			dial: func() (net.Conn, error) {
				return net.Dial("unix", forwardPath)
			},
		}
	}

	cancelCtx, cancelFunc := context.WithCancel(context.Background())

	logger := zerolog.New(zerolog.NewConsoleWriter()).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Str("component", "stream").
		Logger()

	server := Server{
		sink:       sink,
		listeners:  []net.Listener{},
		context:    cancelCtx,
		cancelFunc: cancelFunc,
		listening:  false,
		logger:     logger,
		bufferSize: bufferSize,
		maxRead:    maxRead,
	}
	return &server
}

func (s *Server) AddUnixSocketListener(context context.Context, path string) error {
	config := net.ListenConfig{}
	var listener net.Listener
	listener, err := config.Listen(context, "unix", path)
	if err != nil {
		return err
	}
	s.listeners = append(s.listeners, listener)
	return nil
}

func (s *Server) Listen() {
	for _, listener := range s.listeners {
		go s.acceptConnections(listener)
	}
	s.listening = true
}

func (s *Server) Shutdown() {
	s.cancelFunc()

	// Close all listeners
	for _, listener := range s.listeners {
		if err := listener.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing listener")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")
}

// DumpDebugInfo logs debug information about active connections and lexers
func (s *Server) DumpDebugInfo() {
	count := 0

	s.logger.Info().Int64("active_connections_count", s.activeConnectionsCount).Msg("Debug information")

	s.activeConnections.Range(func(key, value interface{}) bool {
		count++
		connID := key.(string)
		state := value.(*clientState)

		bufferInfo := fmt.Sprintf("Buffer length: %d, cursor: %d, capacity: %d",
			state.lexer.BufferLength(),
			state.lexer.Cursor(),
			cap(state.lexer.Buffer()))

		s.logger.Info().
			Str("connection_id", connID).
			Str("buffer", bufferInfo).
			Str("buffer_content", state.lexer.BufferContent()).
			Str("remote", state.conn.RemoteAddr().String()).
			Int64("created_at", state.createdAt).
			Msg("Connection debug info")

		return true
	})

	s.logger.Info().Int("actual_count", count).Msg("Finished dumping debug info")
}

func (s *Server) acceptConnections(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			s.logger.Error().Err(err).Msg("Error accepting connection")
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	// Generate a unique connection ID
	connID := fmt.Sprintf("conn_%d", time.Now().UnixNano())

	lexer := litJson.NewStreamLexer(conn, s.bufferSize, s.maxRead)

	var output io.Writer = conn
	if s.sink != nil {
		output = s.sink
	}

	// Store connection info for debugging
	state := &clientState{
		conn:      conn,
		lexer:     lexer,
		createdAt: time.Now().Unix(),
	}
	s.activeConnections.Store(connID, state)
	atomic.AddInt64(&s.activeConnectionsCount, 1)

	s.logger.Trace().Str("connID", connID).Msg("Handling connection")

	cleanup := func() {
		conn.Close()
		s.activeConnections.Delete(connID)
		atomic.AddInt64(&s.activeConnectionsCount, -1)
		s.logger.Trace().Str("connID", connID).Msg("Connection closed")
	}

	lexer.DecodeAll(s.context, func(b []byte) {
		if err := s.handleValue(b, output); err != nil {
			s.logger.Error().Err(err).Str("connID", connID).Msg("Error writing decoded strings")
		}
	}, func(err error) {
		s.logger.Error().Err(err).Str("connID", connID).Msg("Error reading from client")
	})
	cleanup()
}

// handleValue decodes every string literal of one JSON value and writes the
// results to output, one per line.
func (s *Server) handleValue(data []byte, output io.Writer) error {
	var writeErr error
	err := litJson.EachString(data, func(t litJson.Text) {
		if writeErr != nil {
			return
		}
		// A borrowed Text aliases the lexer buffer, so never append to it
		// in place.
		line := make([]byte, 0, t.Len()+1)
		line = append(line, t.Bytes()...)
		line = append(line, '\n')
		if _, err := output.Write(line); err != nil {
			writeErr = err
		}
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	s.logger.Trace().
		Int("size", len(data)).
		Str("body", string(data)).
		Msg("Decoded value")

	return nil
}
