package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/scheduler"
	"github.com/cuemby/burrow/pkg/types"
)

// PacketSink receives decoded packets from the wire
type PacketSink interface {
	SubmitPacket(pkt *types.Packet) error
}

// Server accepts grid connections and feeds decoded packets to the sink.
// Reader goroutines act under RoleIO: they must never execute operations
// in place, only hand them to the dispatcher.
type Server struct {
	addr   string
	sink   PacketSink
	logger zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewServer creates a server listening on addr once started
func NewServer(addr string, sink PacketSink) *Server {
	return &Server{
		addr:   addr,
		sink:   sink,
		logger: log.WithComponent("transport"),
	}
}

// Start begins accepting connections
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	ctx, cancel := context.WithCancel(scheduler.WithRole(context.Background(), scheduler.RoleIO))

	s.mu.Lock()
	s.listener = listener
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop(ctx, listener)

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("Transport listening")
	return nil
}

// Stop closes the listener and waits for reader goroutines to exit
func (s *Server) Stop() {
	s.mu.Lock()
	listener := s.listener
	cancel := s.cancel
	s.listener = nil
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if listener != nil {
		listener.Close()
	}
	s.wg.Wait()
}

// Addr returns the bound listener address, empty before Start
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Msg("Accept failed")
			return
		}

		s.wg.Add(1)
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	s.logger.Debug().Str("remote", remote).Msg("Connection opened")

	for {
		pkt, err := ReadPacket(conn)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				s.logger.Warn().Err(err).Str("remote", remote).Msg("Connection read failed")
			}
			return
		}

		metrics.PacketsReceived.WithLabelValues(packetKind(pkt)).Inc()

		if err := s.sink.SubmitPacket(pkt); err != nil {
			s.logger.Error().
				Err(err).
				Str("remote", remote).
				Int32("partition_id", pkt.PartitionID).
				Msg("Failed to dispatch packet")
		}
	}
}

func packetKind(pkt *types.Packet) string {
	switch {
	case pkt.IsResponse():
		return "response"
	case pkt.IsUrgent():
		return "urgent"
	default:
		return "operation"
	}
}
