package redisserver

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tidwall/resp"

	"github.com/yndnr/jsonkv-go/internal/core/service"
	"github.com/yndnr/jsonkv-go/internal/infra/idgen"
	"github.com/yndnr/jsonkv-go/internal/server/ratelimit"
	"github.com/yndnr/jsonkv-go/internal/telemetry/logger"
	"github.com/yndnr/jsonkv-go/internal/telemetry/metric"
)

// protocolName labels RESP metrics.
const protocolName = "resp"

// ErrServerClosed is returned by Serve after Shutdown.
var ErrServerClosed = errors.New("redisserver: server closed")

// Config holds the RESP server configuration.
type Config struct {
	// ReadTimeout bounds reading one command once its first byte arrived.
	ReadTimeout time.Duration
	// WriteTimeout bounds flushing one reply.
	WriteTimeout time.Duration
	// IdleTimeout bounds the wait for the next command.
	IdleTimeout time.Duration
	// RateLimit is commands per second per client IP; 0 disables it.
	RateLimit float64
	// Limits bounds request framing.
	Limits Limits
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		Limits:       DefaultLimits(),
	}
}

// Server is the RESP front end.
type Server struct {
	cfg     Config
	handler *CommandHandler
	logger  *slog.Logger
	metrics *metric.Registry

	mu      sync.Mutex
	ln      net.Listener
	conns   map[*Conn]struct{}
	closing atomic.Bool
	wg      sync.WaitGroup
}

// Conn is a single client connection.
type Conn struct {
	id      string
	netConn net.Conn
	br      *bufio.Reader
	reader  *Reader
	bw      *bufio.Writer
	w       *resp.Writer

	closed atomic.Bool
}

func newConn(c net.Conn, limits Limits) *Conn {
	br := bufio.NewReader(c)
	bw := bufio.NewWriter(c)
	return &Conn{
		id:      idgen.New(),
		netConn: c,
		br:      br,
		reader:  NewReader(br, limits),
		bw:      bw,
		w:       resp.NewWriter(bw),
	}
}

// ID returns the connection ID used in logs.
func (c *Conn) ID() string {
	return c.id
}

// Close closes the connection once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// remoteIP returns the peer IP without the port.
func (c *Conn) remoteIP() string {
	addr := c.netConn.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// New creates a RESP server executing commands with exec.
func New(cfg *Config, exec service.Executor, metrics *metric.Registry, log *slog.Logger) *Server {
	def := DefaultConfig()
	if cfg == nil {
		cfg = def
	}
	c := *cfg
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = def.IdleTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("protocol", protocolName)

	return &Server{
		cfg:     c,
		handler: NewCommandHandler(exec, ratelimit.New(c.RateLimit), metrics, log),
		logger:  log,
		metrics: metrics,
		conns:   make(map[*Conn]struct{}),
	}
}

// Serve accepts connections on ln until Shutdown. It always returns a
// non-nil error; after Shutdown that error is ErrServerClosed.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closing.Load() {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("resp server serving", "addr", ln.Addr().String())

	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.closing.Load() {
				return ErrServerClosed
			}
			if retryableAcceptError(err) {
				backoff = nextBackoff(backoff)
				s.logger.Warn("accept error, retrying", "error", err, "delay", backoff)
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0

		c := newConn(nc, s.cfg.Limits)
		if !s.track(c) {
			_ = c.Close()
			return ErrServerClosed
		}
		go func() {
			defer s.untrack(c)
			s.serveConn(c)
		}()
	}
}

// retryableAcceptError reports whether Accept may succeed later. File
// descriptor exhaustion clears as connections close, so it must not stop
// the server.
func retryableAcceptError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.EMFILE, syscall.ENFILE, syscall.ENOBUFS, syscall.ENOMEM, syscall.ECONNABORTED,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}

// track registers c unless the server is closing.
func (s *Server) track(c *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.wg.Done()
}

// Shutdown stops accepting, lets every connection finish the command it
// is handling, then closes it. Connections still open when ctx expires
// are closed forcibly.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)

	s.mu.Lock()
	var err error
	if s.ln != nil {
		if cerr := s.ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}
	// Wake connections blocked waiting for their next command.
	for c := range s.conns {
		_ = c.netConn.SetReadDeadline(time.Now())
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		s.mu.Lock()
		for c := range s.conns {
			_ = c.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

func (s *Server) serveConn(c *Conn) {
	defer c.Close()

	s.metrics.ConnOpened(protocolName)
	defer s.metrics.ConnClosed(protocolName)

	log := s.logger.With("conn_id", c.ID(), "remote", c.RemoteAddr().String())
	ctx := logger.WithConnID(context.Background(), c.ID())
	log.Debug("connection accepted")
	defer log.Debug("connection closed")

	for {
		// Idle wait for the first byte of the next command.
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
			return
		}
		if s.closing.Load() {
			return
		}
		if _, err := c.br.Peek(1); err != nil {
			s.logReadError(log, err)
			return
		}

		// The rest of the command must arrive within ReadTimeout.
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			return
		}
		args, err := c.reader.ReadCommand()
		if err != nil {
			if isFramingError(err) {
				log.Warn("protocol error, closing connection", "error", err)
				_ = replyError(c.w, "ERR "+err.Error())
				_ = s.flush(c)
			} else {
				s.logReadError(log, err)
			}
			return
		}
		if len(args) == 0 {
			continue
		}

		quit := s.handler.Handle(ctx, c, args)
		if err := s.flush(c); err != nil {
			log.Debug("write failed", "error", err)
			return
		}
		if quit {
			return
		}
	}
}

func (s *Server) flush(c *Conn) error {
	if err := c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	return c.bw.Flush()
}

func (s *Server) logReadError(log *slog.Logger, err error) {
	var ne net.Error
	switch {
	case errors.Is(err, net.ErrClosed), isEOF(err):
	case errors.As(err, &ne) && ne.Timeout():
		if !s.closing.Load() {
			log.Debug("connection timed out")
		}
	default:
		log.Debug("connection read error", "error", err)
	}
}
