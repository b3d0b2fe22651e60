package llrpsession

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pion/logging"

	"github.com/openllrp/llrp/internal/llrpwire"
	"github.com/openllrp/llrp/pkg/llrpcodec"
	"github.com/openllrp/llrp/pkg/llrpspec"
	"github.com/openllrp/llrp/pkg/llrptlv"
)

// DefaultPort is the standard, non-TLS LLRP port (Spec 6).
const DefaultPort = 5084

const (
	defaultDialTimeout            = 5 * time.Second
	defaultTransactTimeout        = 10 * time.Second
	defaultCloseConnectionTimeout = 2 * time.Second
)

// AsyncHandler receives unsolicited messages (tag reports, reader
// events) delivered by the reader loop outside any transact call (Spec
// 4.6 "READY"). Implementations that might block should enqueue into a
// bounded queue of their own; the Session does not buffer asynchronous
// messages (Spec 4.6 "Backpressure").
type AsyncHandler interface {
	HandleAsyncMessage(msg *llrptlv.Message)
}

// AsyncHandlerFunc adapts a plain function to AsyncHandler.
type AsyncHandlerFunc func(msg *llrptlv.Message)

// HandleAsyncMessage calls f.
func (f AsyncHandlerFunc) HandleAsyncMessage(msg *llrptlv.Message) { f(msg) }

// Config configures a Session. Registry is required; the rest have
// working defaults, following the ManagerConfig/TCPConfig pattern the
// teacher uses for its transport and exchange managers.
type Config struct {
	// Registry describes the LLRP protocol this session speaks.
	Registry *llrpspec.Registry

	// LoggerFactory produces the session's logger. A nil factory
	// disables logging (Spec 9 "Background reader loop").
	LoggerFactory logging.LoggerFactory

	// DialTimeout bounds TCP connect and the wait for the reader's
	// initial READER_EVENT_NOTIFICATION (Spec 4.6 "AWAITING_READER_EVENT").
	DialTimeout time.Duration

	// DefaultTransactTimeout is the deadline applied to Transact calls
	// whose context carries none (Spec 5 "global default").
	DefaultTransactTimeout time.Duration

	// MaxFrameSize bounds a single incoming frame (Spec 4.6 "FRAMING_ERROR").
	MaxFrameSize uint32
}

func (c Config) withDefaults() Config {
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.DefaultTransactTimeout <= 0 {
		c.DefaultTransactTimeout = defaultTransactTimeout
	}
	if c.MaxFrameSize == 0 {
		c.MaxFrameSize = llrpwire.DefaultMaxFrameSize
	}
	return c
}

// Session is a stateful TCP client for one RFID reader (Spec 4.6). One
// Session handles one connection; reconnection is an application
// policy (Spec 7 "Nothing is retried automatically").
type Session struct {
	cfg Config
	reg *llrpspec.Registry
	log logging.LeveledLogger
	id  uuid.UUID // diagnosable connection identifier, logged only (Spec 9)

	mu      sync.RWMutex
	state   State
	handler AsyncHandler

	conn   net.Conn
	reader *llrpwire.StreamReader
	writer *llrpwire.StreamWriter
	wMu    sync.Mutex // serializes socket writes (Spec 5)

	table         *correlationTable
	nextMessageID atomic.Uint32

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New constructs a Session. Connect must be called before Transact,
// StartListener, or Close do anything useful.
func New(cfg Config) (*Session, error) {
	if cfg.Registry == nil {
		return nil, errors.New("llrpsession: Config.Registry is required")
	}
	cfg = cfg.withDefaults()
	s := &Session{
		cfg:    cfg,
		reg:    cfg.Registry,
		table:  newCorrelationTable(),
		closed: make(chan struct{}),
		id:     uuid.New(),
	}
	if cfg.LoggerFactory != nil {
		s.log = cfg.LoggerFactory.NewLogger("llrpsession")
	}
	return s, nil
}

// State reports the session's current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Connect dials (host, port) over TCP, implementing CONNECTING and
// AWAITING_READER_EVENT (Spec 4.6). port of 0 uses DefaultPort. On
// success the session is READY and a background reader loop is
// running; a failure at either stage leaves the session DISCONNECTED.
func (s *Session) Connect(ctx context.Context, host string, port int) error {
	if port == 0 {
		port = DefaultPort
	}
	s.setState(StateConnecting)
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	dialCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.cfg.DialTimeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		s.setState(StateDisconnected)
		return &SessionError{Kind: SessionErrConnectFailed, Err: err}
	}
	if s.log != nil {
		s.log.Infof("llrpsession[%s]: connected to %s", s.id, addr)
	}

	s.conn = conn
	s.reader = llrpwire.NewStreamReader(conn, s.cfg.MaxFrameSize)
	s.writer = llrpwire.NewStreamWriter(conn)
	s.setState(StateAwaitingReaderEvent)

	if deadline, ok := dialCtx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	_, frame, err := s.reader.ReadFrame()
	_ = conn.SetReadDeadline(time.Time{})
	if err != nil {
		conn.Close()
		s.setState(StateDisconnected)
		return &SessionError{Kind: SessionErrConnectFailed, Err: err}
	}

	msg, err := llrpcodec.DecodeMessage(s.reg, frame)
	if err != nil || msg.Spec == nil || msg.Spec.Name != "READER_EVENT_NOTIFICATION" {
		conn.Close()
		s.setState(StateDisconnected)
		return &SessionError{Kind: SessionErrConnectFailed, Err: errors.New("expected READER_EVENT_NOTIFICATION")}
	}
	if !connectionAttemptSucceeded(s.reg, msg) {
		conn.Close()
		s.setState(StateDisconnected)
		return &SessionError{Kind: SessionErrConnectFailed, Err: errors.New("reader reported a failed connection attempt")}
	}

	s.setState(StateReady)
	s.wg.Add(1)
	go s.readLoop()
	if s.log != nil {
		s.log.Infof("llrpsession[%s]: ready", s.id)
	}
	return nil
}

func connectionAttemptSucceeded(reg *llrpspec.Registry, msg *llrptlv.Message) bool {
	data := msg.Find("ReaderEventNotificationData")
	if data == nil {
		return false
	}
	evt := data.Find("ConnectionAttemptEvent")
	if evt == nil {
		return false
	}
	u, ok := evt.Values["Status"].AsUint()
	if !ok {
		return false
	}
	enum, ok := reg.Enums["ConnectionAttemptStatusType"]
	if !ok {
		return false
	}
	want, ok := enum.NameToValue["Success"]
	return ok && u == want
}

// Transact assigns req a fresh message ID, sends it, and waits for the
// correlated reply (Spec 4.6 "READY"). If ctx carries no deadline, the
// session's DefaultTransactTimeout applies (Spec 5).
func (s *Session) Transact(ctx context.Context, req *llrptlv.Message) (*llrptlv.Message, error) {
	switch st := s.State(); {
	case st == StateReady, st == StateListening:
	case st == StateClosing && req.Spec != nil && req.Spec.Name == "CLOSE_CONNECTION":
		// Close sends CLOSE_CONNECTION after entering CLOSING.
	default:
		return nil, &SessionError{Kind: SessionErrIOError, Err: errors.New("session is not connected")}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DefaultTransactTimeout)
		defer cancel()
	}

	id := s.nextMessageID.Add(1)
	req.MessageID = id
	frame, err := llrpcodec.EncodeMessage(s.reg, req)
	if err != nil {
		return nil, err
	}

	ch := s.table.register(id)
	defer s.table.remove(id)

	s.wMu.Lock()
	writeErr := s.writer.WriteFrame(frame)
	s.wMu.Unlock()
	if writeErr != nil {
		ioErr := &SessionError{Kind: SessionErrIOError, Err: writeErr}
		s.dropConnection(ioErr)
		return nil, ioErr
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return res.msg, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &SessionError{Kind: SessionErrTimeout, Err: ctx.Err()}
		}
		return nil, &SessionError{Kind: SessionErrCancelled, Err: ctx.Err()}
	case <-s.closed:
		// signalClosed fills every registered slot before closing s.closed,
		// so prefer the error it delivered.
		select {
		case res := <-ch:
			if res.err != nil {
				return nil, res.err
			}
			return res.msg, nil
		default:
		}
		return nil, &SessionError{Kind: SessionErrCancelled, Err: errors.New("session closed")}
	}
}

// StartListener registers h to receive unsolicited messages and moves
// the session to LISTENING (Spec 4.6). Transact remains usable.
func (s *Session) StartListener(h AsyncHandler) {
	s.mu.Lock()
	s.handler = h
	if s.state == StateReady {
		s.state = StateListening
	}
	s.mu.Unlock()
}

// StopListener unregisters the async handler and returns to READY.
func (s *Session) StopListener() {
	s.mu.Lock()
	s.handler = nil
	if s.state == StateListening {
		s.state = StateReady
	}
	s.mu.Unlock()
}

// Close sends CLOSE_CONNECTION, waits briefly for its reply, and tears
// the connection down, waking every outstanding Transact with
// CANCELLED (Spec 4.6 "CLOSING", "Cancellation").
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateDisconnected, StateClosing:
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosing
	s.mu.Unlock()

	if spec, ok := s.reg.Messages["CLOSE_CONNECTION"]; ok {
		closeCtx, cancel := context.WithTimeout(ctx, defaultCloseConnectionTimeout)
		msg := llrptlv.NewMessage(spec, 0, nil)
		_, _ = s.Transact(closeCtx, msg) // best-effort; a dead peer shouldn't block Close
		cancel()
	}

	s.signalClosed(&SessionError{Kind: SessionErrCancelled, Err: errors.New("session closed by application")})
	s.wg.Wait()
	return nil
}

func (s *Session) dropConnection(err *SessionError) {
	if s.log != nil {
		s.log.Errorf("llrpsession[%s]: connection dropped: %v", s.id, err)
	}
	s.signalClosed(err)
}

func (s *Session) signalClosed(err *SessionError) {
	s.closeOnce.Do(func() {
		s.table.cancelAll(err)
		close(s.closed)
		if s.conn != nil {
			s.conn.Close()
		}
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
	})
}

// readLoop is the single background reader (Spec 5 "parallel threads":
// one dedicated I/O thread runs the read loop). It runs until the
// connection errors, at which point it drops the session.
func (s *Session) readLoop() {
	defer s.wg.Done()
	for {
		_, frame, err := s.reader.ReadFrame()
		if err != nil {
			s.dropConnection(&SessionError{Kind: classifyReadErr(err), Err: err})
			return
		}
		msg, err := llrpcodec.DecodeMessage(s.reg, frame)
		if err != nil {
			if s.log != nil {
				s.log.Warnf("llrpsession[%s]: dropping malformed frame: %v", s.id, err)
			}
			continue
		}
		s.dispatch(msg)
	}
}

func classifyReadErr(err error) SessionErrorKind {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return SessionErrPeerClosed
	}
	return SessionErrIOError
}

// dispatch routes a decoded incoming message: KEEPALIVE is
// auto-acknowledged (Spec 4.6 "Keepalive"), a matching reply completes
// its Transact call, and everything else goes to the async handler in
// arrival order (Spec 5 "Ordering guarantees").
func (s *Session) dispatch(msg *llrptlv.Message) {
	if msg.Spec != nil && msg.Spec.Name == "KEEPALIVE" {
		s.sendKeepaliveAck(msg.MessageID)
		return
	}
	if msg.Spec != nil && msg.Spec.ResponseFor != "" {
		if s.table.complete(msg.MessageID, msg) {
			return
		}
	}

	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()
	if handler != nil {
		handler.HandleAsyncMessage(msg)
	} else if s.log != nil {
		s.log.Warnf("llrpsession[%s]: no listener for unsolicited %s", s.id, msg.Name())
	}
}

func (s *Session) sendKeepaliveAck(messageID uint32) {
	spec, ok := s.reg.Messages["KEEPALIVE_ACK"]
	if !ok {
		return
	}
	ack := llrptlv.NewMessage(spec, messageID, nil)
	frame, err := llrpcodec.EncodeMessage(s.reg, ack)
	if err != nil {
		if s.log != nil {
			s.log.Warnf("llrpsession[%s]: failed to encode KEEPALIVE_ACK: %v", s.id, err)
		}
		return
	}
	s.wMu.Lock()
	defer s.wMu.Unlock()
	if err := s.writer.WriteFrame(frame); err != nil && s.log != nil {
		s.log.Warnf("llrpsession[%s]: failed to write KEEPALIVE_ACK: %v", s.id, err)
	}
}
