package llrpsession

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openllrp/llrp/internal/llrpwire"
	"github.com/openllrp/llrp/pkg/llrpcodec"
	"github.com/openllrp/llrp/pkg/llrpspec"
	"github.com/openllrp/llrp/pkg/llrptlv"
)

// readerSide is a minimal scripted peer accepted off a real loopback
// listener, standing in for an RFID reader in tests (mirrors the
// teacher's pkg/transport/tcp_test.go, which dials real 127.0.0.1:0
// listeners rather than an in-memory pipe for its TCP-specific cases).
type readerSide struct {
	conn   net.Conn
	reader *llrpwire.StreamReader
	writer *llrpwire.StreamWriter
}

func newReaderSide(conn net.Conn) *readerSide {
	return &readerSide{
		conn:   conn,
		reader: llrpwire.NewStreamReader(conn, llrpwire.DefaultMaxFrameSize),
		writer: llrpwire.NewStreamWriter(conn),
	}
}

func (r *readerSide) sendEventNotification(t *testing.T, reg *llrpspec.Registry, status string) {
	t.Helper()
	ts := llrptlv.NewParameter(reg.Parameters["UTCTimestamp"], map[string]llrptlv.Value{
		"Microseconds": llrptlv.Uint(0),
	})
	evt := llrptlv.NewParameter(reg.Parameters["ConnectionAttemptEvent"], map[string]llrptlv.Value{
		"Status": llrptlv.Uint(reg.Enums["ConnectionAttemptStatusType"].NameToValue[status]),
	})
	data := llrptlv.NewParameter(reg.Parameters["ReaderEventNotificationData"], nil, ts, evt)
	msg := llrptlv.NewMessage(reg.Messages["READER_EVENT_NOTIFICATION"], 0, nil, data)
	frame, err := llrpcodec.EncodeMessage(reg, msg)
	require.NoError(t, err)
	require.NoError(t, r.writer.WriteFrame(frame))
}

func (r *readerSide) readMessage(t *testing.T, reg *llrpspec.Registry) *llrptlv.Message {
	t.Helper()
	_, frame, err := r.reader.ReadFrame()
	require.NoError(t, err)
	msg, err := llrpcodec.DecodeMessage(reg, frame)
	require.NoError(t, err)
	return msg
}

func (r *readerSide) sendResponse(t *testing.T, reg *llrpspec.Registry, spec *llrpspec.MessageSpec, messageID uint32) {
	t.Helper()
	status := llrptlv.NewParameter(reg.Parameters["LLRPStatus"], map[string]llrptlv.Value{
		"StatusCode":   llrptlv.Uint(reg.Enums["StatusCode"].NameToValue["M_Success"]),
		"ErrorDescription": llrptlv.String(""),
	})
	msg := llrptlv.NewMessage(spec, messageID, nil, status)
	frame, err := llrpcodec.EncodeMessage(reg, msg)
	require.NoError(t, err)
	require.NoError(t, r.writer.WriteFrame(frame))
}

type acceptResult struct {
	conn net.Conn
	err  error
}

func dialAndAccept(t *testing.T, reg *llrpspec.Registry) (*Session, *readerSide, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	acceptCh := make(chan acceptResult, 1)
	go func() {
		c, err := ln.Accept()
		acceptCh <- acceptResult{c, err}
	}()

	sess, err := New(Config{Registry: reg})
	require.NoError(t, err)

	addr := ln.Addr().(*net.TCPAddr)

	connectErrCh := make(chan error, 1)
	go func() {
		connectErrCh <- sess.Connect(context.Background(), "127.0.0.1", addr.Port)
	}()

	res := <-acceptCh
	require.NoError(t, res.err)
	reader := newReaderSide(res.conn)
	reader.sendEventNotification(t, reg, "Success")

	require.NoError(t, <-connectErrCh)
	require.Equal(t, StateReady, sess.State())

	cleanup := func() {
		ln.Close()
		res.conn.Close()
	}
	return sess, reader, cleanup
}

func TestSession_ConnectSuccess(t *testing.T) {
	reg := llrpspec.Builtin()
	sess, _, cleanup := dialAndAccept(t, reg)
	defer cleanup()
	require.Equal(t, StateReady, sess.State())
}

func TestSession_ConnectFailureOnAttemptFailed(t *testing.T) {
	reg := llrpspec.Builtin()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := newReaderSide(conn)
		reader.sendEventNotification(t, reg, "AnotherConnectionAttempted")
	}()

	sess, err := New(Config{Registry: reg})
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	err = sess.Connect(context.Background(), "127.0.0.1", addr.Port)
	require.Error(t, err)
	require.Equal(t, StateDisconnected, sess.State())
}

func TestSession_TransactCorrelatesReply(t *testing.T) {
	reg := llrpspec.Builtin()
	sess, reader, cleanup := dialAndAccept(t, reg)
	defer cleanup()

	replyDone := make(chan struct{})
	go func() {
		defer close(replyDone)
		req := reader.readMessage(t, reg)
		require.Equal(t, "GET_READER_CAPABILITIES", req.Name())
		reader.sendResponse(t, reg, reg.Messages["GET_READER_CAPABILITIES_RESPONSE"], req.MessageID)
	}()

	req := llrptlv.NewMessage(reg.Messages["GET_READER_CAPABILITIES"], 0, map[string]llrptlv.Value{
		"RequestedData": llrptlv.Uint(reg.Enums["GetReaderCapabilitiesRequestedData"].NameToValue["All"]),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := sess.Transact(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "GET_READER_CAPABILITIES_RESPONSE", resp.Name())
	<-replyDone
}

func TestSession_TransactTimeout(t *testing.T) {
	reg := llrpspec.Builtin()
	sess, reader, cleanup := dialAndAccept(t, reg)
	defer cleanup()
	_ = reader // intentionally never replies

	req := llrptlv.NewMessage(reg.Messages["GET_READER_CAPABILITIES"], 0, map[string]llrptlv.Value{
		"RequestedData": llrptlv.Uint(reg.Enums["GetReaderCapabilitiesRequestedData"].NameToValue["All"]),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := sess.Transact(ctx, req)
	require.Error(t, err)
	var sessErr *SessionError
	require.ErrorAs(t, err, &sessErr)
	require.Equal(t, SessionErrTimeout, sessErr.Kind)
}

func TestSession_KeepaliveAutoAck(t *testing.T) {
	reg := llrpspec.Builtin()
	sess, reader, cleanup := dialAndAccept(t, reg)
	defer cleanup()

	ka := llrptlv.NewMessage(reg.Messages["KEEPALIVE"], 99, nil)
	frame, err := llrpcodec.EncodeMessage(reg, ka)
	require.NoError(t, err)
	require.NoError(t, reader.writer.WriteFrame(frame))

	ack := reader.readMessage(t, reg)
	require.Equal(t, "KEEPALIVE_ACK", ack.Name())
	require.Equal(t, uint32(99), ack.MessageID)
	require.Equal(t, StateReady, sess.State())
}

func TestSession_CloseCancelsOutstandingTransact(t *testing.T) {
	reg := llrpspec.Builtin()
	sess, reader, cleanup := dialAndAccept(t, reg)
	defer cleanup()

	// The reader accepts the CLOSE_CONNECTION but the in-flight
	// GET_READER_CAPABILITIES never gets a reply; Close must still
	// unblock it (Spec 4.6 "Cancellation").
	go func() {
		for i := 0; i < 2; i++ {
			msg := reader.readMessage(t, reg)
			if msg.Name() == "CLOSE_CONNECTION" {
				reader.sendResponse(t, reg, reg.Messages["CLOSE_CONNECTION_RESPONSE"], msg.MessageID)
				return
			}
		}
	}()

	req := llrptlv.NewMessage(reg.Messages["GET_READER_CAPABILITIES"], 0, map[string]llrptlv.Value{
		"RequestedData": llrptlv.Uint(reg.Enums["GetReaderCapabilitiesRequestedData"].NameToValue["All"]),
	})
	errCh := make(chan error, 1)
	go func() {
		_, err := sess.Transact(context.Background(), req)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond) // let the request reach the in-flight table
	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sess.Close(closeCtx))

	err := <-errCh
	require.Error(t, err)
	var sessErr *SessionError
	require.ErrorAs(t, err, &sessErr)
	require.Equal(t, SessionErrCancelled, sessErr.Kind)
}
