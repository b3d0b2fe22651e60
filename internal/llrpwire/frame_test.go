package llrpwire_test

import (
	"testing"
	"time"

	"github.com/pion/transport/v3/test"
	"github.com/stretchr/testify/require"

	"github.com/openllrp/llrp/internal/llrpwire"
)

// TestStreamRoundTrip_OverBridge exercises StreamWriter/StreamReader over
// an in-memory pion test.Bridge connection pair, the same virtual-link
// approach the teacher's pkg/transport/pipe.go wraps for its own
// transport tests, instead of a real socket.
func TestStreamRoundTrip_OverBridge(t *testing.T) {
	bridge := test.NewBridge()
	defer bridge.GetConn0().Close()
	defer bridge.GetConn1().Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				bridge.Tick()
			}
		}
	}()

	w := llrpwire.NewStreamWriter(bridge.GetConn0())
	r := llrpwire.NewStreamReader(bridge.GetConn1(), llrpwire.DefaultMaxFrameSize)

	h := llrpwire.Header{Version: llrpwire.Version, Type: 62, MessageID: 17}
	frame := h.Encode()
	frame = append(frame, []byte("payload")...)
	llrpwire.PatchLength(frame)

	require.NoError(t, w.WriteFrame(frame))

	got, body, err := r.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, uint32(17), got.MessageID)
	require.Equal(t, uint16(62), got.Type)
	require.Equal(t, frame, body)
}
