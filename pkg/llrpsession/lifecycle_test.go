package llrpsession

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openllrp/llrp/pkg/llrpspec"
	"github.com/openllrp/llrp/pkg/llrptlv"
)

func TestSession_AddROSpecWiresSubParam(t *testing.T) {
	reg := llrpspec.Builtin()
	sess, reader, cleanup := dialAndAccept(t, reg)
	defer cleanup()

	replyDone := make(chan struct{})
	go func() {
		defer close(replyDone)
		req := reader.readMessage(t, reg)
		require.Equal(t, "ADD_ROSPEC", req.Name())
		require.NotNil(t, req.Find("ROSpec"))
		reader.sendResponse(t, reg, reg.Messages["ADD_ROSPEC_RESPONSE"], req.MessageID)
	}()

	nullTrigger := llrptlv.Uint(reg.Enums["AISpecStopTriggerType"].NameToValue["Null"])
	boundary := llrptlv.NewParameter(reg.Parameters["ROBoundarySpec"], map[string]llrptlv.Value{
		"StartTriggerType":     nullTrigger,
		"StopTriggerType":      nullTrigger,
		"DurationTriggerValue": llrptlv.Uint(0),
	})
	aiStop := llrptlv.NewParameter(reg.Parameters["AISpecStopTrigger"], map[string]llrptlv.Value{
		"StopTriggerType":      nullTrigger,
		"DurationTriggerValue": llrptlv.Uint(0),
	})
	aiSpec := llrptlv.NewParameter(reg.Parameters["AISpec"], map[string]llrptlv.Value{
		"AntennaIDs": llrptlv.UintArray([]uint64{0}),
	}, aiStop)
	roSpec := llrptlv.NewParameter(reg.Parameters["ROSpec"], map[string]llrptlv.Value{
		"ROSpecID":     llrptlv.Uint(1),
		"Priority":     llrptlv.Uint(0),
		"CurrentState": llrptlv.Uint(reg.Enums["ROSpecState"].NameToValue["Disabled"]),
	}, boundary, aiSpec)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := sess.AddROSpec(ctx, roSpec)
	require.NoError(t, err)
	require.Equal(t, "ADD_ROSPEC_RESPONSE", resp.Name())
	<-replyDone
}

func TestSession_ROSpecLifecycleHelpers(t *testing.T) {
	reg := llrpspec.Builtin()
	sess, reader, cleanup := dialAndAccept(t, reg)
	defer cleanup()

	cases := []struct {
		name string
		call func(ctx context.Context) (*llrptlv.Message, error)
	}{
		{"DELETE_ROSPEC", func(ctx context.Context) (*llrptlv.Message, error) { return sess.DeleteROSpec(ctx, 1) }},
		{"START_ROSPEC", func(ctx context.Context) (*llrptlv.Message, error) { return sess.StartROSpec(ctx, 1) }},
		{"STOP_ROSPEC", func(ctx context.Context) (*llrptlv.Message, error) { return sess.StopROSpec(ctx, 1) }},
		{"ENABLE_ROSPEC", func(ctx context.Context) (*llrptlv.Message, error) { return sess.EnableROSpec(ctx, 1) }},
		{"DISABLE_ROSPEC", func(ctx context.Context) (*llrptlv.Message, error) { return sess.DisableROSpec(ctx, 1) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			replyDone := make(chan struct{})
			go func() {
				defer close(replyDone)
				req := reader.readMessage(t, reg)
				require.Equal(t, tc.name, req.Name())
				roSpecID, ok := req.Values["ROSpecID"].AsUint()
				require.True(t, ok)
				require.Equal(t, uint64(1), roSpecID)
				reader.sendResponse(t, reg, reg.Messages[tc.name+"_RESPONSE"], req.MessageID)
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			resp, err := tc.call(ctx)
			require.NoError(t, err)
			require.Equal(t, tc.name+"_RESPONSE", resp.Name())
			<-replyDone
		})
	}
}

func TestSession_AccessSpecLifecycle(t *testing.T) {
	reg := llrpspec.Builtin()
	sess, reader, cleanup := dialAndAccept(t, reg)
	defer cleanup()

	replyDone := make(chan struct{})
	go func() {
		defer close(replyDone)
		req := reader.readMessage(t, reg)
		require.Equal(t, "ADD_ACCESSSPEC", req.Name())
		as := req.Find("AccessSpec")
		require.NotNil(t, as)
		require.NotNil(t, as.Find("AccessSpecStopTrigger"))
		require.NotNil(t, as.Find("AccessCommand"))
		reader.sendResponse(t, reg, reg.Messages["ADD_ACCESSSPEC_RESPONSE"], req.MessageID)
	}()

	stopTrigger := llrptlv.NewParameter(reg.Parameters["AccessSpecStopTrigger"], map[string]llrptlv.Value{
		"AccessSpecStopTriggerType": llrptlv.Uint(0),
		"OperationCountValue":       llrptlv.Uint(0),
	})
	accessCommand := llrptlv.NewParameter(reg.Parameters["AccessCommand"], nil)
	accessSpec := llrptlv.NewParameter(reg.Parameters["AccessSpec"], map[string]llrptlv.Value{
		"AccessSpecID": llrptlv.Uint(1),
		"AntennaID":    llrptlv.Uint(0),
		"ProtocolID":   llrptlv.Uint(reg.Enums["AirProtocols"].NameToValue["EPCGlobalClass1Gen2"]),
		"CurrentState": llrptlv.Uint(reg.Enums["AccessSpecState"].NameToValue["Disabled"]),
		"ROSpecID":     llrptlv.Uint(1),
	}, stopTrigger, accessCommand)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := sess.AddAccessSpec(ctx, accessSpec)
	require.NoError(t, err)
	require.Equal(t, "ADD_ACCESSSPEC_RESPONSE", resp.Name())
	<-replyDone

	for _, tc := range []struct {
		name string
		call func(ctx context.Context) (*llrptlv.Message, error)
	}{
		{"DELETE_ACCESSSPEC", func(ctx context.Context) (*llrptlv.Message, error) { return sess.DeleteAccessSpec(ctx, 1) }},
		{"ENABLE_ACCESSSPEC", func(ctx context.Context) (*llrptlv.Message, error) { return sess.EnableAccessSpec(ctx, 1) }},
		{"DISABLE_ACCESSSPEC", func(ctx context.Context) (*llrptlv.Message, error) { return sess.DisableAccessSpec(ctx, 1) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			done := make(chan struct{})
			go func() {
				defer close(done)
				req := reader.readMessage(t, reg)
				require.Equal(t, tc.name, req.Name())
				accessSpecID, ok := req.Values["AccessSpecID"].AsUint()
				require.True(t, ok)
				require.Equal(t, uint64(1), accessSpecID)
				reader.sendResponse(t, reg, reg.Messages[tc.name+"_RESPONSE"], req.MessageID)
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			resp, err := tc.call(ctx)
			require.NoError(t, err)
			require.Equal(t, tc.name+"_RESPONSE", resp.Name())
			<-done
		})
	}
}
