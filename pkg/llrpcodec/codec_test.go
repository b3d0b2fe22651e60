package llrpcodec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openllrp/llrp/pkg/llrpcodec"
	"github.com/openllrp/llrp/pkg/llrpspec"
	"github.com/openllrp/llrp/pkg/llrptlv"
)

func reg(t *testing.T) *llrpspec.Registry {
	t.Helper()
	return llrpspec.Builtin()
}

func TestEncodeDecodeRoundTrip_Keepalive(t *testing.T) {
	r := reg(t)
	msg := llrptlv.NewMessage(r.Messages["KEEPALIVE"], 7, nil)
	frame, err := llrpcodec.EncodeMessage(r, msg)
	require.NoError(t, err)

	got, err := llrpcodec.DecodeMessage(r, frame)
	require.NoError(t, err)
	require.Equal(t, "KEEPALIVE", got.Name())
	require.Equal(t, uint32(7), got.MessageID)
}

func TestEncodeDecodeRoundTrip_NestedParameters(t *testing.T) {
	r := reg(t)
	epc := llrptlv.NewParameter(r.Parameters["EPC_96"], map[string]llrptlv.Value{
		"EPC": llrptlv.Bytes(make([]byte, 12)),
	})
	tagReport := llrptlv.NewParameter(r.Parameters["TagReportData"], nil, epc)
	msg := llrptlv.NewMessage(r.Messages["RO_ACCESS_REPORT"], 42, nil, tagReport)

	frame, err := llrpcodec.EncodeMessage(r, msg)
	require.NoError(t, err)

	got, err := llrpcodec.DecodeMessage(r, frame)
	require.NoError(t, err)
	require.Equal(t, "RO_ACCESS_REPORT", got.Name())
	tr := got.Find("TagReportData")
	require.NotNil(t, tr)
	e := tr.Find("EPC_96")
	require.NotNil(t, e)
	b, ok := e.Values["EPC"].AsBytes()
	require.True(t, ok)
	require.Len(t, b, 12)
}

func TestDecode_TruncatedFrame(t *testing.T) {
	r := reg(t)
	msg := llrptlv.NewMessage(r.Messages["KEEPALIVE"], 1, nil)
	frame, err := llrpcodec.EncodeMessage(r, msg)
	require.NoError(t, err)

	_, err = llrpcodec.DecodeMessage(r, frame[:5])
	require.Error(t, err)
}

func TestDecode_TLVLengthOverrunsMessage(t *testing.T) {
	r := reg(t)
	epc := llrptlv.NewParameter(r.Parameters["EPC_96"], map[string]llrptlv.Value{
		"EPC": llrptlv.Bytes(make([]byte, 12)),
	})
	tagReport := llrptlv.NewParameter(r.Parameters["TagReportData"], nil, epc)
	msg := llrptlv.NewMessage(r.Messages["RO_ACCESS_REPORT"], 1, nil, tagReport)
	frame, err := llrpcodec.EncodeMessage(r, msg)
	require.NoError(t, err)

	// TagReportData is TLV-encoded; corrupt its 16-bit length field
	// (bytes 12-13 of the header+body region, after the 10-byte frame
	// header) to claim more bytes than the frame actually carries.
	corrupt := append([]byte(nil), frame...)
	corrupt[10+2] = 0xFF
	corrupt[10+3] = 0xFF

	_, err = llrpcodec.DecodeMessage(r, corrupt)
	require.Error(t, err)
	var codecErr *llrpcodec.CodecError
	require.ErrorAs(t, err, &codecErr)
	require.Equal(t, llrpcodec.CodecErrTruncated, codecErr.Kind)
}

func TestEncode_MissingRequiredFieldFails(t *testing.T) {
	r := reg(t)
	msg := llrptlv.NewMessage(r.Messages["GET_READER_CAPABILITIES"], 1, nil)
	_, err := llrpcodec.EncodeMessage(r, msg)
	require.Error(t, err)
	var verr *llrpcodec.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, llrpcodec.ValidationErrMissingField, verr.Kind)
}

func TestEncode_EnumOutOfRangeFails(t *testing.T) {
	r := reg(t)
	msg := llrptlv.NewMessage(r.Messages["GET_READER_CAPABILITIES"], 1, map[string]llrptlv.Value{
		"RequestedData": llrptlv.Uint(99),
	})
	_, err := llrpcodec.EncodeMessage(r, msg)
	require.Error(t, err)
	var verr *llrpcodec.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, llrpcodec.ValidationErrUnknownEnumMember, verr.Kind)
}

func TestEncode_CardinalityViolationFails(t *testing.T) {
	r := reg(t)
	status := llrptlv.NewParameter(r.Parameters["LLRPStatus"], map[string]llrptlv.Value{
		"StatusCode":       llrptlv.Uint(r.Enums["StatusCode"].NameToValue["M_Success"]),
		"ErrorDescription": llrptlv.String(""),
	})
	msg := llrptlv.NewMessage(r.Messages["CLOSE_CONNECTION_RESPONSE"], 1, nil, status, status)
	_, err := llrpcodec.EncodeMessage(r, msg)
	require.Error(t, err)
	var verr *llrpcodec.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, llrpcodec.ValidationErrCardinalityViolation, verr.Kind)
}

func TestDecode_UnregisteredCustomPreservedOpaque(t *testing.T) {
	r := reg(t)
	epc := llrptlv.NewParameter(r.Parameters["EPC_96"], map[string]llrptlv.Value{
		"EPC": llrptlv.Bytes(make([]byte, 12)),
	})
	// A fully-formed TLV custom parameter (type 1023) for a vendor/subtype
	// this registry has no CustomExtension for: 4-byte TLV header, 4-byte
	// vendor ID, 4-byte subtype, 4 bytes of opaque payload.
	rawCustom := []byte{
		0x03, 0xFF, 0x00, 0x10, // Rsvd(6)|Type(10)=1023, Length=16
		0x00, 0x00, 0x00, 0x01, // VendorID = 1
		0x00, 0x00, 0x00, 0x01, // Subtype = 1
		0xDE, 0xAD, 0xBE, 0xEF,
	}
	opaque := &llrptlv.Parameter{Opaque: &llrptlv.Opaque{RawBytes: rawCustom}}
	tagReport := llrptlv.NewParameter(r.Parameters["TagReportData"], nil, epc, opaque)
	msg := llrptlv.NewMessage(r.Messages["RO_ACCESS_REPORT"], 1, nil, tagReport)

	frame, err := llrpcodec.EncodeMessage(r, msg)
	require.NoError(t, err)

	got, err := llrpcodec.DecodeMessage(r, frame)
	require.NoError(t, err)
	tr := got.Find("TagReportData")
	require.NotNil(t, tr)
	require.Len(t, tr.Items, 2)
	custom := tr.Items[1]
	require.Nil(t, custom.Spec)
	require.NotNil(t, custom.Opaque)
	require.Equal(t, uint32(1), custom.Opaque.VendorID)
	require.Equal(t, uint32(1), custom.Opaque.Subtype)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, custom.Opaque.RawBytes[len(custom.Opaque.RawBytes)-4:])
}

func TestU96FieldRejectsWrongLength(t *testing.T) {
	r := reg(t)
	epc := llrptlv.NewParameter(r.Parameters["EPC_96"], map[string]llrptlv.Value{
		"EPC": llrptlv.Bytes(make([]byte, 11)),
	})
	_, err := llrpcodec.EncodeParameter(r, epc, nil)
	require.Error(t, err)
	var verr *llrpcodec.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, llrpcodec.ValidationErrOutOfRange, verr.Kind)
}
