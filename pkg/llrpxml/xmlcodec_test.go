package llrpxml_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openllrp/llrp/pkg/llrpcodec"
	"github.com/openllrp/llrp/pkg/llrpspec"
	"github.com/openllrp/llrp/pkg/llrptlv"
	"github.com/openllrp/llrp/pkg/llrpxml"
)

func TestXML_RoundTrip_SimpleMessage(t *testing.T) {
	r := llrpspec.Builtin()
	msg := llrptlv.NewMessage(r.Messages["GET_READER_CAPABILITIES"], 5, map[string]llrptlv.Value{
		"RequestedData": llrptlv.Uint(r.Enums["GetReaderCapabilitiesRequestedData"].NameToValue["All"]),
	})

	doc, err := llrpxml.Encode(r, msg)
	require.NoError(t, err)
	require.Contains(t, string(doc), "RequestedData=\"All\"")

	got, err := llrpxml.Decode(r, doc)
	require.NoError(t, err)
	require.Equal(t, "GET_READER_CAPABILITIES", got.Name())
	require.Equal(t, uint32(5), got.MessageID)
	u, ok := got.Values["RequestedData"].AsUint()
	require.True(t, ok)
	require.Equal(t, r.Enums["GetReaderCapabilitiesRequestedData"].NameToValue["All"], u)
}

func TestXML_RoundTrip_NestedParameters(t *testing.T) {
	r := llrpspec.Builtin()
	epc := llrptlv.NewParameter(r.Parameters["EPC_96"], map[string]llrptlv.Value{
		"EPC": llrptlv.Bytes(make([]byte, 12)),
	})
	tagReport := llrptlv.NewParameter(r.Parameters["TagReportData"], nil, epc)
	msg := llrptlv.NewMessage(r.Messages["RO_ACCESS_REPORT"], 1, nil, tagReport)

	doc, err := llrpxml.Encode(r, msg)
	require.NoError(t, err)

	got, err := llrpxml.Decode(r, doc)
	require.NoError(t, err)
	tr := got.Find("TagReportData")
	require.NotNil(t, tr)
	require.NotNil(t, tr.Find("EPC_96"))
}

// TestXML_BinaryEquivalence checks that a message round-tripped through
// XML carries the same field values as the binary codec produces,
// i.e. the two serializations describe the same message tree (Spec 4.5).
func TestXML_BinaryEquivalence(t *testing.T) {
	r := llrpspec.Builtin()
	status := llrptlv.NewParameter(r.Parameters["LLRPStatus"], map[string]llrptlv.Value{
		"StatusCode":       llrptlv.Uint(r.Enums["StatusCode"].NameToValue["M_Success"]),
		"ErrorDescription": llrptlv.String("all good"),
	})
	msg := llrptlv.NewMessage(r.Messages["CLOSE_CONNECTION_RESPONSE"], 3, nil, status)

	binFrame, err := llrpcodec.EncodeMessage(r, msg)
	require.NoError(t, err)
	binMsg, err := llrpcodec.DecodeMessage(r, binFrame)
	require.NoError(t, err)

	xmlDoc, err := llrpxml.Encode(r, msg)
	require.NoError(t, err)
	xmlMsg, err := llrpxml.Decode(r, xmlDoc)
	require.NoError(t, err)

	require.Equal(t, binMsg.Name(), xmlMsg.Name())
	require.Equal(t, binMsg.MessageID, xmlMsg.MessageID)
	binStatus := binMsg.Find("LLRPStatus")
	xmlStatus := xmlMsg.Find("LLRPStatus")
	require.NotNil(t, binStatus)
	require.NotNil(t, xmlStatus)
	bd, _ := binStatus.Values["ErrorDescription"].AsString()
	xd, _ := xmlStatus.Values["ErrorDescription"].AsString()
	require.Equal(t, bd, xd)
}

func TestXML_UnknownAttributeFails(t *testing.T) {
	r := llrpspec.Builtin()
	doc := []byte(`<GET_READER_CAPABILITIES MessageID="1" RequestedData="All" Bogus="1"/>`)
	_, err := llrpxml.Decode(r, doc)
	require.Error(t, err)
}

func TestXML_UnexpectedSubParameterFails(t *testing.T) {
	r := llrpspec.Builtin()
	doc := []byte(`<KEEPALIVE MessageID="1"><LLRPStatus StatusCode="M_Success" ErrorDescription=""/></KEEPALIVE>`)
	_, err := llrpxml.Decode(r, doc)
	require.Error(t, err)
}

func TestXML_CustomOpaquePreserved(t *testing.T) {
	r := llrpspec.Builtin()
	opaque := &llrptlv.Parameter{Opaque: &llrptlv.Opaque{VendorID: 4, Subtype: 9, RawBytes: []byte{1, 2, 3}}}
	epc := llrptlv.NewParameter(r.Parameters["EPC_96"], map[string]llrptlv.Value{
		"EPC": llrptlv.Bytes(make([]byte, 12)),
	})
	tagReport := llrptlv.NewParameter(r.Parameters["TagReportData"], nil, epc, opaque)
	msg := llrptlv.NewMessage(r.Messages["RO_ACCESS_REPORT"], 1, nil, tagReport)

	doc, err := llrpxml.Encode(r, msg)
	require.NoError(t, err)
	require.Contains(t, string(doc), `VendorID="4"`)
	require.Contains(t, string(doc), `Data="010203"`)

	got, err := llrpxml.Decode(r, doc)
	require.NoError(t, err)
	tr := got.Find("TagReportData")
	require.NotNil(t, tr)
	require.Len(t, tr.Items, 2)
	require.NotNil(t, tr.Items[1].Opaque)
	require.Equal(t, []byte{1, 2, 3}, tr.Items[1].Opaque.RawBytes)
}
