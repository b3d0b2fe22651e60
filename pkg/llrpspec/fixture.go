package llrpspec

// Builtin returns the registry this module ships with, covering the
// LLRP 1.0.1 core messages/parameters exercised by the Testable
// Properties in the specification (reader capability/config exchange,
// ROSpec and AccessSpec lifecycle, tag reports, reader events,
// keepalives) plus the Impinj custom extensions named in
// SPEC_FULL.md's Supplemented Features. It stands in for the artifact
// the out-of-scope offline XML compiler would otherwise produce; tests
// that want to exercise Load round-trip it through Save/Load via gob.
//
// Building it panics on any cross-reference defect, same as a
// corrupted on-disk artifact would at program start (Spec 4.1).
func Builtin() *Registry {
	raw := &RawRegistry{
		Enums:      builtinEnums(),
		Parameters: builtinParameters(),
		Messages:   builtinMessages(),
		Customs:    builtinCustoms(),
	}
	reg, err := Build(raw)
	if err != nil {
		panic(err)
	}
	return reg
}

func builtinEnums() []EnumSpec {
	mk := func(name string, underlying FieldType, members ...any) EnumSpec {
		pairs := make([][2]any, 0, len(members)/2)
		for i := 0; i < len(members); i += 2 {
			pairs = append(pairs, [2]any{members[i], members[i+1]})
		}
		return *NewEnumSpec(name, underlying, pairs)
	}

	return []EnumSpec{
		mk("GetReaderCapabilitiesRequestedData", FieldTypeU8,
			"All", 0,
			"GeneralDeviceCapabilities", 1,
			"LLRPCapabilities", 2,
			"RegulatoryCapabilities", 3,
			"AirProtocolLLRPCapabilities", 4,
		),
		mk("AISpecStopTriggerType", FieldTypeU8,
			"Null", 0,
			"Duration", 1,
			"GPITrigger", 2,
			"TagObservation", 3,
		),
		mk("ROSpecState", FieldTypeU8,
			"Disabled", 0,
			"Inactive", 1,
			"Active", 2,
		),
		mk("ConnectionAttemptStatusType", FieldTypeU16,
			"Success", 0,
			"Failed", 1,
			"AlreadyExists", 2,
			"AnotherConnectionAttempted", 3,
		),
		mk("AntennaEventType", FieldTypeU8,
			"AntennaDisconnected", 0,
			"AntennaConnected", 1,
		),
		mk("ROSpecEventType", FieldTypeU8,
			"ROSpecStartOfAISpec", 0,
			"ROSpecEndOfAISpec", 1,
			"EndOfROSpec", 2,
			"PreemptionOfROSpec", 3,
		),
		mk("StatusCode", FieldTypeU16,
			"M_Success", 0,
			"M_ParameterError", 100,
			"M_FieldError", 101,
			"M_UnexpectedParameter", 102,
			"M_MissingParameter", 103,
			"M_DuplicateParameter", 104,
			"M_OverflowParameter", 105,
			"M_UnknownParameter", 106,
			"M_UnsupportedMessage", 107,
			"M_UnsupportedVersion", 108,
			"M_UnsupportedParameter", 109,
			"P_ParameterError", 200,
			"P_FieldError", 201,
			"P_UnexpectedParameter", 202,
			"P_MissingParameter", 203,
			"A_Invalid", 300,
			"A_OutOfRange", 301,
			"R_DeviceError", 401,
		),
		mk("ImpinjSearchModeType", FieldTypeU16,
			"Disabled", 0,
			"SingleTarget", 1,
			"DualTarget", 2,
			"TagFocus", 3,
		),
		mk("AccessSpecState", FieldTypeU8,
			"Disabled", 0,
			"Enabled", 1,
		),
		mk("AirProtocols", FieldTypeU8,
			"UNSPECIFIED", 0,
			"EPCGlobalClass1Gen2", 1,
		),
	}
}

func f(name string, t FieldType) FieldSpec { return FieldSpec{Name: name, Type: t} }

func fEnum(name string, t FieldType, enum string) FieldSpec {
	return FieldSpec{Name: name, Type: t, EnumRef: enum}
}

// fBit declares a single-bit boolean flag field, packed adjacent to its
// neighbors without padding (Spec 4.2).
func fBit(name string) FieldSpec {
	return FieldSpec{Name: name, Type: FieldTypeBool}
}

func reserved(width int) FieldSpec {
	return FieldSpec{Name: "Reserved", Type: FieldTypeReserved, BitWidth: width}
}

func sub(name string, card Cardinality) SubParamRule {
	return SubParamRule{ParameterName: name, Cardinality: card}
}

func subChoice(name string, card Cardinality, group string) SubParamRule {
	return SubParamRule{ParameterName: name, Cardinality: card, ChoiceGroup: group}
}

func builtinParameters() []ParameterSpec {
	return []ParameterSpec{
		// --- TV parameters (1..127) ---
		{Name: "AntennaID", TypeNumber: 1, Encoding: EncodingTV, Fields: []FieldSpec{f("AntennaID", FieldTypeU16)}},
		{Name: "FirstSeenTimestampUTC", TypeNumber: 2, Encoding: EncodingTV, Fields: []FieldSpec{f("Microseconds", FieldTypeU64)}},
		{Name: "LastSeenTimestampUTC", TypeNumber: 4, Encoding: EncodingTV, Fields: []FieldSpec{f("Microseconds", FieldTypeU64)}},
		{Name: "PeakRSSI", TypeNumber: 6, Encoding: EncodingTV, Fields: []FieldSpec{f("PeakRSSI", FieldTypeS8)}},
		{Name: "ChannelIndex", TypeNumber: 7, Encoding: EncodingTV, Fields: []FieldSpec{f("ChannelIndex", FieldTypeU16)}},
		{Name: "TagSeenCount", TypeNumber: 8, Encoding: EncodingTV, Fields: []FieldSpec{f("TagCount", FieldTypeU16)}},
		{Name: "ROSpecID", TypeNumber: 9, Encoding: EncodingTV, Fields: []FieldSpec{f("ROSpecID", FieldTypeU32)}},
		{Name: "InventoryParameterSpecID", TypeNumber: 10, Encoding: EncodingTV, Fields: []FieldSpec{f("InventoryParameterSpecID", FieldTypeU16)}},
		{Name: "EPC_96", TypeNumber: 13, Encoding: EncodingTV, Fields: []FieldSpec{f("EPC", FieldTypeU96)}},
		{Name: "SpecIndex", TypeNumber: 14, Encoding: EncodingTV, Fields: []FieldSpec{f("SpecIndex", FieldTypeU16)}},

		// --- TLV parameters (>=128) ---
		{Name: "UTCTimestamp", TypeNumber: 128, Encoding: EncodingTLV, Fields: []FieldSpec{f("Microseconds", FieldTypeU64)}},
		{Name: "Uptime", TypeNumber: 129, Encoding: EncodingTLV, Fields: []FieldSpec{f("Microseconds", FieldTypeU64)}},
		{Name: "GeneralDeviceCapabilities", TypeNumber: 137, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("MaxSupportedAntennas", FieldTypeU16),
			f("DeviceManufacturerName", FieldTypeU32),
			f("ModelName", FieldTypeU32),
		}},
		{Name: "LLRPCapabilities", TypeNumber: 142, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("MaxPriorityLevelSupported", FieldTypeU8),
			f("ClientRequestOpSpecTimeout", FieldTypeU16),
			f("MaxNumROSpecs", FieldTypeU32),
			f("MaxNumSpecsPerROSpec", FieldTypeU32),
			f("MaxNumInventoryParameterSpecsPerAISpec", FieldTypeU32),
			f("MaxNumAccessSpecs", FieldTypeU32),
			f("MaxNumOpSpecsPerAccessSpec", FieldTypeU32),
		}},
		{Name: "RegulatoryCapabilities", TypeNumber: 143, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("CountryCode", FieldTypeU16),
			f("CommunicationsStandard", FieldTypeU16),
		}},

		{Name: "ROBoundarySpec", TypeNumber: 178, Encoding: EncodingTLV, Fields: []FieldSpec{
			fEnum("StartTriggerType", FieldTypeU8, "AISpecStopTriggerType"),
			fEnum("StopTriggerType", FieldTypeU8, "AISpecStopTriggerType"),
			f("DurationTriggerValue", FieldTypeU32),
		}},
		{Name: "AISpecStopTrigger", TypeNumber: 184, Encoding: EncodingTLV, Fields: []FieldSpec{
			fEnum("StopTriggerType", FieldTypeU8, "AISpecStopTriggerType"),
			f("DurationTriggerValue", FieldTypeU32),
		}},
		{Name: "AISpec", TypeNumber: 183, Encoding: EncodingTLV, Fields: []FieldSpec{
			{Name: "AntennaIDs", Type: FieldTypeU16, Array: ArrayLengthPrefixedU16},
		}, SubParams: []SubParamRule{
			sub("AISpecStopTrigger", CardinalityOne),
		}},
		{Name: "ROSpec", TypeNumber: 177, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("ROSpecID", FieldTypeU32),
			f("Priority", FieldTypeU8),
			fEnum("CurrentState", FieldTypeU8, "ROSpecState"),
		}, SubParams: []SubParamRule{
			sub("ROBoundarySpec", CardinalityOne),
			sub("AISpec", CardinalityOneOrMore),
			sub("ROReportSpec", CardinalityZeroOrOne),
		}},
		{Name: "TagReportContentSelector", TypeNumber: 238, Encoding: EncodingTLV, Fields: []FieldSpec{
			fBit("EnableROSpecID"),
			fBit("EnableSpecIndex"),
			fBit("EnableInventoryParameterSpecID"),
			fBit("EnableAntennaID"),
			fBit("EnableChannelIndex"),
			fBit("EnablePeakRSSI"),
			fBit("EnableFirstSeenTimestamp"),
			fBit("EnableLastSeenTimestamp"),
			fBit("EnableTagSeenCount"),
			reserved(7),
		}},
		{Name: "ROReportSpec", TypeNumber: 237, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("ROReportTrigger", FieldTypeU8),
			f("N", FieldTypeU16),
		}, SubParams: []SubParamRule{
			sub("TagReportContentSelector", CardinalityOne),
		}},
		{Name: "EPCData", TypeNumber: 241, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("EPC", FieldTypeU96),
		}},
		{Name: "TagReportData", TypeNumber: 240, Encoding: EncodingTLV, SubParams: []SubParamRule{
			subChoice("EPC_96", CardinalityOne, "EPCID"),
			subChoice("EPCData", CardinalityZeroOrOne, "EPCID"),
			sub("ROSpecID", CardinalityZeroOrOne),
			sub("SpecIndex", CardinalityZeroOrOne),
			sub("InventoryParameterSpecID", CardinalityZeroOrOne),
			sub("AntennaID", CardinalityZeroOrOne),
			sub("PeakRSSI", CardinalityZeroOrOne),
			sub("ChannelIndex", CardinalityZeroOrOne),
			sub("FirstSeenTimestampUTC", CardinalityZeroOrOne),
			sub("LastSeenTimestampUTC", CardinalityZeroOrOne),
			sub("TagSeenCount", CardinalityZeroOrOne),
			sub("Custom", CardinalityZeroOrMore),
		}},
		{Name: "AntennaConfiguration", TypeNumber: 222, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("AntennaID", FieldTypeU16),
		}, SubParams: []SubParamRule{
			sub("RFReceiver", CardinalityZeroOrOne),
			sub("RFTransmitter", CardinalityZeroOrOne),
			sub("Custom", CardinalityZeroOrMore),
		}},
		{Name: "RFReceiver", TypeNumber: 223, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("ReceiverSensitivity", FieldTypeU16),
		}},
		{Name: "RFTransmitter", TypeNumber: 224, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("HopTableID", FieldTypeU16),
			f("ChannelIndex", FieldTypeU16),
			f("TransmitPower", FieldTypeU16),
		}},
		{Name: "ConnectionAttemptEvent", TypeNumber: 256, Encoding: EncodingTLV, Fields: []FieldSpec{
			fEnum("Status", FieldTypeU16, "ConnectionAttemptStatusType"),
		}},
		{Name: "AntennaEvent", TypeNumber: 255, Encoding: EncodingTLV, Fields: []FieldSpec{
			fEnum("EventType", FieldTypeU8, "AntennaEventType"),
			f("AntennaID", FieldTypeU16),
		}},
		{Name: "ROSpecEvent", TypeNumber: 254, Encoding: EncodingTLV, Fields: []FieldSpec{
			fEnum("EventType", FieldTypeU8, "ROSpecEventType"),
			f("ROSpecID", FieldTypeU32),
			f("PreemptingROSpecID", FieldTypeU32),
		}},
		{Name: "ReaderEventNotificationData", TypeNumber: 246, Encoding: EncodingTLV, SubParams: []SubParamRule{
			sub("UTCTimestamp", CardinalityOne),
			subChoice("ConnectionAttemptEvent", CardinalityZeroOrOne, "Event"),
			subChoice("AntennaEvent", CardinalityZeroOrOne, "Event"),
			subChoice("ROSpecEvent", CardinalityZeroOrOne, "Event"),
		}},
		{Name: "FieldError", TypeNumber: 288, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("FieldNum", FieldTypeU16),
			fEnum("ErrorCode", FieldTypeU16, "StatusCode"),
		}},
		{Name: "ParameterError", TypeNumber: 289, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("ParameterType", FieldTypeU16),
			fEnum("ErrorCode", FieldTypeU16, "StatusCode"),
		}, SubParams: []SubParamRule{
			sub("ParameterError", CardinalityZeroOrMore),
		}},
		{Name: "LLRPStatus", TypeNumber: 287, Encoding: EncodingTLV, Fields: []FieldSpec{
			fEnum("StatusCode", FieldTypeU16, "StatusCode"),
			f("ErrorDescription", FieldTypeUTF8),
		}, SubParams: []SubParamRule{
			sub("FieldError", CardinalityZeroOrOne),
			sub("ParameterError", CardinalityZeroOrOne),
		}},

		{Name: "AccessSpecStopTrigger", TypeNumber: 208, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("AccessSpecStopTriggerType", FieldTypeU8),
			f("OperationCountValue", FieldTypeU16),
		}},
		{Name: "AccessCommand", TypeNumber: 206, Encoding: EncodingTLV, SubParams: []SubParamRule{
			sub("Custom", CardinalityZeroOrMore),
		}},
		{Name: "AccessReportSpec", TypeNumber: 239, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("AccessReportTrigger", FieldTypeU8),
		}},
		{Name: "AccessSpec", TypeNumber: 207, Encoding: EncodingTLV, Fields: []FieldSpec{
			f("AccessSpecID", FieldTypeU32),
			f("AntennaID", FieldTypeU16),
			fEnum("ProtocolID", FieldTypeU8, "AirProtocols"),
			fEnum("CurrentState", FieldTypeU8, "AccessSpecState"),
			f("ROSpecID", FieldTypeU32),
		}, SubParams: []SubParamRule{
			sub("AccessSpecStopTrigger", CardinalityOne),
			sub("AccessCommand", CardinalityOne),
			sub("AccessReportSpec", CardinalityZeroOrOne),
		}},
	}
}

func builtinMessages() []MessageSpec {
	return []MessageSpec{
		{Name: "GET_READER_CAPABILITIES", TypeNumber: 1, Fields: []FieldSpec{
			fEnum("RequestedData", FieldTypeU8, "GetReaderCapabilitiesRequestedData"),
		}},
		{Name: "GET_READER_CAPABILITIES_RESPONSE", TypeNumber: 11, ResponseFor: "GET_READER_CAPABILITIES", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
			sub("GeneralDeviceCapabilities", CardinalityZeroOrOne),
			sub("LLRPCapabilities", CardinalityZeroOrOne),
			sub("RegulatoryCapabilities", CardinalityZeroOrOne),
		}},
		{Name: "GET_READER_CONFIG", TypeNumber: 2, Fields: []FieldSpec{
			f("AntennaID", FieldTypeU16),
			f("RequestedData", FieldTypeU8),
		}},
		{Name: "GET_READER_CONFIG_RESPONSE", TypeNumber: 12, ResponseFor: "GET_READER_CONFIG", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
			sub("AntennaConfiguration", CardinalityZeroOrMore),
		}},
		{Name: "SET_READER_CONFIG", TypeNumber: 3, Fields: []FieldSpec{
			fBit("ResetToFactoryDefault"),
			reserved(7),
		}, SubParams: []SubParamRule{
			sub("AntennaConfiguration", CardinalityOneOrMore),
		}},
		{Name: "SET_READER_CONFIG_RESPONSE", TypeNumber: 13, ResponseFor: "SET_READER_CONFIG", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
		{Name: "CLOSE_CONNECTION", TypeNumber: 14},
		{Name: "CLOSE_CONNECTION_RESPONSE", TypeNumber: 4, ResponseFor: "CLOSE_CONNECTION", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
		{Name: "KEEPALIVE", TypeNumber: 62},
		{Name: "KEEPALIVE_ACK", TypeNumber: 72, ResponseFor: "KEEPALIVE"},
		{Name: "READER_EVENT_NOTIFICATION", TypeNumber: 63, SubParams: []SubParamRule{
			sub("ReaderEventNotificationData", CardinalityOne),
		}},
		{Name: "RO_ACCESS_REPORT", TypeNumber: 61, SubParams: []SubParamRule{
			sub("TagReportData", CardinalityZeroOrMore),
		}},
		{Name: "ADD_ROSPEC", TypeNumber: 20, SubParams: []SubParamRule{
			sub("ROSpec", CardinalityOne),
		}},
		{Name: "ADD_ROSPEC_RESPONSE", TypeNumber: 30, ResponseFor: "ADD_ROSPEC", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
		{Name: "DELETE_ROSPEC", TypeNumber: 21, Fields: []FieldSpec{f("ROSpecID", FieldTypeU32)}},
		{Name: "DELETE_ROSPEC_RESPONSE", TypeNumber: 31, ResponseFor: "DELETE_ROSPEC", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
		{Name: "START_ROSPEC", TypeNumber: 22, Fields: []FieldSpec{f("ROSpecID", FieldTypeU32)}},
		{Name: "START_ROSPEC_RESPONSE", TypeNumber: 32, ResponseFor: "START_ROSPEC", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
		{Name: "STOP_ROSPEC", TypeNumber: 23, Fields: []FieldSpec{f("ROSpecID", FieldTypeU32)}},
		{Name: "STOP_ROSPEC_RESPONSE", TypeNumber: 33, ResponseFor: "STOP_ROSPEC", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
		{Name: "ENABLE_ROSPEC", TypeNumber: 24, Fields: []FieldSpec{f("ROSpecID", FieldTypeU32)}},
		{Name: "ENABLE_ROSPEC_RESPONSE", TypeNumber: 34, ResponseFor: "ENABLE_ROSPEC", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
		{Name: "DISABLE_ROSPEC", TypeNumber: 25, Fields: []FieldSpec{f("ROSpecID", FieldTypeU32)}},
		{Name: "DISABLE_ROSPEC_RESPONSE", TypeNumber: 35, ResponseFor: "DISABLE_ROSPEC", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
		{Name: "ADD_ACCESSSPEC", TypeNumber: 40, SubParams: []SubParamRule{
			sub("AccessSpec", CardinalityOne),
		}},
		{Name: "ADD_ACCESSSPEC_RESPONSE", TypeNumber: 50, ResponseFor: "ADD_ACCESSSPEC", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
		{Name: "DELETE_ACCESSSPEC", TypeNumber: 41, Fields: []FieldSpec{f("AccessSpecID", FieldTypeU32)}},
		{Name: "DELETE_ACCESSSPEC_RESPONSE", TypeNumber: 51, ResponseFor: "DELETE_ACCESSSPEC", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
		{Name: "ENABLE_ACCESSSPEC", TypeNumber: 42, Fields: []FieldSpec{f("AccessSpecID", FieldTypeU32)}},
		{Name: "ENABLE_ACCESSSPEC_RESPONSE", TypeNumber: 52, ResponseFor: "ENABLE_ACCESSSPEC", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
		{Name: "DISABLE_ACCESSSPEC", TypeNumber: 43, Fields: []FieldSpec{f("AccessSpecID", FieldTypeU32)}},
		{Name: "DISABLE_ACCESSSPEC_RESPONSE", TypeNumber: 53, ResponseFor: "DISABLE_ACCESSSPEC", SubParams: []SubParamRule{
			sub("LLRPStatus", CardinalityOne),
		}},
	}
}

// ImpinjVendorID is Impinj's IANA Private Enterprise Number, used as the
// vendor_id discriminant for every Impinj custom extension (Spec 6).
const ImpinjVendorID = 25882

func builtinCustoms() []CustomExtension {
	searchMode := ParameterSpec{Name: "ImpinjSearchMode", TypeNumber: 1023, Encoding: EncodingTLV, IsCustom: true, Fields: []FieldSpec{
		fEnum("SearchMode", FieldTypeU16, "ImpinjSearchModeType"),
	}}
	tagReportSelector := ParameterSpec{Name: "ImpinjTagReportContentSelector", TypeNumber: 1023, Encoding: EncodingTLV, IsCustom: true, Fields: []FieldSpec{
		fBit("EnableRFPhaseAngle"),
		fBit("EnablePeakRSSI"),
		fBit("EnableRFDopplerFrequency"),
		reserved(13),
	}}
	inventorySearchMode := ParameterSpec{Name: "ImpinjInventorySearchMode", TypeNumber: 1023, Encoding: EncodingTLV, IsCustom: true, Fields: []FieldSpec{
		fEnum("SearchMode", FieldTypeU16, "ImpinjSearchModeType"),
	}}

	return []CustomExtension{
		{VendorID: ImpinjVendorID, Subtype: 23, Parameter: &searchMode},
		{VendorID: ImpinjVendorID, Subtype: 26, Parameter: &tagReportSelector},
		{VendorID: ImpinjVendorID, Subtype: 18, Parameter: &inventorySearchMode},
	}
}
