package apiframe

// ATStatus is the result code of a local or remote AT command.
type ATStatus uint8

const (
	ATStatusOK             ATStatus = 0x00
	ATStatusError          ATStatus = 0x01
	ATStatusInvalidCommand ATStatus = 0x02
	ATStatusInvalidParam   ATStatus = 0x03
	// ATStatusNoResponse is only reported for remote commands.
	ATStatusNoResponse ATStatus = 0x04
	ATStatusUnknown    ATStatus = 0xFF
)

func atStatusFrom(b byte, remote bool) ATStatus {
	switch ATStatus(b) {
	case ATStatusOK, ATStatusError, ATStatusInvalidCommand, ATStatusInvalidParam:
		return ATStatus(b)
	case ATStatusNoResponse:
		if remote {
			return ATStatusNoResponse
		}
	}
	return ATStatusUnknown
}

func (s ATStatus) String() string {
	switch s {
	case ATStatusOK:
		return "OK"
	case ATStatusError:
		return "Error"
	case ATStatusInvalidCommand:
		return "InvalidCommand"
	case ATStatusInvalidParam:
		return "InvalidParam"
	case ATStatusNoResponse:
		return "NoResponse"
	default:
		return "Unknown"
	}
}

// TxStatus is the delivery result reported for a transmit request.
type TxStatus uint8

const (
	TxStatusStandard          TxStatus = 0x00
	TxStatusNoAck             TxStatus = 0x01
	TxStatusCCAFailure        TxStatus = 0x02
	TxStatusPurged            TxStatus = 0x03
	TxStatusNetworkAckFailure TxStatus = 0x21
	TxStatusNotConnected      TxStatus = 0x22
	TxStatusInternalError     TxStatus = 0x31
	TxStatusResourceDepletion TxStatus = 0x32
	TxStatusPayloadTooLarge   TxStatus = 0x74
	TxStatusUnknown           TxStatus = 0xFF
)

var txStatusNames = map[TxStatus]string{
	TxStatusStandard:          "Standard",
	TxStatusNoAck:             "NoAck",
	TxStatusCCAFailure:        "CCAFailure",
	TxStatusPurged:            "Purged",
	TxStatusNetworkAckFailure: "NetworkAckFailure",
	TxStatusNotConnected:      "NotConnected",
	TxStatusInternalError:     "InternalError",
	TxStatusResourceDepletion: "ResourceDepletion",
	TxStatusPayloadTooLarge:   "PayloadTooLarge",
}

// TxStatusFrom maps a status byte to a TxStatus. Unmapped values become
// TxStatusUnknown.
func TxStatusFrom(b byte) TxStatus {
	s := TxStatus(b)
	if _, ok := txStatusNames[s]; ok {
		return s
	}
	return TxStatusUnknown
}

func (s TxStatus) String() string {
	if name, ok := txStatusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// ModemStatus is an unsolicited module state change.
type ModemStatus uint8

const (
	ModemHardwareReset       ModemStatus = 0x00
	ModemWatchdogReset       ModemStatus = 0x01
	ModemAssociated          ModemStatus = 0x02
	ModemDisassociated       ModemStatus = 0x03
	ModemCoordinatorStarted  ModemStatus = 0x06
	ModemInputVoltageTooHigh ModemStatus = 0x0D
	ModemStatusUnknown       ModemStatus = 0xFF
)

var modemStatusNames = map[ModemStatus]string{
	ModemHardwareReset:       "HardwareReset",
	ModemWatchdogReset:       "WatchdogReset",
	ModemAssociated:          "Associated",
	ModemDisassociated:       "Disassociated",
	ModemCoordinatorStarted:  "CoordinatorStarted",
	ModemInputVoltageTooHigh: "InputVoltageTooHigh",
}

// ModemStatusFrom maps a status byte to a ModemStatus. Unmapped values become
// ModemStatusUnknown.
func ModemStatusFrom(b byte) ModemStatus {
	s := ModemStatus(b)
	if _, ok := modemStatusNames[s]; ok {
		return s
	}
	return ModemStatusUnknown
}

func (s ModemStatus) String() string {
	if name, ok := modemStatusNames[s]; ok {
		return name
	}
	return "Unknown"
}
