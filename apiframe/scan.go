package apiframe

import "bytes"

// IndexStart returns the index of the first start delimiter in buf, or -1.
func IndexStart(buf []byte) int {
	return bytes.IndexByte(buf, Start)
}

// TypeName returns a short name for a frame type code.
func TypeName(frameType byte) string {
	switch frameType {
	case FrameTypeTx64:
		return "tx64"
	case FrameTypeTx16:
		return "tx16"
	case FrameTypeATCommand:
		return "at_command"
	case FrameTypeATQueueParam:
		return "at_queue_param"
	case FrameTypeRemoteATCommand:
		return "remote_at_command"
	case FrameTypeRx64:
		return "rx64"
	case FrameTypeRx16:
		return "rx16"
	case FrameTypeRxIO64:
		return "rx_io64"
	case FrameTypeRxIO16:
		return "rx_io16"
	case FrameTypeATResponse:
		return "at_response"
	case FrameTypeTxStatus:
		return "tx_status"
	case FrameTypeModemStatus:
		return "modem_status"
	case FrameTypeRemoteATResponse:
		return "remote_at_response"
	default:
		return "unknown"
	}
}
