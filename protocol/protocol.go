// Package protocol implements the telemetry link between the i2sframe
// firmware and the host monitor.
//
// Reports travel in message blocks framed the way Klipper frames its
// serial traffic:
//
//	<len> <seq> <payload...> <crc hi> <crc lo> 0x7E
//
// The payload starts with a VLQ encoded report kind followed by VLQ
// encoded fields. Blocks only flow from the MCU to the host; there is no
// acknowledgement, the sequence number lets the host count lost blocks.
package protocol

import "errors"

// Version is the telemetry format version reported in identify blocks
const Version = "0.1.0"

// Message block layout
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F

	// MessageMax is the size of the scratch buffer one block is built in
	MessageMax = MessageLengthMax
)

var (
	ErrMessageTooLong = errors.New("payload does not fit in a message block")
	ErrUnknownReport  = errors.New("unknown report kind")
)
