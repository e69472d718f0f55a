package protocol

// Encoder wraps report payloads into message blocks
type Encoder struct {
	seq uint8
	buf ScratchOutput
}

// NewEncoder creates an encoder starting at the first sequence number
func NewEncoder() *Encoder {
	return &Encoder{seq: MessageDest}
}

// Encode builds one block around the payload written by fn. The returned
// slice aliases the encoder's scratch buffer and is valid until the next
// call.
func (e *Encoder) Encode(fn func(output OutputBuffer)) ([]byte, error) {
	e.buf.Reset()
	e.buf.Output([]byte{0, e.seq})
	fn(&e.buf)

	msgLen := e.buf.CurPosition() + MessageTrailerSize
	if msgLen > MessageLengthMax {
		return nil, ErrMessageTooLong
	}
	e.buf.Update(MessagePositionLen, uint8(msgLen))

	crc := CRC16(e.buf.Result())
	e.buf.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})

	e.seq = ((e.seq + 1) & MessageSeqMask) | MessageDest
	return e.buf.Result(), nil
}

// Message is one decoded block
type Message struct {
	Sequence uint8
	Payload  []byte
}

// DecoderStats counts what a Decoder had to throw away
type DecoderStats struct {
	Blocks    int // blocks delivered
	Corrupt   int // blocks rejected by length, sync or CRC checks
	Lost      int // blocks missing according to the sequence numbers
	Discarded int // bytes skipped while resynchronizing
}

// Decoder extracts message blocks from a byte stream. After a corrupt
// block it skips to the next sync byte.
type Decoder struct {
	input          *FifoBuffer
	isSynchronized bool
	haveSeq        bool
	nextSeq        uint8
	stats          DecoderStats
}

// NewDecoder creates a decoder with room for several pending blocks
func NewDecoder() *Decoder {
	return &Decoder{
		input:          NewFifoBuffer(8 * MessageLengthMax),
		isSynchronized: true,
	}
}

// Stats returns the decoder counters
func (d *Decoder) Stats() DecoderStats {
	return d.stats
}

// Feed appends raw bytes and calls fn for every complete block
func (d *Decoder) Feed(data []byte, fn func(Message)) {
	for len(data) > 0 {
		n := d.input.Write(data)
		data = data[n:]
		d.process(fn)
		if n == 0 && d.input.Free() == 0 {
			// nothing parseable in a full buffer
			d.stats.Discarded += d.input.Available()
			d.input.Reset()
			d.isSynchronized = false
		}
	}
}

func (d *Decoder) process(fn func(Message)) {
	data := d.input.Data()

	for len(data) > 0 {
		if !d.isSynchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos >= 0 {
				d.stats.Discarded += syncPos + 1
				data = data[syncPos+1:]
				d.isSynchronized = true
			} else {
				d.stats.Discarded += len(data)
				data = nil
			}
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.desync()
			continue
		}
		if len(data) < msgLen {
			break
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}
		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		seq := data[MessagePositionSeq]
		if d.haveSeq && seq != d.nextSeq {
			d.stats.Lost += int((seq - d.nextSeq) & MessageSeqMask)
		}
		d.haveSeq = true
		d.nextSeq = ((seq + 1) & MessageSeqMask) | MessageDest

		payload := make([]byte, msgLen-MessageHeaderSize-MessageTrailerSize)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		data = data[msgLen:]

		d.stats.Blocks++
		if fn != nil {
			fn(Message{Sequence: seq, Payload: payload})
		}
	}

	consumed := d.input.Available() - len(data)
	if consumed > 0 {
		d.input.Pop(consumed)
	}
}

func (d *Decoder) desync() {
	d.stats.Corrupt++
	d.isSynchronized = false
}
