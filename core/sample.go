package core

// Sample16 is a 16-bit stereo sample
type Sample16 struct {
	Left  int16
	Right int16
}

// Sample32 is a 32-bit stereo sample
type Sample32 struct {
	Left  int32
	Right int32
}

// Timed pairs a received sample with the time its last half-word arrived
type Timed[S any] struct {
	Time   uint32
	Sample S
}

// Frame16 converts a 16-bit sample to a raw frame
func Frame16(s Sample16) Frame {
	return Frame{Left: uint32(uint16(s.Left)), Right: uint32(uint16(s.Right))}
}

// Frame32 converts a 32-bit sample to a raw frame
func Frame32(s Sample32) Frame {
	return Frame{Left: uint32(s.Left), Right: uint32(s.Right)}
}

// Sample16 interprets the low half of each channel as a signed 16-bit value
func (f Frame) Sample16() Sample16 {
	return Sample16{Left: int16(uint16(f.Left)), Right: int16(uint16(f.Right))}
}

// Sample32 interprets each channel as a signed 32-bit value
func (f Frame) Sample32() Sample32 {
	return Sample32{Left: int32(f.Left), Right: int32(f.Right)}
}

// TxSources are the consumer ends the transmit handlers pull samples from.
// Only the one matching the bound width needs to be set.
type TxSources struct {
	S16 *Consumer[Sample16]
	S32 *Consumer[Sample32]
}

// RxSinks are the producer ends the receive handlers push samples into
type RxSinks struct {
	S16 *Producer[Timed[Sample16]]
	S32 *Producer[Timed[Sample32]]
}

func (s RxSinks) ready(w Width) bool {
	if w == Width16 {
		return s.S16 != nil && s.S16.Ready()
	}
	return s.S32 != nil && s.S32.Ready()
}
