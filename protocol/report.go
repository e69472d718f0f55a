package protocol

import (
	"fmt"

	"i2sframe/core"
)

// ReportKind is the first VLQ of every payload
type ReportKind uint32

const (
	KindIdentify ReportKind = iota + 1
	KindFrame
	KindLog
	KindStats
)

func (k ReportKind) String() string {
	switch k {
	case KindIdentify:
		return "identify"
	case KindFrame:
		return "frame"
	case KindLog:
		return "log"
	case KindStats:
		return "stats"
	}
	return fmt.Sprintf("kind(%d)", uint32(k))
}

// maxLogText bounds source plus message so a log report always fits a block
const maxLogText = 48

// Identify is sent once at boot
type Identify struct {
	Version   string
	TimerFreq uint32
}

// FrameReport carries one received frame
type FrameReport struct {
	Port  uint8
	Width core.Width
	Time  uint32
	Left  int32
	Right int32
}

// StatsReport carries a driver's counters. LogDropped is the firmware wide
// count of log events lost to a full queue.
type StatsReport struct {
	Port       uint8
	Stats      core.Stats
	LogDropped uint32
}

// Report is a decoded payload; only the field selected by Kind is set
type Report struct {
	Kind     ReportKind
	Identify Identify
	Frame    FrameReport
	Log      core.LogEvent
	Stats    StatsReport
}

// EncodeIdentify writes an identify payload
func EncodeIdentify(output OutputBuffer, id Identify) {
	EncodeVLQUint(output, uint32(KindIdentify))
	EncodeVLQString(output, id.Version)
	EncodeVLQUint(output, id.TimerFreq)
}

// EncodeFrame16 writes a 16-bit frame payload
func EncodeFrame16(output OutputBuffer, port uint8, s core.Timed[core.Sample16]) {
	encodeFrame(output, FrameReport{
		Port:  port,
		Width: core.Width16,
		Time:  s.Time,
		Left:  int32(s.Sample.Left),
		Right: int32(s.Sample.Right),
	})
}

// EncodeFrame32 writes a 32-bit frame payload
func EncodeFrame32(output OutputBuffer, port uint8, s core.Timed[core.Sample32]) {
	encodeFrame(output, FrameReport{
		Port:  port,
		Width: core.Width32,
		Time:  s.Time,
		Left:  s.Sample.Left,
		Right: s.Sample.Right,
	})
}

func encodeFrame(output OutputBuffer, f FrameReport) {
	EncodeVLQUint(output, uint32(KindFrame))
	EncodeVLQUint(output, uint32(f.Port))
	EncodeVLQUint(output, uint32(f.Width))
	EncodeVLQUint(output, f.Time)
	EncodeVLQInt(output, f.Left)
	EncodeVLQInt(output, f.Right)
}

// EncodeLog writes a log payload. Overlong text is cut short.
func EncodeLog(output OutputBuffer, ev core.LogEvent) {
	source, msg := ev.Source, ev.Msg
	if len(source) > maxLogText {
		source = source[:maxLogText]
	}
	if len(source)+len(msg) > maxLogText {
		msg = msg[:maxLogText-len(source)]
	}
	EncodeVLQUint(output, uint32(KindLog))
	EncodeVLQUint(output, ev.Time)
	EncodeVLQString(output, source)
	EncodeVLQString(output, msg)
}

// EncodeStats writes a stats payload
func EncodeStats(output OutputBuffer, r StatsReport) {
	EncodeVLQUint(output, uint32(KindStats))
	EncodeVLQUint(output, uint32(r.Port))
	for _, v := range statsFields(&r.Stats) {
		EncodeVLQUint(output, *v)
	}
	EncodeVLQUint(output, r.LogDropped)
}

func statsFields(s *core.Stats) []*uint32 {
	return []*uint32{
		&s.Interrupts,
		&s.Frames,
		&s.ChannelErrors,
		&s.FrameErrors,
		&s.Underruns,
		&s.Overruns,
		&s.Starved,
		&s.Dropped,
		&s.Backpressure,
		&s.Resyncs,
	}
}

// DecodeReport parses a block payload
func DecodeReport(payload []byte) (Report, error) {
	data := payload
	kind, err := DecodeVLQUint(&data)
	if err != nil {
		return Report{}, fmt.Errorf("report kind: %w", err)
	}

	r := Report{Kind: ReportKind(kind)}
	switch r.Kind {
	case KindIdentify:
		if r.Identify.Version, err = DecodeVLQString(&data); err != nil {
			return r, fmt.Errorf("identify version: %w", err)
		}
		if r.Identify.TimerFreq, err = DecodeVLQUint(&data); err != nil {
			return r, fmt.Errorf("identify timer: %w", err)
		}

	case KindFrame:
		var vals [3]uint32
		for i := range vals {
			if vals[i], err = DecodeVLQUint(&data); err != nil {
				return r, fmt.Errorf("frame header: %w", err)
			}
		}
		r.Frame.Port = uint8(vals[0])
		r.Frame.Width = core.Width(vals[1])
		r.Frame.Time = vals[2]
		if r.Frame.Left, err = DecodeVLQInt(&data); err != nil {
			return r, fmt.Errorf("frame left: %w", err)
		}
		if r.Frame.Right, err = DecodeVLQInt(&data); err != nil {
			return r, fmt.Errorf("frame right: %w", err)
		}

	case KindLog:
		if r.Log.Time, err = DecodeVLQUint(&data); err != nil {
			return r, fmt.Errorf("log time: %w", err)
		}
		if r.Log.Source, err = DecodeVLQString(&data); err != nil {
			return r, fmt.Errorf("log source: %w", err)
		}
		if r.Log.Msg, err = DecodeVLQString(&data); err != nil {
			return r, fmt.Errorf("log message: %w", err)
		}

	case KindStats:
		port, err := DecodeVLQUint(&data)
		if err != nil {
			return r, fmt.Errorf("stats port: %w", err)
		}
		r.Stats.Port = uint8(port)
		for i, v := range statsFields(&r.Stats.Stats) {
			if *v, err = DecodeVLQUint(&data); err != nil {
				return r, fmt.Errorf("stats field %d: %w", i, err)
			}
		}
		if r.Stats.LogDropped, err = DecodeVLQUint(&data); err != nil {
			return r, fmt.Errorf("stats log dropped: %w", err)
		}

	default:
		return r, fmt.Errorf("%w: %d", ErrUnknownReport, kind)
	}
	return r, nil
}

// Sample16 returns the frame as a 16-bit sample pair
func (f FrameReport) Sample16() core.Sample16 {
	return core.Sample16{Left: int16(f.Left), Right: int16(f.Right)}
}

// Sample32 returns the frame as a 32-bit sample pair
func (f FrameReport) Sample32() core.Sample32 {
	return core.Sample32{Left: f.Left, Right: f.Right}
}
