// Package monitor decodes the firmware's telemetry stream and checks
// received frames against the reference pattern.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"i2sframe/core"
	"i2sframe/protocol"
)

// capture holds every frame one port reported
type capture struct {
	width core.Width
	times []uint32
	s16   []core.Sample16
	s32   []core.Sample32
}

// Monitor collects reports from one stream
type Monitor struct {
	cfg      *Config
	out      io.Writer
	decoder  *protocol.Decoder
	identify *protocol.Identify
	captures map[uint8]*capture
	stats    map[uint8]core.Stats
	logs     []core.LogEvent
	badBlock int
	dropped  uint32
}

// New creates a monitor printing to out. A nil cfg uses DefaultConfig.
func New(cfg *Config, out io.Writer) *Monitor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if out == nil {
		out = io.Discard
	}
	return &Monitor{
		cfg:      cfg,
		out:      out,
		decoder:  protocol.NewDecoder(),
		captures: make(map[uint8]*capture),
		stats:    make(map[uint8]core.Stats),
	}
}

// Run reads from r until EOF or ctx is done
func (m *Monitor) Run(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		n, err := r.Read(buf)
		if n > 0 {
			m.Feed(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read telemetry: %w", err)
		}
	}
}

// Feed decodes raw bytes from the stream
func (m *Monitor) Feed(data []byte) {
	m.decoder.Feed(data, func(msg protocol.Message) {
		r, err := protocol.DecodeReport(msg.Payload)
		if err != nil {
			m.badBlock++
			fmt.Fprintf(m.out, "bad report (seq 0x%02x): %v\n", msg.Sequence, err)
			return
		}
		m.Handle(r)
	})
}

// Handle records one decoded report and prints it
func (m *Monitor) Handle(r protocol.Report) {
	switch r.Kind {
	case protocol.KindIdentify:
		id := r.Identify
		m.identify = &id
		fmt.Fprintf(m.out, "firmware %s, timer %d Hz\n", id.Version, id.TimerFreq)

	case protocol.KindFrame:
		m.addFrame(r.Frame)
		if !m.cfg.Quiet {
			fmt.Fprintf(m.out, "%s %s\n", m.cfg.PortName(r.Frame.Port), m.formatFrame(r.Frame))
		}

	case protocol.KindLog:
		m.logs = append(m.logs, r.Log)
		fmt.Fprintf(m.out, "log %s\n", r.Log.String())

	case protocol.KindStats:
		m.stats[r.Stats.Port] = r.Stats.Stats
		m.dropped = max(m.dropped, r.Stats.LogDropped)
		fmt.Fprintf(m.out, "stats %s: %s\n", m.cfg.PortName(r.Stats.Port), r.Stats.Stats.String())
	}
}

func (m *Monitor) addFrame(f protocol.FrameReport) {
	c := m.captures[f.Port]
	if c == nil || c.width != f.Width {
		// a width change starts a new session on that port
		c = &capture{width: f.Width}
		m.captures[f.Port] = c
	}
	c.times = append(c.times, f.Time)
	switch f.Width {
	case core.Width16:
		c.s16 = append(c.s16, f.Sample16())
	case core.Width32:
		c.s32 = append(c.s32, f.Sample32())
	}
}

func (m *Monitor) formatFrame(f protocol.FrameReport) string {
	stamp := fmt.Sprintf("t=%d", f.Time)
	if m.identify != nil && m.identify.TimerFreq != 0 {
		us := uint64(f.Time) * 1000000 / uint64(m.identify.TimerFreq)
		stamp = fmt.Sprintf("t=%dus", us)
	}
	if f.Width == core.Width16 {
		s := f.Sample16()
		return fmt.Sprintf("%s L=0x%04x R=0x%04x", stamp, uint16(s.Left), uint16(s.Right))
	}
	return fmt.Sprintf("%s L=0x%08x R=0x%08x", stamp, uint32(f.Left), uint32(f.Right))
}

// CheckResult is the outcome of comparing a port's frames to the pattern
type CheckResult struct {
	Port   uint8
	Name   string
	Width  core.Width
	Frames int
	Match  bool
}

func (r CheckResult) String() string {
	verdict := "FAIL"
	if r.Match {
		verdict = "ok"
	}
	return fmt.Sprintf("%s: %d-bit, %d frames, pattern %s", r.Name, r.Width, r.Frames, verdict)
}

// Check compares every port that reported frames with the reference
// pattern of its width
func (m *Monitor) Check() []CheckResult {
	ports := make([]int, 0, len(m.captures))
	for id := range m.captures {
		ports = append(ports, int(id))
	}
	sort.Ints(ports)

	results := make([]CheckResult, 0, len(ports))
	for _, id := range ports {
		c := m.captures[uint8(id)]
		res := CheckResult{
			Port:   uint8(id),
			Name:   m.cfg.PortName(uint8(id)),
			Width:  c.width,
			Frames: len(c.times),
		}
		switch c.width {
		case core.Width16:
			res.Match = core.MatchAfterColdStart(c.s16, core.TestPattern16)
		case core.Width32:
			res.Match = core.MatchAfterColdStart(c.s32, core.TestPattern32)
		}
		results = append(results, res)
	}
	return results
}

// Frames16 returns the 16-bit frames reported by a port
func (m *Monitor) Frames16(port uint8) []core.Sample16 {
	if c := m.captures[port]; c != nil {
		return c.s16
	}
	return nil
}

// Frames32 returns the 32-bit frames reported by a port
func (m *Monitor) Frames32(port uint8) []core.Sample32 {
	if c := m.captures[port]; c != nil {
		return c.s32
	}
	return nil
}

// Stats returns the last counters a port reported
func (m *Monitor) Stats(port uint8) (core.Stats, bool) {
	s, ok := m.stats[port]
	return s, ok
}

// Logs returns every log event received
func (m *Monitor) Logs() []core.LogEvent {
	return m.logs
}

// Identify returns the firmware identification, nil until one arrived
func (m *Monitor) Identify() *protocol.Identify {
	return m.identify
}

// Summary prints decoder and per port totals
func (m *Monitor) Summary() {
	ds := m.decoder.Stats()
	fmt.Fprintf(m.out, "blocks=%d corrupt=%d lost=%d discarded=%d bad_reports=%d log_dropped=%d\n",
		ds.Blocks, ds.Corrupt, ds.Lost, ds.Discarded, m.badBlock, m.dropped)
	if !m.cfg.CheckPattern {
		return
	}
	for _, res := range m.Check() {
		fmt.Fprintln(m.out, res.String())
	}
}
