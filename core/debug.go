package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// LogEvent is a diagnostic record posted from interrupt context. Source and
// Msg must be static strings so posting never allocates.
type LogEvent struct {
	Time   uint32
	Source string
	Msg    string
}

// String formats the event as "time source: msg"
func (e LogEvent) String() string {
	return utoa(e.Time) + " " + e.Source + ": " + e.Msg
}

// LogQueueCapacity is the number of pending events held before PostLog
// starts dropping
const LogQueueCapacity = 10

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether DebugPrintln output is active
	debugEnabled bool = false

	// Interrupt-side diagnostic queue. Producers are serialized by logLock
	// because several handlers may post.
	logQueue                 = NewQueue[LogEvent](LogQueueCapacity)
	logProducer, logConsumer = logQueue.Split()
	logLock                  resourceLock
	logDropped               uint32
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// PostLog records a diagnostic event. Safe from interrupt context: it
// never blocks and drops the event when the queue is full.
func PostLog(source, msg string) {
	e := LogEvent{Time: GetTime(), Source: source, Msg: msg}
	state := disableInterrupts()
	logLock.lock()
	if !logProducer.Enqueue(e) {
		logDropped++
	}
	logLock.unlock()
	restoreInterrupts(state)
}

// DrainLog hands every pending event to fn in posting order and returns
// how many were drained. Call from task context only.
func DrainLog(fn func(LogEvent)) int {
	n := 0
	for {
		e, ok := logConsumer.Dequeue()
		if !ok {
			return n
		}
		n++
		if fn != nil {
			fn(e)
		}
	}
}

// FlushLog drains pending events to the debug writer as text lines
func FlushLog() int {
	return DrainLog(func(e LogEvent) {
		if debugPrintln != nil {
			debugPrintln(e.String())
		}
	})
}

// LogDropped returns the number of events lost to a full queue
func LogDropped() uint32 {
	state := disableInterrupts()
	logLock.lock()
	n := logDropped
	logLock.unlock()
	restoreInterrupts(state)
	return n
}
