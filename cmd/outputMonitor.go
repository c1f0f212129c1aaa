package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// errorKeywords drive the per-line error/info classification of streamed
// remote output. The classification is a heuristic; the raw line is always
// preserved.
var errorKeywords = []string{
	"error", "fail", "fatal", "panic", "segfault", "segmentation fault",
	"abort", "exception", "assert",
}

// classifyOutputLine reports whether a streamed line looks like an error.
func classifyOutputLine(line string) bool {
	l := strings.ToLower(line)
	for _, kw := range errorKeywords {
		if strings.Contains(l, kw) {
			return true
		}
	}
	return false
}

// monitorStatus is a point-in-time snapshot of a monitor for introspection.
type monitorStatus struct {
	active     bool
	outputFile string
	lines      int
	errorLines int
	uptime     time.Duration
}

// outputMonitor is a live tail of one remote output file. It holds exactly
// one persistent streaming session on the reused control channel: no polling,
// no repeated handshakes, sub-second delivery of new lines.
type outputMonitor struct {
	outputFile string
	sink       io.Writer

	mu         sync.Mutex
	active     bool
	handle     streamHandle
	startedAt  time.Time
	lines      int
	errorLines int

	done chan struct{}
}

// startOutputMonitor attaches a streaming tail to outputFile and forwards
// each new line, timestamped and classified, to sink.
func startOutputMonitor(t transport, outputFile string, sink io.Writer) (*outputMonitor, error) {
	h, err := t.stream(tailFollowCommand(outputFile))
	if err != nil {
		return nil, fmt.Errorf("attach output monitor to %s: %w", outputFile, err)
	}
	m := &outputMonitor{
		outputFile: outputFile,
		sink:       sink,
		active:     true,
		handle:     h,
		startedAt:  nowFunc(),
		done:       make(chan struct{}),
	}
	go m.loop()
	log.Infof("output monitor attached to %s", outputFile)
	return m, nil
}

// loop scans the stream until it ends (monitor stopped or connection lost).
func (m *outputMonitor) loop() {
	defer close(m.done)
	scanner := bufio.NewScanner(m.handle)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		m.emit(scanner.Text())
	}
	m.mu.Lock()
	m.active = false
	m.mu.Unlock()
}

func (m *outputMonitor) emit(line string) {
	stamp := nowFunc().Format("15:04:05.000")
	tag := "out"
	if classifyOutputLine(line) {
		tag = "err"
	}

	m.mu.Lock()
	m.lines++
	if tag == "err" {
		m.errorLines++
	}
	sink := m.sink
	m.mu.Unlock()

	if sink != nil {
		_, _ = fmt.Fprintf(sink, "[%s %s] %s\n", stamp, tag, line)
	}
}

// cleanup stops the streaming session and releases the connection slot. It is
// idempotent: a second call returns nil without touching the remote side.
func (m *outputMonitor) cleanup() error {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return nil
	}
	m.active = false
	h := m.handle
	m.mu.Unlock()

	err := h.stop()
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
	}
	log.Infof("output monitor for %s stopped", m.outputFile)
	return err
}

// status snapshots the monitor for the `monitor status` surface.
func (m *outputMonitor) status() monitorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := monitorStatus{
		active:     m.active,
		outputFile: m.outputFile,
		lines:      m.lines,
		errorLines: m.errorLines,
	}
	if m.active {
		st.uptime = nowFunc().Sub(m.startedAt)
	}
	return st
}
