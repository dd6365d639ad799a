package progress

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var quiet atomic.Bool

// log carries informational messages; stdout is reserved for the DOT
// output.
var log = &logrus.Logger{
	Out: os.Stderr,
	Formatter: &logrus.TextFormatter{
		DisableTimestamp: true,
	},
	Level: logrus.InfoLevel,
}

// SetQuiet globally enables or disables stderr reporting.
func SetQuiet(q bool) { quiet.Store(q) }

// Quiet reports whether stderr reporting is disabled.
func Quiet() bool { return quiet.Load() }

// Msgf logs an informational line on stderr unless quiet mode is on.
func Msgf(format string, args ...interface{}) {
	if !Quiet() {
		log.Infof(format, args...)
	}
}

// Warnf logs a warning on stderr unless quiet mode is on.
func Warnf(format string, args ...interface{}) {
	if !Quiet() {
		log.Warnf(format, args...)
	}
}

// Meter prints a percentage that overwrites itself as work proceeds.
// It is safe for concurrent use.
type Meter struct {
	mu        sync.Mutex
	increment uint64
	target    uint64
	current   uint64
}

// NewMeter returns a meter for a task of max steps.
func NewMeter(max int) *Meter {
	increment := uint64(max)/100 + 1
	return &Meter{increment: increment, target: increment}
}

// Inc records one step and refreshes the display when another percent
// has elapsed.
func (m *Meter) Inc() {
	if Quiet() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current++
	if m.current > m.target {
		m.target += m.increment
		fmt.Fprintf(os.Stderr, "%d%%\r", m.current/m.increment)
	}
}

// Done erases the meter from the terminal.
func (m *Meter) Done() {
	if Quiet() {
		return
	}
	fmt.Fprint(os.Stderr, "    \r")
}
