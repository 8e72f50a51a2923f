// Package corelog is a small leveled façade over the standard log
// package, matching the plain log.Printf diagnostics used throughout
// the teacher corpus rather than a structured logging framework.
package corelog

import (
	"log"
	"os"
	"time"
)

// Logger wraps *log.Logger with Info/Warnf/Progress helpers.
type Logger struct {
	l     *log.Logger
	start time.Time
}

// New returns a Logger writing to os.Stderr with the given prefix
// followed by the standard date and time (to the second).
func New(prefix string) *Logger {
	return &Logger{
		l:     log.New(os.Stderr, prefix, log.LstdFlags),
		start: time.Now(),
	}
}

// Info logs a plain informational line.
func (g *Logger) Info(format string, args ...any) {
	g.l.Printf(format, args...)
}

// Warnf logs a warning line.
func (g *Logger) Warnf(format string, args ...any) {
	g.l.Printf("warning: "+format, args...)
}

// Progress logs a "done/total" progress line with elapsed time, used by
// long precomputations (CtHt build, sieve range sweep) that spec §4.D
// requires to be progress-reported.
func (g *Logger) Progress(stage string, done, total int) {
	elapsed := time.Since(g.start)
	pct := 100 * float64(done) / float64(total)
	g.l.Printf("%s: %d/%d (%.1f%%) elapsed=%s", stage, done, total, pct, elapsed.Round(time.Millisecond))
}

// Nop returns a Logger that discards everything, for quiet tests.
func Nop() *Logger {
	return &Logger{l: log.New(discard{}, "", 0), start: time.Now()}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
