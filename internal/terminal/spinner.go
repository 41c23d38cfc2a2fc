package terminal

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerFrames are the default animation frames.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a single status line while a request is in flight.
// Start and Stop may be called repeatedly.
type Spinner struct {
	out     io.Writer
	lock    sync.Locker
	message string
	style   lipgloss.Style
	frames  []string

	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
}

// NewSpinner creates a spinner writing to out. Every write holds lock so
// the animation never interleaves with other output on out.
func NewSpinner(out io.Writer, lock sync.Locker, message string, style lipgloss.Style) *Spinner {
	return &Spinner{
		out:     out,
		lock:    lock,
		message: message,
		style:   style,
		frames:  SpinnerFrames,
	}
}

// Active reports whether the spinner is running.
func (s *Spinner) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// Start begins the animation. It is a no-op if already running.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.run(s.done, s.stopped)
}

// Stop ends the animation and waits for the goroutine to exit. The caller
// must not hold the output lock.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done, stopped := s.done, s.stopped
	s.done, s.stopped = nil, nil
	s.mu.Unlock()
	if done == nil {
		return
	}
	close(done)
	<-stopped

	s.lock.Lock()
	defer s.lock.Unlock()
	fmt.Fprint(s.out, "\r\033[K")
}

func (s *Spinner) run(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	start := time.Now()
	for i := 0; ; i++ {
		select {
		case <-done:
			return
		case <-ticker.C:
			frame := s.frames[i%len(s.frames)]
			elapsed := time.Since(start).Round(time.Second)
			s.lock.Lock()
			fmt.Fprintf(s.out, "\r%s %s (%s)", s.style.Render(frame), s.message, elapsed)
			s.lock.Unlock()
		}
	}
}
