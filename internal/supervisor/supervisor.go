package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type State int

const (
	Starting State = iota
	Running
	Failed
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Failed:
		return "failed"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Watcher is a restartable subscription. Run blocks until ctx is done or the
// subscription fails, and calls started once it is live.
type Watcher interface {
	Name() string
	Run(ctx context.Context, started func()) error
}

// Supervisor keeps every watcher running. A watcher that fails to start or whose
// subscription fails later is restarted after a fixed delay, without limit.
type Supervisor struct {
	watchers []Watcher
	delay    time.Duration
	after    func(time.Duration) <-chan time.Time

	mu       sync.Mutex
	states   map[string]State
	restarts map[string]int
}

func New(delay time.Duration, watchers ...Watcher) *Supervisor {
	return &Supervisor{
		watchers: watchers,
		delay:    delay,
		after:    time.After,
		states:   make(map[string]State, len(watchers)),
		restarts: make(map[string]int, len(watchers)),
	}
}

// Run supervises every watcher until ctx is done.
func (s *Supervisor) Run(ctx context.Context) error {
	group := errgroup.Group{}
	for _, w := range s.watchers {
		w := w
		group.Go(func() error {
			s.supervise(ctx, w)
			return nil
		})
	}
	return group.Wait()
}

func (s *Supervisor) State(name string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[name]
}

// Restarts returns how many times the watcher went from Failed back to Starting.
func (s *Supervisor) Restarts(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts[name]
}

func (s *Supervisor) supervise(ctx context.Context, w Watcher) {
	logger := log.With().Str("watcher", w.Name()).Logger()

	for {
		s.setState(w.Name(), Starting)
		err := w.Run(ctx, func() {
			s.setState(w.Name(), Running)
			logger.Info().Msg("subscription running")
		})

		if ctx.Err() != nil {
			s.setState(w.Name(), Stopped)
			logger.Info().Msg("watcher stopped")
			return
		}

		s.setState(w.Name(), Failed)
		logger.Error().Err(err).Dur("retryIn", s.delay).Msg("watcher failed, restarting")

		select {
		case <-ctx.Done():
			s.setState(w.Name(), Stopped)
			return
		case <-s.after(s.delay):
		}

		s.mu.Lock()
		s.restarts[w.Name()]++
		s.mu.Unlock()
	}
}

func (s *Supervisor) setState(name string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[name] = state
}
