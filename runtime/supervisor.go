package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"support-desk/errors"
)

const restartDelay = 200 * time.Millisecond

// Supervisor runs each worker in its own goroutine, recovers panics,
// and restarts a worker that returned an error. A worker returning nil
// is considered finished and stays down. One crashing worker never takes
// the supervisor with it.
type Supervisor struct {
	log     *slog.Logger
	wg      sync.WaitGroup
	workers []Worker
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{log: log}
}

func (s *Supervisor) Add(workers ...Worker) *Supervisor {
	s.workers = append(s.workers, workers...)
	return s
}

// Run starts every added worker and blocks until all of them finished
// or the context was canceled.
func (s *Supervisor) Run(ctx context.Context) {
	for _, worker := range s.workers {
		s.Start(ctx, worker)
	}
	s.wg.Wait()
}

// Start supervises one worker.
func (s *Supervisor) Start(ctx context.Context, worker Worker) {
	s.wg.Add(1)
	name := WorkerName(worker)

	go func() {
		defer s.wg.Done()
		for {
			if ctx.Err() != nil {
				s.log.Info("Stopping worker", "name", name)
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						s.log.Error("Worker panicked", "name", name, "panic", r)
						err = errors.ErrWorkerPanic
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				s.log.Info("Worker finished", "name", name)
				return
			}
			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", name)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", name, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(restartDelay):
			}
		}
	}()
}
