package worker

import (
	"context"
	"log"
	"time"

	"smartloans/internal/usecase/sweep"
)

// Sweeper periodically runs the overdue-loan sweep. At most one pass is live
// at a time: passes run sequentially on the ticker goroutine.
type Sweeper struct {
	uc       *sweep.Usecase
	interval time.Duration
	collect  bool
	stop     chan struct{}
	done     chan struct{}
}

// NewSweeper builds a sweeper. collect=false only reports overdue loans;
// collect=true runs forced collection.
func NewSweeper(uc *sweep.Usecase, interval time.Duration, collect bool) *Sweeper {
	return &Sweeper{
		uc:       uc,
		interval: interval,
		collect:  collect,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop, running one pass immediately.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.runOnce()
			}
		}
	}()
}

// Stop halts the loop and waits for a running pass to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) runOnce() {
	ctx := context.Background()
	if !s.collect {
		report, err := s.uc.Report(ctx)
		if err != nil {
			log.Printf("sweeper: report failed: %v", err)
			return
		}
		if len(report) > 0 {
			log.Printf("sweeper: %d overdue loan(s)", len(report))
		}
		return
	}

	res, err := s.uc.Collect(ctx)
	if err != nil {
		log.Printf("sweeper: collect failed: %v", err)
		return
	}
	if len(res.Collected) > 0 || len(res.Skipped) > 0 {
		log.Printf("sweeper: collected %d, skipped %d", len(res.Collected), len(res.Skipped))
	}
}
