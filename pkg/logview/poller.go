package logview

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const DefaultInterval = 5 * time.Second

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Poller re-fetches the log on a fixed interval while enabled. At most one
// ticker is active at any time.
type Poller struct {
	Fetch    func(ctx context.Context) (string, error)
	Interval time.Duration // defaults to DefaultInterval if <= 0

	// OnUpdate receives every successfully fetched log text.
	OnUpdate func(raw string)
	Log      Logger // optional; nil = no logging

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (p *Poller) interval() time.Duration {
	if p.Interval <= 0 {
		return DefaultInterval
	}
	return p.Interval
}

// Enable starts polling. Enabling an already running poller is a no-op.
func (p *Poller) Enable(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	log := p.Log
	if log == nil {
		log = nopLogger{}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		defer p.release(done, cancel)
		ticker := time.NewTicker(p.interval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				raw, err := p.Fetch(ctx)
				if err != nil {
					if ctx.Err() == nil {
						log.Warnf("Could not refresh log: %v", err)
					}
					continue
				}
				if p.OnUpdate != nil {
					p.OnUpdate(raw)
				}
			}
		}
	}()
}

// release forgets a run that ended on its own, e.g. because the parent
// context was cancelled. A newer run started meanwhile is left alone.
func (p *Poller) release(done chan struct{}, cancel context.CancelFunc) {
	cancel()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == done {
		p.cancel, p.done = nil, nil
	}
}

// Disable stops polling and waits for the loop to exit.
func (p *Poller) Disable() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Status is the text shown next to the auto-refresh toggle.
func (p *Poller) Status() string {
	if !p.Enabled() {
		return ""
	}
	return fmt.Sprintf("Auto-refreshing every %s", formatInterval(p.interval()))
}

func formatInterval(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
	return d.String()
}
