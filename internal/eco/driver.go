package eco

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is the wall-clock spacing between simulation ticks.
const DefaultTickInterval = time.Second

// Driver advances a running simulation once per interval on its own
// goroutine. The simulation logic itself lives in Ecosystem.AdvanceTick, so
// tests drive ticks synchronously and never touch the timer.
type Driver struct {
	Interval time.Duration

	// OnTick is invoked after every processed tick. OnComplete fires once
	// when the run finishes on its own. Both run on the driver goroutine.
	OnTick     func(TickResult)
	OnComplete func(RunResult)

	eco *Ecosystem

	mu       sync.Mutex
	running  bool
	stopOnce *sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewDriver creates a driver over the ecosystem with the default interval.
func NewDriver(e *Ecosystem) *Driver {
	return &Driver{Interval: DefaultTickInterval, eco: e}
}

// Start transitions the simulation to Running and begins ticking. Fails if
// the simulation is not Idle or a previous run is still being driven.
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return ErrSimulationRunning
	}
	if err := d.eco.StartSimulation(); err != nil {
		return err
	}
	d.running = true
	d.stopOnce = &sync.Once{}
	d.stopCh = make(chan struct{})
	d.done = make(chan struct{})
	go d.loop(d.stopCh, d.done)
	return nil
}

// Stop cancels the periodic trigger. It blocks until the driver goroutine has
// exited, so no tick fires after Stop returns. Safe to call when not running
// and safe to call more than once.
func (d *Driver) Stop() {
	d.mu.Lock()
	if d.stopCh == nil {
		d.mu.Unlock()
		return
	}
	once, stopCh, done := d.stopOnce, d.stopCh, d.done
	d.mu.Unlock()

	once.Do(func() { close(stopCh) })
	<-done
}

// Running reports whether the driver goroutine is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *Driver) loop(stopCh, done chan struct{}) {
	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := d.eco.AdvanceTick()
			if err != nil {
				slog.Error("tick failed", "error", err)
				return
			}
			if d.OnTick != nil {
				d.OnTick(res)
			}
			if res.Done {
				if d.OnComplete != nil {
					if final, err := d.eco.Result(); err == nil {
						d.OnComplete(final)
					}
				}
				return
			}
		case <-stopCh:
			return
		}
	}
}
