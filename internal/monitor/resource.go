// Package monitor provides process and host memory introspection for model
// admission decisions: before a multi-gigabyte load, callers compare the
// process footprint and available headroom against the candidate model.
package monitor

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/armin976/noema-scan/internal/logger"
)

// MemoryFootprint returns the current process memory usage (resident set)
// in bytes.
func MemoryFootprint() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, fmt.Errorf("failed to inspect process: %w", err)
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("failed to read process memory info: %w", err)
	}
	return info.RSS, nil
}

// AvailableMemory returns the memory currently available to the process,
// in bytes.
func AvailableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("failed to read virtual memory stats: %w", err)
	}
	return vm.Available, nil
}

// Snapshot is a point-in-time view of memory state.
type Snapshot struct {
	Timestamp   time.Time
	Footprint   uint64  // process resident set, bytes
	Available   uint64  // available host memory, bytes
	Total       uint64  // total host memory, bytes
	UsedPercent float64 // host memory utilization
}

// Monitor samples memory state on an interval and notifies callbacks.
type Monitor struct {
	interval  time.Duration
	callbacks []func(Snapshot)

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
	last    Snapshot

	log *logger.Logger
}

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	Interval time.Duration  // sampling interval, default 5s
	Callback func(Snapshot) // optional update callback
	Logger   *logger.Logger // optional, Default() when nil
}

// NewMonitor creates a memory monitor. Start must be called before
// snapshots are produced.
func NewMonitor(cfg *MonitorConfig) *Monitor {
	if cfg == nil {
		cfg = &MonitorConfig{}
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		interval: cfg.Interval,
		ctx:      ctx,
		cancel:   cancel,
		log:      cfg.Logger,
	}
	if cfg.Callback != nil {
		m.callbacks = append(m.callbacks, cfg.Callback)
	}
	return m
}

// Start begins periodic sampling.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("memory monitor already running")
	}
	m.running = true

	m.wg.Add(1)
	go m.loop()

	m.log.Infof("memory monitor started, interval %v", m.interval)
	return nil
}

// Stop halts sampling and waits for the loop to exit.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()

	m.log.Infof("memory monitor stopped")
	return nil
}

// IsRunning reports whether the monitor is sampling.
func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Watch registers a callback invoked after every sample.
func (m *Monitor) Watch(callback func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// Last returns the most recent snapshot.
func (m *Monitor) Last() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	m.sample()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

func (m *Monitor) sample() {
	snap := Snapshot{Timestamp: time.Now()}

	if rss, err := MemoryFootprint(); err == nil {
		snap.Footprint = rss
	} else {
		m.log.Warnf("failed to sample process footprint: %v", err)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.Available = vm.Available
		snap.Total = vm.Total
		snap.UsedPercent = vm.UsedPercent
	} else {
		m.log.Warnf("failed to sample host memory: %v", err)
	}

	m.mu.Lock()
	m.last = snap
	callbacks := make([]func(Snapshot), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(snap)
	}
}
