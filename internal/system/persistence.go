package system

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	coresys "github.com/l1jgo/worldcore/internal/core/system"
	"github.com/l1jgo/worldcore/internal/metrics"
	"github.com/l1jgo/worldcore/internal/world"
	"go.uber.org/zap"
)

const saveTimeout = 30 * time.Second

// PersistenceSystem periodically saves every house. The snapshot is taken
// on the tick goroutine; the store is written in the background, one save
// at a time. Phase 5 (Persist).
type PersistenceSystem struct {
	m         *world.Map
	store     world.HouseStore
	stats     *metrics.Stats
	log       *zap.Logger
	retries   int
	tickCount int
	interval  int // auto-save every N ticks

	saving atomic.Bool
	wg     sync.WaitGroup
}

func NewPersistenceSystem(m *world.Map, store world.HouseStore, stats *metrics.Stats, log *zap.Logger, intervalTicks, retries int) *PersistenceSystem {
	return &PersistenceSystem{
		m:        m,
		store:    store,
		stats:    stats,
		log:      log,
		retries:  retries,
		interval: intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.saveAsync()
}

// saveAsync starts a background save unless one is still running.
func (s *PersistenceSystem) saveAsync() {
	if !s.saving.CompareAndSwap(false, true) {
		s.log.Debug("house save still running, skipping")
		return
	}
	snap := s.m.SnapshotHouses()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.saving.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := world.SaveHouses(ctx, s.log, s.stats, s.store, snap, s.retries); err != nil {
			s.log.Warn("house auto-save failed", zap.Error(err))
			return
		}
		s.log.Debug("houses saved", zap.Int("houses", len(snap.Info)), zap.Int("items", len(snap.Items)))
	}()
}

// SaveAll waits for a running background save, then saves synchronously.
// Called for graceful shutdown.
func (s *PersistenceSystem) SaveAll(ctx context.Context) error {
	s.wg.Wait()
	return s.m.Save(ctx, s.store, s.retries)
}

// Wait blocks until no background save is running.
func (s *PersistenceSystem) Wait() { s.wg.Wait() }
