// internal/app/system/workers/reservationsweep.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/osprey/internal/app/identity"
	reservationstore "github.com/dalemusser/osprey/internal/app/store/reservations"
	"github.com/dalemusser/osprey/internal/domain/models"
	"go.uber.org/zap"
)

// sweepBatch is how many claims are read per query within a pass.
const sweepBatch = 500

// ClaimStore is the part of the reservation store the sweep uses.
type ClaimStore interface {
	ClaimsBefore(ctx context.Context, cutoff time.Time, after *reservationstore.Claim, limit int64) ([]reservationstore.Claim, error)
	Release(ctx context.Context, kind, value, owner string) error
}

// ReservationSweep is a background worker that releases username and email
// claims whose owner never reached its partition, as happens when a process
// dies between claiming and inserting.
type ReservationSweep struct {
	claims   ClaimStore
	dir      *identity.Directory
	log      *zap.Logger
	interval time.Duration
	grace    time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewReservationSweep creates a sweep worker.
//
// Parameters:
//   - claims: the reservation store
//   - dir: the partitions owners are looked up in
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 10 minutes)
//   - grace: how old a claim must be before it is checked (e.g., 15 minutes)
func NewReservationSweep(claims ClaimStore, dir *identity.Directory, logger *zap.Logger, interval, grace time.Duration) *ReservationSweep {
	return &ReservationSweep{
		claims:   claims,
		dir:      dir,
		log:      logger,
		interval: interval,
		grace:    grace,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *ReservationSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("reservation sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("grace", w.grace))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ReservationSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("reservation sweep worker stopped")
}

func (w *ReservationSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := w.Sweep(ctx, time.Now().UTC()); err != nil {
				w.log.Error("reservation sweep failed", zap.Error(err))
			} else if n > 0 {
				w.log.Info("released orphaned reservations", zap.Int("count", n))
			}
			cancel()
		}
	}
}

// Sweep releases claims older than the grace period whose owner has no
// record in the claimed role's partition. It pages through every expired
// claim and returns how many it released.
func (w *ReservationSweep) Sweep(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-w.grace)
	released := 0
	var after *reservationstore.Claim
	for {
		claims, err := w.claims.ClaimsBefore(ctx, cutoff, after, sweepBatch)
		if err != nil {
			return released, err
		}
		for _, c := range claims {
			ok, err := w.releaseOrphan(ctx, c)
			if err != nil {
				return released, err
			}
			if ok {
				released++
			}
		}
		if len(claims) < sweepBatch {
			return released, nil
		}
		after = &claims[len(claims)-1]
	}
}

// releaseOrphan releases c when its owner is gone and reports whether it did.
func (w *ReservationSweep) releaseOrphan(ctx context.Context, c reservationstore.Claim) (bool, error) {
	role, err := models.ParseRole(c.Role)
	if err != nil {
		w.log.Warn("reservation with unknown role", zap.String("kind", c.Kind), zap.String("role", c.Role))
		return false, nil
	}
	part, err := w.dir.Partition(role)
	if err != nil {
		return false, err
	}
	acct, err := part.FindByUniqueID(ctx, c.Owner)
	if err != nil || acct != nil {
		return false, err
	}
	if err := w.claims.Release(ctx, c.Kind, c.Value, c.Owner); err != nil {
		return false, err
	}
	return true, nil
}
