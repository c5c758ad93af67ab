package ouroboros

import (
	"context"
	"time"
)

func (r *Records) startGarbageCollection() {
	if r.config.GarbageCollectionInterval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.stopGC = cancel
	r.gcDone = make(chan struct{})
	go r.runGarbageCollection(ctx, r.config.GarbageCollectionInterval)
}

func (r *Records) runGarbageCollection(ctx context.Context, interval time.Duration) {
	defer close(r.gcDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := r.kv.Clean(); err != nil {
				r.log.WithError(err).Error("garbage collection failed")
				continue
			}
			r.log.WithField("took", time.Since(start)).Debug("garbage collection done")
		}
	}
}
