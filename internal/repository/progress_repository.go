package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/ticket-allocation/internal/engine"
)

// progressKey is the Redis key holding the run cursor.
const progressKey = "allocation:progress"

// ProgressRepo stores the resumable run cursor in Redis so a process
// restart mid-run is recoverable. When no Redis client is available
// the repo degrades to an in-process cursor: pause/continue still
// works within the process, only restart recovery is lost.
type ProgressRepo struct {
	rdb *redis.Client

	mu  sync.Mutex
	mem *engine.Progress
}

// NewProgressRepo constructs a ProgressRepo. rdb may be nil.
func NewProgressRepo(rdb *redis.Client) *ProgressRepo {
	return &ProgressRepo{rdb: rdb}
}

// Save checkpoints the cursor after an order. It implements the
// engine's ProgressSink.
func (r *ProgressRepo) Save(ctx context.Context, p engine.Progress) error {
	r.mu.Lock()
	cp := p
	r.mem = &cp
	r.mu.Unlock()

	if r.rdb == nil {
		return nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, progressKey, b, 0).Err()
}

// Load returns the last saved cursor. The second return value is
// false when no cursor has ever been saved.
func (r *ProgressRepo) Load(ctx context.Context) (engine.Progress, bool, error) {
	if r.rdb != nil {
		b, err := r.rdb.Get(ctx, progressKey).Bytes()
		switch {
		case err == nil:
			var p engine.Progress
			if err := json.Unmarshal(b, &p); err != nil {
				return engine.Progress{}, false, err
			}
			return p, true, nil
		case errors.Is(err, redis.Nil):
			return engine.Progress{}, false, nil
		default:
			return engine.Progress{}, false, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mem == nil {
		return engine.Progress{}, false, nil
	}
	return *r.mem, true, nil
}

// Clear forgets the cursor, so the next run starts from the top.
func (r *ProgressRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	r.mem = nil
	r.mu.Unlock()

	if r.rdb == nil {
		return nil
	}
	return r.rdb.Del(ctx, progressKey).Err()
}
