package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"estate-hub/internal/model"
)

type ActivityStore interface {
	Insert(ctx context.Context, a model.Activity) error
	Query(ctx context.Context, q model.ActivityQuery) ([]model.Activity, model.Meta, error)
}

// ActivityRecorder appends audit records without ever blocking or
// failing the operation that triggered them. Records are dispatched to
// a background writer through a buffered queue; write failures and
// queue overflows go to the log and nowhere else.
type ActivityRecorder struct {
	store ActivityStore
	queue chan model.Activity
	now   func() time.Time

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

func NewActivityRecorder(store ActivityStore, buffer int) *ActivityRecorder {
	if buffer <= 0 {
		buffer = 256
	}

	r := &ActivityRecorder{
		store: store,
		queue: make(chan model.Activity, buffer),
		done:  make(chan struct{}),
		now:   time.Now,
	}
	go r.run()
	return r
}

func (r *ActivityRecorder) run() {
	defer close(r.done)

	for a := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.store.Insert(ctx, a); err != nil {
			slog.Error("activity write failed",
				"action", a.Action, "item_type", a.ItemType, "item_id", a.ItemID, "error", err)
		}
		cancel()
	}
}

// Log enqueues one audit record. A full queue drops the record with a
// warning; the caller is never blocked. In-flight handlers may still
// call Log while the recorder shuts down, so a closed recorder takes
// the same drop path instead of sending on the closed queue.
func (r *ActivityRecorder) Log(userID string, action string, itemType string, itemID string, metadata map[string]any, ip string) {
	if r == nil {
		return
	}

	a := model.Activity{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		ItemType:  itemType,
		ItemID:    itemID,
		Metadata:  metadata,
		IP:        ip,
		CreatedAt: r.now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		slog.Warn("activity recorder closed, dropping record", "action", action, "item_type", itemType)
		return
	}

	select {
	case r.queue <- a:
	default:
		slog.Warn("activity queue full, dropping record", "action", action, "item_type", itemType)
	}
}

func (r *ActivityRecorder) LogListing(userID string, action string, listingID string, title string, ip string) {
	r.Log(userID, action, model.ItemListing, listingID, map[string]any{"title": title}, ip)
}

func (r *ActivityRecorder) LogBlog(userID string, action string, postID string, title string, ip string) {
	r.Log(userID, action, model.ItemBlog, postID, map[string]any{"title": title}, ip)
}

func (r *ActivityRecorder) LogUser(actorID string, action string, targetID string, email string, ip string) {
	r.Log(actorID, action, model.ItemUser, targetID, map[string]any{"email": email}, ip)
}

func (r *ActivityRecorder) LogAuth(userID string, action string, ip string) {
	r.Log(userID, action, "", "", nil, ip)
}

// Query serves the admin-facing log viewer.
func (r *ActivityRecorder) Query(ctx context.Context, q model.ActivityQuery) ([]model.Activity, model.Meta, error) {
	return r.store.Query(ctx, q)
}

// Close stops accepting records and waits for the queue to drain, up to
// the context deadline.
func (r *ActivityRecorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
