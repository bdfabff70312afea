package predict

import (
	"context"
	"errors"
	"time"
)

// Sentinel store errors.
var (
	ErrNotFound  = errors.New("predict: prediction not found")
	ErrDuplicate = errors.New("predict: prediction for target already exists")
	ErrResolved  = errors.New("predict: prediction already resolved")
)

// Store persists predictions. Implementations must be safe for concurrent
// use.
type Store interface {
	// Create stores p as pending and assigns p.ID. It returns ErrDuplicate
	// when a prediction for p.Target already exists.
	Create(ctx context.Context, p *Prediction) error

	// Get returns the prediction with the given ID or ErrNotFound.
	Get(ctx context.Context, id int64) (Prediction, error)

	// Pending returns the unresolved predictions ordered by target.
	Pending(ctx context.Context) ([]Prediction, error)

	// Exists reports whether a prediction for target was ever stored.
	Exists(ctx context.Context, target int) (bool, error)

	// Resolve moves a pending prediction to a terminal status. It returns
	// ErrNotFound for an unknown ID and ErrResolved when it is no longer
	// pending.
	Resolve(ctx context.Context, id int64, status Status, attempt int, at time.Time) error

	// SetMessage records the channel post that announced the prediction.
	SetMessage(ctx context.Context, id, messageID int64) error

	// Recent returns up to limit predictions, newest first.
	Recent(ctx context.Context, limit int) ([]Prediction, error)

	// Stats summarises every stored prediction.
	Stats(ctx context.Context) (Stats, error)

	// PruneBefore deletes resolved predictions settled before cutoff and
	// returns how many were removed.
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Reset deletes every prediction.
	Reset(ctx context.Context) error
}
