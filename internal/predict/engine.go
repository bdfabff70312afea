package predict

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flemzord/bacbot/internal/game"
)

// Default engine settings.
const (
	DefaultOffset   = 2
	DefaultAttempts = 3
)

// Config tunes the engine.
type Config struct {
	// Offset is how many games ahead of the triggering game the
	// prediction targets.
	Offset int

	// Attempts is how many consecutive games, starting at the target,
	// may settle a prediction.
	Attempts int
}

func (c Config) withDefaults() Config {
	if c.Offset <= 0 {
		c.Offset = DefaultOffset
	}
	if c.Attempts <= 0 {
		c.Attempts = DefaultAttempts
	}
	return c
}

// EventKind distinguishes engine events.
type EventKind int

// Event kinds.
const (
	EventCreated EventKind = iota + 1
	EventResolved
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Event reports a state change caused by an observed game or by expiry.
// Prediction holds the state after the change.
type Event struct {
	Kind       EventKind
	Prediction Prediction
}

// Engine applies observed games to the store. Observe and Expire are
// serialised so a game is never applied twice concurrently.
type Engine struct {
	mu    sync.Mutex
	store Store
	cfg   Config
	now   func() time.Time
}

// NewEngine creates an Engine backed by store.
func NewEngine(store Store, cfg Config) *Engine {
	return &Engine{
		store: store,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
	}
}

// Config returns the effective engine settings.
func (e *Engine) Config() Config { return e.cfg }

// Store returns the backing store.
func (e *Engine) Store() Store { return e.store }

// Observe applies a game result. Pending predictions whose window covers
// the game are settled first; then, when primary is set and nothing is
// left pending, the game may trigger a new prediction. Games that are not
// final are ignored.
func (e *Engine) Observe(ctx context.Context, g game.Game, primary bool) ([]Event, error) {
	if !g.Final {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pending, err := e.store.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("predict: listing pending: %w", err)
	}

	var events []Event
	stillPending := 0
	for _, p := range pending {
		status, attempt, settled := e.verify(p, g)
		if !settled {
			stillPending++
			continue
		}
		ev, err := e.resolve(ctx, p, status, attempt)
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}

	if !primary || stillPending > 0 {
		return events, nil
	}

	ev, ok, err := e.trigger(ctx, g)
	if err != nil {
		return events, err
	}
	if ok {
		events = append(events, ev)
	}
	return events, nil
}

// verify decides whether g settles p.
func (e *Engine) verify(p Prediction, g game.Game) (Status, int, bool) {
	first, last := p.Window(e.cfg.Attempts)
	switch {
	case g.Number < first:
		return "", 0, false
	case g.Number > last:
		return StatusLost, e.cfg.Attempts, true
	}

	attempt := g.Number - first + 1
	if g.Player.Has(p.Suit) {
		return StatusWon, attempt, true
	}
	if g.Number == last {
		return StatusLost, attempt, true
	}
	return "", 0, false
}

func (e *Engine) trigger(ctx context.Context, g game.Game) (Event, bool, error) {
	first, ok := g.Player.FirstSuit()
	if !ok {
		return Event{}, false, nil
	}

	target := g.Number + e.cfg.Offset
	exists, err := e.store.Exists(ctx, target)
	if err != nil {
		return Event{}, false, fmt.Errorf("predict: checking game %d: %w", target, err)
	}
	if exists {
		return Event{}, false, nil
	}

	p := &Prediction{
		Target:     target,
		Suit:       first.Mirror(),
		SourceGame: g.Number,
		CreatedAt:  e.now(),
	}
	if err := e.store.Create(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return Event{}, false, nil
		}
		return Event{}, false, fmt.Errorf("predict: creating prediction for game %d: %w", target, err)
	}
	return Event{Kind: EventCreated, Prediction: *p}, true, nil
}

func (e *Engine) resolve(ctx context.Context, p Prediction, status Status, attempt int) (Event, error) {
	at := e.now()
	if err := e.store.Resolve(ctx, p.ID, status, attempt, at); err != nil {
		return Event{}, fmt.Errorf("predict: resolving prediction %d: %w", p.ID, err)
	}
	p.Status = status
	p.Attempt = attempt
	p.ResolvedAt = at
	return Event{Kind: EventResolved, Prediction: p}, nil
}

// Expire marks pending predictions created more than ttl ago as expired.
func (e *Engine) Expire(ctx context.Context, ttl time.Duration) ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending, err := e.store.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("predict: listing pending: %w", err)
	}

	cutoff := e.now().Add(-ttl)
	var events []Event
	for _, p := range pending {
		if !p.CreatedAt.Before(cutoff) {
			continue
		}
		ev, err := e.resolve(ctx, p, StatusExpired, 0)
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// AttachMessage records the post announcing prediction id.
func (e *Engine) AttachMessage(ctx context.Context, id, messageID int64) error {
	if err := e.store.SetMessage(ctx, id, messageID); err != nil {
		return fmt.Errorf("predict: attaching message: %w", err)
	}
	return nil
}

// Stats returns store statistics.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	return e.store.Stats(ctx)
}

// Reset deletes every prediction.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Reset(ctx)
}
