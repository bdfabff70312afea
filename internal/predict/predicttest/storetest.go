// Package predicttest provides a conformance suite for predict.Store
// implementations.
package predicttest

import (
	"errors"
	"testing"
	"time"

	"github.com/flemzord/bacbot/internal/predict"
	"github.com/flemzord/bacbot/internal/suit"
)

// TestStore runs the shared Store behaviour checks. newStore must return an
// empty store for every call.
func TestStore(t *testing.T, newStore func(t *testing.T) predict.Store) {
	t.Helper()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("CreateAssignsIDAndPending", func(t *testing.T) {
		s := newStore(t)
		p := &predict.Prediction{Target: 10, Suit: suit.Heart, SourceGame: 8, CreatedAt: base}
		if err := s.Create(t.Context(), p); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if p.ID == 0 {
			t.Fatal("Create did not assign an ID")
		}
		got, err := s.Get(t.Context(), p.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Target != 10 || got.Suit != suit.Heart || got.SourceGame != 8 {
			t.Errorf("Get = %+v", got)
		}
		if got.Status != predict.StatusPending {
			t.Errorf("Status = %q, want pending", got.Status)
		}
		if !got.CreatedAt.Equal(base) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, base)
		}
	})

	t.Run("DuplicateTarget", func(t *testing.T) {
		s := newStore(t)
		mustCreate(t, s, 10, base)
		err := s.Create(t.Context(), &predict.Prediction{Target: 10, Suit: suit.Club, CreatedAt: base})
		if !errors.Is(err, predict.ErrDuplicate) {
			t.Fatalf("Create duplicate error = %v, want ErrDuplicate", err)
		}
		ok, err := s.Exists(t.Context(), 10)
		if err != nil || !ok {
			t.Errorf("Exists(10) = %v, %v", ok, err)
		}
		ok, err = s.Exists(t.Context(), 11)
		if err != nil || ok {
			t.Errorf("Exists(11) = %v, %v", ok, err)
		}
	})

	t.Run("GetUnknown", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get(t.Context(), 999); !errors.Is(err, predict.ErrNotFound) {
			t.Errorf("Get error = %v, want ErrNotFound", err)
		}
	})

	t.Run("PendingOrderedByTarget", func(t *testing.T) {
		s := newStore(t)
		mustCreate(t, s, 30, base)
		mustCreate(t, s, 10, base)
		done := mustCreate(t, s, 20, base)
		if err := s.Resolve(t.Context(), done.ID, predict.StatusWon, 1, base); err != nil {
			t.Fatalf("Resolve: %v", err)
		}

		pending, err := s.Pending(t.Context())
		if err != nil {
			t.Fatalf("Pending: %v", err)
		}
		if len(pending) != 2 || pending[0].Target != 10 || pending[1].Target != 30 {
			t.Errorf("Pending targets = %v, want [10 30]", targets(pending))
		}
	})

	t.Run("Resolve", func(t *testing.T) {
		s := newStore(t)
		p := mustCreate(t, s, 10, base)
		at := base.Add(time.Minute)
		if err := s.Resolve(t.Context(), p.ID, predict.StatusWon, 2, at); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		got, _ := s.Get(t.Context(), p.ID)
		if got.Status != predict.StatusWon || got.Attempt != 2 || !got.ResolvedAt.Equal(at) {
			t.Errorf("after Resolve = %+v", got)
		}

		err := s.Resolve(t.Context(), p.ID, predict.StatusLost, 3, at)
		if !errors.Is(err, predict.ErrResolved) {
			t.Errorf("second Resolve error = %v, want ErrResolved", err)
		}
		if err := s.Resolve(t.Context(), 999, predict.StatusLost, 1, at); !errors.Is(err, predict.ErrNotFound) {
			t.Errorf("Resolve unknown error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ResolveRejectsPending", func(t *testing.T) {
		s := newStore(t)
		p := mustCreate(t, s, 10, base)
		if err := s.Resolve(t.Context(), p.ID, predict.StatusPending, 0, base); err == nil {
			t.Error("Resolve to pending succeeded")
		}
	})

	t.Run("SetMessage", func(t *testing.T) {
		s := newStore(t)
		p := mustCreate(t, s, 10, base)
		if err := s.SetMessage(t.Context(), p.ID, 4242); err != nil {
			t.Fatalf("SetMessage: %v", err)
		}
		got, _ := s.Get(t.Context(), p.ID)
		if got.MessageID != 4242 {
			t.Errorf("MessageID = %d, want 4242", got.MessageID)
		}
		if err := s.SetMessage(t.Context(), 999, 1); !errors.Is(err, predict.ErrNotFound) {
			t.Errorf("SetMessage unknown error = %v, want ErrNotFound", err)
		}
	})

	t.Run("RecentNewestFirst", func(t *testing.T) {
		s := newStore(t)
		for _, target := range []int{10, 20, 30} {
			mustCreate(t, s, target, base)
		}
		recent, err := s.Recent(t.Context(), 2)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(recent) != 2 || recent[0].Target != 30 || recent[1].Target != 20 {
			t.Errorf("Recent targets = %v, want [30 20]", targets(recent))
		}
	})

	t.Run("Stats", func(t *testing.T) {
		s := newStore(t)
		outcomes := []struct {
			status  predict.Status
			attempt int
		}{
			{predict.StatusWon, 1},
			{predict.StatusWon, 1},
			{predict.StatusWon, 3},
			{predict.StatusLost, 3},
			{predict.StatusExpired, 0},
			{predict.StatusPending, 0},
		}
		for i, o := range outcomes {
			p := mustCreate(t, s, 100+i, base)
			if o.status == predict.StatusPending {
				continue
			}
			if err := s.Resolve(t.Context(), p.ID, o.status, o.attempt, base); err != nil {
				t.Fatalf("Resolve: %v", err)
			}
		}

		st, err := s.Stats(t.Context())
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if st.Total != 6 || st.Pending != 1 || st.Won != 3 || st.Lost != 1 || st.Expired != 1 {
			t.Errorf("Stats = %+v", st)
		}
		if st.WinsByAttempt[1] != 2 || st.WinsByAttempt[3] != 1 {
			t.Errorf("WinsByAttempt = %v", st.WinsByAttempt)
		}
	})

	t.Run("PruneBefore", func(t *testing.T) {
		s := newStore(t)
		old := mustCreate(t, s, 10, base)
		fresh := mustCreate(t, s, 20, base)
		open := mustCreate(t, s, 30, base)
		if err := s.Resolve(t.Context(), old.ID, predict.StatusLost, 3, base); err != nil {
			t.Fatal(err)
		}
		if err := s.Resolve(t.Context(), fresh.ID, predict.StatusWon, 1, base.Add(2*time.Hour)); err != nil {
			t.Fatal(err)
		}

		n, err := s.PruneBefore(t.Context(), base.Add(time.Hour))
		if err != nil {
			t.Fatalf("PruneBefore: %v", err)
		}
		if n != 1 {
			t.Errorf("pruned = %d, want 1", n)
		}
		if _, err := s.Get(t.Context(), old.ID); !errors.Is(err, predict.ErrNotFound) {
			t.Errorf("old prediction still present: %v", err)
		}
		for _, id := range []int64{fresh.ID, open.ID} {
			if _, err := s.Get(t.Context(), id); err != nil {
				t.Errorf("Get(%d) after prune: %v", id, err)
			}
		}
	})

	t.Run("Reset", func(t *testing.T) {
		s := newStore(t)
		mustCreate(t, s, 10, base)
		mustCreate(t, s, 20, base)
		if err := s.Reset(t.Context()); err != nil {
			t.Fatalf("Reset: %v", err)
		}
		st, _ := s.Stats(t.Context())
		if st.Total != 0 {
			t.Errorf("Total after Reset = %d", st.Total)
		}
		if ok, _ := s.Exists(t.Context(), 10); ok {
			t.Error("target 10 still exists after Reset")
		}
		mustCreate(t, s, 10, base)
	})
}

func mustCreate(t *testing.T, s predict.Store, target int, at time.Time) predict.Prediction {
	t.Helper()
	p := &predict.Prediction{Target: target, Suit: suit.Spade, SourceGame: target - 2, CreatedAt: at}
	if err := s.Create(t.Context(), p); err != nil {
		t.Fatalf("Create(%d): %v", target, err)
	}
	return *p
}

func targets(ps []predict.Prediction) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.Target
	}
	return out
}
