package game

import (
	"context"
	"testing"

	"github.com/jacl-coder/HomeDefense-Server/internal/models"
)

func TestRunRegenTick(t *testing.T) {
	homes := []models.Home{
		homeWith("almost", func(h *models.Home) { h.Shield = 48 }),
		homeWith("full", nil),
		homeWith("level3", func(h *models.Home) { h.DefenseLevel = 3; h.Shield = 10 }),
		homeWith("dead", func(h *models.Home) { h.Health = 0; h.Shield = 0 }),
	}
	engine, store := newTestEngine(t, homes...)
	ctx := context.Background()

	summary, err := engine.RunRegenTick(ctx)
	if err != nil {
		t.Fatalf("RunRegenTick returned error: %v", err)
	}
	if summary.ProcessedCount != 3 || summary.FailedCount != 0 {
		t.Fatalf("expected 3 processed homes, got %+v", summary)
	}

	byID := make(map[string]RegenResult)
	for _, r := range summary.Results {
		byID[r.HomeID] = r
	}

	tests := []struct {
		id          string
		status      RegenStatus
		shield      int
		regenerated int
	}{
		{id: "almost", status: RegenApplied, shield: 50, regenerated: 2},
		{id: "full", status: RegenAtCap, shield: 50, regenerated: 0},
		{id: "level3", status: RegenApplied, shield: 17, regenerated: 7},
	}
	for _, tt := range tests {
		r, ok := byID[tt.id]
		if !ok {
			t.Fatalf("missing result for %s", tt.id)
		}
		if r.Status != tt.status || r.NewShield != tt.shield || r.Regenerated != tt.regenerated {
			t.Errorf("%s: expected %s shield=%d regen=%d, got %+v", tt.id, tt.status, tt.shield, tt.regenerated, r)
		}
		stored, _ := store.GetHome(ctx, tt.id)
		if stored.Shield != tt.shield {
			t.Errorf("%s: expected stored shield %d, got %d", tt.id, tt.shield, stored.Shield)
		}
	}
	if _, ok := byID["dead"]; ok {
		t.Errorf("destroyed home must not regenerate")
	}

	full, _ := store.GetHome(ctx, "full")
	if full.Version != 1 {
		t.Errorf("at-cap home must not be written, version %d", full.Version)
	}
}

func TestRegenTickIsIdempotentAtCap(t *testing.T) {
	engine, store := newTestEngine(t, homeWith("h", func(h *models.Home) { h.Shield = 0 }))
	ctx := context.Background()

	previous := 0
	for i := 0; i < 15; i++ {
		if _, err := engine.RunRegenTick(ctx); err != nil {
			t.Fatalf("RunRegenTick returned error: %v", err)
		}
		home, _ := store.GetHome(ctx, "h")
		if home.Shield < previous {
			t.Fatalf("shield decreased from %d to %d", previous, home.Shield)
		}
		if home.Shield > 50 {
			t.Fatalf("shield exceeded cap: %d", home.Shield)
		}
		previous = home.Shield
	}
	if previous != 50 {
		t.Fatalf("expected shield to reach cap, got %d", previous)
	}
}

func TestRegenShield(t *testing.T) {
	if shield, ok := RegenShield(homeWith("h", nil)); ok || shield != 50 {
		t.Errorf("expected no regen at cap, got %d %v", shield, ok)
	}
	over := homeWith("h", func(h *models.Home) { h.Shield = 80 })
	if shield, ok := RegenShield(over); ok || shield != 80 {
		t.Errorf("shield above cap must be left alone, got %d %v", shield, ok)
	}
}
