package main

import (
	"testing"

	"apex-arena/sim/stats"
)

func TestComboActivatesWhenSetCompletes(t *testing.T) {
	comp := stats.DefaultComponent(stats.ArchetypePlayer)
	c := newComboEngine()

	if got := c.acquire("apex-strike", &comp); got != nil {
		t.Fatalf("first ability alone activated %v", got)
	}
	got := c.acquire("silent-glide", &comp)
	if len(got) != 1 || got[0] != "ambush-predator" {
		t.Fatalf("completing the set activated %v, want ambush-predator", got)
	}

	comp.Resolve(1)
	if ferocity := comp.GetTotal(stats.StatFerocity); ferocity != 22 {
		t.Fatalf("ferocity with combo bonus = %.1f, want 22", ferocity)
	}
}

func TestComboSetOrderDoesNotMatter(t *testing.T) {
	comp := stats.DefaultComponent(stats.ArchetypePlayer)
	c := newComboEngine()

	c.acquire("silent-glide", &comp)
	got := c.acquire("apex-strike", &comp)
	if len(got) != 1 || got[0] != "ambush-predator" {
		t.Fatalf("reversed set activated %v, want ambush-predator", got)
	}
}

func TestComboSequenceRequiresOrder(t *testing.T) {
	comp := stats.DefaultComponent(stats.ArchetypePlayer)
	c := newComboEngine()

	c.acquire("razor-carapace", &comp)
	got := c.acquire("tidal-rush", &comp)
	if len(got) != 1 || got[0] != "perfect-molt" {
		t.Fatalf("in-order sequence activated %v, want perfect-molt", got)
	}
	comp.Resolve(1)
	if carapace := comp.GetTotal(stats.StatCarapace); carapace != 26 {
		t.Fatalf("carapace with molt bonus = %.1f, want 26", carapace)
	}
}

func TestComboSequenceRejectsWrongOrder(t *testing.T) {
	comp := stats.DefaultComponent(stats.ArchetypePlayer)
	c := newComboEngine()

	c.acquire("tidal-rush", &comp)
	if got := c.acquire("razor-carapace", &comp); got != nil {
		t.Fatalf("out-of-order sequence activated %v", got)
	}
	comp.Resolve(1)
	if carapace := comp.GetTotal(stats.StatCarapace); carapace != 20 {
		t.Fatalf("carapace = %.1f, want base 20", carapace)
	}
}

func TestComboSequenceAllowsInterleavedAcquisitions(t *testing.T) {
	comp := stats.DefaultComponent(stats.ArchetypePlayer)
	c := newComboEngine()

	c.acquire("razor-carapace", &comp)
	c.acquire("apex-strike", &comp)
	got := c.acquire("tidal-rush", &comp)
	if len(got) != 1 || got[0] != "perfect-molt" {
		t.Fatalf("interleaved sequence activated %v, want perfect-molt", got)
	}
}

func TestComboActivationIsMonotonic(t *testing.T) {
	comp := stats.DefaultComponent(stats.ArchetypePlayer)
	c := newComboEngine()

	c.acquire("apex-strike", &comp)
	c.acquire("silent-glide", &comp)

	// Re-acquiring an owned ability neither duplicates ownership nor re-fires
	// the combo.
	if got := c.acquire("silent-glide", &comp); got != nil {
		t.Fatalf("duplicate acquisition activated %v", got)
	}
	if got := c.acquire("venom-fangs", &comp); len(got) != 1 || got[0] != "pack-hunter" {
		t.Fatalf("venom-fangs should only complete pack-hunter, got %v", got)
	}
}
