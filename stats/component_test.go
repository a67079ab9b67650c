package stats

import "testing"

func TestComponentLayerOrder(t *testing.T) {
	base := ValueSet{}
	base[StatCarapace] = 10
	comp := NewComponent(base)

	permanent := NewStatDelta()
	permanent.Add[StatCarapace] = 5
	comp.Apply(CommandStatChange{
		Layer:  LayerPermanent,
		Source: SourceKey{Kind: SourceKindUpgrade, ID: "molt"},
		Delta:  permanent,
	})

	combo := NewStatDelta()
	combo.Add[StatCarapace] = 5
	combo.Mul[StatCarapace] = 1.1
	comp.Apply(CommandStatChange{
		Layer:  LayerCombo,
		Source: SourceKey{Kind: SourceKindCombo, ID: "bulwark"},
		Delta:  combo,
	})

	temp := NewStatDelta()
	temp.Override[StatCarapace] = OverrideValue{Active: true, Value: 30}
	comp.Apply(CommandStatChange{
		Layer:         LayerTemporary,
		Source:        SourceKey{Kind: SourceKindTemporary, ID: "buff"},
		Delta:         temp,
		ExpiresAtTick: 5,
	})

	comp.Resolve(1)

	if got := comp.GetTotal(StatCarapace); got != 30 {
		t.Fatalf("expected carapace total 30, got %.2f", got)
	}
	if got := comp.GetDerived(DerivedMaxHealth); got != 180 {
		t.Fatalf("expected max health 180, got %.2f", got)
	}

	comp.Resolve(6)
	if got := comp.GetTotal(StatCarapace); got == 30 {
		t.Fatalf("expected temporary override to expire; still have %.2f", got)
	}
}

func TestDerivedScaling(t *testing.T) {
	comp := DefaultComponent(ArchetypePlayer)
	if got := comp.GetDerived(DerivedMaxHealth); mathAbsDiff(got, 120) > 1e-6 {
		t.Fatalf("expected default player max health 120, got %.2f", got)
	}
	if got := comp.GetDerived(DerivedMoveSpeed); mathAbsDiff(got, baseMoveSpeed+14*reflexSpeedScalar) > 1e-6 {
		t.Fatalf("unexpected default player move speed %.2f", got)
	}

	boost := NewStatDelta()
	boost.Add[StatReflex] = 10
	comp.Apply(CommandStatChange{
		Layer:  LayerPermanent,
		Source: SourceKey{Kind: SourceKindUpgrade, ID: "swift-legs"},
		Delta:  boost,
	})

	comp.Resolve(2)
	expectedSpeed := baseMoveSpeed + 24*reflexSpeedScalar
	if got := comp.GetDerived(DerivedMoveSpeed); mathAbsDiff(got, expectedSpeed) > 1e-6 {
		t.Fatalf("expected move speed %.2f, got %.2f", expectedSpeed, got)
	}
}

func TestDeterministicRecomputation(t *testing.T) {
	base := DefaultBase(ArchetypeSoldier)
	compA := NewComponent(base)
	compB := NewComponent(base)

	perm := NewStatDelta()
	perm.Add[StatFerocity] = 3
	combo := NewStatDelta()
	combo.Mul[StatFerocity] = 1.25

	compA.Apply(CommandStatChange{Layer: LayerPermanent, Source: SourceKey{Kind: SourceKindUpgrade, ID: "milestone"}, Delta: perm})
	compA.Apply(CommandStatChange{Layer: LayerCombo, Source: SourceKey{Kind: SourceKindCombo, ID: "frenzy"}, Delta: combo})

	compB.Apply(CommandStatChange{Layer: LayerCombo, Source: SourceKey{Kind: SourceKindCombo, ID: "frenzy"}, Delta: combo})
	compB.Apply(CommandStatChange{Layer: LayerPermanent, Source: SourceKey{Kind: SourceKindUpgrade, ID: "milestone"}, Delta: perm})

	compA.Resolve(10)
	compB.Resolve(10)

	for i := StatID(0); i < StatCount; i++ {
		if mathAbsDiff(compA.GetTotal(i), compB.GetTotal(i)) > 1e-6 {
			t.Fatalf("totals diverged for stat %d: %.4f vs %.4f", i, compA.GetTotal(i), compB.GetTotal(i))
		}
	}
	for i := DerivedID(0); i < DerivedCount; i++ {
		if mathAbsDiff(compA.GetDerived(i), compB.GetDerived(i)) > 1e-6 {
			t.Fatalf("derived diverged for stat %d: %.4f vs %.4f", i, compA.GetDerived(i), compB.GetDerived(i))
		}
	}
}

func TestSnapshotRestoreCarriesTotals(t *testing.T) {
	comp := DefaultComponent(ArchetypePlayer)
	boost := NewStatDelta()
	boost.Add[StatFerocity] = 4
	comp.Apply(CommandStatChange{
		Layer:  LayerPermanent,
		Source: SourceKey{Kind: SourceKindUpgrade, ID: "razor-claws"},
		Delta:  boost,
	})
	comp.Resolve(3)
	snap := comp.Snapshot()

	var fresh Component
	fresh.Restore(snap)
	if got := fresh.GetTotal(StatFerocity); mathAbsDiff(got, 22) > 1e-6 {
		t.Fatalf("restored ferocity = %.2f, want 22", got)
	}
	if fresh.Version() != snap.Version {
		t.Fatalf("restored version = %d, want %d", fresh.Version(), snap.Version)
	}
	if got, want := fresh.GetDerived(DerivedMaxHealth), comp.GetDerived(DerivedMaxHealth); mathAbsDiff(got, want) > 1e-6 {
		t.Fatalf("restored max health = %.2f, want %.2f", got, want)
	}
}

func mathAbsDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
