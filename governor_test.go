package main

import (
	"testing"
	"time"

	"apex-arena/sim/tuning"
)

func TestGovernorRecordsStageTimings(t *testing.T) {
	g := newPerfGovernor(tuning.BudgetConfig{}, nil)

	g.beginTick(1)
	g.beginStage(stageInput)
	time.Sleep(2 * time.Millisecond)
	g.endStage(1)
	report := g.endTick(1)

	if report.Tick != 1 {
		t.Fatalf("report tick = %d, want 1", report.Tick)
	}
	if report.StageMicros[stageInput] < 2000 {
		t.Fatalf("input stage recorded %dµs, want >= 2000", report.StageMicros[stageInput])
	}
	if report.TotalMillis <= 0 {
		t.Fatalf("total millis not recorded")
	}
	if report.TickOverrun || len(report.OverrunStages) != 0 {
		t.Fatalf("no budgets configured, nothing should overrun: %+v", report)
	}
}

func TestGovernorFlagsStageBudgetOverrun(t *testing.T) {
	g := newPerfGovernor(tuning.BudgetConfig{
		StageMicros: map[string]int64{"physics": 1},
	}, nil)

	g.beginTick(1)
	g.beginStage(stagePhysics)
	time.Sleep(time.Millisecond)
	g.endStage(1)
	g.beginStage(stageCombat)
	g.endStage(1)
	report := g.endTick(1)

	if len(report.OverrunStages) != 1 || report.OverrunStages[0] != "physics" {
		t.Fatalf("overrun stages = %v, want [physics]", report.OverrunStages)
	}
	if g.stageOverruns[stagePhysics] != 1 || g.stageOverruns[stageCombat] != 0 {
		t.Fatalf("overrun counters wrong: %v", g.stageOverruns)
	}
}

func TestGovernorReportsCallbackFlushOnNextTick(t *testing.T) {
	g := newPerfGovernor(tuning.BudgetConfig{}, nil)

	g.beginTick(1)
	g.beginStage(stageInput)
	g.endStage(1)
	first := g.endTick(1)
	g.beginStage(stageCallbacks)
	time.Sleep(2 * time.Millisecond)
	g.endStage(1)

	if first.StageMicros[stageCallbacks] != 0 {
		t.Fatalf("tick 1 report shipped before the flush ran, got %dµs", first.StageMicros[stageCallbacks])
	}

	g.beginTick(2)
	second := g.endTick(2)
	if second.StageMicros[stageCallbacks] < 2000 {
		t.Fatalf("tick 2 report should carry the flush timing, got %dµs", second.StageMicros[stageCallbacks])
	}

	// The carry is consumed; it must not repeat on tick 3.
	g.beginTick(3)
	third := g.endTick(3)
	if third.StageMicros[stageCallbacks] != 0 {
		t.Fatalf("flush timing repeated on tick 3: %dµs", third.StageMicros[stageCallbacks])
	}
}

func TestGovernorTracksTickOverrunStreak(t *testing.T) {
	g := newPerfGovernor(tuning.BudgetConfig{TickMillis: 1}, nil)

	slowTick := func(tick uint64) PerfReport {
		g.beginTick(tick)
		time.Sleep(3 * time.Millisecond)
		return g.endTick(tick)
	}

	first := slowTick(1)
	if !first.TickOverrun || first.OverrunStreak != 1 {
		t.Fatalf("first overrun report = %+v", first)
	}
	second := slowTick(2)
	if second.OverrunStreak != 2 {
		t.Fatalf("streak = %d, want 2", second.OverrunStreak)
	}

	// A tick inside budget breaks the streak.
	g.beginTick(3)
	fast := g.endTick(3)
	if fast.TickOverrun {
		t.Fatalf("fast tick flagged as overrun")
	}
	fourth := slowTick(4)
	if fourth.OverrunStreak != 1 {
		t.Fatalf("streak after reset = %d, want 1", fourth.OverrunStreak)
	}
}
