package main

import (
	"math"
	"testing"

	"apex-arena/sim/tuning"
)

func testPheromoneField() *pheromoneField {
	cfg := tuning.Default()
	return newPheromoneField(cfg.Arena, cfg.Pheromone)
}

func TestPheromoneDepositAndSample(t *testing.T) {
	f := testPheromoneField()

	f.depositAlarm(400, 400, 60)
	if got := f.sampleAlarm(400, 400); math.Abs(got-60) > 1e-9 {
		t.Fatalf("sample at the deposit cell = %.3f, want 60", got)
	}
	// Halfway to the next cell reads half the value.
	if got := f.sampleAlarm(400+f.cellSize/2, 400); math.Abs(got-30) > 1e-9 {
		t.Fatalf("mid-cell sample = %.3f, want 30", got)
	}
	if got := f.sampleAlarm(1200, 200); got != 0 {
		t.Fatalf("distant sample = %.3f, want 0", got)
	}
}

func TestPheromoneCellCap(t *testing.T) {
	f := testPheromoneField()

	f.depositAlarm(400, 400, 80)
	f.depositAlarm(400, 400, 80)
	if got := f.sampleAlarm(400, 400); math.Abs(got-f.cfg.CellCap) > 1e-9 {
		t.Fatalf("stacked deposits = %.3f, want cap %.0f", got, f.cfg.CellCap)
	}
}

func TestPheromoneHalfLifeDecay(t *testing.T) {
	f := testPheromoneField()

	f.depositAlarm(400, 400, 60)
	f.decay(f.cfg.DangerHalfLife)
	if got := f.sampleAlarm(400, 400); math.Abs(got-30) > 1e-9 {
		t.Fatalf("after one half-life = %.3f, want 30", got)
	}
	f.decay(f.cfg.DangerHalfLife)
	if got := f.sampleAlarm(400, 400); math.Abs(got-15) > 1e-9 {
		t.Fatalf("after two half-lives = %.3f, want 15", got)
	}
}

func TestPheromoneGradientPointsTowardDeposit(t *testing.T) {
	f := testPheromoneField()

	f.depositAlarm(400, 400, 60)
	grad := f.alarmGradient(400-f.cellSize, 400)
	if grad.X <= 0 {
		t.Fatalf("gradient left of the deposit should point right, got %+v", grad)
	}
	grad = f.alarmGradient(400, 400-f.cellSize)
	if grad.Y <= 0 {
		t.Fatalf("gradient above the deposit should point down, got %+v", grad)
	}
}

func TestAlarmSpikeLatchesAndRearms(t *testing.T) {
	f := testPheromoneField()

	saturate := func() {
		for i := 0; i < 5; i++ {
			f.depositAlarm(float64(i)*4*f.cellSize+f.cellSize, f.cellSize, f.cfg.CellCap)
		}
		f.decay(0.001) // refresh the total
	}

	saturate()
	if !f.alarmSpiked() {
		t.Fatalf("total %.1f over threshold %.1f should spike", f.totalAlarm, f.cfg.AlarmSpikeThreshold)
	}
	if f.alarmSpiked() {
		t.Fatalf("spike must latch and not repeat")
	}

	// Decay well below the reset ratio, then saturate again.
	f.decay(f.cfg.DangerHalfLife * 3)
	if f.alarmSpiked() {
		t.Fatalf("spiked while under threshold")
	}
	saturate()
	if !f.alarmSpiked() {
		t.Fatalf("latch should rearm once the field drains")
	}
}
