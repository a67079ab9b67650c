package main

import (
	"context"
	"time"

	"apex-arena/sim/logging"
	logsimulation "apex-arena/sim/logging/simulation"
	"apex-arena/sim/tuning"
)

// stageID enumerates the fixed update pipeline in execution order.
type stageID uint8

const (
	stageInput stageID = iota
	stageStrike
	stagePhysics
	stageCombat
	stageFormation
	stageResources
	stageColony
	stageSpawn
	stageAudit
	stageCallbacks

	stageCount
)

var stageNames = [stageCount]string{
	"input",
	"strike",
	"physics",
	"combat",
	"formation",
	"resources",
	"colony",
	"spawn",
	"audit",
	"callbacks",
}

func (s stageID) String() string {
	if s >= stageCount {
		return "invalid"
	}
	return stageNames[s]
}

// PerfReport summarizes one tick's timing. Stage durations are indexed by
// stageID; budgets are advisory, never corrective.
type PerfReport struct {
	Tick          uint64            `json:"tick"`
	StageMicros   [stageCount]int64 `json:"stageMicros"`
	TotalMillis   float64           `json:"totalMillis"`
	OverrunStages []string          `json:"overrunStages,omitempty"`
	TickOverrun   bool              `json:"tickOverrun"`
	OverrunStreak uint64            `json:"overrunStreak"`
	BudgetMillis  int64             `json:"budgetMillis"`
}

// perfGovernor measures every pipeline stage and flags budget overruns. It
// observes only: the report never feeds back into simulation behavior.
type perfGovernor struct {
	budgets tuning.BudgetConfig
	pub     logging.Publisher

	report     PerfReport
	tickStart  time.Time
	stageStart time.Time
	active     stageID

	// The callbacks stage runs after its tick's report has shipped, so its
	// timing is carried into the next tick's report.
	carryCallbackMicros  int64
	carryCallbackOverrun bool

	overrunStreak uint64
	stageOverruns [stageCount]uint64
	tickOverruns  uint64
}

func newPerfGovernor(budgets tuning.BudgetConfig, pub logging.Publisher) *perfGovernor {
	return &perfGovernor{budgets: budgets, pub: pub}
}

func (g *perfGovernor) beginTick(tick uint64) {
	g.report = PerfReport{Tick: tick, BudgetMillis: g.budgets.TickMillis}
	g.tickStart = time.Now()
}

func (g *perfGovernor) beginStage(s stageID) {
	g.active = s
	g.stageStart = time.Now()
}

func (g *perfGovernor) endStage(tick uint64) {
	micros := time.Since(g.stageStart).Microseconds()
	overrun := g.flagStageOverrun(g.active, micros, tick)
	if g.active == stageCallbacks {
		g.carryCallbackMicros = micros
		g.carryCallbackOverrun = overrun
		return
	}
	g.report.StageMicros[g.active] = micros
	if overrun {
		g.report.OverrunStages = append(g.report.OverrunStages, g.active.String())
	}
}

// flagStageOverrun counts and logs a stage budget violation, reporting whether
// one occurred.
func (g *perfGovernor) flagStageOverrun(s stageID, micros int64, tick uint64) bool {
	budget, ok := g.budgets.StageMicros[s.String()]
	if !ok || budget <= 0 || micros <= budget {
		return false
	}
	g.stageOverruns[s]++
	logsimulation.StageBudgetOverrun(context.Background(), g.pub, tick, logsimulation.StageBudgetOverrunPayload{
		Stage:          s.String(),
		DurationMicros: micros,
		BudgetMicros:   budget,
		Ratio:          float64(micros) / float64(budget),
	})
	return true
}

// endTick closes the report and returns it. Consecutive tick overruns are
// tracked as a streak so a sustained stall is distinguishable from a blip.
func (g *perfGovernor) endTick(tick uint64) PerfReport {
	g.report.StageMicros[stageCallbacks] = g.carryCallbackMicros
	if g.carryCallbackOverrun {
		g.report.OverrunStages = append(g.report.OverrunStages, stageCallbacks.String())
	}
	g.carryCallbackMicros = 0
	g.carryCallbackOverrun = false

	elapsed := time.Since(g.tickStart)
	g.report.TotalMillis = float64(elapsed.Microseconds()) / 1000

	budget := g.budgets.TickMillis
	if budget > 0 && elapsed.Milliseconds() > budget {
		g.overrunStreak++
		g.tickOverruns++
		g.report.TickOverrun = true
		g.report.OverrunStreak = g.overrunStreak
		logsimulation.TickBudgetOverrun(context.Background(), g.pub, tick, logsimulation.TickBudgetOverrunPayload{
			DurationMillis: elapsed.Milliseconds(),
			BudgetMillis:   budget,
			Ratio:          float64(elapsed.Milliseconds()) / float64(budget),
			Streak:         g.overrunStreak,
		})
	} else {
		g.overrunStreak = 0
	}
	return g.report
}
