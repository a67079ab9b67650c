package main

// damageSource labels where incoming player damage originated. The auditor
// aggregates by source to classify the death.
type damageSource string

const (
	damageSourceContact damageSource = "contact"
	damageSourceLunge   damageSource = "lunge"
	damageSourceVenom   damageSource = "venom"
)

// Death causes, from most specific to least.
const (
	deathCauseFormation = "caught-by-formation"
	deathCauseVenom     = "venom"
	deathCauseOverwhelm = "overwhelmed"
	deathCauseAttrition = "attrition"
)

// DeathReport is the post-mortem handed to the game-over callback. It is
// descriptive only; nothing in it feeds back into simulation.
type DeathReport struct {
	Cause             string             `json:"cause"`
	Wave              int                `json:"wave"`
	Score             int                `json:"score"`
	Kills             int                `json:"kills"`
	Elapsed           float64            `json:"elapsedSeconds"`
	Grazes            int                `json:"grazes"`
	StrikesLanded     int                `json:"strikesLanded"`
	StrikesMissed     int                `json:"strikesMissed"`
	DamageBySource    map[string]float64 `json:"damageBySource"`
	FormationCaptures int                `json:"formationCaptures"`
	FormationEscapes  int                `json:"formationEscapes"`
	EnemiesNearby     int                `json:"enemiesNearby"`
}

// deathAuditor accumulates run-long skill metrics and classifies the death
// when the run ends. Recording is cheap; classification runs once.
type deathAuditor struct {
	grazes        int
	strikesLanded int
	strikesMissed int
	damage        map[damageSource]float64
	lastSource    damageSource
	captures      int
	escapes       int
}

func newDeathAuditor() *deathAuditor {
	return &deathAuditor{damage: make(map[damageSource]float64)}
}

func (a *deathAuditor) recordDamage(src damageSource, amount float64) {
	if amount <= 0 {
		return
	}
	a.damage[src] += amount
	a.lastSource = src
}

func (a *deathAuditor) recordGrazes(n int) {
	a.grazes += n
}

func (a *deathAuditor) recordStrike(hit bool) {
	if hit {
		a.strikesLanded++
	} else {
		a.strikesMissed++
	}
}

func (a *deathAuditor) recordFormation(event FormationEvent) {
	switch event.Kind {
	case FormationActive:
		a.captures++
	case FormationResolved:
		if event.Reason == "escape" {
			a.escapes++
		}
	}
}

// buildReport classifies the death and snapshots the metrics. nearby is the
// live-enemy count within threat range at the moment of death.
func (a *deathAuditor) buildReport(st *GameState, nearby int) DeathReport {
	bySource := make(map[string]float64, len(a.damage))
	for src, amount := range a.damage {
		bySource[string(src)] = amount
	}
	return DeathReport{
		Cause:             a.classify(st, nearby),
		Wave:              st.Wave,
		Score:             st.Score,
		Kills:             st.Kills,
		Elapsed:           st.Elapsed,
		Grazes:            a.grazes,
		StrikesLanded:     a.strikesLanded,
		StrikesMissed:     a.strikesMissed,
		DamageBySource:    bySource,
		FormationCaptures: a.captures,
		FormationEscapes:  a.escapes,
		EnemiesNearby:     nearby,
	}
}

// classify picks the most specific cause that fits. The killing-blow source
// wins when decisive; cumulative shares break the tie.
func (a *deathAuditor) classify(st *GameState, nearby int) string {
	total := 0.0
	for _, amount := range a.damage {
		total += amount
	}

	switch a.lastSource {
	case damageSourceVenom:
		return deathCauseVenom
	case damageSourceLunge:
		return deathCauseFormation
	}
	if total > 0 && a.damage[damageSourceLunge]/total >= 0.4 {
		return deathCauseFormation
	}
	if nearby >= 4 {
		return deathCauseOverwhelm
	}
	return deathCauseAttrition
}
