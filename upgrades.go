package main

import (
	"fmt"
	"math/rand"

	"apex-arena/sim/stats"
	"apex-arena/sim/tuning"
)

// upgradeDef is one entry in the upgrade pool: either a permanent stat boost
// or an ability grant that feeds combo discovery.
type upgradeDef struct {
	id          string
	name        string
	description string
	ability     AbilityID
	stat        stats.StatID
	amount      float64
}

func upgradePool() []upgradeDef {
	return []upgradeDef{
		{id: "hardened-shell", name: "Hardened Shell", description: "Thicker carapace plating.", stat: stats.StatCarapace, amount: 4},
		{id: "twitch-reflex", name: "Twitch Reflex", description: "Faster leg musculature.", stat: stats.StatReflex, amount: 5},
		{id: "hunter-instinct", name: "Hunter Instinct", description: "Sharper threat awareness.", stat: stats.StatInstinct, amount: 6},
		{id: "blood-frenzy", name: "Blood Frenzy", description: "Raw aggression.", stat: stats.StatFerocity, amount: 3},
		{id: "venom-fangs", name: "Venom Fangs", description: "Envenomed mandibles.", ability: "venom-fangs"},
		{id: "tidal-rush", name: "Tidal Rush", description: "Surging burst locomotion.", ability: "tidal-rush"},
		{id: "razor-carapace", name: "Razor Carapace", description: "Bladed shell ridges.", ability: "razor-carapace"},
		{id: "silent-glide", name: "Silent Glide", description: "Noiseless approach gait.", ability: "silent-glide"},
		{id: "thermal-core", name: "Thermal Core", description: "Overclocked metabolism.", ability: "thermal-core"},
	}
}

// upgradeGenerator rolls level-up offers from the pool. Draws are seeded so
// identical runs present identical choices.
type upgradeGenerator struct {
	cfg  tuning.UpgradeConfig
	pool []upgradeDef
	rng  *rand.Rand
}

func newUpgradeGenerator(cfg tuning.UpgradeConfig, rng *rand.Rand) *upgradeGenerator {
	return &upgradeGenerator{cfg: cfg, pool: upgradePool(), rng: rng}
}

// levelFor maps a score to its level. Levels are score thresholds; the loop
// pauses for an offer each time the level increases.
func (g *upgradeGenerator) levelFor(score int) int {
	return score / g.cfg.ScorePerLevel
}

// generate rolls a distinct set of choices, excluding abilities the player
// already owns. The offer can come up short when the pool runs dry.
func (g *upgradeGenerator) generate(level int, combos *comboEngine) UpgradeOffer {
	eligible := make([]upgradeDef, 0, len(g.pool))
	for _, def := range g.pool {
		if def.ability != "" && combos.owns(def.ability) {
			continue
		}
		eligible = append(eligible, def)
	}
	g.rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	count := g.cfg.ChoiceCount
	if count > len(eligible) {
		count = len(eligible)
	}

	offer := UpgradeOffer{Level: level}
	for _, def := range eligible[:count] {
		offer.Choices = append(offer.Choices, UpgradeChoice{
			ID:          def.id,
			Name:        def.name,
			Description: def.description,
			Ability:     def.ability,
		})
	}
	return offer
}

// apply commits a chosen upgrade: stat boosts land on the permanent layer,
// ability grants go through the combo engine. Returns any newly discovered
// combos and whether the choice id was valid.
func (g *upgradeGenerator) apply(choiceID string, level int, comp *stats.Component, combos *comboEngine) ([]ComboID, bool) {
	for _, def := range g.pool {
		if def.id != choiceID {
			continue
		}
		if def.ability != "" {
			return combos.acquire(def.ability, comp), true
		}
		delta := stats.NewStatDelta()
		delta.Add[def.stat] = def.amount
		comp.Apply(stats.CommandStatChange{
			Layer:  stats.LayerPermanent,
			Source: stats.SourceKey{Kind: stats.SourceKindUpgrade, ID: fmt.Sprintf("%s@%d", def.id, level)},
			Delta:  delta,
		})
		return nil, true
	}
	return nil, false
}
