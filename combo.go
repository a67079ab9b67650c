package main

import (
	"apex-arena/sim/stats"
)

// comboDef declares how a combo activates. Set combos activate when every
// listed ability is owned, in any order; sequence combos additionally require
// the abilities to have been acquired in the listed order (other acquisitions
// may interleave).
type comboDef struct {
	id        ComboID
	abilities []AbilityID
	ordered   bool
	delta     stats.StatDelta
}

func defaultComboDefs() []comboDef {
	ambush := stats.NewStatDelta()
	ambush.Add[stats.StatFerocity] = 4

	boiling := stats.NewStatDelta()
	boiling.Mul[stats.StatFerocity] = 1.15

	molt := stats.NewStatDelta()
	molt.Add[stats.StatCarapace] = 6
	molt.Add[stats.StatReflex] = 3

	packHunter := stats.NewStatDelta()
	packHunter.Add[stats.StatInstinct] = 5

	return []comboDef{
		{id: "ambush-predator", abilities: []AbilityID{"apex-strike", "silent-glide"}, delta: ambush},
		{id: "boiling-point", abilities: []AbilityID{"thermal-core", "tidal-rush"}, delta: boiling},
		{id: "perfect-molt", abilities: []AbilityID{"razor-carapace", "tidal-rush"}, ordered: true, delta: molt},
		{id: "pack-hunter", abilities: []AbilityID{"venom-fangs", "silent-glide"}, delta: packHunter},
	}
}

// comboEngine tracks owned abilities and discovers combos. Activation is
// monotonic for the run: once a combo is active it never deactivates, and its
// stat contribution stays applied.
type comboEngine struct {
	defs    []comboDef
	owned   map[AbilityID]struct{}
	history []AbilityID
	active  map[ComboID]struct{}
}

func newComboEngine() *comboEngine {
	return &comboEngine{
		defs:   defaultComboDefs(),
		owned:  make(map[AbilityID]struct{}),
		active: make(map[ComboID]struct{}),
	}
}

func (c *comboEngine) owns(ability AbilityID) bool {
	_, ok := c.owned[ability]
	return ok
}

// acquire registers an ability and returns any combos newly activated by it.
// Stat contributions are written to the combo layer of the given component;
// the caller resolves the component afterwards.
func (c *comboEngine) acquire(ability AbilityID, comp *stats.Component) []ComboID {
	if c.owns(ability) {
		return nil
	}
	c.owned[ability] = struct{}{}
	c.history = append(c.history, ability)

	var discovered []ComboID
	for _, def := range c.defs {
		if _, done := c.active[def.id]; done {
			continue
		}
		if !c.satisfied(def) {
			continue
		}
		c.active[def.id] = struct{}{}
		discovered = append(discovered, def.id)
		comp.Apply(stats.CommandStatChange{
			Layer:  stats.LayerCombo,
			Source: stats.SourceKey{Kind: stats.SourceKindCombo, ID: string(def.id)},
			Delta:  def.delta,
		})
	}
	return discovered
}

func (c *comboEngine) satisfied(def comboDef) bool {
	for _, a := range def.abilities {
		if !c.owns(a) {
			return false
		}
	}
	if !def.ordered {
		return true
	}
	// Ordered combos require the listed abilities to appear as a subsequence
	// of the acquisition history.
	next := 0
	for _, got := range c.history {
		if next < len(def.abilities) && got == def.abilities[next] {
			next++
		}
	}
	return next == len(def.abilities)
}
