package stats

// Archetype identifies the default stat seed used to initialise a component.
type Archetype uint8

const (
	ArchetypePlayer Archetype = iota
	ArchetypeDrone
	ArchetypeSoldier
	ArchetypeSpitter
)

var archetypeBase = map[Archetype]ValueSet{
	ArchetypePlayer: {
		StatFerocity: 18,
		StatCarapace: 20,
		StatReflex:   14,
		StatInstinct: 10,
	},
	ArchetypeDrone: {
		StatFerocity: 4,
		StatCarapace: 5,
		StatReflex:   9,
		StatInstinct: 6,
	},
	ArchetypeSoldier: {
		StatFerocity: 9,
		StatCarapace: 14,
		StatReflex:   6,
		StatInstinct: 7,
	},
	ArchetypeSpitter: {
		StatFerocity: 7,
		StatCarapace: 7,
		StatReflex:   8,
		StatInstinct: 12,
	},
}

// DefaultBase returns a copy of the base values for the given archetype.
func DefaultBase(archetype Archetype) ValueSet {
	base := archetypeBase[archetype]
	return base
}

// DefaultComponent constructs and resolves a component using the archetype defaults.
func DefaultComponent(archetype Archetype) Component {
	comp := NewComponent(DefaultBase(archetype))
	comp.Resolve(0)
	return comp
}

// DefaultDerived returns the resolved derived stats for the given archetype.
func DefaultDerived(archetype Archetype) DerivedSet {
	comp := DefaultComponent(archetype)
	return comp.DerivedValues()
}

// DefaultMaxHealth returns the resolved max health for the given archetype.
func DefaultMaxHealth(archetype Archetype) float64 {
	derived := DefaultDerived(archetype)
	return derived[DerivedMaxHealth]
}

// Formula tuning values. Intentionally simple so early balancing stays
// predictable.
const (
	carapaceHealthScalar   = 6.0
	baseMoveSpeed          = 120.0
	reflexSpeedScalar      = 4.0
	cooldownRateScalar     = 0.008
	knockbackResistScalar  = 0.004
	damageFerocityScalar   = 0.15
	damageDecayRatio       = 0.94
	knockbackResistCeiling = 0.75
)
