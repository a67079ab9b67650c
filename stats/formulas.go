package stats

import "math"

func computeDerived(total ValueSet) DerivedSet {
	var derived DerivedSet

	ferocity := clamp(total[StatFerocity], 0, 1e9)
	carapace := clamp(total[StatCarapace], 0, 1e9)
	reflex := clamp(total[StatReflex], 0, 1e9)
	instinct := clamp(total[StatInstinct], 0, 1e9)

	derived[DerivedMaxHealth] = carapace * carapaceHealthScalar
	derived[DerivedDamageScalar] = computeDamageScalar(ferocity)
	derived[DerivedMoveSpeed] = baseMoveSpeed + reflex*reflexSpeedScalar
	derived[DerivedCooldownRate] = clamp(1+instinct*cooldownRateScalar, 0.1, 5)
	derived[DerivedKnockbackResist] = clamp(carapace*knockbackResistScalar, 0, knockbackResistCeiling)

	return derived
}

func computeDamageScalar(ferocity float64) float64 {
	scaled := 1 + damageFerocityScalar*ferocity*(1-math.Pow(damageDecayRatio, ferocity))
	return clamp(scaled, 0.1, 20)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
