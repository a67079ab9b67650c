package main

import "math"

type vec2 struct {
	X float64
	Y float64
}

func (v vec2) add(o vec2) vec2 {
	return vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v vec2) sub(o vec2) vec2 {
	return vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v vec2) scale(s float64) vec2 {
	return vec2{X: v.X * s, Y: v.Y * s}
}

func (v vec2) length() float64 {
	return math.Hypot(v.X, v.Y)
}

// normalized returns the unit vector, or zero when the input has no length.
func (v vec2) normalized() vec2 {
	length := v.length()
	if length == 0 {
		return vec2{}
	}
	return vec2{X: v.X / length, Y: v.Y / length}
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

// easeInQuad accelerates from rest; used for lunge dashes.
func easeInQuad(t float64) float64 {
	t = clamp(t, 0, 1)
	return t * t
}

// easeOutQuad decelerates to rest; used for lunge returns.
func easeOutQuad(t float64) float64 {
	t = clamp(t, 0, 1)
	return t * (2 - t)
}
