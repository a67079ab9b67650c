package main

import (
	"math"

	"apex-arena/sim/tuning"
)

// pheromoneField is the colony's indirect coordination medium: a grid of
// decaying scalar channels. Gameplay events deposit into it; enemy steering
// reads from it. The field never reads enemy state back.
type pheromoneField struct {
	cfg      tuning.PheromoneConfig
	cols     int
	rows     int
	cellSize float64
	width    float64
	height   float64
	alarm    []float64
	coord    []float64

	totalAlarm float64
	spikeLatch bool
}

func newPheromoneField(arena tuning.ArenaConfig, cfg tuning.PheromoneConfig) *pheromoneField {
	cellSize := cfg.CellSize
	cols := int(math.Ceil(arena.Width/cellSize)) + 1
	rows := int(math.Ceil(arena.Height/cellSize)) + 1
	return &pheromoneField{
		cfg:      cfg,
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		width:    arena.Width,
		height:   arena.Height,
		alarm:    make([]float64, cols*rows),
		coord:    make([]float64, cols*rows),
	}
}

func (f *pheromoneField) cellIndex(col, row int) int {
	return row*f.cols + col
}

// depositAlarm adds to the danger channel at the given location, capped per
// cell so stacked deaths cannot grow without bound.
func (f *pheromoneField) depositAlarm(x, y, amount float64) {
	f.deposit(f.alarm, x, y, amount)
}

// depositCoord adds to the coordination channel at the given location.
func (f *pheromoneField) depositCoord(x, y, amount float64) {
	f.deposit(f.coord, x, y, amount)
}

func (f *pheromoneField) deposit(channel []float64, x, y, amount float64) {
	if amount <= 0 {
		return
	}
	col := int(clamp(x/f.cellSize, 0, float64(f.cols-1)))
	row := int(clamp(y/f.cellSize, 0, float64(f.rows-1)))
	idx := f.cellIndex(col, row)
	channel[idx] = math.Min(channel[idx]+amount, f.cfg.CellCap)
}

// decay applies half-life decay to both channels proportional to elapsed
// time. Called exactly once per tick.
func (f *pheromoneField) decay(dt float64) {
	alarmFactor := math.Exp2(-dt / f.cfg.DangerHalfLife)
	coordFactor := math.Exp2(-dt / f.cfg.CoordHalfLife)
	total := 0.0
	for i := range f.alarm {
		f.alarm[i] *= alarmFactor
		total += f.alarm[i]
	}
	for i := range f.coord {
		f.coord[i] *= coordFactor
	}
	f.totalAlarm = total
	if f.spikeLatch && total < f.cfg.AlarmSpikeThreshold*f.cfg.AlarmSpikeResetRatio {
		f.spikeLatch = false
	}
}

// sampleAlarm bilinearly interpolates the danger channel at a point.
func (f *pheromoneField) sampleAlarm(x, y float64) float64 {
	return f.sample(f.alarm, x, y)
}

// sampleCoord bilinearly interpolates the coordination channel at a point.
func (f *pheromoneField) sampleCoord(x, y float64) float64 {
	return f.sample(f.coord, x, y)
}

func (f *pheromoneField) sample(channel []float64, x, y float64) float64 {
	fx := clamp(x/f.cellSize, 0, float64(f.cols-1))
	fy := clamp(y/f.cellSize, 0, float64(f.rows-1))
	col := int(fx)
	row := int(fy)
	nextCol := col + 1
	if nextCol >= f.cols {
		nextCol = col
	}
	nextRow := row + 1
	if nextRow >= f.rows {
		nextRow = row
	}
	tx := fx - float64(col)
	ty := fy - float64(row)

	v00 := channel[f.cellIndex(col, row)]
	v10 := channel[f.cellIndex(nextCol, row)]
	v01 := channel[f.cellIndex(col, nextRow)]
	v11 := channel[f.cellIndex(nextCol, nextRow)]

	top := v00 + (v10-v00)*tx
	bottom := v01 + (v11-v01)*tx
	return top + (bottom-top)*ty
}

// alarmGradient points toward increasing danger; steering negates it to flee.
func (f *pheromoneField) alarmGradient(x, y float64) vec2 {
	return f.gradient(f.alarm, x, y)
}

// coordGradient points toward increasing coordination signal.
func (f *pheromoneField) coordGradient(x, y float64) vec2 {
	return f.gradient(f.coord, x, y)
}

func (f *pheromoneField) gradient(channel []float64, x, y float64) vec2 {
	step := f.cellSize
	dx := f.sample(channel, x+step, y) - f.sample(channel, x-step, y)
	dy := f.sample(channel, x, y+step) - f.sample(channel, x, y-step)
	return vec2{X: dx / (2 * step), Y: dy / (2 * step)}
}

// alarmSpiked reports a field-wide alarm spike at most once per latch cycle.
func (f *pheromoneField) alarmSpiked() bool {
	if f.spikeLatch {
		return false
	}
	if f.totalAlarm >= f.cfg.AlarmSpikeThreshold {
		f.spikeLatch = true
		return true
	}
	return false
}
