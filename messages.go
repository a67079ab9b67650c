package main

import "apex-arena/sim/tuning"

const protocolVersion = 1

// joinResponse is returned by POST /join.
type joinResponse struct {
	Ver      int           `json:"ver"`
	ID       string        `json:"id"`
	State    GameState     `json:"state"`
	Config   tuning.Config `json:"config"`
	TickRate int           `json:"tickRate"`
}

// eventBatch groups everything that fired during one tick.
type eventBatch struct {
	Strikes    []StrikeEvent    `json:"strikes,omitempty"`
	Formations []FormationEvent `json:"formations,omitempty"`
	Combats    []CombatEvent    `json:"combats,omitempty"`
	Combos     []ComboID        `json:"combos,omitempty"`
	Offer      *UpgradeOffer    `json:"offer,omitempty"`
	Death      *DeathReport     `json:"death,omitempty"`
	WaveDone   int              `json:"waveDone,omitempty"`
	WaveBonus  int              `json:"waveBonus,omitempty"`
	Perf       *PerfReport      `json:"perf,omitempty"`
}

func (b eventBatch) empty() bool {
	return len(b.Strikes) == 0 && len(b.Formations) == 0 && len(b.Combats) == 0 &&
		len(b.Combos) == 0 && b.Offer == nil && b.Death == nil && b.WaveDone == 0 && b.Perf == nil
}

// stateMessage is the per-tick frame broadcast to every subscriber.
type stateMessage struct {
	Ver        int         `json:"ver"`
	Type       string      `json:"type"`
	Tick       uint64      `json:"t"`
	ServerTime int64       `json:"serverTime"`
	State      GameState   `json:"state"`
	Events     *eventBatch `json:"events,omitempty"`
}

// clientMessage is the envelope for everything a client sends over the socket.
type clientMessage struct {
	Type   string  `json:"type"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	AimX   float64 `json:"aimX,omitempty"`
	AimY   float64 `json:"aimY,omitempty"`
	Choice string  `json:"choice,omitempty"`
	SentAt int64   `json:"sentAt,omitempty"`
}

// heartbeatMessage acknowledges a client heartbeat with timing data.
type heartbeatMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rttMillis"`
}

// diagnosticsClient is the per-connection slice of /diagnostics.
type diagnosticsClient struct {
	Ver           int    `json:"ver"`
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}
