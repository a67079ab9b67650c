package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// telemetryCounters collects cheap atomic counters for the /diagnostics
// endpoint. Counters accumulate across runs; they reset with the process.
type telemetryCounters struct {
	bytesSent             atomic.Uint64
	entitiesSent          atomic.Uint64
	tickDurationMillis    atomic.Int64
	lastBroadcastBytes    atomic.Uint64
	lastBroadcastEntities atomic.Uint64
	ticksSimulated        atomic.Uint64
	tickOverruns          atomic.Uint64
	runsStarted           atomic.Uint64
	runsEnded             atomic.Uint64
	debug                 bool
}

type telemetrySnapshot struct {
	BytesSent      uint64 `json:"bytesSent"`
	EntitiesSent   uint64 `json:"entitiesSent"`
	TickDuration   int64  `json:"tickDurationMillis"`
	TicksSimulated uint64 `json:"ticksSimulated"`
	TickOverruns   uint64 `json:"tickOverruns"`
	RunsStarted    uint64 `json:"runsStarted"`
	RunsEnded      uint64 `json:"runsEnded"`
}

func newTelemetryCounters() *telemetryCounters {
	t := &telemetryCounters{}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		t.debug = true
	}
	return t
}

func (t *telemetryCounters) RecordBroadcast(bytes, entities int) {
	if bytes < 0 {
		bytes = 0
	}
	if entities < 0 {
		entities = 0
	}
	t.bytesSent.Add(uint64(bytes))
	t.entitiesSent.Add(uint64(entities))
	t.lastBroadcastBytes.Store(uint64(bytes))
	t.lastBroadcastEntities.Store(uint64(entities))
}

func (t *telemetryCounters) RecordTick(duration time.Duration, overrun bool) {
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	t.tickDurationMillis.Store(millis)
	t.ticksSimulated.Add(1)
	if overrun {
		t.tickOverruns.Add(1)
	}
	if t.debug {
		fmt.Printf(
			"[telemetry] tick=%dms bytes=%d totalBytes=%d entities=%d totalEntities=%d\n",
			millis,
			t.lastBroadcastBytes.Load(),
			t.bytesSent.Load(),
			t.lastBroadcastEntities.Load(),
			t.entitiesSent.Load(),
		)
	}
}

func (t *telemetryCounters) RecordRunStarted() {
	t.runsStarted.Add(1)
}

func (t *telemetryCounters) RecordRunEnded() {
	t.runsEnded.Add(1)
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		BytesSent:      t.bytesSent.Load(),
		EntitiesSent:   t.entitiesSent.Load(),
		TickDuration:   t.tickDurationMillis.Load(),
		TicksSimulated: t.ticksSimulated.Load(),
		TickOverruns:   t.tickOverruns.Load(),
		RunsStarted:    t.runsStarted.Load(),
		RunsEnded:      t.runsEnded.Load(),
	}
}
