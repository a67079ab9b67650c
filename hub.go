package main

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"apex-arena/sim/logging"
	"apex-arena/sim/tuning"
)

// subscriber wraps a websocket connection with a write lock. Broadcasts and
// heartbeat acks share the same connection.
type subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

type clientState struct {
	ID            string
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

// Hub bridges the simulation loop and websocket clients: it feeds client
// input into the tracker and broadcasts one frame per tick with the tick's
// event batch attached.
type Hub struct {
	mu          sync.Mutex
	clients     map[string]*clientState
	subscribers map[string]*subscriber
	nextID      uint64

	cfg       tuning.Config
	loop      *Loop
	telemetry *telemetryCounters

	batchMu sync.Mutex
	batch   eventBatch
}

func newHub(cfg tuning.Config, pub logging.Publisher) *Hub {
	h := &Hub{
		cfg:         cfg.Normalized(),
		clients:     make(map[string]*clientState),
		subscribers: make(map[string]*subscriber),
		telemetry:   newTelemetryCounters(),
	}
	h.loop = NewLoop(h.cfg, pub, h.loopCallbacks(), h.telemetry)
	return h
}

// loopCallbacks accumulates per-tick events into the pending batch; the
// trailing StateUpdate flushes the batch to every subscriber.
func (h *Hub) loopCallbacks() Callbacks {
	return Callbacks{
		Strike: func(events []StrikeEvent) {
			h.batchMu.Lock()
			h.batch.Strikes = append(h.batch.Strikes, events...)
			h.batchMu.Unlock()
		},
		Formation: func(events []FormationEvent) {
			h.batchMu.Lock()
			h.batch.Formations = append(h.batch.Formations, events...)
			h.batchMu.Unlock()
		},
		Combat: func(events []CombatEvent) {
			h.batchMu.Lock()
			h.batch.Combats = append(h.batch.Combats, events...)
			h.batchMu.Unlock()
		},
		ComboDiscovered: func(combos []ComboID) {
			h.batchMu.Lock()
			h.batch.Combos = append(h.batch.Combos, combos...)
			h.batchMu.Unlock()
		},
		WaveComplete: func(wave, bonus int) {
			h.batchMu.Lock()
			h.batch.WaveDone = wave
			h.batch.WaveBonus = bonus
			h.batchMu.Unlock()
		},
		LevelUp: func(offer UpgradeOffer) {
			h.batchMu.Lock()
			h.batch.Offer = &offer
			h.batchMu.Unlock()
		},
		GameOver: func(report DeathReport) {
			h.batchMu.Lock()
			h.batch.Death = &report
			h.batchMu.Unlock()
		},
		Performance: func(report PerfReport) {
			if !report.TickOverrun && len(report.OverrunStages) == 0 {
				return
			}
			h.batchMu.Lock()
			h.batch.Perf = &report
			h.batchMu.Unlock()
		},
		StateUpdate: func(st GameState) {
			h.broadcastState(st)
		},
	}
}

// Start launches the simulation ticker.
func (h *Hub) Start() {
	h.loop.Start()
}

// Stop halts the simulation ticker.
func (h *Hub) Stop() {
	h.loop.Stop()
}

// Join registers a new client and returns the snapshot it should render from.
func (h *Hub) Join() joinResponse {
	h.mu.Lock()
	h.nextID++
	id := fmt.Sprintf("client-%d", h.nextID)
	h.clients[id] = &clientState{ID: id, lastHeartbeat: time.Now()}
	h.mu.Unlock()

	return joinResponse{
		Ver:      protocolVersion,
		ID:       id,
		State:    h.loop.State(),
		Config:   h.cfg,
		TickRate: h.cfg.Clock.TickRate,
	}
}

// Subscribe attaches a websocket connection to a joined client.
func (h *Hub) Subscribe(id string, conn *websocket.Conn) (*subscriber, GameState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; !ok {
		return nil, GameState{}, false
	}
	sub := &subscriber{conn: conn}
	if old, ok := h.subscribers[id]; ok {
		old.conn.Close()
	}
	h.subscribers[id] = sub
	return sub, h.loop.State(), true
}

// Disconnect removes a client and closes its connection, if any.
func (h *Hub) Disconnect(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subscribers[id]; ok {
		sub.conn.Close()
		delete(h.subscribers, id)
	}
	delete(h.clients, id)
}

// UpdateHeartbeat records a heartbeat and returns the measured round trip.
func (h *Hub) UpdateHeartbeat(id string, now time.Time, sentAt int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[id]
	if !ok {
		return 0, false
	}
	client.lastHeartbeat = now
	if sentAt > 0 {
		client.lastRTT = now.Sub(time.UnixMilli(sentAt))
		if client.lastRTT < 0 {
			client.lastRTT = 0
		}
	}
	return client.lastRTT, true
}

// Input routing. Every connected client shares the single pilot seat.

func (h *Hub) ApplyMove(dx, dy float64)    { h.loop.Input().SetMove(dx, dy) }
func (h *Hub) ApplyAim(x, y float64)       { h.loop.Input().SetAim(x, y) }
func (h *Hub) PressStrike()                { h.loop.Input().Press() }
func (h *Hub) ReleaseStrike()              { h.loop.Input().Release() }
func (h *Hub) ApplyUpgrade(id string) bool { return h.loop.ApplyUpgrade(id) }
func (h *Hub) ResetRun()                   { h.loop.Reset() }

// broadcastState sends one frame to every subscriber and prunes connections
// whose heartbeats went stale.
func (h *Hub) broadcastState(st GameState) {
	h.batchMu.Lock()
	batch := h.batch
	h.batch = eventBatch{}
	h.batchMu.Unlock()

	msg := stateMessage{
		Ver:        protocolVersion,
		Type:       "state",
		Tick:       st.Tick,
		ServerTime: time.Now().UnixMilli(),
		State:      st,
	}
	if !batch.empty() {
		msg.Events = &batch
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state frame: %v", err)
		return
	}

	now := time.Now()
	var stale []string
	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		if client, ok := h.clients[id]; ok && now.Sub(client.lastHeartbeat) > disconnectAfter {
			stale = append(stale, id)
			continue
		}
		subs[id] = sub
	}
	h.mu.Unlock()

	h.telemetry.RecordBroadcast(len(data), len(st.Enemies)+1)

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		h.Disconnect(id)
	}
}

// DiagnosticsSnapshot exposes heartbeat data for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsClient {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]diagnosticsClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, diagnosticsClient{
			Ver:           protocolVersion,
			ID:            c.ID,
			LastHeartbeat: c.lastHeartbeat.UnixMilli(),
			RTTMillis:     c.lastRTT.Milliseconds(),
		})
	}
	return clients
}

// Telemetry exposes the shared counters for the diagnostics endpoint.
func (h *Hub) Telemetry() telemetrySnapshot {
	return h.telemetry.Snapshot()
}
