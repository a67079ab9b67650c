package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"apex-arena/sim/logging"
	"apex-arena/sim/logging/sinks"
	"apex-arena/sim/tuning"
)

func buildRouter(cfg logging.Config) (*logging.Router, error) {
	var named []logging.NamedSink
	if cfg.HasSink("console") {
		named = append(named, logging.NamedSink{
			Name: "console",
			Sink: sinks.NewConsoleSink(os.Stdout, cfg.Console),
		})
	}
	if cfg.HasSink("json") && cfg.JSON.FilePath != "" {
		f, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		named = append(named, logging.NamedSink{
			Name: "json",
			Sink: sinks.NewJSON(f, cfg.JSON.FlushInterval),
		})
	}
	return logging.NewRouter(nil, cfg, named)
}

func loadTuning(path string) tuning.Config {
	if path == "" {
		return tuning.Default()
	}
	cfg, err := tuning.Load(path)
	if err != nil {
		log.Fatalf("tuning: %v", err)
	}
	return cfg
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	tuningPath := flag.String("tuning", "", "path to a tuning document (defaults to built-in values)")
	logPath := flag.String("log-json", "", "append NDJSON event log to this file")
	flag.Parse()

	logCfg := logging.DefaultConfig()
	if *logPath != "" {
		logCfg.EnabledSinks = append(logCfg.EnabledSinks, "json")
		logCfg.JSON.FilePath = *logPath
	}
	router, err := buildRouter(logCfg)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		router.Close(ctx)
	}()

	cfg := loadTuning(*tuningPath)
	hub := newHub(cfg, router)
	hub.Start()
	defer hub.Stop()

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	http.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		stats := router.Stats()
		payload := struct {
			Status     string              `json:"status"`
			ServerTime int64               `json:"serverTime"`
			Clients    []diagnosticsClient `json:"clients"`
			TickRate   int                 `json:"tickRate"`
			Heartbeat  int64               `json:"heartbeatMillis"`
			Telemetry  telemetrySnapshot   `json:"telemetry"`
			LogEvents  uint64              `json:"logEvents"`
			LogDropped uint64              `json:"logDropped"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Clients:    hub.DiagnosticsSnapshot(),
			TickRate:   cfg.Clock.TickRate,
			Heartbeat:  heartbeatInterval.Milliseconds(),
			Telemetry:  hub.Telemetry(),
			LogEvents:  stats.EventsTotal,
			LogDropped: stats.DroppedTotal,
		}

		data, err := json.Marshal(payload)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	http.HandleFunc("/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		join := hub.Join()
		data, err := json.Marshal(join)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		clientID := r.URL.Query().Get("id")
		if clientID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade failed for %s: %v", clientID, err)
			return
		}

		sub, snapshot, ok := hub.Subscribe(clientID, conn)
		if !ok {
			message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown client")
			conn.WriteMessage(websocket.CloseMessage, message)
			conn.Close()
			return
		}

		initial := stateMessage{
			Ver:        protocolVersion,
			Type:       "state",
			Tick:       snapshot.Tick,
			ServerTime: time.Now().UnixMilli(),
			State:      snapshot,
		}
		data, err := json.Marshal(initial)
		if err != nil {
			log.Printf("failed to marshal initial state for %s: %v", clientID, err)
			hub.Disconnect(clientID)
			return
		}

		sub.mu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err = conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			hub.Disconnect(clientID)
			return
		}

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				hub.Disconnect(clientID)
				return
			}

			var msg clientMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				log.Printf("discarding malformed message from %s: %v", clientID, err)
				continue
			}

			switch msg.Type {
			case "input":
				hub.ApplyMove(msg.DX, msg.DY)
			case "aim":
				hub.ApplyAim(msg.AimX, msg.AimY)
			case "strike_press":
				hub.PressStrike()
			case "strike_release":
				hub.ReleaseStrike()
			case "upgrade":
				if !hub.ApplyUpgrade(msg.Choice) {
					log.Printf("upgrade choice %q from %s rejected", msg.Choice, clientID)
				}
			case "reset":
				hub.ResetRun()
			case "heartbeat":
				now := time.Now()
				rtt, ok := hub.UpdateHeartbeat(clientID, now, msg.SentAt)
				if !ok {
					continue
				}
				ack := heartbeatMessage{
					Type:       "heartbeat",
					ServerTime: now.UnixMilli(),
					ClientTime: msg.SentAt,
					RTTMillis:  rtt.Milliseconds(),
				}
				data, err := json.Marshal(ack)
				if err != nil {
					continue
				}
				sub.mu.Lock()
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				err = conn.WriteMessage(websocket.TextMessage, data)
				sub.mu.Unlock()
				if err != nil {
					hub.Disconnect(clientID)
					return
				}
			default:
				log.Printf("unknown message type %q from %s", msg.Type, clientID)
			}
		}
	})

	log.Printf("server listening on %s", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
