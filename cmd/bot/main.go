package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Da-Krause/settlers-remake/internal/protocol"
)

// bot connects to the query service, asks for the placement strategy of
// every building and civilisation it announces and logs the answers.
func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "bot", "client name")
		validate = flag.Bool("validate", false, "also request a catalog validation")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	pending := 0
	for {
		select {
		case <-stop:
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME session=%s catalog=%s records=%d", w.SessionID, w.Catalogs.Buildings.Digest, w.Catalogs.Buildings.Count)
			for _, q := range strategyQueries(w) {
				if err := conn.WriteJSON(q); err != nil {
					logger.Fatalf("send %s: %v", q.ReqID, err)
				}
				pending++
			}
			if *validate {
				_ = conn.WriteJSON(protocol.ValidateMsg{Type: protocol.TypeValidate, ProtocolVersion: protocol.Version, ReqID: "validate"})
				pending++
			}

		case protocol.TypeStrategy:
			var s protocol.StrategyMsg
			if err := json.Unmarshal(msg, &s); err != nil {
				continue
			}
			logger.Printf("%-18s %-10s %s %s%s", s.Kind, s.Civilisation, s.Strategy, s.Prerequisite, s.Resource)
			pending--

		case protocol.TypeValidation:
			var v protocol.ValidationMsg
			if err := json.Unmarshal(msg, &v); err != nil {
				continue
			}
			logger.Printf("VALIDATION checked=%d violations=%d", v.Checked, len(v.Violations))
			pending--

		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				continue
			}
			// Unsupported pairs are expected: the bot asks for every pair.
			if e.Code != protocol.ErrUnsupported {
				logger.Printf("ERROR %s %s: %s", e.ReqID, e.Code, e.Message)
			}
			pending--
		}
		if pending == 0 && base.Type != protocol.TypeWelcome {
			return
		}
	}
}

func strategyQueries(w protocol.WelcomeMsg) []protocol.QueryStrategyMsg {
	var out []protocol.QueryStrategyMsg
	for _, k := range w.Kinds {
		for _, c := range w.Civilisations {
			out = append(out, protocol.QueryStrategyMsg{
				Type:            protocol.TypeQueryStrategy,
				ProtocolVersion: protocol.Version,
				ReqID:           fmt.Sprintf("%s/%s", k, c),
				Kind:            k,
				Civilisation:    c,
			})
		}
	}
	return out
}
