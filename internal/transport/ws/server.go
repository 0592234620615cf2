package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Da-Krause/settlers-remake/internal/ai/construction"
	"github.com/Da-Krause/settlers-remake/internal/protocol"
	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/civ"
	"github.com/Da-Krause/settlers-remake/internal/sim/validation"
)

// ValidationRecorder receives the report of every VALIDATE request.
type ValidationRecorder interface {
	RecordValidation(digest string, rep validation.Report)
}

// Server answers catalog and strategy queries over a websocket. The catalog
// is shared read-only between sessions.
type Server struct {
	cat  *catalogs.Catalog
	disp *construction.Dispatcher
	log  *log.Logger

	tuningDigest string
	recorder     ValidationRecorder

	sessions atomic.Int64
	upgrader websocket.Upgrader
}

type Option func(*Server)

func WithTuningDigest(d string) Option { return func(s *Server) { s.tuningDigest = d } }

func WithValidationRecorder(r ValidationRecorder) Option {
	return func(s *Server) { s.recorder = r }
}

func NewServer(cat *catalogs.Catalog, disp *construction.Dispatcher, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		cat:  cat,
		disp: disp,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Sessions reports the number of open sessions.
func (s *Server) Sessions() int64 { return s.sessions.Load() }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID := s.handshake(conn)
		if sessionID == "" {
			return
		}
		s.sessions.Add(1)
		defer s.sessions.Add(-1)
		s.logf("session %s opened from %s", sessionID, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		out := make(chan []byte, 16)

		// Writer goroutine.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			b, err := json.Marshal(s.Handle(msg))
			if err != nil {
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		cancel()
		<-done
		s.logf("session %s closed", sessionID)
	}
}

func (s *Server) handshake(conn *websocket.Conn) string {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return ""
	}
	if err := protocol.ValidateRequest(msg); err != nil {
		_ = writeJSON(conn, protocol.NewError("", protocol.ErrBadRequest, err.Error()))
		return ""
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return ""
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return ""
	}

	w := s.Welcome()
	if err := writeJSON(conn, w); err != nil {
		return ""
	}
	return w.SessionID
}

// Welcome builds a WELCOME with a fresh session id.
func (s *Server) Welcome() protocol.WelcomeMsg {
	w := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       uuid.NewString(),
		Catalogs: protocol.CatalogDigests{
			Buildings:    protocol.DigestRef{Digest: s.cat.Digest()},
			TuningDigest: s.tuningDigest,
		},
	}
	for _, k := range buildings.All() {
		w.Kinds = append(w.Kinds, k.String())
		w.Catalogs.Buildings.Count += len(s.cat.Eligible(k))
	}
	for _, cv := range civ.All() {
		w.Civilisations = append(w.Civilisations, cv.String())
	}
	return w
}

// Handle answers one client message. Every reply is either the matching
// response type or an ERROR carrying the request id.
func (s *Server) Handle(msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "malformed json")
	}
	if base.ProtocolVersion != protocol.Version {
		return protocol.NewError(base.ReqID, protocol.ErrProtoBadRequest, "bad protocol_version")
	}
	if err := protocol.ValidateRequest(msg); err != nil {
		return protocol.NewError(base.ReqID, protocol.ErrBadRequest, err.Error())
	}

	switch base.Type {
	case protocol.TypeQueryInfo:
		var q protocol.QueryInfoMsg
		if err := json.Unmarshal(msg, &q); err != nil {
			return protocol.NewError(base.ReqID, protocol.ErrBadRequest, err.Error())
		}
		return s.queryInfo(q)
	case protocol.TypeQueryStrategy:
		var q protocol.QueryStrategyMsg
		if err := json.Unmarshal(msg, &q); err != nil {
			return protocol.NewError(base.ReqID, protocol.ErrBadRequest, err.Error())
		}
		return s.queryStrategy(q)
	case protocol.TypeValidate:
		return s.validate(base.ReqID)
	}
	return protocol.NewError(base.ReqID, protocol.ErrBadRequest, "unexpected "+base.Type)
}

func (s *Server) queryInfo(q protocol.QueryInfoMsg) any {
	kind, ok := buildings.ParseKind(q.Kind)
	if !ok {
		return protocol.NewError(q.ReqID, protocol.ErrNotFound, "unknown kind "+q.Kind)
	}
	var cv civ.Civilisation
	if q.Civilisation == "" {
		eligible := s.cat.Eligible(kind)
		if len(eligible) == 0 {
			return protocol.NewError(q.ReqID, protocol.ErrUnsupported, catalogs.ErrNoEligibleCivilisation.Error())
		}
		cv = eligible[0]
	} else if cv, ok = civ.Parse(q.Civilisation); !ok {
		return protocol.NewError(q.ReqID, protocol.ErrNotFound, "unknown civilisation "+q.Civilisation)
	}

	info, err := s.cat.Resolve(kind, cv)
	if err != nil {
		return s.errorFor(q.ReqID, err)
	}
	return protocol.InfoMsg{
		Type:            protocol.TypeInfo,
		ProtocolVersion: protocol.Version,
		ReqID:           q.ReqID,
		Info:            info.Summary(),
	}
}

func (s *Server) queryStrategy(q protocol.QueryStrategyMsg) any {
	kind, ok := buildings.ParseKind(q.Kind)
	if !ok {
		return protocol.NewError(q.ReqID, protocol.ErrNotFound, "unknown kind "+q.Kind)
	}
	cv, ok := civ.Parse(q.Civilisation)
	if !ok {
		return protocol.NewError(q.ReqID, protocol.ErrNotFound, "unknown civilisation "+q.Civilisation)
	}
	st, err := s.disp.StrategyFor(kind, cv)
	if err != nil {
		return s.errorFor(q.ReqID, err)
	}
	resp := protocol.StrategyMsg{
		Type:            protocol.TypeStrategy,
		ProtocolVersion: protocol.Version,
		ReqID:           q.ReqID,
		Kind:            kind.String(),
		Civilisation:    cv.String(),
		Strategy:        st.Name(),
	}
	if req, ok := construction.Prerequisite(kind); ok {
		resp.Prerequisite = req.String()
	}
	if m, ok := st.(construction.Mine); ok {
		resp.Resource = m.Resource().String()
	}
	return resp
}

func (s *Server) validate(reqID string) any {
	rep, err := validation.Check(s.cat)
	if err != nil {
		return s.errorFor(reqID, err)
	}
	if s.recorder != nil {
		s.recorder.RecordValidation(s.cat.Digest(), rep)
	}
	resp := protocol.ValidationMsg{
		Type:            protocol.TypeValidation,
		ProtocolVersion: protocol.Version,
		ReqID:           reqID,
		Digest:          s.cat.Digest(),
		Checked:         rep.Checked,
		Violations:      []protocol.ViolationRef{},
	}
	for _, v := range rep.Violations {
		resp.Violations = append(resp.Violations, protocol.ViolationRef{
			Kind:         v.Kind.String(),
			Civilisation: v.Civilisation.String(),
			Rule:         v.Rule,
			Detail:       v.Detail,
		})
	}
	return resp
}

func (s *Server) errorFor(reqID string, err error) protocol.ErrorMsg {
	switch {
	case errors.Is(err, catalogs.ErrUnsupportedCombination),
		errors.Is(err, catalogs.ErrNoEligibleCivilisation):
		return protocol.NewError(reqID, protocol.ErrUnsupported, err.Error())
	case errors.Is(err, catalogs.ErrDefinitionNotFound):
		return protocol.NewError(reqID, protocol.ErrNotFound, err.Error())
	}
	s.logf("request %s: %v", reqID, err)
	return protocol.NewError(reqID, protocol.ErrInternal, "internal error")
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
