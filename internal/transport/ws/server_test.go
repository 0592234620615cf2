package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Da-Krause/settlers-remake/internal/ai/construction"
	"github.com/Da-Krause/settlers-remake/internal/protocol"
	"github.com/Da-Krause/settlers-remake/internal/sim/buildings"
	"github.com/Da-Krause/settlers-remake/internal/sim/catalogs"
	"github.com/Da-Krause/settlers-remake/internal/sim/tuning"
	"github.com/Da-Krause/settlers-remake/internal/sim/validation"
)

type recorder struct {
	mu      sync.Mutex
	digests []string
}

func (r *recorder) RecordValidation(digest string, _ validation.Report) {
	r.mu.Lock()
	r.digests = append(r.digests, digest)
	r.mu.Unlock()
}

func newServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	src, err := catalogs.DefaultSource()
	if err != nil {
		t.Fatalf("DefaultSource: %v", err)
	}
	cat := catalogs.New(src)
	disp := construction.NewDispatcher(cat, tuning.Defaults().Strategies)
	return NewServer(cat, disp, nil, opts...)
}

func handle(t *testing.T, s *Server, raw string) map[string]any {
	t.Helper()
	b, err := json.Marshal(s.Handle([]byte(raw)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestHandle_QueryInfo(t *testing.T) {
	s := newServer(t)

	m := handle(t, s, `{"type":"QUERY_INFO","protocol_version":"1.0","req_id":"R1","kind":"CASTLE","civilisation":"ROMANS"}`)
	if m["type"] != protocol.TypeInfo || m["req_id"] != "R1" {
		t.Fatalf("unexpected reply %v", m)
	}
	info := m["info"].(map[string]any)
	if info["kind"] != "CASTLE" || info["construction_materials"].(float64) != 16 {
		t.Fatalf("unexpected info %v", info)
	}

	// Kind-level query resolves the first eligible civilisation.
	m = handle(t, s, `{"type":"QUERY_INFO","protocol_version":"1.0","req_id":"R2","kind":"COALMINE"}`)
	if m["type"] != protocol.TypeInfo || m["info"].(map[string]any)["mine"] != true {
		t.Fatalf("unexpected reply %v", m)
	}
}

func TestHandle_Errors(t *testing.T) {
	s := newServer(t)
	cases := []struct {
		raw  string
		code string
	}{
		{`{`, protocol.ErrProtoBadRequest},
		{`{"type":"VALIDATE","protocol_version":"0.1","req_id":"R"}`, protocol.ErrProtoBadRequest},
		{`{"type":"QUERY_INFO","protocol_version":"1.0","req_id":"R"}`, protocol.ErrBadRequest},
		{`{"type":"HELLO","protocol_version":"1.0"}`, protocol.ErrBadRequest},
		{`{"type":"QUERY_INFO","protocol_version":"1.0","req_id":"R","kind":"PYRAMID"}`, protocol.ErrNotFound},
		{`{"type":"QUERY_INFO","protocol_version":"1.0","req_id":"R","kind":"CASTLE","civilisation":"VIKINGS"}`, protocol.ErrNotFound},
		{`{"type":"QUERY_STRATEGY","protocol_version":"1.0","req_id":"R","kind":"WINEGROWER","civilisation":"ASIANS"}`, protocol.ErrUnsupported},
	}
	for _, tc := range cases {
		m := handle(t, s, tc.raw)
		if m["type"] != protocol.TypeError || m["code"] != tc.code {
			t.Fatalf("%s: expected %s, got %v", tc.raw, tc.code, m)
		}
		if !protocol.IsKnownCode(m["code"].(string)) {
			t.Fatalf("unknown code %v", m["code"])
		}
	}
}

func TestHandle_QueryStrategy(t *testing.T) {
	s := newServer(t)

	m := handle(t, s, `{"type":"QUERY_STRATEGY","protocol_version":"1.0","req_id":"S1","kind":"COALMINE","civilisation":"ROMANS"}`)
	if m["strategy"] != "mine" || m["resource"] != "COAL" {
		t.Fatalf("unexpected mine reply %v", m)
	}

	m = handle(t, s, `{"type":"QUERY_STRATEGY","protocol_version":"1.0","req_id":"S2","kind":"SAWMILL","civilisation":"ROMANS"}`)
	req, _ := construction.Prerequisite(buildings.Sawmill)
	if m["strategy"] != "near_required" || m["prerequisite"] != req.String() {
		t.Fatalf("unexpected sawmill reply %v", m)
	}
}

func TestHandle_Validate(t *testing.T) {
	rec := &recorder{}
	s := newServer(t, WithValidationRecorder(rec))

	m := handle(t, s, `{"type":"VALIDATE","protocol_version":"1.0","req_id":"V1"}`)
	if m["type"] != protocol.TypeValidation {
		t.Fatalf("unexpected reply %v", m)
	}
	if m["checked"].(float64) <= 0 || len(m["violations"].([]any)) != 0 {
		t.Fatalf("expected a clean default catalog, got %v", m)
	}
	if len(rec.digests) != 1 || rec.digests[0] != s.cat.Digest() {
		t.Fatalf("expected one recorded run, got %v", rec.digests)
	}
}

func TestServer_Session(t *testing.T) {
	s := newServer(t, WithTuningDigest("tune"))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "test"}); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	var w protocol.WelcomeMsg
	if err := conn.ReadJSON(&w); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if w.Type != protocol.TypeWelcome || len(w.SessionID) != 36 {
		t.Fatalf("unexpected welcome %+v", w)
	}
	if w.Catalogs.Buildings.Digest != s.cat.Digest() || w.Catalogs.TuningDigest != "tune" {
		t.Fatalf("unexpected digests %+v", w.Catalogs)
	}
	if len(w.Kinds) != buildings.Count || w.Catalogs.Buildings.Count == 0 {
		t.Fatalf("unexpected welcome catalog %+v", w)
	}

	if err := conn.WriteJSON(protocol.QueryInfoMsg{
		Type: protocol.TypeQueryInfo, ProtocolVersion: protocol.Version,
		ReqID: "Q1", Kind: "STOCK", Civilisation: "EGYPTIANS",
	}); err != nil {
		t.Fatalf("write query: %v", err)
	}
	var info protocol.InfoMsg
	if err := conn.ReadJSON(&info); err != nil {
		t.Fatalf("read info: %v", err)
	}
	if info.Type != protocol.TypeInfo || info.ReqID != "Q1" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestServer_RejectsMissingHello(t *testing.T) {
	s := newServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	_ = conn.WriteJSON(protocol.ValidateMsg{Type: protocol.TypeValidate, ProtocolVersion: protocol.Version, ReqID: "V"})
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}
