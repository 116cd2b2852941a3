package syncserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/inkpad/pkg/settings"
	"github.com/vango-dev/inkpad/pkg/store"
	"github.com/vango-dev/inkpad/pkg/telemetry"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	editor := settings.NewEditor(nil)
	s := New(editor, store.NewMemoryStore(), telemetry.New(), &Config{
		Document: "doc-1",
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func doJSON(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, url, err)
	}
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestGetAndApplySettings(t *testing.T) {
	s, ts := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, ts.URL+"/api/settings", "")
	if status != http.StatusOK || body["tool"] != "pen" {
		t.Fatalf("GET /api/settings = %d %v", status, body)
	}

	status, body = doJSON(t, http.MethodPut, ts.URL+"/api/settings/pen.color", `{"value":"#FF0000"}`)
	if status != http.StatusOK {
		t.Fatalf("PUT pen.color = %d %v", status, body)
	}
	if pen := body["pen"].(map[string]any); pen["color"] != "#ff0000" {
		t.Errorf("response pen = %v", pen)
	}
	if s.editor.PenColor.Get() != "#ff0000" {
		t.Errorf("editor pen color = %q", s.editor.PenColor.Get())
	}
}

func TestApplyErrors(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown path", "pen.opacity", `{"value":1}`, http.StatusNotFound, "E101"},
		{"invalid value", "pen.thickness", `{"value":500}`, http.StatusBadRequest, "E102"},
		{"missing value", "pen.thickness", `{}`, http.StatusBadRequest, "E102"},
		{"bad json", "tool", `{`, http.StatusBadRequest, "E102"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, http.MethodPut, ts.URL+"/api/settings/"+tt.path, tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if body["code"] != tt.code {
				t.Errorf("code = %v, want %s", body["code"], tt.code)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	s, ts := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, ts.URL+"/api/settings/load", "")
	if status != http.StatusNotFound || body["code"] != "E201" {
		t.Errorf("load before save = %d %v", status, body)
	}

	s.editor.Tool.Set(settings.ToolText)
	if status, body := doJSON(t, http.MethodPost, ts.URL+"/api/settings/save", ""); status != http.StatusOK {
		t.Fatalf("save = %d %v", status, body)
	}

	s.editor.Tool.Set(settings.ToolImage)
	status, body = doJSON(t, http.MethodPost, ts.URL+"/api/settings/load", "")
	if status != http.StatusOK || body["tool"] != "text" {
		t.Errorf("load = %d %v", status, body)
	}
	if s.editor.Tool.Get() != settings.ToolText {
		t.Errorf("editor tool = %q, want text", s.editor.Tool.Get())
	}
}

func TestConcurrentApplyRequests(t *testing.T) {
	s, ts := newTestServer(t)

	put := func(path, body string) {
		req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/settings/"+path, strings.NewReader(body))
		if err != nil {
			t.Error(err)
			return
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Error(err)
			return
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("PUT %s = %d", path, resp.StatusCode)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			put("pen.color", `{"value":"#00ff00"}`)
		}
		put("pen.color", `{"value":"#ff0000"}`)
	}()
	go func() {
		defer wg.Done()
		for i := 1; i <= 50; i++ {
			put("pen.thickness", `{"value":`+strconv.Itoa(i)+`}`)
		}
		put("pen.thickness", `{"value":50}`)
	}()
	wg.Wait()

	if p := s.editor.Pen.Get(); p.Color != "#ff0000" || p.Thickness != 50 {
		t.Errorf("pen = %+v, want every acknowledged write kept", p)
	}
}

func TestStrings(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, ts.URL+"/api/strings?lang=de", "")
	if status != http.StatusOK || body["pen"] != "Stift" {
		t.Errorf("strings = %d %v", status, body)
	}
	if body["summary"] != "Stift ausgewählt · Dicke: 4" {
		t.Errorf("summary = %v, want it in the negotiated language", body["summary"])
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/strings", nil)
	req.Header.Set("Accept-Language", "es-MX,es;q=0.9")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var labels map[string]string
	json.NewDecoder(resp.Body).Decode(&labels)
	if labels["eraser"] != "Borrador" {
		t.Errorf("labels = %v", labels)
	}
	if labels["summary"] == "" {
		t.Error("expected summary label")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	http.Get(ts.URL + "/healthz")

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(data, []byte("inkpad_http_requests_total")) {
		t.Errorf("metrics output missing request counter:\n%s", data)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocketStream(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)

	msg := readMessage(t, conn)
	if msg.Type != MessageSnapshot || msg.Snapshot == nil || msg.Snapshot.Tool != settings.ToolPen {
		t.Fatalf("first message = %+v", msg)
	}

	// The subscription is in place once the snapshot has been delivered,
	// but the handler may still be registering; wait for it.
	deadline := time.Now().Add(5 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if status, body := doJSON(t, http.MethodPut, ts.URL+"/api/settings/eraser.thickness", `{"value":25}`); status != http.StatusOK {
		t.Fatalf("PUT = %d %v", status, body)
	}
	msg = readMessage(t, conn)
	if msg.Type != MessageChange || msg.Path != "eraser" {
		t.Fatalf("change message = %+v", msg)
	}
	var eraser settings.EraserStyle
	if err := json.Unmarshal(msg.Value, &eraser); err != nil || eraser.Thickness != 25 {
		t.Errorf("eraser value = %s (%v)", msg.Value, err)
	}

	if err := conn.WriteJSON(Message{Type: MessageSet, Path: "tool", Value: json.RawMessage(`"text"`)}); err != nil {
		t.Fatal(err)
	}
	msg = readMessage(t, conn)
	if msg.Type != MessageChange || msg.Path != "tool" || string(msg.Value) != `"text"` {
		t.Errorf("tool change = %+v", msg)
	}

	if err := conn.WriteJSON(Message{Type: MessageSet, Path: "tool", Value: json.RawMessage(`"lasso"`)}); err != nil {
		t.Fatal(err)
	}
	msg = readMessage(t, conn)
	if msg.Type != MessageError || msg.Code != "E102" {
		t.Errorf("error message = %+v", msg)
	}
}

func TestShutdownClosesClients(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)
	readMessage(t, conn)

	deadline := time.Now().Add(5 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if s.ClientCount() != 0 {
		t.Errorf("expected no clients after shutdown, got %d", s.ClientCount())
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to be closed")
	}
}
