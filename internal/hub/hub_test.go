package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/frudas24/touchrelay/internal/coord"
	"github.com/frudas24/touchrelay/internal/testutil"
	"github.com/gorilla/websocket"
)

const sampleFrame = `{"x": 10, "y": 20, "fingers": 1, "type": "touch", "click": 1}`

// startHub serves a hub and returns its base URL.
func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	h := New(nil)
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return h, srv.URL
}

// dial opens a WebSocket client against the hub.
func dial(t *testing.T, base string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readSample reads one frame and decodes it as a sample.
func readSample(t *testing.T, conn *websocket.Conn) coord.Sample {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s, ok, err := coord.Decode(data)
	if err != nil || !ok {
		t.Fatalf("decode %q: ok=%v err=%v", data, ok, err)
	}
	return s
}

// TestData_EmptyBeforeFirstSample verifies GET /data returns {} with CORS headers.
func TestData_EmptyBeforeFirstSample(t *testing.T) {
	_, base := startHub(t)
	resp, err := http.Get(base + "/data")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 0 {
		t.Fatalf("expected empty object, got %v", body)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}

// TestData_Preflight verifies OPTIONS answers with the allowed methods.
func TestData_Preflight(t *testing.T) {
	_, base := startHub(t)
	req, _ := http.NewRequest(http.MethodOptions, base+"/data", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "PATCH") {
		t.Fatalf("unexpected preflight: %d %v", resp.StatusCode, resp.Header)
	}
}

// TestWS_BroadcastsToOthers verifies a published sample reaches other clients and /data.
func TestWS_BroadcastsToOthers(t *testing.T) {
	h, base := startHub(t)
	relay := dial(t, base)
	phone := dial(t, base)
	testutil.Eventually(t, 2*time.Second, func() bool { return h.Clients() == 2 }, "two clients")

	if err := phone.WriteMessage(websocket.TextMessage, []byte(sampleFrame)); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := readSample(t, relay)
	want := coord.Sample{X: 10, Y: 20, Fingers: 1, Type: coord.TypeTouch, Click: true, HasY: true}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	resp, err := http.Get(base + "/data")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var polled struct {
		X float64 `json:"x"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&polled); err != nil || polled.X != 10 {
		t.Fatalf("expected polled sample, got %+v err=%v", polled, err)
	}
}

// TestWS_SendsLatestOnConnect verifies late joiners receive the current sample first.
func TestWS_SendsLatestOnConnect(t *testing.T) {
	h, base := startHub(t)
	if !h.Publish([]byte(sampleFrame)) {
		t.Fatalf("expected sample to be accepted")
	}
	conn := dial(t, base)
	if got := readSample(t, conn); got.X != 10 || got.Y != 20 {
		t.Fatalf("unexpected first frame: %+v", got)
	}
}

// TestPublish_RequiresFields verifies frames missing x, y or type are ignored.
func TestPublish_RequiresFields(t *testing.T) {
	h := New(nil)
	for _, frame := range []string{`{}`, `{"x":1,"y":2}`, `{"x":1,"type":"touch"}`, `[1,2]`, `nope`} {
		if h.Publish([]byte(frame)) {
			t.Fatalf("expected %q to be ignored", frame)
		}
	}
	if h.Latest() != nil {
		t.Fatalf("expected no latest sample, got %s", h.Latest())
	}
}

// TestPatchData_StoresText verifies written-back text is exposed on /text.
func TestPatchData_StoresText(t *testing.T) {
	_, base := startHub(t)
	req, _ := http.NewRequest(http.MethodPatch, base+"/data", strings.NewReader(`{"text":"Hello world"}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/text")
	if err != nil {
		t.Fatalf("get text: %v", err)
	}
	defer resp.Body.Close()
	var body textPayload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Text != "Hello world" {
		t.Fatalf("unexpected text %+v err=%v", body, err)
	}
}

// TestPatchData_BadBody verifies malformed write-backs are rejected.
func TestPatchData_BadBody(t *testing.T) {
	_, base := startHub(t)
	req, _ := http.NewRequest(http.MethodPatch, base+"/data", strings.NewReader(`{`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// TestWS_CopiedTextFrame verifies copied_text frames update the text without broadcasting.
func TestWS_CopiedTextFrame(t *testing.T) {
	h, base := startHub(t)
	conn := dial(t, base)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"copied_text":"abc"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	testutil.Eventually(t, 2*time.Second, func() bool { return h.Text() == "abc" }, "copied text")
	if h.Latest() != nil {
		t.Fatalf("copied text must not become a sample")
	}
}

// TestOffer_DropsOldest verifies a full subscriber keeps the newest messages.
func TestOffer_DropsOldest(t *testing.T) {
	ch := make(chan []byte, 2)
	offer(ch, []byte("a"))
	offer(ch, []byte("b"))
	offer(ch, []byte("c"))
	first, second := string(<-ch), string(<-ch)
	if first != "b" || second != "c" {
		t.Fatalf("expected b c, got %s %s", first, second)
	}
}

// TestClose_DisconnectsClients verifies Close ends client sockets.
func TestClose_DisconnectsClients(t *testing.T) {
	h, base := startHub(t)
	conn := dial(t, base)
	testutil.Eventually(t, 2*time.Second, func() bool { return h.Clients() == 1 }, "client registered")
	h.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected socket to close")
	}
}
