package bots

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ziadkadry99/containerbot/internal/discord"
	"github.com/ziadkadry99/containerbot/internal/gateway"
)

// mockHandler implements MessageHandler for testing.
type mockHandler struct {
	lastMsg IncomingMessage
	replies []OutgoingMessage
	err     error
}

func (m *mockHandler) HandleMessage(_ context.Context, msg IncomingMessage) ([]OutgoingMessage, error) {
	m.lastMsg = msg
	if m.err != nil {
		return nil, m.err
	}
	return m.replies, nil
}

// sentCall records one call made to mockSender.
type sentCall struct {
	channel   string
	texts     []string
	many      bool
	overrides discord.Overrides
}

// mockSender implements ContainerSender for testing.
type mockSender struct {
	mu     sync.Mutex
	calls  []sentCall
	reject bool
	err    error
}

func (m *mockSender) record(c sentCall) (discord.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	if m.err != nil {
		return nil, m.err
	}
	if m.reject {
		return nil, nil
	}
	return discord.Message{"id": strconv.Itoa(len(m.calls))}, nil
}

func (m *mockSender) Send(_ context.Context, target discord.Target, content string, overrides discord.Overrides) (discord.Message, error) {
	return m.record(sentCall{channel: target.ID(), texts: []string{content}, overrides: overrides})
}

func (m *mockSender) SendMany(_ context.Context, target discord.Target, contents []string, overrides discord.Overrides) (discord.Message, error) {
	return m.record(sentCall{channel: target.ID(), texts: contents, many: true, overrides: overrides})
}

func (m *mockSender) snapshot() []sentCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentCall(nil), m.calls...)
}

func gatewayMsg(text string) IncomingMessage {
	return IncomingMessage{
		Platform: PlatformGateway,
		Channel:  discord.RawID("C123"),
		UserID:   "U456",
		Text:     text,
	}
}

// --- Processor command tests ---

func TestProcessorTestCommand(t *testing.T) {
	p := NewProcessor("!")
	replies, err := p.HandleMessage(context.Background(), gatewayMsg("!test"))
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(replies))
	}
	if replies[0].Multi || len(replies[0].Texts) != 1 || replies[0].Texts[0] != DemoSingle {
		t.Errorf("unexpected first reply: %+v", replies[0])
	}
	if !replies[1].Multi || strings.Join(replies[1].Texts, "|") != strings.Join(DemoLines, "|") {
		t.Errorf("unexpected second reply: %+v", replies[1])
	}
	for _, r := range replies {
		if r.Channel.ID() != "C123" {
			t.Errorf("reply should target C123, got %q", r.Channel.ID())
		}
	}
}

func TestProcessorSay(t *testing.T) {
	p := NewProcessor("!")
	replies, err := p.HandleMessage(context.Background(), gatewayMsg("!say **hello** there"))
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || replies[0].Texts[0] != "**hello** there" {
		t.Errorf("unexpected replies: %+v", replies)
	}
}

func TestProcessorSayWithoutText(t *testing.T) {
	p := NewProcessor("!")
	replies, _ := p.HandleMessage(context.Background(), gatewayMsg("!say"))
	if len(replies) != 1 || !strings.Contains(replies[0].Texts[0], "Usage") {
		t.Errorf("expected usage hint, got %+v", replies)
	}
}

func TestProcessorLines(t *testing.T) {
	p := NewProcessor("?")
	replies, err := p.HandleMessage(context.Background(), gatewayMsg("?lines one | two ||  three "))
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 1 || !replies[0].Multi {
		t.Fatalf("expected one multi reply, got %+v", replies)
	}
	want := []string{"one", "two", "three"}
	if strings.Join(replies[0].Texts, ",") != strings.Join(want, ",") {
		t.Errorf("got %q, want %q", replies[0].Texts, want)
	}
}

func TestProcessorLinesWithoutSegments(t *testing.T) {
	p := NewProcessor("!")
	replies, _ := p.HandleMessage(context.Background(), gatewayMsg("!lines | |"))
	if len(replies) != 1 || !strings.Contains(replies[0].Texts[0], "Usage") {
		t.Errorf("expected usage hint, got %+v", replies)
	}
}

func TestProcessorHelp(t *testing.T) {
	p := NewProcessor("!")
	for _, text := range []string{"!help", "!", "!HELP"} {
		replies, _ := p.HandleMessage(context.Background(), gatewayMsg(text))
		if len(replies) != 1 || !replies[0].Multi || replies[0].Texts[0] != "**Commands**" {
			t.Errorf("%q: expected help, got %+v", text, replies)
		}
	}
}

func TestProcessorUnknownCommand(t *testing.T) {
	p := NewProcessor("!")
	replies, _ := p.HandleMessage(context.Background(), gatewayMsg("!dance"))
	if len(replies) != 1 || !strings.Contains(replies[0].Texts[0], "Unknown command `!dance`") {
		t.Errorf("unexpected replies: %+v", replies)
	}
}

func TestProcessorIgnoresPlainText(t *testing.T) {
	p := NewProcessor("!")
	replies, err := p.HandleMessage(context.Background(), gatewayMsg("just chatting"))
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != 0 {
		t.Errorf("expected no replies, got %+v", replies)
	}
}

func TestOutgoingMessageDocument(t *testing.T) {
	single := OutgoingMessage{Texts: []string{"a"}}.Document()
	if got := single.Texts(); len(got) != 1 || got[0] != "a" {
		t.Errorf("single: got %q", got)
	}

	multi := OutgoingMessage{Texts: []string{"a"}, Multi: true, Overrides: discord.Overrides{"nonce": "n"}}.Document()
	if multi["nonce"] != "n" {
		t.Error("overrides not applied")
	}

	empty := OutgoingMessage{}.Document()
	if c, ok := empty.Container(); !ok || len(c.Components) != 0 {
		t.Errorf("empty: expected container with no children, got %+v", empty)
	}
}

// --- Router tests ---

func TestRouterProcessDeliversInOrder(t *testing.T) {
	sender := &mockSender{}
	r := NewRouter(NewProcessor("!"), sender, nil)

	msgs, err := r.Process(context.Background(), gatewayMsg("!test"))
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].ID() != "1" || msgs[1].ID() != "2" {
		t.Errorf("unexpected results: %+v", msgs)
	}

	calls := sender.snapshot()
	if len(calls) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(calls))
	}
	if calls[0].many || calls[0].texts[0] != DemoSingle {
		t.Errorf("first send should be single, got %+v", calls[0])
	}
	if !calls[1].many || len(calls[1].texts) != 3 {
		t.Errorf("second send should be multi, got %+v", calls[1])
	}
}

func TestRouterAssignsTraceID(t *testing.T) {
	mock := &mockHandler{}
	r := NewRouter(mock, &mockSender{}, nil)

	if _, err := r.Process(context.Background(), gatewayMsg("hi")); err != nil {
		t.Fatal(err)
	}
	if mock.lastMsg.TraceID == "" {
		t.Error("expected a trace id to be assigned")
	}

	msg := gatewayMsg("hi")
	msg.TraceID = "fixed"
	if _, err := r.Process(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	if mock.lastMsg.TraceID != "fixed" {
		t.Errorf("existing trace id overwritten: %q", mock.lastMsg.TraceID)
	}
}

func TestRouterRejectedReplies(t *testing.T) {
	sender := &mockSender{reject: true}
	r := NewRouter(NewProcessor("!"), sender, nil)

	msgs, err := r.Process(context.Background(), gatewayMsg("!test"))
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0] != nil || msgs[1] != nil {
		t.Errorf("expected two nil results, got %+v", msgs)
	}
}

func TestRouterStopsOnTransportError(t *testing.T) {
	sender := &mockSender{err: errors.New("connection refused")}
	r := NewRouter(NewProcessor("!"), sender, nil)

	_, err := r.Process(context.Background(), gatewayMsg("!test"))
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected transport error, got %v", err)
	}
	if n := len(sender.snapshot()); n != 1 {
		t.Errorf("expected delivery to stop after first failure, got %d sends", n)
	}
}

func TestRouterHandlerError(t *testing.T) {
	r := NewRouter(&mockHandler{err: fmt.Errorf("handler failure")}, &mockSender{}, nil)
	_, err := r.Process(context.Background(), gatewayMsg("x"))
	if err == nil || !strings.Contains(err.Error(), "handler failure") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRouterOnGatewayMessage(t *testing.T) {
	sender := &mockSender{}
	r := NewRouter(NewProcessor("!"), sender, nil)

	r.OnGatewayMessage(context.Background(), gateway.MessageCreate{
		ID:        "m1",
		ChannelID: "C999",
		Content:   "!say hi",
		Author:    gateway.User{ID: "U1", Username: "alice"},
	})

	calls := sender.snapshot()
	if len(calls) != 1 || calls[0].channel != "C999" || calls[0].texts[0] != "hi" {
		t.Errorf("unexpected sends: %+v", calls)
	}
}

// --- Interactions handler tests ---

func newInteractionHandler(t *testing.T, pub ed25519.PublicKey) (*InteractionHandler, *mockSender) {
	t.Helper()
	sender := &mockSender{}
	r := NewRouter(NewProcessor("!"), sender, nil)
	return NewInteractionHandler(r, pub, "!", nil), sender
}

func postInteraction(h *InteractionHandler, payload string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/bots/discord/interactions", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.HandleInteraction(w, req)
	return w
}

func TestInteractionPing(t *testing.T) {
	h, _ := newInteractionHandler(t, nil)
	w := postInteraction(h, `{"type":1}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["type"] != 1 {
		t.Errorf("expected pong, got %v", resp)
	}
}

func TestInteractionTestCommand(t *testing.T) {
	h, sender := newInteractionHandler(t, nil)
	payload := `{
		"type": 2,
		"id": "i1",
		"channel_id": "C456",
		"guild_id": "G1",
		"member": {"user": {"id": "U1", "username": "alice"}},
		"data": {"name": "test"}
	}`
	w := postInteraction(h, payload, nil)
	h.Wait()

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Type int `json:"type"`
		Data struct {
			Flags      int `json:"flags"`
			Components []struct {
				Type       int `json:"type"`
				Components []struct {
					Type    int    `json:"type"`
					Content string `json:"content"`
				} `json:"components"`
			} `json:"components"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Type != 4 {
		t.Errorf("expected callback type 4, got %d", resp.Type)
	}
	if resp.Data.Flags != discord.FlagIsComponentsV2 {
		t.Errorf("expected components v2 flag, got %d", resp.Data.Flags)
	}
	if len(resp.Data.Components) != 1 || resp.Data.Components[0].Type != discord.TypeContainer {
		t.Fatalf("expected one container, got %+v", resp.Data.Components)
	}
	if got := resp.Data.Components[0].Components[0].Content; got != DemoSingle {
		t.Errorf("inline reply: got %q", got)
	}

	// The multi-line container follows as a regular message.
	calls := sender.snapshot()
	if len(calls) != 1 || !calls[0].many || calls[0].channel != "C456" {
		t.Errorf("unexpected follow-up sends: %+v", calls)
	}
}

func TestInteractionSayOption(t *testing.T) {
	mock := &mockHandler{replies: []OutgoingMessage{{Texts: []string{"ok"}}}}
	h := NewInteractionHandler(NewRouter(mock, &mockSender{}, nil), nil, "!", nil)

	payload := `{
		"type": 2,
		"channel_id": "C1",
		"user": {"id": "U2", "username": "bob"},
		"data": {"name": "say", "options": [{"name": "text", "type": 3, "value": "hello there"}]}
	}`
	w := postInteraction(h, payload, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastMsg.Text != "!say hello there" {
		t.Errorf("expected prefix command text, got %q", mock.lastMsg.Text)
	}
	if mock.lastMsg.Platform != PlatformInteraction {
		t.Errorf("expected platform interaction, got %s", mock.lastMsg.Platform)
	}
	if mock.lastMsg.UserID != "U2" || mock.lastMsg.UserName != "bob" {
		t.Errorf("expected DM user fields, got %+v", mock.lastMsg)
	}
	if mock.lastMsg.Channel.ID() != "C1" {
		t.Errorf("expected channel C1, got %q", mock.lastMsg.Channel.ID())
	}
}

func TestInteractionNoReplies(t *testing.T) {
	h := NewInteractionHandler(NewRouter(&mockHandler{}, &mockSender{}, nil), nil, "!", nil)
	w := postInteraction(h, `{"type":2,"data":{"name":"x"}}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"flags":64`) {
		t.Errorf("expected ephemeral acknowledgement, got %s", w.Body.String())
	}
}

func TestInteractionHandlerError(t *testing.T) {
	h := NewInteractionHandler(NewRouter(&mockHandler{err: errors.New("boom")}, &mockSender{}, nil), nil, "!", nil)
	w := postInteraction(h, `{"type":2,"data":{"name":"x"}}`, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestInteractionInvalidJSON(t *testing.T) {
	h, _ := newInteractionHandler(t, nil)
	w := postInteraction(h, "{invalid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestInteractionUnsupportedType(t *testing.T) {
	h, _ := newInteractionHandler(t, nil)
	w := postInteraction(h, `{"type":3}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestInteractionSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := newInteractionHandler(t, pub)
	now := time.Unix(1_700_000_000, 0)
	h.now = func() time.Time { return now }

	body := `{"type":1}`
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := hex.EncodeToString(ed25519.Sign(priv, []byte(ts+body)))

	t.Run("valid", func(t *testing.T) {
		w := postInteraction(h, body, map[string]string{"X-Signature-Ed25519": sig, "X-Signature-Timestamp": ts})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("missing headers", func(t *testing.T) {
		w := postInteraction(h, body, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		w := postInteraction(h, `{"type":2}`, map[string]string{"X-Signature-Ed25519": sig, "X-Signature-Timestamp": ts})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("stale timestamp", func(t *testing.T) {
		old := strconv.FormatInt(now.Add(-10*time.Minute).Unix(), 10)
		oldSig := hex.EncodeToString(ed25519.Sign(priv, []byte(old+body)))
		w := postInteraction(h, body, map[string]string{"X-Signature-Ed25519": oldSig, "X-Signature-Timestamp": old})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestParsePublicKey(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)
	got, err := ParsePublicKey(hex.EncodeToString(pub))
	if err != nil || !got.Equal(pub) {
		t.Errorf("ParsePublicKey round trip failed: %v", err)
	}
	if k, err := ParsePublicKey(""); err != nil || k != nil {
		t.Errorf("empty key should disable verification, got %v %v", k, err)
	}
	if _, err := ParsePublicKey("abcd"); err == nil {
		t.Error("expected error for short key")
	}
}

func TestVerifyTimestamp(t *testing.T) {
	now := time.Unix(1000, 0)
	if !verifyTimestamp("1000", now) || !verifyTimestamp("1300", now) || !verifyTimestamp("700", now) {
		t.Error("timestamps within 5 minutes should pass")
	}
	if verifyTimestamp("1301", now) || verifyTimestamp("nope", now) {
		t.Error("out-of-window or malformed timestamps should fail")
	}
	for _, ts := range []string{"1000abc", " 1000", "1000.5", ""} {
		if verifyTimestamp(ts, now) {
			t.Errorf("timestamp %q should be rejected", ts)
		}
	}
}
