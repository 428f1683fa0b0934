package bots

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/ziadkadry99/containerbot/internal/discord"
)

// Interaction and callback types from the Discord interactions API.
const (
	interactionPing               = 1
	interactionApplicationCommand = 2

	callbackPong                     = 1
	callbackChannelMessageWithSource = 4

	messageFlagEphemeral = 1 << 6
)

// InteractionHandler serves Discord's HTTP interactions endpoint. Slash
// commands are translated into prefix commands and routed like gateway
// messages.
type InteractionHandler struct {
	router    *Router
	publicKey ed25519.PublicKey
	prefix    string
	logger    *slog.Logger
	now       func() time.Time

	pending sync.WaitGroup
}

// NewInteractionHandler creates a handler. An empty publicKey disables
// signature verification, which is only useful for local testing.
func NewInteractionHandler(router *Router, publicKey ed25519.PublicKey, prefix string, logger *slog.Logger) *InteractionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InteractionHandler{
		router:    router,
		publicKey: publicKey,
		prefix:    prefix,
		logger:    logger,
		now:       time.Now,
	}
}

// ParsePublicKey decodes the hex public key shown in the developer portal.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key: want %d hex-encoded bytes", ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(key), nil
}

// HandleInteraction handles incoming interactions (HTTP POST).
func (h *InteractionHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(h.publicKey) > 0 && !h.verifySignature(r, body) {
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	if !gjson.ValidBytes(body) {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	in := gjson.ParseBytes(body)

	switch in.Get("type").Int() {
	case interactionPing:
		writeJSON(w, map[string]int{"type": callbackPong})

	case interactionApplicationCommand:
		msg := h.commandMessage(in)
		replies, err := h.router.Reply(r.Context(), msg)
		if err != nil {
			h.logger.Error("handling interaction", slog.String("trace_id", msg.TraceID), slog.String("error", err.Error()))
			http.Error(w, "processing error", http.StatusInternalServerError)
			return
		}
		if len(replies) == 0 {
			writeJSON(w, map[string]any{
				"type": callbackChannelMessageWithSource,
				"data": map[string]any{"content": "Nothing to send.", "flags": messageFlagEphemeral},
			})
			return
		}

		// Interactions get one inline response; anything after the first
		// reply goes out as regular channel messages.
		if rest := replies[1:]; len(rest) > 0 {
			h.pending.Add(1)
			go func() {
				defer h.pending.Done()
				ctx := context.WithoutCancel(r.Context())
				if _, err := h.router.Deliver(ctx, msg.TraceID, rest); err != nil {
					h.logger.Error("delivering follow-up replies", slog.String("trace_id", msg.TraceID), slog.String("error", err.Error()))
				}
			}()
		}

		writeJSON(w, map[string]any{
			"type": callbackChannelMessageWithSource,
			"data": replies[0].Document(),
		})

	default:
		http.Error(w, "unsupported interaction type", http.StatusBadRequest)
	}
}

// Wait blocks until follow-up deliveries started by HandleInteraction finish.
func (h *InteractionHandler) Wait() {
	h.pending.Wait()
}

// commandMessage converts a slash command into the equivalent prefix command.
func (h *InteractionHandler) commandMessage(in gjson.Result) IncomingMessage {
	user := in.Get("member.user")
	if !user.Exists() {
		user = in.Get("user")
	}

	text := h.prefix + in.Get("data.name").String()
	if opt := in.Get(`data.options.#(name=="text").value`); opt.Exists() {
		text += " " + opt.String()
	}

	return IncomingMessage{
		Platform:  PlatformInteraction,
		Channel:   discord.RawID(in.Get("channel_id").String()),
		GuildID:   in.Get("guild_id").String(),
		UserID:    user.Get("id").String(),
		UserName:  user.Get("username").String(),
		Text:      text,
		MessageID: in.Get("id").String(),
		TraceID:   uuid.NewString(),
	}
}

// verifySignature checks the Ed25519 signature Discord puts on every
// interaction request.
func (h *InteractionHandler) verifySignature(r *http.Request, body []byte) bool {
	timestamp := r.Header.Get("X-Signature-Timestamp")
	signature := r.Header.Get("X-Signature-Ed25519")
	if timestamp == "" || signature == "" {
		return false
	}
	if !verifyTimestamp(timestamp, h.now()) {
		return false
	}

	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(h.publicKey, append([]byte(timestamp), body...), sig)
}

// verifyTimestamp checks that the request timestamp is within 5 minutes.
func verifyTimestamp(timestamp string, now time.Time) bool {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	diff := now.Unix() - ts
	if diff < 0 {
		diff = -diff
	}
	return diff <= 300
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
	}
}
