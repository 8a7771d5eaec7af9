// ABOUTME: Realtime change feed over the Supabase websocket endpoint.
// ABOUTME: Joins phoenix channels for the loads and fields tables.
package supastore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harperreed/haul/internal/models"
	"github.com/harperreed/haul/internal/remote"
)

const (
	loadsTopic      = "realtime:public:loads"
	fieldsTopic     = "realtime:public:fields"
	heartbeatPeriod = 30 * time.Second
	writeWait       = 10 * time.Second
)

// phxMessage is the phoenix-channel frame the realtime service speaks.
type phxMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

// changePayload is the postgres_changes payload of INSERT/DELETE events.
type changePayload struct {
	Record    json.RawMessage `json:"record"`
	OldRecord json.RawMessage `json:"old_record"`
}

// Subscribe opens the realtime websocket and joins the loads and fields
// channels. Load changes are emitted incrementally; any fields change
// collapses into EventFieldsChanged, prompting a full re-list.
func (c *Client) Subscribe(ctx context.Context) (<-chan remote.Event, func(), error) {
	wsURL, err := c.websocketURL()
	if err != nil {
		return nil, nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dial realtime: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan remote.Event, 16)

	ref := 0
	join := func(topic string) error {
		ref++
		msg := phxMessage{Topic: topic, Event: "phx_join", Payload: json.RawMessage(`{}`), Ref: strconv.Itoa(ref)}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}
	if err := join(loadsTopic); err != nil {
		cancel()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("join %s: %w", loadsTopic, err)
	}
	if err := join(fieldsTopic); err != nil {
		cancel()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("join %s: %w", fieldsTopic, err)
	}

	// Heartbeat keeps the phoenix connection alive.
	go func() {
		ticker := time.NewTicker(heartbeatPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ref++
				msg := phxMessage{Topic: "phoenix", Event: "heartbeat", Payload: json.RawMessage(`{}`), Ref: strconv.Itoa(ref)}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}
	}()

	// Read pump: decode frames into events until the connection drops or
	// the subscriber cancels.
	go func() {
		defer close(ch)
		defer func() { _ = conn.Close() }()

		for {
			var msg phxMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			ev, ok := decodeEvent(&msg)
			if !ok {
				continue
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	unsubscribe := func() {
		cancel()
		_ = conn.Close()
	}
	return ch, unsubscribe, nil
}

// decodeEvent maps a phoenix frame onto a store event. Replies, heartbeats,
// and frames for other topics are dropped.
func decodeEvent(msg *phxMessage) (remote.Event, bool) {
	switch msg.Topic {
	case fieldsTopic:
		switch msg.Event {
		case "INSERT", "UPDATE", "DELETE":
			return remote.Event{Type: remote.EventFieldsChanged}, true
		}
		return remote.Event{}, false

	case loadsTopic:
		var payload changePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return remote.Event{}, false
		}
		switch msg.Event {
		case "INSERT":
			var l models.Load
			if err := json.Unmarshal(payload.Record, &l); err != nil {
				return remote.Event{}, false
			}
			if err := l.Validate(); err != nil {
				return remote.Event{}, false
			}
			return remote.Event{Type: remote.EventLoadInserted, Load: &l}, true
		case "DELETE":
			var old struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(payload.OldRecord, &old); err != nil || old.ID == "" {
				return remote.Event{}, false
			}
			return remote.Event{Type: remote.EventLoadDeleted, LoadID: old.ID}, true
		}
	}
	return remote.Event{}, false
}

// websocketURL derives the realtime endpoint from the project URL.
func (c *Client) websocketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/realtime/v1/websocket"
	q := u.Query()
	q.Set("apikey", c.apiKey)
	q.Set("vsn", "1.0.0")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
