package queuesync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// ======================================================
// Websocket push channel
// ======================================================

const (
	dialTimeout = 10 * time.Second
	readWait    = 90 * time.Second
)

// WebsocketDialer subscribes to the server's event stream over a websocket.
type WebsocketDialer struct {
	// URL is the ws:// or wss:// subscribe endpoint.
	URL string
	// Token authenticates the subscription.
	Token string
}

func (d *WebsocketDialer) Dial(ctx context.Context) (PushChannel, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, fmt.Errorf("queuesync: bad websocket url: %w", err)
	}
	q := u.Query()
	q.Set("token", d.Token)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, &AuthError{Reason: resp.Status}
		}
		return nil, fmt.Errorf("queuesync: websocket dial: %w", err)
	}

	ch := &websocketChannel{conn: conn, events: make(chan Event, 32)}
	go ch.readLoop()
	return ch, nil
}

type websocketChannel struct {
	conn   *websocket.Conn
	events chan Event
}

func (c *websocketChannel) Events() <-chan Event { return c.events }

func (c *websocketChannel) Close() error {
	return c.conn.Close()
}

func (c *websocketChannel) readLoop() {
	defer close(c.events)
	defer c.conn.Close()

	c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPingHandler(func(appData string) error {
		c.conn.SetReadDeadline(time.Now().Add(readWait))
		return c.conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(readWait))

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			// Unknown frames are hints at worst; skip them.
			continue
		}
		c.events <- ev
	}
}

// ======================================================
// HTTP snapshot fetcher
// ======================================================

// HTTPFetcher pulls queue snapshots from the REST API.
type HTTPFetcher struct {
	// BaseURL is the API root, e.g. "https://ashram.example.com/api".
	BaseURL string
	Token   string
	Client  *http.Client
}

type snapshotResponse struct {
	Entries []Entry `json:"entries"`
	Stats   Stats   `json:"stats"`
}

func (f *HTTPFetcher) FetchQueue(ctx context.Context, key SnapshotKey) (*Snapshot, error) {
	u, err := url.Parse(f.BaseURL + "/queue")
	if err != nil {
		return nil, fmt.Errorf("queuesync: bad base url: %w", err)
	}
	if key.Filters != "" {
		u.RawQuery = key.Filters
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+f.Token)

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("queuesync: fetch queue: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return nil, &AuthError{Reason: resp.Status}
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("queuesync: fetch queue: unexpected status %s", resp.Status)
	}

	var body snapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("queuesync: decode snapshot: %w", err)
	}
	return &Snapshot{Entries: body.Entries, Stats: body.Stats}, nil
}
