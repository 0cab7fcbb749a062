/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package mercury

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/webexcommunity/calling-go-sdk/webexsdk"
)

// Config holds the configuration for the Mercury client
type Config struct {
	ForceCloseDelay             time.Duration // Delay after which to force close a websocket connection if no close event is received
	PingInterval                time.Duration // Interval between ping messages
	PongTimeout                 time.Duration // Timeout for receiving a pong response
	BackoffTimeMax              time.Duration // Maximum time between connection attempts
	BackoffTimeReset            time.Duration // Initial time before the first retry
	MaxRetries                  int           // Number of times to retry before giving up
	InitialConnectionMaxRetries int           // Number of times to retry before giving up on the initial connection
	AuthTimeout                 time.Duration // Timeout for the authorization handshake
}

// DefaultConfig returns the default configuration for the Mercury client
func DefaultConfig() *Config {
	return &Config{
		ForceCloseDelay:             10 * time.Second,
		PingInterval:                30 * time.Second,
		PongTimeout:                 10 * time.Second,
		BackoffTimeMax:              32 * time.Second,
		BackoffTimeReset:            1 * time.Second,
		MaxRetries:                  3,
		InitialConnectionMaxRetries: 5,
		AuthTimeout:                 30 * time.Second,
	}
}

// EventHandler is a function that handles a websocket event
type EventHandler func(event *Event)

// Event is a Mercury websocket event envelope. Data is kept raw so the
// consumer owns decoding of the domain payload.
type Event struct {
	ID             string          `json:"id,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	Timestamp      int64           `json:"timestamp,omitempty"`
	TrackingID     string          `json:"trackingId,omitempty"`
	SequenceNumber int64           `json:"sequenceNumber,omitempty"`

	// EventType is extracted from data.eventType during processing.
	EventType string `json:"-"`

	// Raw is the full websocket message as received.
	Raw []byte `json:"-"`
}

// Client is the Mercury websocket client. It delivers backend-pushed event
// envelopes to handlers registered by event type, keeps the connection alive
// with ping/pong, and reconnects with exponential backoff.
type Client struct {
	webexClient    *webexsdk.Client
	config         *Config
	conn           *websocket.Conn
	connected      bool
	connecting     bool
	hasConnected   bool
	mu             sync.Mutex
	eventHandlers  map[string][]EventHandler
	closeCh        chan struct{}
	done           chan struct{}
	retryCount     int
	currentBackoff time.Duration
	webSocketURL   string
}

// New creates a new Mercury client
func New(webexClient *webexsdk.Client, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	return &Client{
		webexClient:    webexClient,
		config:         config,
		eventHandlers:  make(map[string][]EventHandler),
		closeCh:        make(chan struct{}),
		done:           make(chan struct{}),
		currentBackoff: config.BackoffTimeReset,
	}
}

// SetWebSocketURL sets the websocket URL used for Connect and reconnects.
func (c *Client) SetWebSocketURL(url string) {
	c.mu.Lock()
	c.webSocketURL = url
	c.mu.Unlock()
}

// Connect establishes a websocket connection to the Mercury service
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}

	if c.connecting {
		c.mu.Unlock()
		return fmt.Errorf("connection attempt already in progress")
	}

	c.connecting = true
	wsURL := c.webSocketURL
	c.mu.Unlock()

	if wsURL == "" {
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
		return fmt.Errorf("no websocket URL configured")
	}

	return c.connectWithBackoff(wsURL)
}

// Disconnect closes the websocket connection
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if !c.connected && !c.connecting {
		c.mu.Unlock()
		return nil
	}

	// Signal all goroutines to stop
	close(c.closeCh)

	// Create new channels for future connections
	c.closeCh = make(chan struct{})
	c.done = make(chan struct{})

	conn := c.conn
	c.conn = nil
	c.connected = false
	c.connecting = false
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Disconnected by client"))
		_ = conn.Close()
	}

	return nil
}

// On registers an event handler for a specific event type. Handlers may be
// registered for an exact type ("mobius.call"), a prefix ("mobius"), or the
// "*" wildcard.
func (c *Client) On(eventType string, handler EventHandler) {
	if handler == nil {
		return
	}

	c.mu.Lock()
	handlers, ok := c.eventHandlers[eventType]
	if !ok {
		handlers = []EventHandler{}
	}
	c.eventHandlers[eventType] = append(handlers, handler)
	c.mu.Unlock()
}

// Off removes an event handler for a specific event type
func (c *Client) Off(eventType string, handler EventHandler) {
	if handler == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	handlers, ok := c.eventHandlers[eventType]
	if !ok {
		return
	}

	// Find the handler by comparing function pointers
	handlerPtr := fmt.Sprintf("%p", handler)
	for i, h := range handlers {
		if fmt.Sprintf("%p", h) == handlerPtr {
			c.eventHandlers[eventType] = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}

	if len(c.eventHandlers[eventType]) == 0 {
		delete(c.eventHandlers, eventType)
	}
}

// ClearHandlers removes all handlers registered for the given event type.
func (c *Client) ClearHandlers(eventType string) {
	c.mu.Lock()
	delete(c.eventHandlers, eventType)
	c.mu.Unlock()
}

// IsConnected returns whether the client is connected to the Mercury service
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// EventHandlers returns a copy of the event handlers map (for testing)
func (c *Client) EventHandlers() map[string][]EventHandler {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string][]EventHandler, len(c.eventHandlers))
	for k, v := range c.eventHandlers {
		handlers := make([]EventHandler, len(v))
		copy(handlers, v)
		result[k] = handlers
	}

	return result
}

// connectWithBackoff attempts to connect to the Mercury service with exponential backoff
func (c *Client) connectWithBackoff(wsURL string) error {
	c.retryCount = 0
	c.currentBackoff = c.config.BackoffTimeReset

	maxRetries := c.config.MaxRetries
	if !c.hasConnected {
		maxRetries = c.config.InitialConnectionMaxRetries
	}

	var err error
	for c.retryCount <= maxRetries {
		err = c.attemptConnection(wsURL)
		if err == nil {
			return nil
		}

		c.retryCount++
		if c.retryCount > maxRetries {
			break
		}

		select {
		case <-time.After(c.currentBackoff):
			// Double the backoff time, up to max
			c.currentBackoff *= 2
			if c.currentBackoff > c.config.BackoffTimeMax {
				c.currentBackoff = c.config.BackoffTimeMax
			}
		case <-c.closeCh:
			return nil // Stopped by user
		}
	}

	c.mu.Lock()
	c.connecting = false
	c.mu.Unlock()
	return fmt.Errorf("failed to connect after %d attempts: %v", c.retryCount, err)
}

// attemptConnection makes a single connection attempt to the Mercury service
func (c *Client) attemptConnection(wsURL string) error {
	token := c.webexClient.GetAccessToken()
	parsedURL, err := c.prepareWebSocketURL(wsURL)
	if err != nil {
		return err
	}

	conn, err := c.dialWebSocket(parsedURL.String(), token)
	if err != nil {
		return err
	}

	conn.SetPongHandler(func(data string) error {
		return c.handlePong(data)
	})

	if err = c.authenticateConnection(conn, token); err != nil {
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.connecting = false
	c.hasConnected = true
	c.mu.Unlock()

	go c.startPingPong()
	go c.listen()

	return nil
}

// prepareWebSocketURL adds necessary query parameters to the WebSocket URL
func (c *Client) prepareWebSocketURL(wsURL string) (*url.URL, error) {
	parsedURL, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid WebSocket URL: %v", err)
	}

	query := parsedURL.Query()
	query.Set("outboundWireFormat", "text")
	query.Set("bufferStates", "true")
	query.Set("aliasHttpStatus", "true")
	query.Set("clientTimestamp", fmt.Sprintf("%d", time.Now().UnixMilli()))
	parsedURL.RawQuery = query.Encode()

	return parsedURL, nil
}

// dialWebSocket establishes a WebSocket connection with proper headers
func (c *Client) dialWebSocket(url string, token string) (*websocket.Conn, error) {
	headers := make(map[string][]string)
	headers["Authorization"] = []string{"Bearer " + token}
	headers["TrackingID"] = []string{c.webexClient.TrackingID()}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	if httpClient := c.webexClient.GetHTTPClient(); httpClient != nil && httpClient.Transport != nil {
		if transport, ok := httpClient.Transport.(*http.Transport); ok {
			dialer.NetDialContext = transport.DialContext
		}
	}

	conn, _, err := dialer.Dial(url, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to WebSocket: %v", err)
	}

	return conn, nil
}

// authenticateConnection sends authentication messages and waits for confirmation
func (c *Client) authenticateConnection(conn *websocket.Conn, token string) error {
	authMsg := map[string]interface{}{
		"id":   fmt.Sprintf("%d", time.Now().UnixMilli()),
		"type": "authorization",
		"data": map[string]interface{}{
			"token": token,
		},
		"trackingId": c.webexClient.TrackingID(),
	}

	authMsgJSON, err := json.Marshal(authMsg)
	if err != nil {
		return fmt.Errorf("failed to marshal auth message: %v", err)
	}

	if err = conn.WriteMessage(websocket.TextMessage, authMsgJSON); err != nil {
		return fmt.Errorf("failed to send auth message: %v", err)
	}

	// Wait for buffer state message to confirm authorization
	authChan := make(chan error, 1)
	go c.waitForAuthConfirmation(conn, authChan)

	authTimeout := c.config.AuthTimeout
	if authTimeout == 0 {
		authTimeout = 30 * time.Second
	}

	select {
	case err := <-authChan:
		return err
	case <-time.After(authTimeout):
		return fmt.Errorf("authorization timed out after %v", authTimeout)
	}
}

// waitForAuthConfirmation waits for authorization confirmation messages
func (c *Client) waitForAuthConfirmation(conn *websocket.Conn, authChan chan<- error) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			authChan <- fmt.Errorf("error reading auth response: %v", err)
			return
		}

		var event map[string]interface{}
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}

		data, ok := event["data"].(map[string]interface{})
		if ok {
			eventType, ok := data["eventType"].(string)
			if ok && (eventType == "mercury.buffer_state" || eventType == "mercury.registration_status") {
				_ = c.sendInitialPing(conn)
				authChan <- nil
				return
			}
		}

		if eventType, ok := event["type"].(string); ok && eventType == "error" {
			authChan <- fmt.Errorf("authorization failed: %v", event)
			return
		}
	}
}

// sendInitialPing sends the first ping after successful authentication
func (c *Client) sendInitialPing(conn *websocket.Conn) error {
	pingMsg := map[string]interface{}{
		"id":   fmt.Sprintf("%d", time.Now().UnixMilli()),
		"type": "ping",
	}
	pingJSON, err := json.Marshal(pingMsg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, pingJSON)
}

// listen reads messages from the websocket
func (c *Client) listen() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.done)
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			c.handleConnectionError(err)
			return
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}
		event.Raw = message

		c.processEvent(&event)
	}
}

// handleConnectionError logs the connection error and triggers reconnection if needed
func (c *Client) handleConnectionError(err error) {
	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.mu.Unlock()

	if wasConnected {
		select {
		case <-c.closeCh:
			// Client was deliberately disconnected, don't reconnect
		default:
			c.webexClient.GetLogger().Printf("mercury: connection error: %v, reconnecting", err)
			go c.reconnect()
		}
	}
}

// processEvent extracts the event type and dispatches to handlers.
func (c *Client) processEvent(event *Event) {
	if len(event.Data) > 0 {
		var payload struct {
			EventType string `json:"eventType"`
		}
		if err := json.Unmarshal(event.Data, &payload); err == nil {
			event.EventType = payload.EventType
		}
	}

	// Skip internal events
	if event.EventType == "mercury.buffer_state" || event.EventType == "mercury.registration_status" {
		return
	}

	c.dispatchEvent(event)
}

// dispatchEvent dispatches an event to handlers registered for the exact
// event type, its dotted prefix, and the "*" wildcard.
func (c *Client) dispatchEvent(event *Event) {
	c.mu.Lock()
	handlers, hasHandlers := c.eventHandlers[event.EventType]

	var prefixHandlers []EventHandler
	var hasPrefixHandlers bool
	if i := strings.Index(event.EventType, "."); i > 0 {
		prefixHandlers, hasPrefixHandlers = c.eventHandlers[event.EventType[:i]]
	}

	wildcardHandlers, hasWildcardHandlers := c.eventHandlers["*"]
	c.mu.Unlock()

	if hasHandlers {
		for _, handler := range handlers {
			go handler(event)
		}
	}

	if hasPrefixHandlers {
		for _, handler := range prefixHandlers {
			go handler(event)
		}
	}

	if hasWildcardHandlers {
		for _, handler := range wildcardHandlers {
			go handler(event)
		}
	}
}

// startPingPong begins the ping/pong cycle to keep the connection alive
func (c *Client) startPingPong() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.ping(); err != nil {
				c.reconnect()
				return
			}
		case <-c.closeCh:
			return
		case <-c.done:
			return
		}
	}
}

// ping sends a ping message
func (c *Client) ping() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("websocket connection is nil")
	}

	pingData := fmt.Sprintf("%d", time.Now().UnixMilli())

	// Set a deadline for the pong
	if err := conn.SetReadDeadline(time.Now().Add(c.config.PongTimeout)); err != nil {
		return err
	}

	return conn.WriteMessage(websocket.PingMessage, []byte(pingData))
}

// handlePong handles a pong response
func (c *Client) handlePong(_ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	// Reset the read deadline
	return c.conn.SetReadDeadline(time.Time{})
}

// reconnect attempts to reconnect to the Mercury service
func (c *Client) reconnect() {
	c.mu.Lock()
	if !c.connected || c.connecting {
		c.mu.Unlock()
		return
	}

	c.connected = false
	c.connecting = true
	conn := c.conn
	wsURL := c.webSocketURL
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	go func() {
		if wsURL == "" {
			c.mu.Lock()
			c.connecting = false
			c.mu.Unlock()
			return
		}

		_ = c.connectWithBackoff(wsURL)
	}()
}
