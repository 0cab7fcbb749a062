/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package calling

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/webexcommunity/calling-go-sdk/mercury"
	"github.com/webexcommunity/calling-go-sdk/webexsdk"
)

// ClientOption customizes client construction.
type ClientOption func(*Client)

// WithMetricManager replaces the default logging metric manager.
func WithMetricManager(m MetricManager) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithCallerIDResolver attaches a directory resolver for remote-party
// lookups.
func WithCallerIDResolver(r CallerIDResolver) ClientOption {
	return func(c *Client) { c.resolver = r }
}

// Client is the calling client facade: registration lifecycle, call
// creation and the Mobius event channel, behind one event surface.
type Client struct {
	*EventEmitter

	cfg       *Config
	transport *webexsdk.Client
	logger    Logger
	metrics   MetricManager
	resolver  CallerIDResolver

	mercury      *mercury.Client
	callManager  *CallManager
	registration *Registration

	mu         sync.Mutex
	mobiusHost string
	flapStop   chan struct{}
}

// NewClient builds a calling client on top of an authenticated transport.
// ServiceData validation is the only synchronous failure; everything else
// surfaces through events or the Register call.
func NewClient(transport *webexsdk.Client, cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.ServiceData.Indicator == "" {
		cfg.ServiceData.Indicator = ServiceIndicatorCalling
	}
	if err := validateServiceData(cfg.ServiceData); err != nil {
		return nil, err
	}

	// Mobius expects these on every request from this client.
	if transport.Config.DefaultHeaders == nil {
		transport.Config.DefaultHeaders = make(map[string]string)
	}
	transport.Config.DefaultHeaders["spark-user-agent"] = "webex-calling/beta"
	if cfg.ClientDeviceURI != "" {
		transport.Config.DefaultHeaders["cisco-device-url"] = cfg.ClientDeviceURI
	}

	c := &Client{
		EventEmitter: NewEventEmitter(),
		cfg:          cfg,
		transport:    transport,
		logger:       transport.GetLogger(),
		mobiusHost:   cfg.DefaultMobiusURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = newLogMetricManager(c.logger, cfg.ServiceData.Indicator)
	}

	c.callManager = NewCallManager(transport, c.metrics, c.resolver)
	c.registration = NewRegistration(transport, cfg, c.callManager, c.metrics, func(event ClientEventKey, data interface{}) {
		c.Emit(string(event), data)
	})

	if info, err := webexsdk.ParseToken(transport.GetAccessToken()); err == nil && !info.Opaque {
		c.registration.SetUserID(info.Subject)
	}

	c.mercury = mercury.New(transport, mercury.DefaultConfig())
	if cfg.MercuryWebSocketURL != "" {
		c.mercury.SetWebSocketURL(cfg.MercuryWebSocketURL)
	}
	c.wireEventChannel()
	c.callManager.OnIncomingCall(func(call *Call) {
		c.Emit(string(ClientEventIncomingCall), call)
	})
	c.callManager.OnAllCallsCleared(c.handleAllCallsCleared)

	return c, nil
}

// wireEventChannel subscribes the call manager to every mobius.* event.
func (c *Client) wireEventChannel() {
	c.mercury.On("mobius", func(event *mercury.Event) {
		c.callManager.HandleEvent(context.Background(), event.Raw)
	})
}

func (c *Client) handleAllCallsCleared() {
	c.Emit(string(ClientEventAllCallsCleared), nil)
	if c.registration.IsReconnectPending() {
		c.registration.ReconnectOnFailure(context.Background(), callerCallsCleared)
	}
}

// Registration exposes the registration manager.
func (c *Client) Registration() *Registration {
	return c.registration
}

// CallManager exposes the call manager.
func (c *Client) CallManager() *CallManager {
	return c.callManager
}

// Register runs discovery, connects the event channel and registers the
// device, then starts network-flap detection.
func (c *Client) Register(ctx context.Context) error {
	if err := c.discoverMobiusServers(ctx); err != nil {
		return err
	}

	if c.cfg.MercuryWebSocketURL != "" {
		if err := c.mercury.Connect(); err != nil {
			return fmt.Errorf("event channel connection failed: %w", err)
		}
	}

	if err := c.registration.TriggerRegistration(ctx); err != nil {
		return err
	}

	c.startNetworkFlapDetection()
	return nil
}

// Deregister tears down the registration and stops background detection.
// The event channel stays connected for other consumers of the transport.
func (c *Client) Deregister(ctx context.Context) {
	c.stopNetworkFlapDetection()
	c.registration.Deregister(ctx)
}

// MakeCall creates an outbound call record. Dialing happens when the
// caller invokes Dial with the local SDP offer.
func (c *Client) MakeCall(destination CallDetails) (*Call, error) {
	if !c.registration.IsRegistered() {
		return nil, fmt.Errorf("cannot make call: device not registered")
	}
	if destination.Address == "" {
		return nil, fmt.Errorf("cannot make call: empty destination")
	}
	if destination.Type == "" {
		destination.Type = CallTypeTEL
	}
	return c.callManager.CreateCall(CallDirectionOutbound, destination), nil
}

// GetCall returns the call with the given correlation ID, or nil.
func (c *Client) GetCall(correlationID string) *Call {
	return c.callManager.GetCall(correlationID)
}

// GetActiveCalls snapshots all current calls.
func (c *Client) GetActiveCalls() []*Call {
	return c.callManager.GetActiveCalls()
}

// GetConnectedCall returns the first call in established state, or nil.
func (c *Client) GetConnectedCall() *Call {
	for _, call := range c.callManager.GetActiveCalls() {
		if call.IsConnected() {
			return call
		}
	}
	return nil
}

// ---- Mobius discovery ----

type ipInfo struct {
	IPv4 string `json:"ipv4"`
}

// discoverMobiusServers resolves the client region and fetches the
// primary/backup roster. Any failure falls back to the default URL so
// registration can still proceed.
func (c *Client) discoverMobiusServers(ctx context.Context) error {
	region := c.cfg.DiscoveryRegion
	country := c.cfg.DiscoveryCountry

	if region == "" || country == "" {
		info, err := c.getClientRegionInfo(ctx)
		if err != nil {
			c.logger.Printf("client: region discovery failed, using default mobius url: %v", err)
			c.useDefaultRoster()
			return nil
		}
		region = info.ClientRegion
		country = info.CountryCode
	}

	if region == "" || country == "" {
		c.useDefaultRoster()
		return nil
	}

	url := fmt.Sprintf("%s?regionCode=%s&countryCode=%s", c.cfg.DiscoveryURL, region, country)
	resp, err := c.transport.RequestURLOnce(ctx, http.MethodGet, url, nil)
	if err == nil {
		var servers MobiusServers
		if perr := webexsdk.ParseResponse(resp, &servers); perr == nil {
			uris := filterMobiusURIs(servers, c.cfg.DefaultMobiusURL)
			c.registration.SetMobiusServers(uris.Primary, uris.Backup)
			c.logger.Printf("client: mobius servers, primary %v backup %v", uris.Primary, uris.Backup)
			return nil
		}
		err = fmt.Errorf("undecodable discovery response")
	}

	c.metrics.SubmitRegistrationMetric(MetricRegistrationError, RegActionRegister, MetricTypeBehavioral, err)
	c.logger.Printf("client: mobius discovery failed, using default url: %v", err)
	c.useDefaultRoster()
	return nil
}

func (c *Client) useDefaultRoster() {
	uris := filterMobiusURIs(MobiusServers{}, c.cfg.DefaultMobiusURL)
	c.registration.SetMobiusServers(uris.Primary, uris.Backup)
}

func (c *Client) getClientRegionInfo(ctx context.Context) (*RegionInfo, error) {
	resp, err := c.transport.RequestURLOnce(ctx, http.MethodGet, fmt.Sprintf("%smyip", c.cfg.DiscoveryURL), nil)
	if err != nil {
		return nil, err
	}
	var ip ipInfo
	if err := webexsdk.ParseResponse(resp, &ip); err != nil {
		return nil, err
	}

	resp, err = c.transport.RequestURLOnce(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.cfg.RegionDiscoveryURL, ip.IPv4), nil)
	if err != nil {
		return nil, err
	}
	var region RegionInfo
	if err := webexsdk.ParseResponse(resp, &region); err != nil {
		return nil, err
	}
	return &region, nil
}

// ---- Network flap detection ----

// startNetworkFlapDetection polls the event channel connectivity. A drop
// tears down keepalive; restoration re-registers, preferring the
// previously active URL.
func (c *Client) startNetworkFlapDetection() {
	if c.cfg.MercuryWebSocketURL == "" {
		return
	}

	c.mu.Lock()
	if c.flapStop != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.flapStop = stop
	c.mu.Unlock()

	interval := c.cfg.NetworkFlapInterval
	if interval <= 0 {
		interval = DefaultNetworkFlapInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		waiting := false

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}

			connected := c.mercury.IsConnected()
			if !connected && !waiting && c.callManager.CallCount() == 0 {
				c.logger.Printf("client: network has flapped, waiting for event channel to come back up")
				c.registration.HandleConnectionLoss()
				waiting = true
				continue
			}
			if connected && waiting {
				c.registration.HandleConnectionRestoration(context.Background())
				waiting = false
			}
		}
	}()
}

func (c *Client) stopNetworkFlapDetection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flapStop != nil {
		close(c.flapStop)
		c.flapStop = nil
	}
}
