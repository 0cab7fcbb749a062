/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package webex

import (
	"context"
	"fmt"
	"sync"

	"github.com/webexcommunity/calling-go-sdk/calling"
	"github.com/webexcommunity/calling-go-sdk/device"
	"github.com/webexcommunity/calling-go-sdk/mercury"
	"github.com/webexcommunity/calling-go-sdk/people"
	"github.com/webexcommunity/calling-go-sdk/webexsdk"
)

// WebexClient is the top-level client for the Webex API
type WebexClient struct {
	// Core client for the Webex API
	core *webexsdk.Client

	// Plugins
	peopleClient  *people.Client
	callingClient *calling.Client

	// Internal plugins
	mercuryClient *mercury.Client
	deviceClient  *device.Client

	// Mutex for thread-safe lazy initialization of plugin clients
	mu sync.Mutex
}

// NewClient creates a new Webex client with the given access token and optional configuration
func NewClient(accessToken string, config *webexsdk.Config) (*WebexClient, error) {
	core, err := webexsdk.NewClient(accessToken, config)
	if err != nil {
		return nil, err
	}

	client := &WebexClient{
		core: core,
	}

	return client, nil
}

// People returns the People plugin
func (c *WebexClient) People() *people.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.peopleClient == nil {
		c.peopleClient = people.New(c.core, nil)
	}
	return c.peopleClient
}

// Calling returns a fully-wired Calling client for Mobius registration
// and call control.
//
// This is a convenience method that abstracts away the manual setup of
// Device registration, Mercury WebSocket wiring, and directory-backed
// caller-ID resolution. The client is lazily initialized on first call
// and cached for subsequent calls; later calls ignore the cfg argument.
//
// Simple usage:
//
//	callingClient, err := client.Calling(nil)
//	callingClient.Register(ctx)
//	callingClient.On("incoming_call", handler)
//	defer callingClient.Deregister(ctx)
//
// For advanced control over Device or Mercury configuration, use the
// lower-level APIs directly (device.New, mercury.New, calling.NewClient).
func (c *WebexClient) Calling(cfg *calling.Config) (*calling.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.callingClient != nil {
		return c.callingClient, nil
	}

	if cfg == nil {
		cfg = calling.DefaultConfig()
	}

	// Register a WDM device when the caller did not bring its own device
	// identity or event channel.
	if cfg.ClientDeviceURI == "" || cfg.MercuryWebSocketURL == "" {
		deviceClient := c.deviceLocked()
		ctx := context.Background()
		if err := deviceClient.Register(ctx); err != nil {
			return nil, fmt.Errorf("device registration failed: %w", err)
		}
		info := deviceClient.Info()
		if cfg.ClientDeviceURI == "" {
			cfg.ClientDeviceURI = info.URL
		}
		if cfg.MercuryWebSocketURL == "" {
			cfg.MercuryWebSocketURL = info.WebSocketURL
		}
	}

	var peopleClient *people.Client
	if c.peopleClient != nil {
		peopleClient = c.peopleClient
	} else {
		peopleClient = people.New(c.core, nil)
		c.peopleClient = peopleClient
	}

	callingClient, err := calling.NewClient(c.core, cfg,
		calling.WithCallerIDResolver(people.NewResolver(peopleClient)))
	if err != nil {
		return nil, err
	}

	c.callingClient = callingClient
	return c.callingClient, nil
}

// Internal returns a struct containing internal plugins
func (c *WebexClient) Internal() *InternalPlugins {
	return &InternalPlugins{
		Mercury: c.Mercury(),
		Device:  c.Device(),
	}
}

// Mercury returns the Mercury plugin (internal)
func (c *WebexClient) Mercury() *mercury.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mercuryClient == nil {
		c.mercuryClient = mercury.New(c.core, nil)
	}
	return c.mercuryClient
}

// Device returns the Device plugin (internal)
func (c *WebexClient) Device() *device.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceLocked()
}

func (c *WebexClient) deviceLocked() *device.Client {
	if c.deviceClient == nil {
		c.deviceClient = device.New(c.core, nil)
	}
	return c.deviceClient
}

// InternalPlugins holds internal plugins that aren't part of the public API
type InternalPlugins struct {
	Mercury *mercury.Client
	Device  *device.Client
}

// Core returns the core Webex client
func (c *WebexClient) Core() *webexsdk.Client {
	return c.core
}
