/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

// Package device registers this client with the Webex device management
// (WDM) service. The registration yields the websocket URL the mercury
// event channel connects to and the device URL Mobius expects as the
// client device identity.
package device

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/webexcommunity/calling-go-sdk/webexsdk"
)

// Config holds the configuration for the Device plugin.
type Config struct {
	// ServiceURL is the WDM base URL.
	ServiceURL string

	// DeviceType, Name, Model and SystemName describe this client in the
	// registration payload.
	DeviceType string
	Name       string
	Model      string
	SystemName string
}

// DefaultConfig returns the default configuration for the Device plugin.
func DefaultConfig() *Config {
	return &Config{
		ServiceURL: "https://wdm-a.wbx2.com/wdm/api/v1",
		DeviceType: "WEB",
		Name:       "calling-go-sdk",
		Model:      "Calling Go SDK",
		SystemName: "calling-go-sdk",
	}
}

// Info is the WDM view of a registered device.
type Info struct {
	URL          string `json:"url"`
	WebSocketURL string `json:"webSocketUrl"`
	UserID       string `json:"userId,omitempty"`
	DeviceType   string `json:"deviceType,omitempty"`
}

type registrationBody struct {
	DeviceType     string `json:"deviceType"`
	Name           string `json:"name"`
	Model          string `json:"model"`
	LocalizedModel string `json:"localizedModel"`
	SystemName     string `json:"systemName"`
	SystemVersion  string `json:"systemVersion"`
}

// Client is the Device API client.
type Client struct {
	webexClient *webexsdk.Client
	config      *Config

	mu   sync.Mutex
	info *Info
}

// New creates a new Device plugin.
func New(webexClient *webexsdk.Client, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{
		webexClient: webexClient,
		config:      config,
	}
}

// Register creates the WDM device. Registering an already registered
// client is a no-op.
func (c *Client) Register(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info != nil {
		return nil
	}

	body := registrationBody{
		DeviceType:     c.config.DeviceType,
		Name:           c.config.Name,
		Model:          c.config.Model,
		LocalizedModel: c.config.Model,
		SystemName:     c.config.SystemName,
		SystemVersion:  "1.0.0",
	}
	resp, err := c.webexClient.RequestURLOnce(ctx, http.MethodPost, fmt.Sprintf("%s/devices", c.config.ServiceURL), body)
	if err != nil {
		return fmt.Errorf("device registration failed: %w", err)
	}
	var info Info
	if err := webexsdk.ParseResponse(resp, &info); err != nil {
		return fmt.Errorf("device registration failed: %w", err)
	}

	c.info = &info
	return nil
}

// Unregister deletes the WDM device.
func (c *Client) Unregister(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info == nil || c.info.URL == "" {
		return nil
	}

	resp, err := c.webexClient.RequestURLOnce(ctx, http.MethodDelete, c.info.URL, nil)
	if err != nil {
		return err
	}
	if err := webexsdk.ParseResponse(resp, nil); err != nil {
		return err
	}

	c.info = nil
	return nil
}

// IsRegistered reports whether a WDM device exists for this client.
func (c *Client) IsRegistered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info != nil
}

// Info returns a copy of the registered device, or nil.
func (c *Client) Info() *Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info == nil {
		return nil
	}
	info := *c.info
	return &info
}

// WebSocketURL returns the mercury websocket URL, registering the device
// first when needed.
func (c *Client) WebSocketURL(ctx context.Context) (string, error) {
	if err := c.Register(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info.WebSocketURL, nil
}

// DeviceURL returns the WDM device URL, registering the device first when
// needed.
func (c *Client) DeviceURL(ctx context.Context) (string, error) {
	if err := c.Register(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info.URL, nil
}
