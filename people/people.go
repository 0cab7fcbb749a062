/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

// Package people is a directory client for the Webex people API. The
// calling client uses it to resolve remote-party identity from the
// external IDs carried in call signaling headers.
package people

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/webexcommunity/calling-go-sdk/calling"
	"github.com/webexcommunity/calling-go-sdk/webexsdk"
)

// Person represents a Webex person.
type Person struct {
	ID          string    `json:"id"`
	Emails      []string  `json:"emails"`
	DisplayName string    `json:"displayName"`
	NickName    string    `json:"nickName,omitempty"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	OrgID       string    `json:"orgId,omitempty"`
	Created     time.Time `json:"created,omitempty"`
	Status      string    `json:"status,omitempty"`
	Type        string    `json:"type,omitempty"`
}

// ListOptions contains the options for listing people.
type ListOptions struct {
	Email       string
	DisplayName string
	IDs         []string
	Max         int
}

// Config holds the configuration for the People plugin.
type Config struct {
	// ShowAllTypes asks the API to include non-person records such as
	// room devices and integrations.
	ShowAllTypes bool
}

// DefaultConfig returns the default configuration for the People plugin.
func DefaultConfig() *Config {
	return &Config{}
}

// Client is the People API client.
type Client struct {
	webexClient *webexsdk.Client
	config      *Config
}

// New creates a new People plugin.
func New(webexClient *webexsdk.Client, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{
		webexClient: webexClient,
		config:      config,
	}
}

// Get returns the person with the given ID.
func (c *Client) Get(ctx context.Context, personID string) (*Person, error) {
	if personID == "" {
		return nil, fmt.Errorf("person ID cannot be empty")
	}

	params := url.Values{}
	if c.config.ShowAllTypes {
		params.Set("showAllTypes", "true")
	}
	resp, err := c.webexClient.RequestWithContext(ctx, http.MethodGet, fmt.Sprintf("people/%s", personID), params, nil)
	if err != nil {
		return nil, err
	}

	var person Person
	if err := webexsdk.ParseResponse(resp, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// GetMe returns the authenticated user.
func (c *Client) GetMe(ctx context.Context) (*Person, error) {
	return c.Get(ctx, "me")
}

// List returns people matching the given options. At least one of Email,
// DisplayName or IDs must be set.
func (c *Client) List(ctx context.Context, options *ListOptions) ([]Person, error) {
	if options == nil || (options.Email == "" && options.DisplayName == "" && len(options.IDs) == 0) {
		return nil, fmt.Errorf("list requires an email, display name or IDs filter")
	}

	params := url.Values{}
	if options.Email != "" {
		params.Set("email", options.Email)
	}
	if options.DisplayName != "" {
		params.Set("displayName", options.DisplayName)
	}
	if len(options.IDs) > 0 {
		params.Set("id", strings.Join(options.IDs, ","))
	}
	if options.Max > 0 {
		params.Set("max", strconv.Itoa(options.Max))
	}
	if c.config.ShowAllTypes {
		params.Set("showAllTypes", "true")
	}

	resp, err := c.webexClient.RequestWithContext(ctx, http.MethodGet, "people", params, nil)
	if err != nil {
		return nil, err
	}

	var page struct {
		Items []Person `json:"items"`
	}
	if err := webexsdk.ParseResponse(resp, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Resolver resolves remote-party external IDs against the people
// directory. It satisfies the calling client's caller-ID resolver
// contract.
type Resolver struct {
	client *Client
}

// NewResolver creates a Resolver backed by the given People client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// ResolveByExternalID looks up the person behind a carrier external ID.
// The ID arrives as a bare UUID and is widened to a Hydra people ID
// before the directory lookup.
func (r *Resolver) ResolveByExternalID(ctx context.Context, externalID string) (calling.DisplayInformation, error) {
	person, err := r.client.Get(ctx, InferPersonIDFromUUID(externalID))
	if err != nil {
		return calling.DisplayInformation{}, err
	}
	return calling.DisplayInformation{
		Name:      person.DisplayName,
		ID:        person.ID,
		AvatarSrc: person.Avatar,
	}, nil
}
