/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package calling

import (
	"context"
	"regexp"
	"strings"
	"sync"
)

// DisplayInformation is the resolved remote-party identity for a call.
type DisplayInformation struct {
	Name      string `json:"name,omitempty"`
	Number    string `json:"num,omitempty"`
	ID        string `json:"id,omitempty"`
	AvatarSrc string `json:"avatarSrc,omitempty"`
}

// CallerIDResolver looks up directory details for a remote party by the
// external ID found in carrier headers. The directory service is an
// external collaborator.
type CallerIDResolver interface {
	ResolveByExternalID(ctx context.Context, externalID string) (DisplayInformation, error)
}

var validPhonePattern = regexp.MustCompile(`[\d\s()*#+.-]+`)

// parseSipURI extracts a display name and number from a SIP header value
// such as `"John O'Connor" <sip:1234567890@example.com>`. Either field may
// come back empty.
func parseSipURI(value string) DisplayInformation {
	var result DisplayInformation

	name := strings.ReplaceAll(strings.SplitN(value, "<", 2)[0], `"`, "")
	result.Name = strings.TrimSpace(name)

	addr := strings.ReplaceAll(strings.SplitN(value, "@", 2)[0], `"`, "")
	num := addr[strings.Index(addr, ":")+1:]
	if m := validPhonePattern.FindString(num); m != "" && len(m) == len(num) {
		result.Number = num
	}
	return result
}

// parseRemotePartyExternalID pulls the externalId token from an
// x-broadworks-remote-party-info header. The external ID is the last
// semicolon-separated token when present.
func parseRemotePartyExternalID(value string) string {
	tokens := strings.Split(value, ";")
	last := tokens[len(tokens)-1]
	if !strings.Contains(last, "externalId") {
		return ""
	}
	parts := strings.SplitN(last, "=", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.Trim(parts[1], `"`)
}

// callerID accumulates remote-party identity for one call. Header parsing
// gives an immediate answer; directory resolution refines it in the
// background, with directory results taking precedence. A mid-call
// callInfo update can re-enter fetchCallerDetails while a resolution
// goroutine is still in flight, so info is guarded by mu.
type callerID struct {
	resolver CallerIDResolver
	logger   Logger
	emit     func(DisplayInformation)

	mu   sync.Mutex
	info DisplayInformation
}

func newCallerID(resolver CallerIDResolver, logger Logger, emit func(DisplayInformation)) *callerID {
	return &callerID{resolver: resolver, logger: logger, emit: emit}
}

// fetchCallerDetails parses the caller-ID headers and emits whatever can be
// determined synchronously. When a broadworks external ID is present and a
// resolver is configured, a background lookup refines the result and emits
// again on change.
func (c *callerID) fetchCallerDetails(ctx context.Context, headers CallerIDInfo) DisplayInformation {
	var info DisplayInformation

	if headers.PAssertedIdentity != "" {
		parsed := parseSipURI(headers.PAssertedIdentity)
		info.Name = parsed.Name
		info.Number = parsed.Number
	}

	// The From header only fills fields p-asserted-identity left empty.
	if headers.From != "" {
		parsed := parseSipURI(headers.From)
		if info.Name == "" {
			info.Name = parsed.Name
		}
		if info.Number == "" {
			info.Number = parsed.Number
		}
	}

	c.mu.Lock()
	c.info = info
	c.mu.Unlock()

	if info.Name != "" || info.Number != "" {
		c.emit(info)
	}

	if headers.XBroadworksRemotePartyInfo != "" {
		externalID := parseRemotePartyExternalID(headers.XBroadworksRemotePartyInfo)
		if externalID == "" {
			c.logger.Printf("callerid: externalId not found in remote party info")
		} else if c.resolver != nil {
			go c.resolveCallerID(ctx, externalID)
		}
	}

	return info
}

// resolveCallerID merges directory results over the header-derived fields
// and emits only when something actually changed.
func (c *callerID) resolveCallerID(ctx context.Context, externalID string) {
	resolved, err := c.resolver.ResolveByExternalID(ctx, externalID)
	if err != nil {
		c.logger.Printf("callerid: resolution failed for externalId %s: %v", externalID, err)
		return
	}

	c.mu.Lock()
	changed := false
	if resolved.Name != "" && resolved.Name != c.info.Name {
		c.info.Name = resolved.Name
		changed = true
	}
	if resolved.Number != "" && resolved.Number != c.info.Number {
		c.info.Number = resolved.Number
		changed = true
	}
	if resolved.AvatarSrc != c.info.AvatarSrc {
		c.info.AvatarSrc = resolved.AvatarSrc
		changed = true
	}
	if resolved.ID != c.info.ID {
		c.info.ID = resolved.ID
		changed = true
	}
	info := c.info
	c.mu.Unlock()

	if changed {
		c.emit(info)
	}
}
