/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package calling

import "time"

// ---- Enums / Constants ----

// ServiceIndicator selects the calling backend variant a device registers for
type ServiceIndicator string

const (
	ServiceIndicatorCalling       ServiceIndicator = "calling"
	ServiceIndicatorContactCenter ServiceIndicator = "contactcenter"
)

// CallDirection indicates whether a call is inbound or outbound
type CallDirection string

const (
	CallDirectionInbound  CallDirection = "inbound"
	CallDirectionOutbound CallDirection = "outbound"
)

// CallType indicates the type of call address
type CallType string

const (
	CallTypeURI CallType = "uri"
	CallTypeTEL CallType = "tel"
)

// DisconnectCode represents the reason code for a call disconnect
type DisconnectCode int

const (
	DisconnectCodeNormal          DisconnectCode = 0
	DisconnectCodeBusy            DisconnectCode = 115
	DisconnectCodeMediaInactivity DisconnectCode = 131
)

// DisconnectReason contains the code and cause for a call disconnect
type DisconnectReason struct {
	Code  DisconnectCode `json:"code"`
	Cause string         `json:"cause"`
}

// Registration protocol defaults. Every value is overridable through Config
// so tests can run the timers at millisecond scale.
const (
	// DefaultBaseRegistrationRetry is the base component of the failover
	// backoff interval.
	DefaultBaseRegistrationRetry = 30 * time.Second

	// DefaultRegistrationMFactor is the exponent base of the failover backoff.
	DefaultRegistrationMFactor = 2

	// DefaultBackupSwitchThreshold caps a single failover wait and, once
	// reached, moves the attempt chain to the backup servers.
	DefaultBackupSwitchThreshold = 120 * time.Second

	// DefaultBackupSwitchThresholdCC is the shorter threshold used for
	// contact-center devices.
	DefaultBackupSwitchThresholdCC = 30 * time.Second

	// DefaultKeepaliveInterval is used when Mobius does not return one.
	DefaultKeepaliveInterval = 30 * time.Second

	// DefaultRehomingIntervalMin and Max bound the failback wait, in minutes.
	DefaultRehomingIntervalMin = 60
	DefaultRehomingIntervalMax = 120

	// Failback429MaxRetries bounds the rescheduling of a failback attempt
	// that keeps hitting 429 on the primary.
	Failback429MaxRetries = 5

	// KeepaliveFailureLimit is the number of consecutive keepalive failures
	// tolerated before the registration resets. Contact-center devices use
	// the tighter limit.
	KeepaliveFailureLimit   = 5
	KeepaliveFailureLimitCC = 4

	// DefaultNetworkFlapInterval is how often the mercury connection state
	// is polled for network-flap detection.
	DefaultNetworkFlapInterval = 8 * time.Second
)

// RegistrationStatus represents the registration state of a device
type RegistrationStatus string

const (
	// RegistrationStatusDefault is the resting state: not registered, or
	// torn down after keepalive failure or deregistration.
	RegistrationStatusDefault RegistrationStatus = "DEFAULT"
	// RegistrationStatusActive means a device is registered with a Mobius
	// server and keepalive is running.
	RegistrationStatusActive RegistrationStatus = "ACTIVE"
)

// ---- Service Data ----

// ServiceData selects the backend variant and an optional service domain.
// It is validated at client construction and sent verbatim in the device
// creation payload.
type ServiceData struct {
	Indicator ServiceIndicator `json:"indicator"`
	Domain    string           `json:"domain,omitempty"`
}

// ---- Discovery Types ----

// RegionInfo is the response from the region discovery endpoint.
type RegionInfo struct {
	AttachedDataCenter string `json:"attachedDc"`
	CountryCode        string `json:"countryCode"`
	ClientAddress      string `json:"clientAddress"`
	ClientRegion       string `json:"clientRegion"`
}

// MobiusServerURIs is one cluster's entry in the discovery response.
type MobiusServerURIs struct {
	Region string   `json:"region"`
	URIs   []string `json:"uris"`
}

// MobiusServers is the primary/backup roster returned by Mobius discovery.
type MobiusServers struct {
	Primary MobiusServerURIs `json:"primary"`
	Backup  MobiusServerURIs `json:"backup"`
}

// ---- Config ----

// Config holds configuration for the Calling client. Zero-valued timer
// fields fall back to the protocol defaults.
type Config struct {
	// ServiceData selects the backend variant. Indicator defaults to
	// ServiceIndicatorCalling when empty.
	ServiceData ServiceData

	// DiscoveryURL overrides the default Mobius discovery endpoint.
	DiscoveryURL string

	// RegionDiscoveryURL is the IP-to-region lookup endpoint.
	RegionDiscoveryURL string

	// DiscoveryRegion and DiscoveryCountry skip region discovery when both
	// are set.
	DiscoveryRegion  string
	DiscoveryCountry string

	// DefaultMobiusURL is injected into the primary roster when discovery
	// returns nothing usable.
	DefaultMobiusURL string

	// ClientDeviceURI is the Webex device URL for this client, sent as the
	// cisco-device-url header and in the device creation payload.
	ClientDeviceURI string

	// MercuryWebSocketURL is the websocket URL for the event channel.
	MercuryWebSocketURL string

	// RequestTimeout overrides the default HTTP request timeout.
	RequestTimeout time.Duration

	// BaseRegistrationRetry is the base component of the failover backoff.
	BaseRegistrationRetry time.Duration

	// RegistrationMFactor is the exponent base of the failover backoff.
	RegistrationMFactor int

	// BackupSwitchThreshold caps the failover wait before switching to the
	// backup servers. The contact-center variant is chosen automatically
	// unless this is set explicitly.
	BackupSwitchThreshold time.Duration

	// JitterMin and JitterMax bound the random jitter added to each
	// failover wait.
	JitterMin time.Duration
	JitterMax time.Duration

	// KeepaliveInterval overrides the interval returned by Mobius.
	KeepaliveInterval time.Duration

	// RehomingIntervalMin and Max bound the failback wait, in minutes.
	// Zero means the protocol defaults, subject to server override.
	RehomingIntervalMin int
	RehomingIntervalMax int

	// FailbackUnit scales the rehoming interval. Defaults to time.Minute;
	// tests set it to milliseconds.
	FailbackUnit time.Duration

	// BackoffUnit scales the exponential component of the failover backoff.
	// Defaults to time.Second; tests set it to milliseconds.
	BackoffUnit time.Duration

	// Failback429RetryInterval is the wait before retrying a failback that
	// hit 429 on the primary.
	Failback429RetryInterval time.Duration

	// NetworkFlapInterval is the mercury connectivity polling period.
	NetworkFlapInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ServiceData:              ServiceData{Indicator: ServiceIndicatorCalling},
		DiscoveryURL:             "https://mobius.webex.com/api/v1/calling/web/",
		RegionDiscoveryURL:       "https://ds.ciscospark.com/v1/region",
		DefaultMobiusURL:         "https://mobius.webex.com/api/v1",
		RequestTimeout:           30 * time.Second,
		BaseRegistrationRetry:    DefaultBaseRegistrationRetry,
		RegistrationMFactor:      DefaultRegistrationMFactor,
		JitterMin:                1 * time.Second,
		JitterMax:                3 * time.Second,
		KeepaliveInterval:        0, // Mobius decides
		RehomingIntervalMin:      DefaultRehomingIntervalMin,
		RehomingIntervalMax:      DefaultRehomingIntervalMax,
		FailbackUnit:             time.Minute,
		BackoffUnit:              time.Second,
		Failback429RetryInterval: 30 * time.Second,
		NetworkFlapInterval:      DefaultNetworkFlapInterval,
	}
}

// backupSwitchThreshold resolves the configured or indicator-specific
// threshold for moving to the backup servers.
func (c *Config) backupSwitchThreshold() time.Duration {
	if c.BackupSwitchThreshold > 0 {
		return c.BackupSwitchThreshold
	}
	if c.ServiceData.Indicator == ServiceIndicatorContactCenter {
		return DefaultBackupSwitchThresholdCC
	}
	return DefaultBackupSwitchThreshold
}

// keepaliveFailureLimit resolves the indicator-specific tolerance for
// consecutive keepalive failures.
func (c *Config) keepaliveFailureLimit() int {
	if c.ServiceData.Indicator == ServiceIndicatorContactCenter {
		return KeepaliveFailureLimitCC
	}
	return KeepaliveFailureLimit
}
