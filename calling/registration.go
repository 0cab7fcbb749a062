/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package calling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/webexcommunity/calling-go-sdk/webexsdk"
)

// caller tags used to detect the failback context inside the attempt loop.
const (
	callerTriggerRegistration = "triggerRegistration"
	callerFailoverTimer       = "failoverTimer"
	callerFailback            = "executeFailback"
	callerFailback429Retry    = "failback429Retry"
	callerKeepalive           = "keepaliveTimer"
	callerRestoreDevice       = "restoreDevice"
	callerConnectionRestore   = "connectionRestoration"
	callerCallsCleared        = "callsCleared"
)

// Registration manages the device lifecycle against the Mobius server
// roster: initial registration, keepalive, failover to backups, failback
// to primary and restoration after connectivity loss.
//
// Every state transition runs inside one mutex held across the network
// calls it makes. Four timers (failover, failback, 429 retry, keepalive)
// can each schedule work; the mutex serializes their bodies so there is at
// most one in-flight transition.
type Registration struct {
	transport   *webexsdk.Client
	cfg         *Config
	logger      Logger
	metrics     MetricManager
	callManager *CallManager
	emit        func(event ClientEventKey, data interface{})

	mu              sync.Mutex
	status          RegistrationStatus
	deviceInfo      *MobiusDeviceInfo
	userID          string
	activeMobiusURL string
	primaryURIs     []string
	backupURIs      []string

	rehomingMin int
	rehomingMax int

	failback429Retries int
	registerRetry      bool
	reconnectPending   bool

	failoverTimer *time.Timer
	failbackTimer *time.Timer

	keepaliveStop chan struct{}
	keepaliveURL  string
}

// NewRegistration creates a registration manager. The emit callback
// receives the client lifecycle events.
func NewRegistration(transport *webexsdk.Client, cfg *Config, callManager *CallManager, metrics MetricManager, emit func(ClientEventKey, interface{})) *Registration {
	return &Registration{
		transport:   transport,
		cfg:         cfg,
		logger:      transport.GetLogger(),
		metrics:     metrics,
		callManager: callManager,
		emit:        emit,
		status:      RegistrationStatusDefault,
		rehomingMin: cfg.RehomingIntervalMin,
		rehomingMax: cfg.RehomingIntervalMax,
	}
}

// SetUserID records the subject used in device creation payloads.
func (r *Registration) SetUserID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userID = id
}

// SetMobiusServers installs the primary/backup roster from discovery.
func (r *Registration) SetMobiusServers(primary, backup []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.primaryURIs = primary
	r.backupURIs = backup
}

// Status returns the current registration status.
func (r *Registration) Status() RegistrationStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// IsRegistered reports whether the device is actively registered.
func (r *Registration) IsRegistered() bool {
	return r.Status() == RegistrationStatusActive
}

// DeviceInfo returns the last registration response, or nil.
func (r *Registration) DeviceInfo() *MobiusDeviceInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deviceInfo
}

// ActiveMobiusURL returns the URL of the server currently holding the
// registration, empty when unregistered since startup.
func (r *Registration) ActiveMobiusURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeMobiusURL
}

// IsReconnectPending reports whether a reconnect is deferred behind active
// calls.
func (r *Registration) IsReconnectPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reconnectPending
}

func (r *Registration) isRegisteredLocked() bool {
	return r.status == RegistrationStatusActive
}

func (r *Registration) setActiveMobiusURLLocked(url string) {
	r.logger.Printf("registration: active mobius url %s", url)
	r.activeMobiusURL = url
	deviceID := ""
	if r.deviceInfo != nil && r.deviceInfo.Device != nil {
		deviceID = r.deviceInfo.Device.DeviceID
	}
	r.callManager.UpdateActiveMobius(url, deviceID)
}

// TriggerRegistration starts the registration cycle with the primary
// roster, falling back to the failover timer on non-fatal exhaustion.
func (r *Registration) TriggerRegistration(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.primaryURIs) == 0 {
		return errors.New("no mobius servers to register with")
	}

	abort := r.attemptRegistrationWithServers(ctx, callerTriggerRegistration, r.primaryURIs)
	if !abort && !r.isRegisteredLocked() {
		r.startFailoverTimerLocked(1, 0)
	}
	if !r.isRegisteredLocked() && abort {
		return errors.New("registration aborted")
	}
	return nil
}

// Deregister tears down the registration. The delete request is best
// effort; local state is reset regardless.
func (r *Registration) Deregister(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearFailbackTimerLocked()
	r.clearFailoverTimerLocked()
	r.deregisterLocked(ctx)
	r.emit(ClientEventUnregistered, nil)
}

// deregisterLocked deletes the device and resets local state. It emits
// nothing: failback and restore cycles deregister as an intermediate step,
// and only callers that represent a genuinely lost registration signal
// UNREGISTERED.
func (r *Registration) deregisterLocked(ctx context.Context) {
	if r.deviceInfo != nil && r.deviceInfo.Device != nil && r.activeMobiusURL != "" {
		if err := r.deleteDevice(ctx, r.activeMobiusURL, r.deviceInfo.Device.DeviceID); err != nil {
			r.logger.Printf("registration: delete failed with mobius: %v", err)
		}
	}
	r.clearKeepaliveTimerLocked()
	r.status = RegistrationStatusDefault
}

// attemptRegistrationWithServers walks the server list in order until one
// accepts the device or a fatal error aborts the loop. Returns true when
// the cycle must not be retried. Callers hold r.mu.
func (r *Registration) attemptRegistrationWithServers(ctx context.Context, caller string, servers []string) bool {
	if r.isRegisteredLocked() {
		r.logger.Printf("registration: [%s] device already registered with %s", caller, r.activeMobiusURL)
		return false
	}

	for _, url := range servers {
		r.status = RegistrationStatusDefault
		r.emit(ClientEventConnecting, nil)
		r.logger.Printf("registration: [%s] mobius url to contact: %s", caller, url)

		info, err := r.createDevice(ctx, url)
		if err == nil {
			r.deviceInfo = info
			r.status = RegistrationStatusActive
			r.setActiveMobiusURLLocked(url)
			r.setRehomingBoundsLocked(info)
			r.metrics.SetDeviceInfo(info)
			r.metrics.SubmitRegistrationMetric(MetricRegistration, RegActionRegister, MetricTypeBehavioral, nil)
			r.emit(ClientEventRegistered, info)
			r.startKeepaliveTimerLocked(r.deviceURI(), r.keepaliveInterval(info))
			r.initiateFailbackLocked()
			return false
		}

		abort := r.handleRegistrationError(ctx, err, caller, RegActionRegister)
		if r.isRegisteredLocked() {
			// The restore flow re-registered inside the error handler.
			r.logger.Printf("registration: [%s] device restored, active mobius url %s", caller, r.activeMobiusURL)
			return false
		}
		if abort {
			r.status = RegistrationStatusDefault
			return true
		}
		if caller == callerFailback && webexsdk.StatusOf(err) == http.StatusTooManyRequests {
			// The failback request never reached primary; retry sooner than
			// the rehoming timer instead of escalating to full failover.
			r.scheduleFailback429RetryLocked()
			return true
		}
	}
	return false
}

// handleRegistrationError classifies a registration or keepalive failure.
// Fatal errors surface through the error event; everything else downgrades
// to an unregistered signal. Returns true when the retry loop must stop.
func (r *Registration) handleRegistrationError(ctx context.Context, err error, caller string, action RegAction) bool {
	submit := func(fatal bool) {
		r.metrics.SubmitRegistrationMetric(MetricRegistrationError, action, MetricTypeBehavioral, err)
		if fatal {
			r.emit(ClientEventError, err)
		} else {
			r.emit(ClientEventUnregistered, nil)
		}
	}

	var forbidden *webexsdk.ForbiddenError
	switch {
	case webexsdk.IsAuthError(err):
		r.logger.Printf("registration: [%s] authorization failed: %v", caller, err)
		submit(true)
		return true

	case errors.As(err, &forbidden):
		switch forbidden.ErrorCode {
		case webexsdk.ErrorCodeDeviceLimitExceeded:
			return r.restoreExistingDevice(ctx, forbidden, caller)
		case webexsdk.ErrorCodeDeviceCreationDisabled:
			r.logger.Printf("registration: [%s] device creation disabled: %v", caller, err)
			submit(true)
			return true
		case webexsdk.ErrorCodeDeviceCreationFailed:
			r.logger.Printf("registration: [%s] device creation failed, retrying: %v", caller, err)
			submit(false)
			return false
		default:
			r.logger.Printf("registration: [%s] forbidden: %v", caller, err)
			submit(false)
			return false
		}

	case webexsdk.IsNotFound(err):
		r.logger.Printf("registration: [%s] device not found: %v", caller, err)
		submit(true)
		return true

	case webexsdk.IsRateLimited(err):
		r.logger.Printf("registration: [%s] rate limited: %v", caller, err)
		submit(false)
		return false

	case webexsdk.IsServerError(err):
		r.logger.Printf("registration: [%s] server error, retrying: %v", caller, err)
		submit(false)
		return false

	default:
		r.logger.Printf("registration: [%s] unclassified error: %v", caller, err)
		submit(false)
		return false
	}
}

// restoreExistingDevice handles a device-limit 403 by adopting the first
// existing device the server reported, deleting it, and re-registering
// against the host that owned it.
func (r *Registration) restoreExistingDevice(ctx context.Context, forbidden *webexsdk.ForbiddenError, caller string) bool {
	if r.registerRetry {
		r.emit(ClientEventUnregistered, nil)
		return false
	}
	if len(forbidden.Devices) == 0 {
		r.emit(ClientEventUnregistered, nil)
		return false
	}

	r.logger.Printf("registration: [%s] restoration in progress", caller)
	existing := forbidden.Devices[0]
	r.deviceInfo = &MobiusDeviceInfo{
		UserID: r.userID,
		Device: &DeviceType{
			DeviceID: existing.DeviceID,
			URI:      existing.URI,
			Status:   existing.Status,
		},
		KeepaliveInterval:   int(DefaultKeepaliveInterval / time.Second),
		RehomingIntervalMin: DefaultRehomingIntervalMin,
		RehomingIntervalMax: DefaultRehomingIntervalMax,
	}
	host := strings.TrimSuffix(existing.URI, fmt.Sprintf("devices/%s", existing.DeviceID))
	r.setActiveMobiusURLLocked(host)
	r.status = RegistrationStatusActive

	r.registerRetry = true
	r.deregisterLocked(ctx)
	abort := r.restorePreviousRegistrationLocked(ctx, callerRestoreDevice)
	r.registerRetry = false

	if r.isRegisteredLocked() {
		r.logger.Printf("registration: [%s] restored successfully", caller)
	}
	return abort
}

// restorePreviousRegistrationLocked retries against the URL the device was
// last registered to.
func (r *Registration) restorePreviousRegistrationLocked(ctx context.Context, caller string) bool {
	if r.activeMobiusURL == "" {
		return false
	}
	return r.attemptRegistrationWithServers(ctx, caller, []string{r.activeMobiusURL})
}

// restartRegistrationLocked cancels failback and starts a fresh cycle with
// the primary roster.
func (r *Registration) restartRegistrationLocked(ctx context.Context, caller string) {
	r.clearFailbackTimerLocked()
	r.failback429Retries = 0
	abort := r.attemptRegistrationWithServers(ctx, caller, r.primaryURIs)
	if !abort && !r.isRegisteredLocked() {
		r.startFailoverTimerLocked(1, 0)
	}
}

// ---- Failover ----

func (r *Registration) clearFailoverTimerLocked() {
	if r.failoverTimer != nil {
		r.failoverTimer.Stop()
		r.failoverTimer = nil
	}
}

// startFailoverTimerLocked schedules the next primary retry. Once the time
// spent retrying would cross the backup switch threshold the chain moves
// to the backup servers, with one extra scheduled backup retry before
// giving up.
func (r *Registration) startFailoverTimerLocked(attempt int, elapsed time.Duration) {
	interval := failoverInterval(r.cfg, attempt)
	threshold := r.cfg.backupSwitchThreshold()
	if elapsed+interval > threshold {
		interval -= elapsed + interval - threshold
	}

	if interval > r.cfg.BaseRegistrationRetry {
		scheduled := time.Now()
		r.failoverTimer = time.AfterFunc(interval, func() {
			ctx := context.Background()
			r.mu.Lock()
			defer r.mu.Unlock()
			abort := r.attemptRegistrationWithServers(ctx, callerFailoverTimer, r.primaryURIs)
			if !abort && !r.isRegisteredLocked() {
				r.startFailoverTimerLocked(attempt+1, elapsed+time.Since(scheduled))
			}
		})
		r.logger.Printf("registration: scheduled retry with primary in %v, attempt %d", interval, attempt)
		return
	}

	if len(r.backupURIs) > 0 {
		r.logger.Printf("registration: failing over to backup servers")
		ctx := context.Background()
		abort := r.attemptRegistrationWithServers(ctx, callerFailoverTimer, r.backupURIs)
		if abort || r.isRegisteredLocked() {
			return
		}
		retry := failoverInterval(r.cfg, 1)
		r.failoverTimer = time.AfterFunc(retry, func() {
			ctx := context.Background()
			r.mu.Lock()
			defer r.mu.Unlock()
			abort := r.attemptRegistrationWithServers(ctx, callerFailoverTimer, r.backupURIs)
			if !abort && !r.isRegisteredLocked() {
				r.emitFinalFailureLocked()
			}
		})
		r.logger.Printf("registration: scheduled retry with backup servers in %v", retry)
		return
	}

	r.emitFinalFailureLocked()
}

func (r *Registration) emitFinalFailureLocked() {
	err := errors.New("registration failed: all mobius servers exhausted")
	r.logger.Printf("registration: %v", err)
	r.emit(ClientEventError, err)
}

// ---- Failback ----

func (r *Registration) clearFailbackTimerLocked() {
	if r.failbackTimer != nil {
		r.failbackTimer.Stop()
		r.failbackTimer = nil
	}
}

// isFailbackRequiredLocked reports whether the device is registered with a
// server outside the primary roster.
func (r *Registration) isFailbackRequiredLocked() bool {
	if !r.isRegisteredLocked() {
		return false
	}
	for _, uri := range r.primaryURIs {
		if uri == r.activeMobiusURL {
			return false
		}
	}
	return true
}

// initiateFailbackLocked arms the failback timer when active on a backup,
// and disarms it otherwise.
func (r *Registration) initiateFailbackLocked() {
	if !r.isFailbackRequiredLocked() {
		r.failback429Retries = 0
		r.clearFailbackTimerLocked()
		return
	}
	if r.failbackTimer != nil {
		return
	}
	r.failback429Retries = 0
	interval := failbackInterval(r.cfg, r.rehomingMin, r.rehomingMax)
	r.startFailbackTimerLocked(interval)
}

func (r *Registration) startFailbackTimerLocked(interval time.Duration) {
	r.failbackTimer = time.AfterFunc(interval, r.executeFailback)
	r.logger.Printf("registration: failback scheduled after %v", interval)
}

// executeFailback tries to move the registration back to a primary server.
// Active calls defer the attempt to the next cycle.
func (r *Registration) executeFailback() {
	ctx := context.Background()
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isFailbackRequiredLocked() {
		return
	}
	if r.callManager.CallCount() > 0 {
		r.logger.Printf("registration: active calls present, deferring failback to next cycle")
		r.failbackTimer = nil
		r.initiateFailbackLocked()
		return
	}

	r.logger.Printf("registration: attempting failback to primary")
	r.deregisterLocked(ctx)
	abort := r.attemptRegistrationWithServers(ctx, callerFailback, r.primaryURIs)
	if abort || r.isRegisteredLocked() {
		return
	}

	// Primary refused; go back to the server that held the registration.
	abort = r.restorePreviousRegistrationLocked(ctx, callerFailback)
	if abort {
		r.clearFailbackTimerLocked()
		return
	}
	if !r.isRegisteredLocked() {
		r.restartRegistrationLocked(ctx, callerFailback)
	} else {
		r.failbackTimer = nil
		r.initiateFailbackLocked()
	}
}

// scheduleFailback429RetryLocked reschedules a failback that was rate
// limited before it reached primary, bounded to a handful of attempts.
func (r *Registration) scheduleFailback429RetryLocked() {
	if r.failback429Retries >= Failback429MaxRetries {
		return
	}
	r.clearFailbackTimerLocked()
	r.failback429Retries++
	r.logger.Printf("registration: received 429 while rehoming, retry count %d", r.failback429Retries)

	interval := failoverInterval(r.cfg, r.failback429Retries)
	r.startFailbackTimerLocked(interval)

	ctx := context.Background()
	abort := r.restorePreviousRegistrationLocked(ctx, callerFailback429Retry)
	if !abort && !r.isRegisteredLocked() {
		r.restartRegistrationLocked(ctx, callerFailback429Retry)
	}
}

// setRehomingBoundsLocked honors server-provided failback bounds, but only
// from primary responses so a backup server cannot change the failback
// cadence.
func (r *Registration) setRehomingBoundsLocked(info *MobiusDeviceInfo) {
	onPrimary := false
	for _, uri := range r.primaryURIs {
		if uri == r.activeMobiusURL {
			onPrimary = true
			break
		}
	}
	if !onPrimary {
		return
	}
	if info.RehomingIntervalMin > 0 {
		r.rehomingMin = info.RehomingIntervalMin
	} else {
		r.rehomingMin = r.cfg.RehomingIntervalMin
	}
	if info.RehomingIntervalMax > 0 {
		r.rehomingMax = info.RehomingIntervalMax
	} else {
		r.rehomingMax = r.cfg.RehomingIntervalMax
	}
}

// ---- Keepalive ----

func (r *Registration) keepaliveInterval(info *MobiusDeviceInfo) time.Duration {
	if r.cfg.KeepaliveInterval > 0 {
		return r.cfg.KeepaliveInterval
	}
	if info != nil && info.KeepaliveInterval > 0 {
		return time.Duration(info.KeepaliveInterval) * time.Second
	}
	return DefaultKeepaliveInterval
}

func (r *Registration) deviceURI() string {
	if r.deviceInfo != nil && r.deviceInfo.Device != nil {
		return r.deviceInfo.Device.URI
	}
	return ""
}

func (r *Registration) clearKeepaliveTimerLocked() {
	if r.keepaliveStop != nil {
		close(r.keepaliveStop)
		r.keepaliveStop = nil
	}
}

// startKeepaliveTimerLocked runs the periodic keepalive for the device URI
// it was armed with. A registration that has since moved to another URL
// invalidates the loop on its next tick.
func (r *Registration) startKeepaliveTimerLocked(url string, interval time.Duration) {
	r.clearKeepaliveTimerLocked()
	stop := make(chan struct{})
	r.keepaliveStop = stop
	r.keepaliveURL = url
	limit := r.cfg.keepaliveFailureLimit()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		failures := 0

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}

			ctx := context.Background()
			r.mu.Lock()
			if !r.isRegisteredLocked() || r.keepaliveURL != url {
				r.mu.Unlock()
				return
			}

			err := r.postKeepalive(ctx, url)
			if err == nil {
				if failures > 0 {
					r.emit(ClientEventReconnected, nil)
				}
				failures = 0
				r.mu.Unlock()
				continue
			}

			failures++
			r.logger.Printf("registration: keepalive missed %d times: %v", failures, err)
			r.metrics.SubmitRegistrationMetric(MetricRegistrationError, RegActionKeepalive, MetricTypeBehavioral, err)

			abort := r.isFatalKeepaliveError(err)
			if abort || failures >= limit {
				r.status = RegistrationStatusDefault
				r.clearFailbackTimerLocked()
				if r.keepaliveStop == stop {
					// Stop without closing our own channel twice.
					r.keepaliveStop = nil
				}
				r.emit(ClientEventUnregistered, nil)
				if abort {
					r.emit(ClientEventError, err)
				} else {
					r.reconnectOnFailureLocked(ctx, callerKeepalive)
				}
				r.mu.Unlock()
				return
			}

			r.emit(ClientEventReconnecting, nil)
			r.mu.Unlock()
		}
	}()
}

// isFatalKeepaliveError mirrors the registration classifier without the
// restore flow: only authorization, device-not-found and the fatal 403
// sub-code end keepalive retries early.
func (r *Registration) isFatalKeepaliveError(err error) bool {
	var forbidden *webexsdk.ForbiddenError
	if errors.As(err, &forbidden) {
		return forbidden.ErrorCode == webexsdk.ErrorCodeDeviceCreationDisabled
	}
	return webexsdk.IsAuthError(err) || webexsdk.IsNotFound(err)
}

// ---- Connectivity restoration ----

// HandleConnectionRestoration re-registers after the event channel comes
// back up. Restoration prefers the previously active URL, even a backup
// one, because a failback timer may already be driving it home.
func (r *Registration) HandleConnectionRestoration(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Printf("registration: connection is up again, re-registering if needed")
	r.clearKeepaliveTimerLocked()
	if r.isRegisteredLocked() {
		r.deregisterLocked(ctx)
	}

	// An empty active URL means initial registration never finished; the
	// failover timer owns that case.
	if r.activeMobiusURL == "" {
		return
	}
	abort := r.restorePreviousRegistrationLocked(ctx, callerConnectionRestore)
	if !abort && !r.isRegisteredLocked() {
		r.restartRegistrationLocked(ctx, callerConnectionRestore)
	}
}

// ReconnectOnFailure re-registers after a lost registration, deferring
// while calls are active. The calls-cleared handler invokes it again once
// the table empties.
func (r *Registration) ReconnectOnFailure(ctx context.Context, caller string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconnectOnFailureLocked(ctx, caller)
}

func (r *Registration) reconnectOnFailureLocked(ctx context.Context, caller string) {
	r.reconnectPending = false
	if r.isRegisteredLocked() {
		return
	}
	if r.callManager.CallCount() > 0 {
		r.reconnectPending = true
		r.logger.Printf("registration: active calls present, deferred reconnect till call cleanup")
		return
	}
	abort := r.restorePreviousRegistrationLocked(ctx, caller)
	if !abort && !r.isRegisteredLocked() {
		r.restartRegistrationLocked(ctx, caller)
	}
}

// HandleConnectionLoss tears the registration down when the event channel
// drops, without issuing network calls against a dead link.
func (r *Registration) HandleConnectionLoss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isRegisteredLocked() {
		return
	}
	r.logger.Printf("registration: event channel lost, tearing down keepalive")
	r.clearKeepaliveTimerLocked()
	r.clearFailbackTimerLocked()
	r.status = RegistrationStatusDefault
	r.emit(ClientEventUnregistered, nil)
}

// ---- Mobius device requests ----

type createDeviceBody struct {
	UserID          string      `json:"userId"`
	ClientDeviceURI string      `json:"clientDeviceUri"`
	ServiceData     ServiceData `json:"serviceData"`
}

func (r *Registration) createDevice(ctx context.Context, url string) (*MobiusDeviceInfo, error) {
	body := createDeviceBody{
		UserID:          r.userID,
		ClientDeviceURI: r.cfg.ClientDeviceURI,
		ServiceData:     r.cfg.ServiceData,
	}
	resp, err := r.transport.RequestURLOnce(ctx, http.MethodPost, fmt.Sprintf("%sdevice", url), body)
	if err != nil {
		return nil, err
	}
	var info MobiusDeviceInfo
	if err := webexsdk.ParseResponse(resp, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *Registration) deleteDevice(ctx context.Context, url, deviceID string) error {
	resp, err := r.transport.RequestURLOnce(ctx, http.MethodDelete, fmt.Sprintf("%sdevices/%s", url, deviceID), nil)
	if err != nil {
		return err
	}
	return webexsdk.ParseResponse(resp, nil)
}

func (r *Registration) postKeepalive(ctx context.Context, deviceURI string) error {
	resp, err := r.transport.RequestURLOnce(ctx, http.MethodPost, fmt.Sprintf("%s/status", strings.TrimSuffix(deviceURI, "/")), nil)
	if err != nil {
		return err
	}
	return webexsdk.ParseResponse(resp, nil)
}
