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
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/sdp/v3"

	"github.com/webexcommunity/calling-go-sdk/webexsdk"
)

// Mobius signaling states sent in call PATCH requests.
const (
	mobiusCallStateProceeding = "sig_proceeding"
	mobiusCallStateProgress   = "sig_progress"
	mobiusCallStateAlerting   = "sig_alerting"
	mobiusCallStateConnected  = "sig_connected"
)

// CallDetails identifies a call destination.
type CallDetails struct {
	Type    CallType `json:"type"`
	Address string   `json:"address"`
}

// MediaSession is the media engine side of a call. The engine owns SDP
// generation and DTMF insertion; the call object only moves ROAP envelopes
// between the engine and Mobius.
type MediaSession interface {
	// OnRoapMessage delivers an inbound ROAP message to the engine.
	OnRoapMessage(msg RoapMessage)
	// InsertDTMF plays a DTMF digit on the active media stream.
	InsertDTMF(digit string) error
}

// Call is a single two-party call leg. Signaling state lives in two
// machines, one for call control and one for media negotiation, and all
// Mobius requests are addressed against the currently active server.
type Call struct {
	*EventEmitter

	transport *webexsdk.Client
	logger    Logger
	metrics   MetricManager

	mu                        sync.Mutex
	mobiusURL                 string
	deviceID                  string
	callID                    string
	correlationID             string
	direction                 CallDirection
	destination               CallDetails
	seq                       int
	held                      bool
	broadworksCorrelationInfo string
	disconnectReason          DisconnectReason

	callMachine *stateMachine
	roapMachine *stateMachine

	callerInfo *callerID
	media      MediaSession

	// deleteCb removes this call from the manager table. Wired once at
	// creation and fired exactly once, on S_CALL_CLEARED.
	deleteCb func(c *Call)
	// callIDCb lets the manager index a late-assigned callId.
	callIDCb func(c *Call, callID string)
}

type callParams struct {
	transport   *webexsdk.Client
	logger      Logger
	metrics     MetricManager
	resolver    CallerIDResolver
	mobiusURL   string
	deviceID    string
	direction   CallDirection
	destination CallDetails
	deleteCb    func(c *Call)
	callIDCb    func(c *Call, callID string)
}

func newCall(p callParams) *Call {
	c := &Call{
		EventEmitter:  NewEventEmitter(),
		transport:     p.transport,
		logger:        p.logger,
		metrics:       p.metrics,
		mobiusURL:     p.mobiusURL,
		deviceID:      p.deviceID,
		correlationID: uuid.NewString(),
		direction:     p.direction,
		destination:   p.destination,
		callMachine:   newCallStateMachine(),
		roapMachine:   newRoapStateMachine(),
		deleteCb:      p.deleteCb,
		callIDCb:      p.callIDCb,
	}
	c.callerInfo = newCallerID(p.resolver, p.logger, func(info DisplayInformation) {
		c.Emit(string(CallEventCallerID), info)
	})
	c.callMachine.onTransition = c.onCallTransition
	return c
}

// CorrelationID returns the client-generated call correlation identifier.
func (c *Call) CorrelationID() string {
	return c.correlationID
}

// CallID returns the Mobius-assigned call identifier, empty until setup
// completes.
func (c *Call) CallID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callID
}

// Direction reports whether the call is inbound or outbound.
func (c *Call) Direction() CallDirection {
	return c.direction
}

// Destination returns the dialed or calling address.
func (c *Call) Destination() CallDetails {
	return c.destination
}

// State returns the current call-control state.
func (c *Call) State() State {
	return c.callMachine.Current()
}

// MediaState returns the current media negotiation state.
func (c *Call) MediaState() State {
	return c.roapMachine.Current()
}

// IsHeld reports whether the call is locally held.
func (c *Call) IsHeld() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held
}

// IsConnected reports whether the call-control machine has reached the
// established state. Hold and resume round-trip back to it, so both count
// as connected.
func (c *Call) IsConnected() bool {
	switch c.callMachine.Current() {
	case CallStateEstablished, CallStateHold, CallStateResume:
		return true
	}
	return false
}

// SetMediaSession attaches the media engine for this call.
func (c *Call) SetMediaSession(m MediaSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.media = m
}

func (c *Call) mediaSession() MediaSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.media
}

func (c *Call) setCallID(id string) {
	c.mu.Lock()
	changed := id != "" && c.callID != id
	if changed {
		c.callID = id
	}
	cb := c.callIDCb
	c.mu.Unlock()
	if changed && cb != nil {
		cb(c, id)
	}
}

// setMobiusURL repoints mid-call REST operations after a failover.
func (c *Call) setMobiusURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mobiusURL = url
}

func (c *Call) nextSeq() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

func (c *Call) onCallTransition(from State, event MachineEvent, to State) {
	c.logger.Printf("call %s: %s --%s--> %s", c.correlationID, from, event, to)

	switch to {
	case CallStateEstablished:
		if from == CallStateRecvConnect || from == CallStateSendConnect {
			c.Emit(string(CallEventEstablished), c.correlationID)
		}
	case CallStateCleared:
		if c.deleteCb != nil {
			c.deleteCb(c)
		}
	}
}

// ---- Signaling operations ----

// Dial starts an outbound call with the engine-produced SDP offer. It may
// only be used once, from the media idle state.
func (c *Call) Dial(ctx context.Context, localSDP string) error {
	if err := c.roapMachine.Fire(RoapEvtSendOffer); err != nil {
		return fmt.Errorf("call cannot be dialed: %w", err)
	}
	if err := c.callMachine.Fire(CallEvtSendSetup); err != nil {
		return err
	}

	offer := RoapMessage{
		Seq:         c.nextSeq(),
		MessageType: RoapMessageOffer,
		SDP:         localSDP,
	}
	resp, err := c.postCreate(ctx, offer)
	if err != nil {
		c.handleCallError(err)
		return err
	}
	c.setCallID(resp.CallID)
	return nil
}

// Answer accepts an inbound call. The engine-produced SDP answer goes out
// as a ROAP message and the connect signal as a state PATCH.
func (c *Call) Answer(ctx context.Context, localSDP string) error {
	if !c.callMachine.CanFire(CallEvtSendConnect) {
		return fmt.Errorf("call %s cannot be answered in state %s", c.correlationID, c.callMachine.Current())
	}

	if localSDP != "" {
		answer := RoapMessage{
			Seq:         c.nextSeq(),
			MessageType: RoapMessageAnswer,
			SDP:         localSDP,
		}
		if err := c.SendRoapMessage(ctx, answer); err != nil {
			return err
		}
	}

	if _, err := c.patchState(ctx, mobiusCallStateConnected); err != nil {
		c.handleCallError(err)
		return err
	}
	if err := c.callMachine.Fire(CallEvtSendConnect); err != nil {
		return err
	}
	c.Emit(string(CallEventConnect), c.correlationID)
	return c.callMachine.Fire(CallEvtEstablished)
}

// End hangs up the call. The delete request is best effort; the machines
// are driven to cleared regardless so the record never leaks.
func (c *Call) End(ctx context.Context) error {
	c.mu.Lock()
	if c.disconnectReason.Cause == "" {
		c.disconnectReason = DisconnectReason{Code: DisconnectCodeNormal, Cause: "normal disconnect"}
	}
	c.mu.Unlock()

	if err := c.deleteCall(ctx); err != nil {
		c.logger.Printf("call %s: disconnect request failed: %v", c.correlationID, err)
	}

	if err := c.callMachine.Fire(CallEvtSendDisconnect); err != nil {
		return err
	}
	c.Emit(string(CallEventDisconnect), c.correlationID)
	return c.callMachine.Fire(CallEvtCleared)
}

// Hold asks Mobius to hold the call.
func (c *Call) Hold(ctx context.Context) error {
	if err := c.callMachine.Fire(CallEvtHold); err != nil {
		return err
	}
	if err := c.postSupplementary(ctx, "hold"); err != nil {
		c.handleCallError(err)
		return err
	}
	c.mu.Lock()
	c.held = true
	c.mu.Unlock()
	c.Emit(string(CallEventHeld), c.correlationID)
	return c.callMachine.Fire(CallEvtEstablished)
}

// Resume asks Mobius to resume a held call.
func (c *Call) Resume(ctx context.Context) error {
	if err := c.callMachine.Fire(CallEvtResume); err != nil {
		return err
	}
	if err := c.postSupplementary(ctx, "resume"); err != nil {
		c.handleCallError(err)
		return err
	}
	c.mu.Lock()
	c.held = false
	c.mu.Unlock()
	c.Emit(string(CallEventResumed), c.correlationID)
	return c.callMachine.Fire(CallEvtEstablished)
}

const validDTMFDigits = "0123456789ABCD*#"

// SendDigit plays a DTMF digit through the attached media session.
func (c *Call) SendDigit(digit string) error {
	if len(digit) != 1 || !strings.Contains(validDTMFDigits, strings.ToUpper(digit)) {
		return fmt.Errorf("invalid DTMF digit %q", digit)
	}
	m := c.mediaSession()
	if m == nil {
		return fmt.Errorf("call %s has no media session", c.correlationID)
	}
	return m.InsertDTMF(digit)
}

// ---- Event handlers driven by the Call Manager ----

func (c *Call) handleSetup(ctx context.Context, data MobiusCallData) {
	c.setCallID(data.CallID)
	if data.BroadworksCorrelationInfo != "" {
		c.mu.Lock()
		c.broadworksCorrelationInfo = data.BroadworksCorrelationInfo
		c.mu.Unlock()
	}
	if data.CallerID != nil {
		c.callerInfo.fetchCallerDetails(ctx, *data.CallerID)
	}

	if err := c.callMachine.Fire(CallEvtRecvSetup); err != nil {
		c.logger.Printf("call %s: setup rejected: %v", c.correlationID, err)
		return
	}

	// Acknowledge ringing. The alerting PATCH runs off the event loop so a
	// slow server never stalls dispatch.
	go c.sendAlerting(ctx)
}

func (c *Call) sendAlerting(ctx context.Context) {
	if _, err := c.patchState(ctx, mobiusCallStateAlerting); err != nil {
		c.handleCallError(err)
		return
	}
	if err := c.callMachine.Fire(CallEvtSendAlerting); err != nil {
		c.logger.Printf("call %s: alerting rejected: %v", c.correlationID, err)
		return
	}
	c.Emit(string(CallEventAlerting), c.correlationID)
}

func (c *Call) handleProgress(data MobiusCallData) {
	if err := c.callMachine.Fire(CallEvtRecvProgress); err != nil {
		c.logger.Printf("call %s: progress rejected: %v", c.correlationID, err)
		return
	}
	c.Emit(string(CallEventProgress), c.correlationID)
}

func (c *Call) handleConnect(data MobiusCallData) {
	if err := c.callMachine.Fire(CallEvtRecvConnect); err != nil {
		c.logger.Printf("call %s: connect rejected: %v", c.correlationID, err)
		return
	}
	c.Emit(string(CallEventConnect), c.correlationID)
	if err := c.callMachine.Fire(CallEvtEstablished); err != nil {
		c.logger.Printf("call %s: establish rejected: %v", c.correlationID, err)
	}
}

func (c *Call) handleDisconnect(data MobiusCallData) {
	if !c.callMachine.CanFire(CallEvtRecvDisconnect) {
		return
	}
	if err := c.callMachine.Fire(CallEvtRecvDisconnect); err != nil {
		return
	}
	c.Emit(string(CallEventDisconnect), c.correlationID)
	if err := c.callMachine.Fire(CallEvtCleared); err != nil {
		c.logger.Printf("call %s: clear rejected: %v", c.correlationID, err)
	}
}

// handleMediaMessage routes an inbound ROAP message into the media machine
// and, when it carries SDP, to the media session. SDP payloads are
// sanity-parsed before forwarding; a malformed body aborts the negotiation
// with an outbound ERROR.
func (c *Call) handleMediaMessage(ctx context.Context, msg RoapMessage) {
	var evt MachineEvent
	switch msg.MessageType {
	case RoapMessageOffer:
		evt = RoapEvtRecvOffer
	case RoapMessageAnswer:
		evt = RoapEvtRecvAnswer
	case RoapMessageOfferRequest:
		evt = RoapEvtRecvOfferRequest
	case RoapMessageOK:
		evt = RoapEvtOK
	case RoapMessageError:
		c.logger.Printf("call %s: remote roap error %s seq %d", c.correlationID, msg.ErrorType, msg.Seq)
		return
	default:
		c.logger.Printf("call %s: unknown roap message type %s", c.correlationID, msg.MessageType)
		return
	}

	if msg.SDP != "" {
		var desc sdp.SessionDescription
		if err := desc.Unmarshal([]byte(msg.SDP)); err != nil {
			c.logger.Printf("call %s: malformed SDP in %s seq %d: %v", c.correlationID, msg.MessageType, msg.Seq, err)
			c.abortMediaNegotiation(ctx, msg.Seq)
			return
		}
	}

	if err := c.roapMachine.Fire(evt); err != nil {
		c.logger.Printf("call %s: roap %s rejected: %v", c.correlationID, msg.MessageType, err)
		return
	}

	if m := c.mediaSession(); m != nil {
		m.OnRoapMessage(msg)
	}
	if msg.SDP != "" {
		c.Emit(string(CallEventRemoteMedia), msg.SDP)
	}
}

func (c *Call) abortMediaNegotiation(ctx context.Context, seq int) {
	if err := c.roapMachine.Fire(RoapEvtError); err != nil {
		c.logger.Printf("call %s: cannot enter roap error state: %v", c.correlationID, err)
		return
	}
	errMsg := RoapMessage{
		Seq:         seq,
		MessageType: RoapMessageError,
		ErrorType:   "FAILED",
	}
	if err := c.postMedia(ctx, errMsg); err != nil {
		c.logger.Printf("call %s: failed to send roap error: %v", c.correlationID, err)
	}
}

// handleMidCallEvent applies a mid-call update from a setup event that
// arrived for an already-known call.
func (c *Call) handleMidCallEvent(evt MidCallEvent) {
	switch evt.EventType {
	case MidCallEventCallState:
		state, _ := evt.EventData.(map[string]interface{})
		callState, _ := state["callState"].(string)
		switch callState {
		case "held":
			c.mu.Lock()
			c.held = true
			c.mu.Unlock()
			c.Emit(string(CallEventHeld), c.correlationID)
		case "connected":
			c.mu.Lock()
			wasHeld := c.held
			c.held = false
			c.mu.Unlock()
			if wasHeld {
				c.Emit(string(CallEventResumed), c.correlationID)
			}
		}
	case MidCallEventCallInfo:
		info, _ := evt.EventData.(map[string]interface{})
		headers := CallerIDInfo{}
		if v, ok := info["callerId"].(map[string]interface{}); ok {
			if s, ok := v["from"].(string); ok {
				headers.From = s
			}
			if s, ok := v["p-asserted-identity"].(string); ok {
				headers.PAssertedIdentity = s
			}
			if s, ok := v["x-broadworks-remote-party-info"].(string); ok {
				headers.XBroadworksRemotePartyInfo = s
			}
		}
		c.callerInfo.fetchCallerDetails(context.Background(), headers)
	default:
		c.logger.Printf("call %s: unknown mid-call event type %s", c.correlationID, evt.EventType)
	}
}

// SendRoapMessage forwards an engine-produced ROAP message to Mobius,
// driving the send side of the media machine.
func (c *Call) SendRoapMessage(ctx context.Context, msg RoapMessage) error {
	var evt MachineEvent
	switch msg.MessageType {
	case RoapMessageOffer:
		evt = RoapEvtSendOffer
	case RoapMessageAnswer:
		evt = RoapEvtSendAnswer
	case RoapMessageOK:
		evt = RoapEvtOK
	default:
		return fmt.Errorf("cannot send roap message type %s", msg.MessageType)
	}
	if err := c.roapMachine.Fire(evt); err != nil {
		return err
	}
	if err := c.postMedia(ctx, msg); err != nil {
		c.handleCallError(err)
		return err
	}
	return nil
}

func (c *Call) handleCallError(err error) {
	c.metrics.SubmitCallMetric(MetricCallError, string(c.callMachine.Current()), MetricTypeBehavioral, c.CallID(), c.correlationID, err)
	c.Emit(string(CallEventError), err)
}

// ---- Mobius call REST requests ----

type localMediaBody struct {
	Roap    RoapMessage `json:"roap"`
	MediaID string      `json:"mediaId"`
}

type mobiusCallBody struct {
	Device struct {
		DeviceID      string `json:"deviceId"`
		CorrelationID string `json:"correlationId"`
	} `json:"device"`
	CallID      string          `json:"callId,omitempty"`
	CallState   string          `json:"callState,omitempty"`
	InbandMedia bool            `json:"inbandMedia"`
	Callee      *CallDetails    `json:"callee,omitempty"`
	LocalMedia  *localMediaBody `json:"localMedia,omitempty"`
	CauseCode   *DisconnectCode `json:"causecode,omitempty"`
	Cause       string          `json:"cause,omitempty"`
}

func (c *Call) baseBody() mobiusCallBody {
	var body mobiusCallBody
	body.Device.DeviceID = c.deviceID
	body.Device.CorrelationID = c.correlationID
	return body
}

func (c *Call) baseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mobiusURL
}

func (c *Call) postCreate(ctx context.Context, offer RoapMessage) (*MobiusCallResponse, error) {
	body := c.baseBody()
	body.Callee = &c.destination
	body.LocalMedia = &localMediaBody{Roap: offer, MediaID: uuid.NewString()}

	url := fmt.Sprintf("%sdevices/%s/call", c.baseURL(), c.deviceID)
	resp, err := c.transport.RequestURLOnce(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	var out MobiusCallResponse
	if err := webexsdk.ParseResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Call) patchState(ctx context.Context, state string) (*MobiusCallResponse, error) {
	body := c.baseBody()
	body.CallID = c.CallID()
	body.CallState = state

	url := fmt.Sprintf("%sdevices/%s/calls/%s", c.baseURL(), c.deviceID, c.CallID())
	resp, err := c.transport.RequestURLOnce(ctx, http.MethodPatch, url, body)
	if err != nil {
		return nil, err
	}
	var out MobiusCallResponse
	if err := webexsdk.ParseResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Call) postMedia(ctx context.Context, msg RoapMessage) error {
	body := c.baseBody()
	body.CallID = c.CallID()
	body.LocalMedia = &localMediaBody{Roap: msg, MediaID: uuid.NewString()}

	url := fmt.Sprintf("%sdevices/%s/calls/%s/media", c.baseURL(), c.deviceID, c.CallID())
	resp, err := c.transport.RequestURLOnce(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	return webexsdk.ParseResponse(resp, nil)
}

func (c *Call) postSupplementary(ctx context.Context, action string) error {
	body := c.baseBody()
	body.CallID = c.CallID()

	url := fmt.Sprintf("%sservices/callhold/%s", c.baseURL(), action)
	resp, err := c.transport.RequestURLOnce(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	return webexsdk.ParseResponse(resp, nil)
}

func (c *Call) deleteCall(ctx context.Context) error {
	body := c.baseBody()
	body.CallID = c.CallID()
	c.mu.Lock()
	code := c.disconnectReason.Code
	body.CauseCode = &code
	body.Cause = c.disconnectReason.Cause
	c.mu.Unlock()

	url := fmt.Sprintf("%sdevices/%s/calls/%s", c.baseURL(), c.deviceID, c.CallID())
	resp, err := c.transport.RequestURLOnce(ctx, http.MethodDelete, url, body)
	if err != nil {
		return err
	}
	return webexsdk.ParseResponse(resp, nil)
}
