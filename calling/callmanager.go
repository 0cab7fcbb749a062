/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package calling

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/webexcommunity/calling-go-sdk/webexsdk"
)

// CallManager owns the call table and is the single consumer of Mobius
// call events. Events for the same client are processed strictly in
// arrival order.
type CallManager struct {
	transport *webexsdk.Client
	logger    Logger
	metrics   MetricManager
	resolver  CallerIDResolver

	mu        sync.Mutex
	calls     map[string]*Call  // keyed by correlationId
	callIndex map[string]string // callId -> correlationId
	mobiusURL string
	deviceID  string

	// onIncomingCall and onAllCallsCleared are wired by the client facade.
	onIncomingCall    func(c *Call)
	onAllCallsCleared func()
}

// NewCallManager creates a call manager bound to the given transport.
func NewCallManager(transport *webexsdk.Client, metrics MetricManager, resolver CallerIDResolver) *CallManager {
	return &CallManager{
		transport: transport,
		logger:    transport.GetLogger(),
		metrics:   metrics,
		resolver:  resolver,
		calls:     make(map[string]*Call),
		callIndex: make(map[string]string),
	}
}

// OnIncomingCall registers the handler invoked when a new inbound call
// record is created.
func (m *CallManager) OnIncomingCall(fn func(c *Call)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onIncomingCall = fn
}

// OnAllCallsCleared registers the handler invoked when the call table
// empties.
func (m *CallManager) OnAllCallsCleared(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAllCallsCleared = fn
}

// UpdateActiveMobius propagates the active registration URL and device so
// call objects address mid-call requests against the correct server.
func (m *CallManager) UpdateActiveMobius(url, deviceID string) {
	m.mu.Lock()
	m.mobiusURL = url
	m.deviceID = deviceID
	calls := make([]*Call, 0, len(m.calls))
	for _, c := range m.calls {
		calls = append(calls, c)
	}
	m.mu.Unlock()

	for _, c := range calls {
		c.setMobiusURL(url)
	}
}

// CreateCall allocates a new call record and stores it in the table. This
// is the only insertion path, so every record carries exactly one deletion
// callback.
func (m *CallManager) CreateCall(direction CallDirection, destination CallDetails) *Call {
	m.mu.Lock()
	url := m.mobiusURL
	deviceID := m.deviceID
	m.mu.Unlock()

	c := newCall(callParams{
		transport:   m.transport,
		logger:      m.logger,
		metrics:     m.metrics,
		resolver:    m.resolver,
		mobiusURL:   url,
		deviceID:    deviceID,
		direction:   direction,
		destination: destination,
		deleteCb:    m.removeCall,
		callIDCb:    m.indexCallID,
	})

	m.mu.Lock()
	m.calls[c.correlationID] = c
	m.mu.Unlock()
	return c
}

func (m *CallManager) removeCall(c *Call) {
	m.mu.Lock()
	delete(m.calls, c.correlationID)
	if c.CallID() != "" {
		delete(m.callIndex, c.CallID())
	}
	empty := len(m.calls) == 0
	cleared := m.onAllCallsCleared
	m.mu.Unlock()

	if empty && cleared != nil {
		cleared()
	}
}

func (m *CallManager) indexCallID(c *Call, callID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callIndex[callID] = c.correlationID
}

// GetCall returns the call with the given correlation ID, or nil.
func (m *CallManager) GetCall(correlationID string) *Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[correlationID]
}

// GetCallByCallID resolves a call through the callId index, or nil.
func (m *CallManager) GetCallByCallID(callID string) *Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if corr, ok := m.callIndex[callID]; ok {
		return m.calls[corr]
	}
	return nil
}

// GetActiveCalls snapshots the current call table.
func (m *CallManager) GetActiveCalls() []*Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Call, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c)
	}
	return out
}

// CallCount returns the number of calls in the table.
func (m *CallManager) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// HandleEvent dispatches one raw Mobius websocket event.
func (m *CallManager) HandleEvent(ctx context.Context, raw []byte) {
	var event MobiusCallEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		m.logger.Printf("callmanager: undecodable event: %v", err)
		return
	}
	data := event.Data

	switch data.EventType {
	case MobiusEventCallSetup:
		m.handleSetupEvent(ctx, data)
	case MobiusEventCallProgress:
		if c := m.GetCall(data.CorrelationID); c != nil {
			c.handleProgress(data)
		}
	case MobiusEventCallConnected:
		if c := m.GetCall(data.CorrelationID); c != nil {
			c.handleConnect(data)
		}
	case MobiusEventCallMedia:
		m.handleMediaEvent(ctx, data)
	case MobiusEventCallDisconnected:
		if c := m.GetCall(data.CorrelationID); c != nil {
			c.handleDisconnect(data)
		}
	default:
		m.logger.Printf("callmanager: unknown event type %q", data.EventType)
	}
}

// handleSetupEvent routes mid-call sub-events to their existing call, or
// creates an inbound record for a fresh setup.
func (m *CallManager) handleSetupEvent(ctx context.Context, data MobiusCallData) {
	if len(data.MidCallService) > 0 {
		c := m.GetCall(data.CorrelationID)
		if c == nil {
			// Setup is assumed already processed; a mid-call update for an
			// unknown call has nowhere to go.
			m.logger.Printf("callmanager: mid-call event for unknown correlationId %s dropped", data.CorrelationID)
			return
		}
		for _, evt := range data.MidCallService {
			c.handleMidCallEvent(evt)
		}
		return
	}

	// A media event may have created the record before setup arrived.
	c := m.GetCallByCallID(data.CallID)
	if c == nil {
		c = m.CreateCall(CallDirectionInbound, CallDetails{})
	}
	m.mu.Lock()
	incoming := m.onIncomingCall
	m.mu.Unlock()
	if incoming != nil {
		incoming(c)
	}
	c.handleSetup(ctx, data)
}

// handleMediaEvent resolves the target call by correlationId, then callId,
// then falls back to creating a record for media arriving before setup.
// Uncorrelatable media is dropped with a log; there is no replay queue.
func (m *CallManager) handleMediaEvent(ctx context.Context, data MobiusCallData) {
	c := m.GetCall(data.CorrelationID)
	if c == nil && data.CallID != "" {
		c = m.GetCallByCallID(data.CallID)
	}
	if c == nil && data.CallID != "" {
		c = m.CreateCall(CallDirectionInbound, CallDetails{})
		c.setCallID(data.CallID)
	}
	if c == nil {
		m.logger.Printf("callmanager: media event with no correlationId or callId dropped")
		return
	}
	if data.Message == nil {
		m.logger.Printf("callmanager: media event without roap message for call %s", c.correlationID)
		return
	}
	c.handleMediaMessage(ctx, *data.Message)
}
