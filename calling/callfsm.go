/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package calling

// Call-control machine states. Recv/Send pairs distinguish the remote and
// local side of each signaling step.
const (
	CallStateIdle           State = "S_IDLE"
	CallStateRecvSetup      State = "S_RECV_CALL_SETUP"
	CallStateSendSetup      State = "S_SEND_CALL_SETUP"
	CallStateRecvProgress   State = "S_RECV_CALL_PROGRESS"
	CallStateSendProgress   State = "S_SEND_CALL_PROGRESS"
	CallStateRecvConnect    State = "S_RECV_CALL_CONNECT"
	CallStateSendConnect    State = "S_SEND_CALL_CONNECT"
	CallStateEstablished    State = "S_CALL_ESTABLISHED"
	CallStateHold           State = "S_CALL_HOLD"
	CallStateResume         State = "S_CALL_RESUME"
	CallStateRecvDisconnect State = "S_RECV_CALL_DISCONNECT"
	CallStateSendDisconnect State = "S_SEND_CALL_DISCONNECT"
	CallStateUnknown        State = "S_UNKNOWN"
	CallStateError          State = "S_ERROR"
	CallStateCleared        State = "S_CALL_CLEARED"
)

// Call-control machine events.
const (
	CallEvtRecvSetup      MachineEvent = "E_RECV_CALL_SETUP"
	CallEvtSendSetup      MachineEvent = "E_SEND_CALL_SETUP"
	CallEvtSendAlerting   MachineEvent = "E_SEND_CALL_ALERTING"
	CallEvtRecvProgress   MachineEvent = "E_RECV_CALL_PROGRESS"
	CallEvtRecvConnect    MachineEvent = "E_RECV_CALL_CONNECT"
	CallEvtSendConnect    MachineEvent = "E_SEND_CALL_CONNECT"
	CallEvtEstablished    MachineEvent = "E_CALL_ESTABLISHED"
	CallEvtHold           MachineEvent = "E_CALL_HOLD"
	CallEvtResume         MachineEvent = "E_CALL_RESUME"
	CallEvtRecvDisconnect MachineEvent = "E_RECV_CALL_DISCONNECT"
	CallEvtSendDisconnect MachineEvent = "E_SEND_CALL_DISCONNECT"
	CallEvtCleared        MachineEvent = "E_CALL_CLEARED"
	CallEvtUnknown        MachineEvent = "E_UNKNOWN"
)

// Media (ROAP) machine states.
const (
	RoapStateIdle             State = "S_ROAP_IDLE"
	RoapStateRecvOfferRequest State = "S_RECV_ROAP_OFFER_REQUEST"
	RoapStateRecvOffer        State = "S_RECV_ROAP_OFFER"
	RoapStateSendOffer        State = "S_SEND_ROAP_OFFER"
	RoapStateRecvAnswer       State = "S_RECV_ROAP_ANSWER"
	RoapStateSendAnswer       State = "S_SEND_ROAP_ANSWER"
	RoapStateOK               State = "S_ROAP_OK"
	RoapStateError            State = "S_ROAP_ERROR"
	RoapStateTeardown         State = "S_ROAP_TEARDOWN"
)

// Media (ROAP) machine events.
const (
	RoapEvtRecvOfferRequest MachineEvent = "E_RECV_ROAP_OFFER_REQUEST"
	RoapEvtRecvOffer        MachineEvent = "E_RECV_ROAP_OFFER"
	RoapEvtSendOffer        MachineEvent = "E_SEND_ROAP_OFFER"
	RoapEvtRecvAnswer       MachineEvent = "E_RECV_ROAP_ANSWER"
	RoapEvtSendAnswer       MachineEvent = "E_SEND_ROAP_ANSWER"
	RoapEvtOK               MachineEvent = "E_ROAP_OK"
	RoapEvtError            MachineEvent = "E_ROAP_ERROR"
	RoapEvtTeardown         MachineEvent = "E_ROAP_TEARDOWN"
)

// callTransitions is the call-control transition table. Every non-terminal
// state accepts both disconnect directions and the unknown-input escape.
var callTransitions = transitionTable{
	{CallStateIdle, CallEvtRecvSetup}:      CallStateRecvSetup,
	{CallStateIdle, CallEvtSendSetup}:      CallStateSendSetup,
	{CallStateIdle, CallEvtRecvDisconnect}: CallStateRecvDisconnect,
	{CallStateIdle, CallEvtSendDisconnect}: CallStateSendDisconnect,
	{CallStateIdle, CallEvtUnknown}:        CallStateUnknown,

	{CallStateRecvSetup, CallEvtSendAlerting}:   CallStateSendProgress,
	{CallStateRecvSetup, CallEvtRecvDisconnect}: CallStateRecvDisconnect,
	{CallStateRecvSetup, CallEvtSendDisconnect}: CallStateSendDisconnect,
	{CallStateRecvSetup, CallEvtUnknown}:        CallStateUnknown,

	{CallStateSendSetup, CallEvtRecvProgress}:   CallStateRecvProgress,
	{CallStateSendSetup, CallEvtRecvConnect}:    CallStateRecvConnect,
	{CallStateSendSetup, CallEvtRecvDisconnect}: CallStateRecvDisconnect,
	{CallStateSendSetup, CallEvtSendDisconnect}: CallStateSendDisconnect,
	{CallStateSendSetup, CallEvtUnknown}:        CallStateUnknown,

	// Multiple progress indications are possible on a single call.
	{CallStateRecvProgress, CallEvtRecvProgress}:   CallStateRecvProgress,
	{CallStateRecvProgress, CallEvtRecvConnect}:    CallStateRecvConnect,
	{CallStateRecvProgress, CallEvtRecvDisconnect}: CallStateRecvDisconnect,
	{CallStateRecvProgress, CallEvtSendDisconnect}: CallStateSendDisconnect,
	{CallStateRecvProgress, CallEvtUnknown}:        CallStateUnknown,

	{CallStateSendProgress, CallEvtSendConnect}:    CallStateSendConnect,
	{CallStateSendProgress, CallEvtRecvDisconnect}: CallStateRecvDisconnect,
	{CallStateSendProgress, CallEvtSendDisconnect}: CallStateSendDisconnect,
	{CallStateSendProgress, CallEvtUnknown}:        CallStateUnknown,

	{CallStateRecvConnect, CallEvtEstablished}:    CallStateEstablished,
	{CallStateRecvConnect, CallEvtRecvDisconnect}: CallStateRecvDisconnect,
	{CallStateRecvConnect, CallEvtSendDisconnect}: CallStateSendDisconnect,
	{CallStateRecvConnect, CallEvtUnknown}:        CallStateUnknown,

	{CallStateSendConnect, CallEvtEstablished}:    CallStateEstablished,
	{CallStateSendConnect, CallEvtRecvDisconnect}: CallStateRecvDisconnect,
	{CallStateSendConnect, CallEvtSendDisconnect}: CallStateSendDisconnect,
	{CallStateSendConnect, CallEvtUnknown}:        CallStateUnknown,

	{CallStateEstablished, CallEvtHold}:           CallStateHold,
	{CallStateEstablished, CallEvtResume}:         CallStateResume,
	{CallStateEstablished, CallEvtEstablished}:    CallStateEstablished,
	{CallStateEstablished, CallEvtRecvDisconnect}: CallStateRecvDisconnect,
	{CallStateEstablished, CallEvtSendDisconnect}: CallStateSendDisconnect,
	{CallStateEstablished, CallEvtUnknown}:        CallStateUnknown,

	{CallStateHold, CallEvtEstablished}:    CallStateEstablished,
	{CallStateHold, CallEvtRecvDisconnect}: CallStateRecvDisconnect,
	{CallStateHold, CallEvtSendDisconnect}: CallStateSendDisconnect,
	{CallStateHold, CallEvtUnknown}:        CallStateUnknown,

	{CallStateResume, CallEvtEstablished}:    CallStateEstablished,
	{CallStateResume, CallEvtRecvDisconnect}: CallStateRecvDisconnect,
	{CallStateResume, CallEvtSendDisconnect}: CallStateSendDisconnect,
	{CallStateResume, CallEvtUnknown}:        CallStateUnknown,

	{CallStateRecvDisconnect, CallEvtCleared}: CallStateCleared,
	{CallStateSendDisconnect, CallEvtCleared}: CallStateCleared,
	{CallStateUnknown, CallEvtCleared}:        CallStateCleared,
	{CallStateError, CallEvtCleared}:          CallStateCleared,
}

// roapTransitions is the media negotiation transition table.
var roapTransitions = transitionTable{
	{RoapStateIdle, RoapEvtRecvOfferRequest}: RoapStateRecvOfferRequest,
	{RoapStateIdle, RoapEvtRecvOffer}:        RoapStateRecvOffer,
	{RoapStateIdle, RoapEvtSendOffer}:        RoapStateSendOffer,

	{RoapStateRecvOfferRequest, RoapEvtSendOffer}: RoapStateSendOffer,
	{RoapStateRecvOfferRequest, RoapEvtOK}:        RoapStateOK,
	{RoapStateRecvOfferRequest, RoapEvtError}:     RoapStateError,

	{RoapStateRecvOffer, RoapEvtSendAnswer}: RoapStateSendAnswer,
	{RoapStateRecvOffer, RoapEvtOK}:         RoapStateOK,
	{RoapStateRecvOffer, RoapEvtError}:      RoapStateError,

	{RoapStateSendOffer, RoapEvtRecvAnswer}: RoapStateRecvAnswer,
	{RoapStateSendOffer, RoapEvtSendAnswer}: RoapStateSendAnswer,
	{RoapStateSendOffer, RoapEvtSendOffer}:  RoapStateSendOffer,
	{RoapStateSendOffer, RoapEvtError}:      RoapStateError,

	{RoapStateRecvAnswer, RoapEvtOK}:    RoapStateOK,
	{RoapStateRecvAnswer, RoapEvtError}: RoapStateError,

	{RoapStateSendAnswer, RoapEvtRecvOfferRequest}: RoapStateRecvOfferRequest,
	{RoapStateSendAnswer, RoapEvtRecvOffer}:        RoapStateRecvOffer,
	{RoapStateSendAnswer, RoapEvtSendAnswer}:       RoapStateSendAnswer,
	{RoapStateSendAnswer, RoapEvtOK}:               RoapStateOK,
	{RoapStateSendAnswer, RoapEvtError}:            RoapStateError,

	{RoapStateOK, RoapEvtRecvOfferRequest}: RoapStateRecvOfferRequest,
	{RoapStateOK, RoapEvtRecvOffer}:        RoapStateRecvOffer,
	{RoapStateOK, RoapEvtSendOffer}:        RoapStateSendOffer,
	{RoapStateOK, RoapEvtOK}:               RoapStateOK,
	{RoapStateOK, RoapEvtError}:            RoapStateError,
	{RoapStateOK, RoapEvtTeardown}:         RoapStateTeardown,

	{RoapStateError, RoapEvtRecvOfferRequest}: RoapStateRecvOfferRequest,
	{RoapStateError, RoapEvtRecvOffer}:        RoapStateRecvOffer,
	{RoapStateError, RoapEvtRecvAnswer}:       RoapStateRecvAnswer,
	{RoapStateError, RoapEvtOK}:               RoapStateOK,
	{RoapStateError, RoapEvtTeardown}:         RoapStateTeardown,
}

func newCallStateMachine() *stateMachine {
	return newStateMachine("call", CallStateIdle, callTransitions)
}

func newRoapStateMachine() *stateMachine {
	return newStateMachine("roap", RoapStateIdle, roapTransitions)
}
