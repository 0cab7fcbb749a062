/* SPDX-License-Identifier: MPL-2.0
 * Copyright 2026 Webex Community
 *
 * See CONTRIBUTORS.md for full contributor list.
 */

package calling

import "sync"

// MetricEvent names a metric submitted to the telemetry backend.
type MetricEvent string

const (
	MetricRegistration      MetricEvent = "web-calling-sdk-registration"
	MetricRegistrationError MetricEvent = "web-calling-sdk-registration-error"
	MetricCall              MetricEvent = "web-calling-sdk-call"
	MetricCallError         MetricEvent = "web-calling-sdk-call-error"
)

// MetricType distinguishes behavioral from operational metrics.
type MetricType string

const (
	MetricTypeBehavioral  MetricType = "behavioral"
	MetricTypeOperational MetricType = "operational"
)

// RegAction is the registration action a metric reports on.
type RegAction string

const (
	RegActionRegister   RegAction = "register"
	RegActionDeregister RegAction = "deregister"
	RegActionKeepalive  RegAction = "keepalive_failure"
	RegActionFailover   RegAction = "failover"
	RegActionFailback   RegAction = "failback"
)

// MetricManager receives telemetry from the registration and call layers.
// The telemetry backend is an external collaborator, so only the submission
// interface is defined here.
type MetricManager interface {
	SetDeviceInfo(info *MobiusDeviceInfo)
	SubmitRegistrationMetric(name MetricEvent, action RegAction, metricType MetricType, err error)
	SubmitCallMetric(name MetricEvent, action string, metricType MetricType, callID, correlationID string, err error)
}

// logMetricManager is the default MetricManager. It records metrics to the
// client log so a missing telemetry backend never blocks the control plane.
type logMetricManager struct {
	mu         sync.Mutex
	logger     Logger
	indicator  ServiceIndicator
	deviceInfo *MobiusDeviceInfo
}

// Logger is the minimal logging interface the calling package needs.
type Logger interface {
	Printf(format string, v ...interface{})
}

func newLogMetricManager(logger Logger, indicator ServiceIndicator) *logMetricManager {
	return &logMetricManager{logger: logger, indicator: indicator}
}

func (m *logMetricManager) SetDeviceInfo(info *MobiusDeviceInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deviceInfo = info
}

func (m *logMetricManager) deviceID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deviceInfo != nil && m.deviceInfo.Device != nil {
		return m.deviceInfo.Device.DeviceID
	}
	return ""
}

func (m *logMetricManager) SubmitRegistrationMetric(name MetricEvent, action RegAction, metricType MetricType, err error) {
	if err != nil {
		m.logger.Printf("metric %s action=%s type=%s device=%s error=%v", name, action, metricType, m.deviceID(), err)
		return
	}
	m.logger.Printf("metric %s action=%s type=%s device=%s indicator=%s", name, action, metricType, m.deviceID(), m.indicator)
}

func (m *logMetricManager) SubmitCallMetric(name MetricEvent, action string, metricType MetricType, callID, correlationID string, err error) {
	if err != nil {
		m.logger.Printf("metric %s action=%s type=%s callId=%s correlationId=%s error=%v", name, action, metricType, callID, correlationID, err)
		return
	}
	m.logger.Printf("metric %s action=%s type=%s callId=%s correlationId=%s", name, action, metricType, callID, correlationID)
}
