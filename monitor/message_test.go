package monitor_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeserver/presence-monitor/monitor"
)

func TestReadyMessageWireShape(t *testing.T) {
	msg := monitor.Message{
		Type:         monitor.MessageType,
		Status:       monitor.StatusReady,
		Timestamp:    1700000000000,
		IsActive:     true,
		Timeout:      30000,
		InitialState: monitor.StatusActive,
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "CODESERVER_INACTIVITY",
		"status": "ready",
		"timestamp": 1700000000000,
		"isActive": true,
		"timeout": 30000,
		"initialState": "active"
	}`, string(data))

	var back monitor.Message
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, msg, back)
}

func TestTransitionMessageOmitsReadyFields(t *testing.T) {
	msg := monitor.Message{
		Type:      monitor.MessageType,
		Status:    monitor.StatusBlur,
		Timestamp: 1700000000000,
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "CODESERVER_INACTIVITY",
		"status": "blur",
		"timestamp": 1700000000000,
		"isActive": false
	}`, string(data))
}

func TestUnknownFieldsIgnored(t *testing.T) {
	raw := `{
		"type": "CODESERVER_INACTIVITY",
		"status": "active",
		"timestamp": 1700000000000,
		"isActive": true,
		"futureField": {"nested": true}
	}`

	var msg monitor.Message
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.Equal(t, monitor.StatusActive, msg.Status)
	assert.True(t, msg.IsActive)
}
