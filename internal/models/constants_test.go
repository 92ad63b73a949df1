package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTransition(t *testing.T) {
	valid := [][2]string{
		{RequestStatusPending, RequestStatusAssigned},
		{RequestStatusPending, RequestStatusCancelled},
		{RequestStatusAssigned, RequestStatusInProgress},
		{RequestStatusAssigned, RequestStatusCancelled},
		{RequestStatusInProgress, RequestStatusCompleted},
		{RequestStatusInProgress, RequestStatusCancelled},
	}
	for _, tr := range valid {
		assert.True(t, IsValidTransition(tr[0], tr[1]), "%s -> %s должен быть допустим", tr[0], tr[1])
	}

	invalid := [][2]string{
		{RequestStatusPending, RequestStatusInProgress},
		{RequestStatusPending, RequestStatusCompleted},
		{RequestStatusAssigned, RequestStatusCompleted},
		{RequestStatusCompleted, RequestStatusPending},
		{RequestStatusCompleted, RequestStatusCancelled},
		{RequestStatusCancelled, RequestStatusPending},
		{RequestStatusCancelled, RequestStatusAssigned},
		{RequestStatusPending, RequestStatusPending},
	}
	for _, tr := range invalid {
		assert.False(t, IsValidTransition(tr[0], tr[1]), "%s -> %s должен быть запрещён", tr[0], tr[1])
	}

	assert.False(t, IsValidTransition("unknown", RequestStatusAssigned))
	assert.False(t, IsValidTransition(RequestStatusPending, "unknown"))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(RequestStatusCompleted))
	assert.True(t, IsTerminalStatus(RequestStatusCancelled))
	assert.False(t, IsTerminalStatus(RequestStatusPending))
	assert.False(t, IsTerminalStatus(RequestStatusAssigned))
	assert.False(t, IsTerminalStatus(RequestStatusInProgress))
}
