package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status TicketStatus
		valid  bool
	}{
		{name: "open", status: TicketStatusOpen, valid: true},
		{name: "in-progress", status: TicketStatusInProgress, valid: true},
		{name: "resolved", status: TicketStatusResolved, valid: true},
		{name: "closed", status: TicketStatusClosed, valid: true},
		{name: "new-alert", status: TicketStatusNewAlert, valid: true},
		{name: "empty", status: TicketStatus(""), valid: false},
		{name: "bogus", status: TicketStatus("bogus"), valid: false},
		{name: "case sensitive", status: TicketStatus("Open"), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.Valid())
		})
	}
}

func TestTicketStatusRank(t *testing.T) {
	// new-alert sorts before everything; closed sorts last.
	order := []TicketStatus{
		TicketStatusNewAlert,
		TicketStatusOpen,
		TicketStatusInProgress,
		TicketStatusResolved,
		TicketStatusClosed,
	}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1].Rank(), order[i].Rank(),
			"%s should rank before %s", order[i-1], order[i])
	}
	assert.Equal(t, 5, TicketStatus("bogus").Rank())
}

func TestAllTicketStatusesComplete(t *testing.T) {
	assert.Len(t, AllTicketStatuses, 5)
	for _, s := range AllTicketStatuses {
		assert.True(t, s.Valid())
	}
}
