package domain

import "time"

// Agent is a support staff account allowed to change status and reply as agent.
type Agent struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
