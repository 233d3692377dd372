// Package readmodel implements the documented read-model contract layered over
// the agent ticket list: status filtering (with the pseudo-filter "all"),
// case-insensitive substring search, and the fixed status-priority ordering.
package readmodel

import (
	"sort"
	"strings"

	"github.com/helpdesk-hq/helpdesk-service/internal/domain"
)

// StatusFilterAll matches every status.
const StatusFilterAll = "all"

// ListOptions captures the agent list view parameters.
type ListOptions struct {
	Status         string
	Search         string
	SortByPriority bool
}

// Apply runs filter, search and ordering over an already-fetched list.
func Apply(tickets []domain.Ticket, opts ListOptions) []domain.Ticket {
	out := FilterByStatus(tickets, opts.Status)
	out = Search(out, opts.Search)
	if opts.SortByPriority {
		SortByStatusPriority(out)
	}
	return out
}

// FilterByStatus keeps tickets matching the given status; "" and "all" keep
// everything.
func FilterByStatus(tickets []domain.Ticket, status string) []domain.Ticket {
	if status == "" || status == StatusFilterAll {
		return append([]domain.Ticket{}, tickets...)
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.Status == domain.TicketStatus(status) {
			out = append(out, t)
		}
	}
	return out
}

// Search keeps tickets whose subject, email or details contain the term,
// case-insensitively. A blank term keeps everything.
func Search(tickets []domain.Ticket, term string) []domain.Ticket {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return tickets
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if strings.Contains(strings.ToLower(t.Subject), term) ||
			strings.Contains(strings.ToLower(t.Email), term) ||
			strings.Contains(strings.ToLower(t.Details), term) {
			out = append(out, t)
		}
	}
	return out
}

// SortByStatusPriority orders tickets new-alert < open < in-progress <
// resolved < closed, preserving the incoming order within each status.
func SortByStatusPriority(tickets []domain.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].Status.Rank() < tickets[j].Status.Rank()
	})
}
