package service

import (
	"strconv"
	"strings"

	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

// RawTicketFilter carries raw, untrusted listing parameters as received from
// the request. All fields are optional; empty means "no constraint".
type RawTicketFilter struct {
	Status     string
	Department string
	Category   string
	Content    string
	UserID     string
	AssignedID string
	CreatedID  string
	Sort       string
}

// TicketFilter is the normalized, injection-safe predicate set. Identifier
// parameters have been validated as integers; labels and free text are only
// ever bound as query arguments downstream.
type TicketFilter struct {
	Status     *string
	Department *string
	Category   *string
	Content    *string
	UserID     *int64
	AssignedID *int64
	CreatedID  *int64
	Sort       string
}

// NormalizeTicketFilter validates and structures raw filter parameters.
// Empty or whitespace-only values produce no constraint rather than an
// exact-empty-string match; malformed identifiers fail validation instead of
// ever reaching the store as text.
func NormalizeTicketFilter(raw RawTicketFilter) (TicketFilter, error) {
	filter := TicketFilter{
		Status:     optionalLabel(raw.Status),
		Department: optionalLabel(raw.Department),
		Category:   optionalLabel(raw.Category),
		Content:    optionalLabel(raw.Content),
		Sort:       strings.TrimSpace(raw.Sort),
	}

	var err error
	if filter.UserID, err = optionalID("user_id", raw.UserID); err != nil {
		return TicketFilter{}, err
	}
	if filter.AssignedID, err = optionalID("assigned_id", raw.AssignedID); err != nil {
		return TicketFilter{}, err
	}
	if filter.CreatedID, err = optionalID("created_id", raw.CreatedID); err != nil {
		return TicketFilter{}, err
	}
	return filter, nil
}

func optionalLabel(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optionalID(name, val string) (*int64, error) {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id < 0 {
		return nil, util.NewValidationError("invalid identifier", map[string]any{name: trimmed})
	}
	return &id, nil
}
