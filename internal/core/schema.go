package core

import (
	"encoding/json"
	"strings"
	"time"
)

// Collection names for the three managed resources.
const (
	CollectionTasks        = "tasks"
	CollectionClients      = "clients"
	CollectionTransactions = "transactions"
)

// Task field values.
const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"

	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Transaction types. "sale" denotes income.
const (
	TypeSale    = "sale"
	TypeExpense = "expense"
)

// TimestampFormat is the canonical encoding for createdAt values: RFC 3339
// in UTC with a fixed nine-digit fraction. The fixed width keeps
// lexicographic and chronological order identical, which the store relies on
// for newest-first listing. RFC3339Nano would not: it drops trailing zeros,
// and "...00Z" compares greater than "...00.5Z".
const TimestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Schema declares one managed resource: the collection it lives in, the
// fields that must be present at creation, and the default values merged
// under caller-supplied fields. Defaults takes the current server time so a
// schema can default a field to "now".
type Schema struct {
	Collection string
	Required   []string
	Defaults   func(now time.Time) map[string]any
}

// TaskSchema describes the tasks collection.
func TaskSchema() Schema {
	return Schema{
		Collection: CollectionTasks,
		Required:   []string{"title"},
		Defaults: func(time.Time) map[string]any {
			return map[string]any{
				"description": "",
				"dueDate":     nil,
				"priority":    PriorityNormal,
				"status":      StatusPending,
			}
		},
	}
}

// ClientSchema describes the clients collection.
func ClientSchema() Schema {
	return Schema{
		Collection: CollectionClients,
		Required:   []string{"name"},
		Defaults: func(time.Time) map[string]any {
			return map[string]any{
				"phone":        "",
				"company":      "",
				"email":        "",
				"address":      "",
				"followUpDate": nil,
				"notes":        "",
			}
		},
	}
}

// TransactionSchema describes the transactions collection. The business date
// defaults to the server clock, distinct from the immutable createdAt stamp.
func TransactionSchema() Schema {
	return Schema{
		Collection: CollectionTransactions,
		Required:   []string{"amount", "type"},
		Defaults: func(now time.Time) map[string]any {
			return map[string]any{
				"note": "",
				"date": now.UTC().Format(time.RFC3339),
			}
		},
	}
}

// ValidationError reports a required field that was missing or empty at
// creation time. It maps to a 400 at the route boundary.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// IsEmpty reports whether a caller-supplied value counts as absent for
// required-field checks: nil, blank strings, and zero numbers all do.
// Zero numbers match the original behavior of rejecting amount=0.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case float64:
		return val == 0
	case float32:
		return val == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case json.Number:
		f, err := val.Float64()
		return err != nil || f == 0
	default:
		return false
	}
}
