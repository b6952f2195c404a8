package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"whitespace string", "   ", true},
		{"string", "hello", false},
		{"zero float", 0.0, true},
		{"float", 12.5, false},
		{"zero int", 0, true},
		{"int", 3, false},
		{"zero json number", json.Number("0"), true},
		{"json number", json.Number("42"), false},
		{"malformed json number", json.Number("x"), true},
		{"bool false", false, false},
		{"map", map[string]any{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsEmpty(tc.v); got != tc.want {
				t.Fatalf("IsEmpty(%v) = %v, want %v", tc.v, got, tc.want)
			}
		})
	}
}

func TestTimestampFormatSortsLexicographically(t *testing.T) {
	whole := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	fractional := whole.Add(500 * time.Millisecond)

	older := whole.Format(TimestampFormat)
	newer := fractional.Format(TimestampFormat)
	if !(older < newer) {
		t.Fatalf("string order diverges from chronological: %q vs %q", older, newer)
	}
	if len(older) != len(newer) {
		t.Fatalf("format is not fixed width: %q vs %q", older, newer)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "title"}
	if err.Error() != "title is required" {
		t.Fatalf("message: %q", err.Error())
	}
}

func TestSchemaDefaults(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	task := TaskSchema().Defaults(now)
	if task["priority"] != PriorityNormal || task["status"] != StatusPending {
		t.Fatalf("task defaults: %v", task)
	}

	tx := TransactionSchema().Defaults(now)
	if tx["date"] != now.Format(time.RFC3339) {
		t.Fatalf("transaction date default: %v", tx["date"])
	}

	client := ClientSchema().Defaults(now)
	if _, ok := client["name"]; ok {
		t.Fatal("required fields must not carry defaults")
	}
}
