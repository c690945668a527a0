package report

import (
	"encoding/json"
	"time"
)

// CheckState is the threshold classification attached to a value.
type CheckState string

const (
	Green CheckState = "green"
	Red   CheckState = "red"
)

// Valid reports whether s is one of the active tiers.
func (s CheckState) Valid() bool {
	return s == Green || s == Red
}

// StateOf maps a predicate result to a check state: true is red.
func StateOf(alerting bool) CheckState {
	if alerting {
		return Red
	}
	return Green
}

// Check is the evaluated threshold of a value.
type Check struct {
	State CheckState `json:"state"`
}

// Value is an annotated leaf: a raw scalar plus counter, unit and check metadata.
type Value struct {
	Value   Scalar
	Counter bool
	Unit    string
	Check   *Check
}

// Option configures a Value built by Encode.
type Option func(*Value)

// Counter marks the value as monotonically non-decreasing.
func Counter() Option {
	return func(v *Value) { v.Counter = true }
}

// Unit sets the value unit ("bytes", "seconds", "percents", ...).
func Unit(unit string) Option {
	return func(v *Value) { v.Unit = unit }
}

// Checked attaches a check state. Invalid states are ignored,
// leaving the value unchecked.
func Checked(state CheckState) Option {
	return func(v *Value) {
		if state.Valid() {
			v.Check = &Check{State: state}
		}
	}
}

// Encode wraps a scalar into an annotated value.
func Encode(value Scalar, opts ...Option) Value {
	v := Value{Value: value}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

// State returns the check state, or "" when the value is unchecked.
func (v Value) State() CheckState {
	if v.Check == nil {
		return ""
	}
	return v.Check.State
}

func (Value) node() {}

type wireValue struct {
	Value   Scalar `json:"__value"`
	Counter bool   `json:"__counter,omitempty"`
	Unit    string `json:"__unit,omitempty"`
	Check   *Check `json:"__check,omitempty"`
}

// MarshalJSON implements json.Marshaler using the hub wire names.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireValue(v))
}

// Watchdog is the deadline block: the hub raises an alert when no fresh
// report arrives before Deadline.
type Watchdog struct {
	Deadline int64
}

// NewWatchdog returns a watchdog whose deadline is now+interval in epoch milliseconds.
func NewWatchdog(now time.Time, interval time.Duration) Watchdog {
	return Watchdog{Deadline: now.Add(interval).UnixMilli()}
}

func (Watchdog) node() {}

// MarshalJSON implements json.Marshaler.
func (w Watchdog) MarshalJSON() ([]byte, error) {
	type deadline struct {
		Deadline int64 `json:"deadline"`
	}
	return json.Marshal(struct {
		Watchdog deadline `json:"__watchdog"`
	}{deadline{w.Deadline}})
}
