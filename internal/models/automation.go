package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the modulus for schedule arithmetic.
const MinutesPerDay = 24 * 60

// Operator is a comparison applied by a SensorTrigger.
type Operator string

const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
)

// Valid reports whether op is one of the six supported operators.
func (op Operator) Valid() bool {
	switch op {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual:
		return true
	}
	return false
}

// Compare applies op to value and threshold. Equality is exact: no tolerance.
func (op Operator) Compare(value, threshold float64) bool {
	switch op {
	case OpGreater:
		return value > threshold
	case OpLess:
		return value < threshold
	case OpGreaterEqual:
		return value >= threshold
	case OpLessEqual:
		return value <= threshold
	case OpEqual:
		return value == threshold
	case OpNotEqual:
		return value != threshold
	}
	return false
}

// Command is the actuator instruction carried by an Action.
type Command string

const (
	CommandOn  Command = "on"
	CommandOff Command = "off"
)

// Valid reports whether c is on or off.
func (c Command) Valid() bool {
	return c == CommandOn || c == CommandOff
}

// Trigger is the closed set {SensorTrigger, ScheduleTrigger}.
// Match it with a type switch; the unexported method keeps the set closed.
type Trigger interface {
	triggerKind() string
}

// Trigger kinds as they appear on the wire and in storage.
const (
	TriggerSensor   = "sensor"
	TriggerSchedule = "schedule"
)

// SensorTrigger fires when the referenced device's reading satisfies Operator Threshold.
type SensorTrigger struct {
	DeviceID  string
	Operator  Operator
	Threshold float64
}

func (SensorTrigger) triggerKind() string { return TriggerSensor }

// ScheduleTrigger fires at StartMinute (minute of day, 0..1439).
// EndMinute, when set, bounds the on-window and may wrap past midnight.
type ScheduleTrigger struct {
	StartMinute int
	EndMinute   *int
	DaysOfWeek  []int // 0 = Sunday
}

func (ScheduleTrigger) triggerKind() string { return TriggerSchedule }

// WindowSeconds returns the on-window length in seconds, 0 when no end is set.
func (s ScheduleTrigger) WindowSeconds() int {
	if s.EndMinute == nil {
		return 0
	}
	minutes := ((*s.EndMinute-s.StartMinute)%MinutesPerDay + MinutesPerDay) % MinutesPerDay
	return minutes * 60
}

// KindOf returns the wire kind of t, or "" for nil.
func KindOf(t Trigger) string {
	if t == nil {
		return ""
	}
	return t.triggerKind()
}

// Shutoff is a local shutoff condition enforced by the room controller,
// never evaluated server side.
type Shutoff struct {
	DeviceID  string  `json:"deviceId"`
	Threshold float64 `json:"threshold"`
}

// Action is one actuator command of an Automation.
type Action struct {
	DeviceID         string   `json:"deviceId"`
	Command          Command  `json:"command"`
	Duration         *int     `json:"duration,omitempty"` // seconds
	SecondaryShutoff *Shutoff `json:"secondaryShutoff,omitempty"`
}

// HasDuration reports whether an explicit positive duration is set.
func (a Action) HasDuration() bool {
	return a.Duration != nil && *a.Duration > 0
}

// Automation pairs one Trigger with ordered Actions.
type Automation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	Trigger   Trigger   `json:"-"`
	Actions   []Action  `json:"actions"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeviceIDs returns the trigger device (sensor triggers only) followed by every action device.
func (a Automation) DeviceIDs() []string {
	ids := make([]string, 0, len(a.Actions)+1)
	if st, ok := a.Trigger.(SensorTrigger); ok {
		ids = append(ids, st.DeviceID)
	}
	for _, act := range a.Actions {
		ids = append(ids, act.DeviceID)
	}
	return ids
}

// triggerJSON is the API shape of a Trigger. Schedule times travel as "HH:MM".
type triggerJSON struct {
	Kind       string   `json:"kind"`
	DeviceID   string   `json:"deviceId,omitempty"`
	Operator   Operator `json:"operator,omitempty"`
	Threshold  *float64 `json:"threshold,omitempty"`
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
	DaysOfWeek []int    `json:"daysOfWeek,omitempty"`
}

type automationAlias Automation

type automationJSON struct {
	automationAlias
	Trigger *triggerJSON `json:"trigger"`
}

// MarshalJSON renders the trigger as a kind-tagged object.
func (a Automation) MarshalJSON() ([]byte, error) {
	out := automationJSON{automationAlias: automationAlias(a)}
	switch t := a.Trigger.(type) {
	case SensorTrigger:
		th := t.Threshold
		out.Trigger = &triggerJSON{Kind: TriggerSensor, DeviceID: t.DeviceID, Operator: t.Operator, Threshold: &th}
	case ScheduleTrigger:
		tj := &triggerJSON{Kind: TriggerSchedule, Start: FormatClock(t.StartMinute), DaysOfWeek: t.DaysOfWeek}
		if t.EndMinute != nil {
			tj.End = FormatClock(*t.EndMinute)
		}
		out.Trigger = tj
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a kind-tagged trigger into the matching variant.
func (a *Automation) UnmarshalJSON(data []byte) error {
	var in automationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Automation(in.automationAlias)
	if in.Trigger == nil {
		a.Trigger = nil
		return nil
	}
	t, err := in.Trigger.decode()
	if err != nil {
		return err
	}
	a.Trigger = t
	return nil
}

func (tj *triggerJSON) decode() (Trigger, error) {
	switch tj.Kind {
	case TriggerSensor:
		if tj.Threshold == nil {
			return nil, errors.New("sensor trigger: threshold is required")
		}
		return SensorTrigger{DeviceID: tj.DeviceID, Operator: tj.Operator, Threshold: *tj.Threshold}, nil
	case TriggerSchedule:
		start, err := ParseClock(tj.Start)
		if err != nil {
			return nil, fmt.Errorf("schedule trigger start: %w", err)
		}
		st := ScheduleTrigger{StartMinute: start, DaysOfWeek: tj.DaysOfWeek}
		if tj.End != "" {
			end, err := ParseClock(tj.End)
			if err != nil {
				return nil, fmt.Errorf("schedule trigger end: %w", err)
			}
			st.EndMinute = &end
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown trigger kind %q", tj.Kind)
	}
}

// ParseClock converts "HH:MM" to a minute of day.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders a minute of day as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
