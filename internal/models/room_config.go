package models

// RoomConfig is the snapshot a room controller pulls on boot or receives on push.
type RoomConfig struct {
	RoomID      string             `json:"roomId"`
	RoomName    string             `json:"roomName"`
	Address     string             `json:"address"`
	Devices     []ConfigDevice     `json:"devices"`
	Automations []ConfigAutomation `json:"automations"`
}

type ConfigDevice struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Pin  int        `json:"pin"`
	Type DeviceType `json:"type"`
}

// ConfigAutomation is one normalized automation. Exactly one of Condition or Schedule is set.
type ConfigAutomation struct {
	ID               string           `json:"id"`
	Active           bool             `json:"active"`
	Kind             string           `json:"kind"`
	Condition        *ConfigCondition `json:"condition,omitempty"`
	Schedule         *ConfigSchedule  `json:"schedule,omitempty"`
	Action           *ConfigAction    `json:"action,omitempty"`
	ShutoffCondition *ConfigCondition `json:"shutoffCondition,omitempty"`
}

type ConfigCondition struct {
	DeviceID   string     `json:"deviceId"`
	DeviceType DeviceType `json:"deviceType"`
	Threshold  float64    `json:"threshold"`
	Operator   Operator   `json:"operator"`
}

type ConfigSchedule struct {
	StartHour   int   `json:"startHour"`
	StartMinute int   `json:"startMinute"`
	EndHour     *int  `json:"endHour,omitempty"`
	EndMinute   *int  `json:"endMinute,omitempty"`
	DaysOfWeek  []int `json:"daysOfWeek"`
}

// ConfigAction carries the command upper-cased (ON/OFF) for the controller firmware.
type ConfigAction struct {
	DeviceID string `json:"deviceId"`
	Command  string `json:"command"`
	Duration int    `json:"duration"`
}
