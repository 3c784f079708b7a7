package models

// DeviceType is the hardware category of a Device.
type DeviceType string

const (
	DeviceActuator    DeviceType = "actuator"
	DeviceCamera      DeviceType = "camera"
	DeviceGas         DeviceType = "gas"
	DeviceHumidity    DeviceType = "humidity"
	DeviceLight       DeviceType = "light"
	DeviceMotion      DeviceType = "motion"
	DeviceTemperature DeviceType = "temperature"
)

// Device is a sensor or actuator bound to one Room, one account and one pin.
type Device struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Type    DeviceType  `json:"type"`
	Subtype string      `json:"subtype,omitempty"` // actuators only: light | fan | alarm
	RoomID  string      `json:"room_id"`
	OwnerID string      `json:"owner_id"`
	Pin     int         `json:"pin"`
	State   DeviceState `json:"state"`
}

// DeviceState is the last known on/value state of a Device.
type DeviceState struct {
	On    bool    `json:"on"`
	Value float64 `json:"value"`
}

// Room groups Devices behind one network-addressable controller.
// An empty Address disables dispatch and config push for the room.
type Room struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// HasAddress reports whether the room's controller can be reached.
func (r Room) HasAddress() bool {
	return r.Address != ""
}
