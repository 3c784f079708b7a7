package service

import "roomhub/internal/models"

// sensorAliases maps the short keys sent by room controllers to canonical device types.
var sensorAliases = map[string]models.DeviceType{
	"temp": models.DeviceTemperature,
	"hum":  models.DeviceHumidity,
	"ldr":  models.DeviceLight,
	"pir":  models.DeviceMotion,
	"mq2":  models.DeviceGas,
}

var reverseAliases = func() map[models.DeviceType]string {
	m := make(map[models.DeviceType]string, len(sensorAliases))
	for k, v := range sensorAliases {
		m[v] = k
	}
	return m
}()

// CanonicalType translates a report key. Unknown keys pass through as their own type.
func CanonicalType(key string) models.DeviceType {
	if t, ok := sensorAliases[key]; ok {
		return t
	}
	return models.DeviceType(key)
}

// reportValue finds the raw reading for a device type: the alias key first, then
// the canonical name itself.
func reportValue(readings map[string]any, t models.DeviceType) (any, bool) {
	if key, ok := reverseAliases[t]; ok {
		if v, ok := readings[key]; ok {
			return v, true
		}
	}
	v, ok := readings[string(t)]
	return v, ok
}

// unitFor returns the unit stored with a reading; only temperature and humidity carry one.
func unitFor(t models.DeviceType) string {
	switch t {
	case models.DeviceTemperature:
		return "°C"
	case models.DeviceHumidity:
		return "%"
	}
	return ""
}
