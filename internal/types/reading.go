package types

// Channel is the index of a value inside a SensorReading.
type Channel int

const (
	ChannelTemperature Channel = 0 // degrees Celsius
	ChannelLoad        Channel = 1 // kilograms on the hook
	ChannelReserved    Channel = 2 // wired but not used by the rules
	ChannelVibration   Channel = 3 // mm/s RMS
	ChannelPower       Channel = 4 // kilowatts drawn by the hoist motor
)

// DefaultDimensions is the channel count the shipped model was trained on.
// Channels 5 and 6 are reserved for future sensors.
const DefaultDimensions = 7

// String returns the channel name used in logs and API payloads.
func (c Channel) String() string {
	switch c {
	case ChannelTemperature:
		return "temperature"
	case ChannelLoad:
		return "load"
	case ChannelVibration:
		return "vibration"
	case ChannelPower:
		return "power"
	default:
		return "reserved"
	}
}

// SensorReading is one sample of raw channel values in physical units,
// addressed by Channel. Its length must match the model input dimension.
type SensorReading []float64

// Value returns the value at ch and whether the reading is long enough to hold it.
func (r SensorReading) Value(ch Channel) (float64, bool) {
	if ch < 0 || int(ch) >= len(r) {
		return 0, false
	}
	return r[ch], true
}

// Clone returns a copy that shares no memory with r.
func (r SensorReading) Clone() SensorReading {
	if r == nil {
		return nil
	}
	out := make(SensorReading, len(r))
	copy(out, r)
	return out
}

// NormalizedVector is a SensorReading scaled into the model's training range.
type NormalizedVector []float64
