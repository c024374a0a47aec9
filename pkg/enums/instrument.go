package enums

import "fmt"

// InstrumentType represents the fixed catalog taxonomy.
type InstrumentType string

const (
	InstrumentTypeElectric  InstrumentType = "electric"
	InstrumentTypeAcoustic  InstrumentType = "acoustic"
	InstrumentTypeBass      InstrumentType = "bass"
	InstrumentTypeClassical InstrumentType = "classical"
)

var validInstrumentTypes = []InstrumentType{
	InstrumentTypeElectric,
	InstrumentTypeAcoustic,
	InstrumentTypeBass,
	InstrumentTypeClassical,
}

// String implements fmt.Stringer.
func (t InstrumentType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known InstrumentType.
func (t InstrumentType) IsValid() bool {
	for _, candidate := range validInstrumentTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseInstrumentType converts raw input into an InstrumentType.
func ParseInstrumentType(value string) (InstrumentType, error) {
	for _, candidate := range validInstrumentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid instrument type %q", value)
}

// InstrumentTypes returns the full taxonomy in a stable order.
func InstrumentTypes() []InstrumentType {
	out := make([]InstrumentType, len(validInstrumentTypes))
	copy(out, validInstrumentTypes)
	return out
}
