package inject

import (
	"encoding/json"
	"fmt"
)

// QualifierPolicy decides whether a qualifier that carries only default
// attribute values still distinguishes a key.
type QualifierPolicy int

const (
	// QualifierStrict keeps every qualifier. @Storage() and the unqualified
	// key are different keys even when every attribute of @Storage() is at
	// its default.
	QualifierStrict QualifierPolicy = iota

	// QualifierDefaultsAsUnqualified treats a qualifier whose attributes are
	// all at their defaults as absent, both when binding and when resolving.
	QualifierDefaultsAsUnqualified
)

// String returns the string representation of the QualifierPolicy.
func (p QualifierPolicy) String() string {
	switch p {
	case QualifierStrict:
		return "Strict"
	case QualifierDefaultsAsUnqualified:
		return "DefaultsAsUnqualified"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// IsValid checks if the policy is one of the declared values.
func (p QualifierPolicy) IsValid() bool {
	return p >= QualifierStrict && p <= QualifierDefaultsAsUnqualified
}

// MarshalText implements encoding.TextMarshaler.
func (p QualifierPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *QualifierPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Strict", "strict":
		*p = QualifierStrict
	case "DefaultsAsUnqualified", "defaults-as-unqualified":
		*p = QualifierDefaultsAsUnqualified
	default:
		return fmt.Errorf("invalid qualifier policy %q", string(text))
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p QualifierPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *QualifierPolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	return p.UnmarshalText([]byte(s))
}
