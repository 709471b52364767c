package relay

import (
	"fmt"
	"strings"
)

// SchemaError indicates a required attribute was missing or mal-formed.
// Load-time only, fatal to registration of the descriptor revision.
type SchemaError struct {
	// Attr is the offending attribute.
	Attr string
	// Field is the configuration field key the attribute belongs to, empty
	// for top-level attributes.
	Field string
	// Reason describes the violated constraint.
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema error in field %s, attribute %s: %s", e.Field, e.Attr, e.Reason)
	}
	return fmt.Sprintf("schema error in attribute %s: %s", e.Attr, e.Reason)
}

// DuplicateKeyError indicates two configuration fields share a storage key.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate configuration key: %s", e.Key)
}

// UnknownTypeError indicates a configuration field declared a type outside
// the host's recognized enumeration.
type UnknownTypeError struct {
	Field string
	Type  string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown field type (%s) in field %s", e.Type, e.Field)
}

// MissingMandatoryValueError is returned at activation time when mandatory
// fields without defaults have no operator supplied value. It is recoverable,
// the caller prompts for the listed keys and retries activation.
type MissingMandatoryValueError struct {
	Keys []string
}

func (e *MissingMandatoryValueError) Error() string {
	return fmt.Sprintf("missing value for mandatory field(s): %s", strings.Join(e.Keys, ", "))
}
