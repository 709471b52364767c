package relay

import (
	"bytes"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// FieldType is the validation/rendering kind of a configuration field.
type FieldType string

const (
	// FieldText is a plain string field.
	FieldText FieldType = "text"

	// FieldPassword is a string field whose value is a secret. It must never
	// be logged or exported in plaintext.
	FieldPassword FieldType = "password"
)

// FieldTypes is the closed set of recognized field types. Adding a type here
// is the only way to extend the enumeration.
var FieldTypes = map[FieldType]bool{
	FieldText:     true,
	FieldPassword: true,
}

// Secret reports whether values of this type must be masked.
func (t FieldType) Secret() bool {
	return t == FieldPassword
}

// DataType is an ingestion category a connector may declare support for.
type DataType string

const (
	// DataEvents are activity events.
	DataEvents DataType = "events"

	// DataAlerts are alert records.
	DataAlerts DataType = "alerts"

	// DataWebTx are web transaction logs.
	DataWebTx DataType = "webtx"
)

// DataTypes is the closed set of ingestion categories known to the host.
var DataTypes = map[DataType]bool{
	DataEvents: true,
	DataAlerts: true,
	DataWebTx:  true,
}

// ConfigField defines a single operator-supplied configuration value.
type ConfigField struct {
	// Label is the operator facing name.
	Label string `yaml:"label"`
	// Key is the storage key for the value, unique within the descriptor.
	Key string `yaml:"key"`
	// Type is the field kind, drawn from FieldTypes.
	Type FieldType `yaml:"type"`
	// Default is an optional default value. Empty means no default.
	Default string `yaml:"default,omitempty"`
	// Mandatory fields must hold a non-empty value before activation.
	Mandatory bool `yaml:"mandatory"`
	// Description is free text guidance for the operator.
	Description string `yaml:"description,omitempty"`
}

// HasDefault reports whether the field carries a default value.
func (f ConfigField) HasDefault() bool {
	return f.Default != ""
}

// Descriptor is the immutable metadata record describing a connector. It is
// constructed once by ParseDescriptor and never mutated, revisions are new
// values keyed by (ID, Version).
type Descriptor struct {
	// Name is the human readable display name.
	Name string `yaml:"name"`
	// ID is the stable machine identifier, immutable across versions.
	ID string `yaml:"id"`
	// Version is a semantic version string identifying this revision.
	Version string `yaml:"version"`
	// Mapping optionally names a default field-mapping profile.
	Mapping string `yaml:"mapping,omitempty"`
	// Types lists the ingestion categories the connector supports.
	Types []DataType `yaml:"types"`
	// Description is informational only.
	Description string `yaml:"description,omitempty"`
	// Configuration is the ordered list of field definitions.
	Configuration []ConfigField `yaml:"configuration"`
}

// rawField mirrors ConfigField with pointer members so that a missing
// attribute can be told apart from a zero value during parsing.
type rawField struct {
	Label       *string `yaml:"label"`
	Key         *string `yaml:"key"`
	Type        *string `yaml:"type"`
	Default     *string `yaml:"default"`
	Mandatory   *bool   `yaml:"mandatory"`
	Description string  `yaml:"description"`
}

type rawDescriptor struct {
	Name          *string    `yaml:"name"`
	ID            *string    `yaml:"id"`
	Version       *string    `yaml:"version"`
	Mapping       string     `yaml:"mapping"`
	Types         []string   `yaml:"types"`
	Description   string     `yaml:"description"`
	Configuration []rawField `yaml:"configuration"`
}

// ParseDescriptor parses and validates a serialized descriptor in a single
// synchronous pass. It returns either a fully validated Descriptor or a
// structured error naming the violated constraint, never a partial result.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var raw rawDescriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, &SchemaError{Attr: "descriptor", Reason: fmt.Sprintf("mal-formed yaml: %v", err)}
	}

	required := []struct {
		attr string
		ptr  *string
	}{
		{"name", raw.Name},
		{"id", raw.ID},
		{"version", raw.Version},
	}
	for _, r := range required {
		if r.ptr == nil || *r.ptr == "" {
			return nil, &SchemaError{Attr: r.attr, Reason: "missing required top-level attribute"}
		}
	}
	if raw.Types == nil {
		return nil, &SchemaError{Attr: "types", Reason: "missing required top-level attribute"}
	}
	if raw.Configuration == nil {
		return nil, &SchemaError{Attr: "configuration", Reason: "missing required top-level attribute"}
	}

	d := Descriptor{
		Name:        *raw.Name,
		ID:          *raw.ID,
		Version:     *raw.Version,
		Mapping:     raw.Mapping,
		Description: raw.Description,
	}
	for _, t := range raw.Types {
		d.Types = append(d.Types, DataType(t))
	}

	for i, rf := range raw.Configuration {
		if rf.Key == nil || *rf.Key == "" {
			return nil, &SchemaError{Attr: "key", Field: fmt.Sprintf("configuration[%d]", i), Reason: "missing required attribute"}
		}
		field := ConfigField{Key: *rf.Key, Description: rf.Description}
		if rf.Label == nil || *rf.Label == "" {
			return nil, &SchemaError{Attr: "label", Field: field.Key, Reason: "missing required attribute"}
		}
		field.Label = *rf.Label
		if rf.Type == nil {
			return nil, &SchemaError{Attr: "type", Field: field.Key, Reason: "missing required attribute"}
		}
		field.Type = FieldType(*rf.Type)
		if rf.Mandatory == nil {
			return nil, &SchemaError{Attr: "mandatory", Field: field.Key, Reason: "missing required attribute"}
		}
		field.Mandatory = *rf.Mandatory
		if rf.Default != nil {
			field.Default = *rf.Default
		}
		d.Configuration = append(d.Configuration, field)
	}

	if err := d.Valid(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Valid validates the descriptor content against the host schema.
func (d *Descriptor) Valid() error {
	if d.Name == "" {
		return &SchemaError{Attr: "name", Reason: "display name was empty"}
	}
	if d.ID == "" {
		return &SchemaError{Attr: "id", Reason: "identifier was empty"}
	}
	if _, err := semver.NewVersion(d.Version); err != nil {
		return &SchemaError{Attr: "version", Reason: fmt.Sprintf("not a semantic version (%s): %v", d.Version, err)}
	}

	if len(d.Types) == 0 {
		return &SchemaError{Attr: "types", Reason: "must declare at least one ingestion category"}
	}
	seenTypes := make(map[DataType]bool)
	for _, t := range d.Types {
		if !DataTypes[t] {
			return &SchemaError{Attr: "types", Reason: fmt.Sprintf("unknown ingestion category (%s)", t)}
		}
		if seenTypes[t] {
			return &SchemaError{Attr: "types", Reason: fmt.Sprintf("duplicate ingestion category (%s)", t)}
		}
		seenTypes[t] = true
	}

	seenKeys := make(map[string]bool)
	for _, field := range d.Configuration {
		if field.Key == "" {
			return &SchemaError{Attr: "key", Reason: "storage key was empty"}
		}
		if seenKeys[field.Key] {
			return &DuplicateKeyError{Key: field.Key}
		}
		seenKeys[field.Key] = true

		if field.Label == "" {
			return &SchemaError{Attr: "label", Field: field.Key, Reason: "label was empty"}
		}
		if !FieldTypes[field.Type] {
			return &UnknownTypeError{Field: field.Key, Type: string(field.Type)}
		}
		// Shipping a secret inside a descriptor would leak a credential to
		// every tenant, so password fields cannot carry defaults.
		if field.Type.Secret() && field.HasDefault() {
			return &SchemaError{Attr: "default", Field: field.Key, Reason: "password fields cannot declare a default value"}
		}
	}

	return nil
}

// MandatoryFields returns the fields an operator must supply before the
// connector can be activated, in declaration order.
func (d *Descriptor) MandatoryFields() []ConfigField {
	var fields []ConfigField
	for _, field := range d.Configuration {
		if field.Mandatory && !field.HasDefault() {
			fields = append(fields, field)
		}
	}
	return fields
}

// Field looks up a configuration field by its storage key.
func (d *Descriptor) Field(key string) (ConfigField, bool) {
	for _, field := range d.Configuration {
		if field.Key == key {
			return field, true
		}
	}
	return ConfigField{}, false
}

// SemVer returns the parsed semantic version of this revision.
func (d *Descriptor) SemVer() *semver.Version {
	// Valid() already proved this parses.
	v, _ := semver.NewVersion(d.Version)
	return v
}

// Marshal serializes the descriptor. Parsing the result yields a descriptor
// equal to the receiver.
func (d *Descriptor) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("Descriptor.Marshal(): %w", err)
	}
	return out, nil
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s@%s", d.ID, d.Version)
}
