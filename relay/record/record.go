// Package record implements the per-tenant Configuration Record, the
// instance data an operator supplies against a connector descriptor. The
// record's lifecycle is owned by the host, the descriptor it binds to is
// never mutated.
package record

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/opslog/relay/relay"
)

const redactedValue = "*****"

// Record holds operator supplied values keyed by configuration field key,
// bound to one descriptor revision and one tenant.
type Record struct {
	recordID string
	tenant   string
	desc     *relay.Descriptor
	values   map[string]string
	active   bool
}

// New creates a record for the given tenant, seeded with the descriptor's
// default values.
func New(desc *relay.Descriptor, tenant string) *Record {
	r := &Record{
		recordID: uuid.NewString(),
		tenant:   tenant,
		desc:     desc,
		values:   make(map[string]string),
	}
	for _, field := range desc.Configuration {
		if field.HasDefault() {
			r.values[field.Key] = field.Default
		}
	}
	return r
}

// ID returns the record identifier.
func (r *Record) ID() string {
	return r.recordID
}

// Tenant returns the tenant the record belongs to.
func (r *Record) Tenant() string {
	return r.tenant
}

// Descriptor returns the descriptor revision the record is bound to.
func (r *Record) Descriptor() *relay.Descriptor {
	return r.desc
}

// Active reports whether the record passed activation.
func (r *Record) Active() bool {
	return r.active
}

// Set stores a value for a configuration field. Keys not declared by the
// descriptor are rejected.
func (r *Record) Set(key string, value string) error {
	if _, ok := r.desc.Field(key); !ok {
		return fmt.Errorf("Record.Set(): descriptor %s declares no field %s", r.desc, key)
	}
	r.values[key] = value
	return nil
}

// Apply stores a batch of operator supplied values.
func (r *Record) Apply(values map[string]string) error {
	// Validate the batch before touching the record.
	for key := range values {
		if _, ok := r.desc.Field(key); !ok {
			return fmt.Errorf("Record.Apply(): descriptor %s declares no field %s", r.desc, key)
		}
	}
	for key, value := range values {
		r.values[key] = value
	}
	return nil
}

// Value returns the stored value for a key. Secret values come back masked,
// use Secret for the plaintext.
func (r *Record) Value(key string) (string, bool) {
	field, ok := r.desc.Field(key)
	if !ok {
		return "", false
	}
	value, ok := r.values[key]
	if !ok {
		return "", false
	}
	if field.Type.Secret() {
		return redactedValue, true
	}
	return value, true
}

// Secret returns the plaintext value of a password field. It is the only
// plaintext accessor for secrets and exists for handoff to the ingestion
// engine, never for display.
func (r *Record) Secret(key string) (string, error) {
	field, ok := r.desc.Field(key)
	if !ok {
		return "", fmt.Errorf("Record.Secret(): descriptor %s declares no field %s", r.desc, key)
	}
	if !field.Type.Secret() {
		return "", fmt.Errorf("Record.Secret(): field %s is not a secret", key)
	}
	return r.values[key], nil
}

// Missing returns the mandatory keys, in declaration order, that still hold
// no non-empty value.
func (r *Record) Missing() []string {
	var missing []string
	for _, field := range r.desc.MandatoryFields() {
		if r.values[field.Key] == "" {
			missing = append(missing, field.Key)
		}
	}
	return missing
}

// Activate marks the record active once every mandatory field holds a value.
// On failure it returns a MissingMandatoryValueError listing all missing
// keys, the caller prompts the operator and retries. The record is never
// partially activated.
func (r *Record) Activate() error {
	if missing := r.Missing(); len(missing) > 0 {
		return &relay.MissingMandatoryValueError{Keys: missing}
	}
	r.active = true
	return nil
}

// Deactivate marks the record inactive.
func (r *Record) Deactivate() {
	r.active = false
}

// Redacted returns all stored values with secrets masked, safe for display
// and export.
func (r *Record) Redacted() map[string]string {
	out := make(map[string]string, len(r.values))
	for key, value := range r.values {
		if field, ok := r.desc.Field(key); ok && field.Type.Secret() {
			out[key] = redactedValue
			continue
		}
		out[key] = value
	}
	return out
}

// Migrate carries the record forward onto a newer revision of the same
// connector. Values for keys that survive are copied, removed keys are
// dropped, and the keys that became mandatory without a value are returned.
// Whether those force re-activation is the host's policy, the migrated
// record simply starts inactive when any are missing.
func (r *Record) Migrate(next *relay.Descriptor) (*Record, []string, error) {
	if next.ID != r.desc.ID {
		return nil, nil, fmt.Errorf("Record.Migrate(): cannot migrate %s record onto %s", r.desc.ID, next.ID)
	}
	if !next.SemVer().GreaterThan(r.desc.SemVer()) {
		return nil, nil, fmt.Errorf("Record.Migrate(): %s does not supersede %s", next, r.desc)
	}

	migrated := New(next, r.tenant)
	migrated.recordID = r.recordID
	for key, value := range r.values {
		if _, ok := next.Field(key); ok && value != "" {
			migrated.values[key] = value
		}
	}

	missing := migrated.Missing()
	migrated.active = r.active && len(missing) == 0
	return migrated, missing, nil
}

// MarshalYAML exports the record with secrets masked. Plaintext secrets
// never pass through a generic serialization path, the sealed store has its
// own encoding.
func (r *Record) MarshalYAML() (interface{}, error) {
	keys := make([]string, 0, len(r.values))
	for key := range r.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	redacted := r.Redacted()
	values := yaml.Node{Kind: yaml.MappingNode}
	for _, key := range keys {
		values.Content = append(values.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: redacted[key]},
		)
	}

	return struct {
		RecordID  string    `yaml:"record-id"`
		Tenant    string    `yaml:"tenant"`
		Connector string    `yaml:"connector"`
		Version   string    `yaml:"version"`
		Active    bool      `yaml:"active"`
		Values    yaml.Node `yaml:"values"`
	}{
		RecordID:  r.recordID,
		Tenant:    r.tenant,
		Connector: r.desc.ID,
		Version:   r.desc.Version,
		Active:    r.active,
		Values:    values,
	}, nil
}

func (r *Record) String() string {
	return fmt.Sprintf("%s/%s (%s)", r.desc, r.tenant, r.recordID)
}
