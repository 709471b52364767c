package record

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
	"gopkg.in/yaml.v3"

	"github.com/opslog/relay/relay"
)

// SealKeySize is the size of the store's secret sealing key.
const SealKeySize = 32

// Store persists configuration records as one yaml file per record under a
// data directory. Password values are sealed with the store key before they
// touch disk, text values are stored as written.
type Store struct {
	dir string
	key [SealKeySize]byte
}

// recordFile is the on-disk layout. Sealed holds base64 secretbox output
// for password fields, Values holds everything else.
type recordFile struct {
	RecordID  string            `yaml:"record-id"`
	Tenant    string            `yaml:"tenant"`
	Connector string            `yaml:"connector"`
	Version   string            `yaml:"version"`
	Active    bool              `yaml:"active"`
	Values    map[string]string `yaml:"values,omitempty"`
	Sealed    map[string]string `yaml:"sealed,omitempty"`
}

// MakeStore opens a record store rooted at dir, creating it if needed.
func MakeStore(dir string, sealKey [SealKeySize]byte) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("MakeStore(): failed to create %s: %w", dir, err)
	}
	return &Store{dir: dir, key: sealKey}, nil
}

func (s *Store) filename(recordID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.yaml", recordID))
}

// Save writes the record to disk, sealing secret values.
func (s *Store) Save(r *Record) error {
	file := recordFile{
		RecordID:  r.recordID,
		Tenant:    r.tenant,
		Connector: r.desc.ID,
		Version:   r.desc.Version,
		Active:    r.active,
		Values:    make(map[string]string),
		Sealed:    make(map[string]string),
	}
	for key, value := range r.values {
		field, ok := r.desc.Field(key)
		if ok && field.Type.Secret() {
			sealed, err := s.seal(value)
			if err != nil {
				return fmt.Errorf("Store.Save(): failed to seal %s: %w", key, err)
			}
			file.Sealed[key] = sealed
			continue
		}
		file.Values[key] = value
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("Store.Save(): %w", err)
	}
	if err := os.WriteFile(s.filename(r.recordID), data, 0600); err != nil {
		return fmt.Errorf("Store.Save(): %w", err)
	}
	return nil
}

// Load reads a record back, unsealing secrets. The descriptor revision the
// record was saved against must be supplied, a mismatch is an error rather
// than a silent rebind.
func (s *Store) Load(desc *relay.Descriptor, recordID string) (*Record, error) {
	data, err := os.ReadFile(s.filename(recordID))
	if err != nil {
		return nil, fmt.Errorf("Store.Load(): %w", err)
	}
	var file recordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("Store.Load(): mal-formed record file for %s: %w", recordID, err)
	}
	if file.Connector != desc.ID || file.Version != desc.Version {
		return nil, fmt.Errorf("Store.Load(): record %s was saved against %s@%s, not %s", recordID, file.Connector, file.Version, desc)
	}

	r := &Record{
		recordID: file.RecordID,
		tenant:   file.Tenant,
		desc:     desc,
		values:   make(map[string]string),
		active:   file.Active,
	}
	for key, value := range file.Values {
		r.values[key] = value
	}
	for key, sealed := range file.Sealed {
		value, err := s.open(sealed)
		if err != nil {
			return nil, fmt.Errorf("Store.Load(): failed to unseal %s: %w", key, err)
		}
		r.values[key] = value
	}
	return r, nil
}

// Delete removes a record from disk, the uninstall path for a tenant.
func (s *Store) Delete(recordID string) error {
	if err := os.Remove(s.filename(recordID)); err != nil {
		return fmt.Errorf("Store.Delete(): %w", err)
	}
	return nil
}

// List returns the record IDs present in the store.
func (s *Store) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("Store.List(): %w", err)
	}
	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		base := filepath.Base(match)
		ids = append(ids, base[:len(base)-len(".yaml")])
	}
	return ids, nil
}

func (s *Store) seal(value string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	sealed := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *Store) open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	if len(raw) < 24 {
		return "", fmt.Errorf("sealed value too short")
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	value, ok := secretbox.Open(nil, raw[24:], &nonce, &s.key)
	if !ok {
		return "", fmt.Errorf("sealed value failed to open, wrong store key or corrupt file")
	}
	return string(value), nil
}
