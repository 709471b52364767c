package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/opslog/relay/relay"
)

// Revision identifies one immutable descriptor revision. The registry is the
// sole owner of the mapping from Revision to descriptor content.
type Revision struct {
	ID      string
	Version string
}

func (r Revision) String() string {
	return fmt.Sprintf("%s@%s", r.ID, r.Version)
}

// Registry is the host plugin catalog. Descriptors are registered once,
// read-only, and superseded by new revisions rather than mutated.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[Revision]*relay.Descriptor
}

// MakeRegistry creates an empty catalog.
func MakeRegistry() *Registry {
	return &Registry{
		descriptors: make(map[Revision]*relay.Descriptor),
	}
}

// Register validates the descriptor and inserts it under (id, version).
// Registration is all or nothing, an invalid or duplicate revision leaves
// the catalog untouched.
func (r *Registry) Register(d *relay.Descriptor) error {
	if d == nil {
		return fmt.Errorf("Registry.Register(): nil descriptor")
	}
	if err := d.Valid(); err != nil {
		LoadFailures.Inc()
		return fmt.Errorf("Registry.Register(): %w", err)
	}

	rev := Revision{ID: d.ID, Version: d.Version}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.descriptors[rev]; ok {
		LoadFailures.Inc()
		return fmt.Errorf("Registry.Register(): revision %s already registered", rev)
	}
	r.descriptors[rev] = d
	DescriptorsRegistered.Inc()
	return nil
}

// Load parses, validates and registers a serialized descriptor in one
// synchronous step.
func (r *Registry) Load(data []byte) (*relay.Descriptor, error) {
	d, err := relay.ParseDescriptor(data)
	if err != nil {
		LoadFailures.Inc()
		return nil, err
	}
	if err := r.Register(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Revision returns the descriptor registered under (id, version).
func (r *Registry) Revision(id string, version string) (*relay.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[Revision{ID: id, Version: version}]
	if !ok {
		return nil, fmt.Errorf("no descriptor registered for %s@%s", id, version)
	}
	return d, nil
}

// Latest returns the highest registered version for an id.
func (r *Registry) Latest(id string) (*relay.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *relay.Descriptor
	var latestVer *semver.Version
	for rev, d := range r.descriptors {
		if rev.ID != id {
			continue
		}
		v := d.SemVer()
		if latestVer == nil || v.GreaterThan(latestVer) {
			latest, latestVer = d, v
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no descriptor registered for id %s", id)
	}
	return latest, nil
}

// Revisions returns every registered revision of an id ordered by version,
// oldest first.
func (r *Registry) Revisions(id string) []*relay.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var revisions []*relay.Descriptor
	for rev, d := range r.descriptors {
		if rev.ID == id {
			revisions = append(revisions, d)
		}
	}
	sort.Slice(revisions, func(i, j int) bool {
		return revisions[i].SemVer().LessThan(revisions[j].SemVer())
	})
	return revisions
}

// IDs returns the sorted identifiers present in the catalog.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var ids []string
	for rev := range r.descriptors {
		if !seen[rev.ID] {
			seen[rev.ID] = true
			ids = append(ids, rev.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// defaultRegistry backs the package level registration functions. This
// mechanism allows for loose coupling between connector packages and the
// host, it is extremely similar to the way sql.DB drivers are configured
// and used.
var defaultRegistry = MakeRegistry()

// Register registers a descriptor with the default catalog, connector
// packages call this from their init().
func Register(d *relay.Descriptor) error {
	return defaultRegistry.Register(d)
}

// Default returns the catalog shared by all connector packages.
func Default() *Registry {
	return defaultRegistry
}
