package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opslog/relay/relay"
)

var descriptorTemplate = `name: Microsoft Defender for Cloud Apps
id: mcas_cls
version: %s
types:
  - events
configuration:
  - label: API Token
    key: token
    type: password
    mandatory: true
`

func makeDescriptor(t *testing.T, version string) *relay.Descriptor {
	desc, err := relay.ParseDescriptor([]byte(fmt.Sprintf(descriptorTemplate, version)))
	require.NoError(t, err)
	return desc
}

func TestRegistryRegister(t *testing.T) {
	catalog := MakeRegistry()
	desc := makeDescriptor(t, "1.0.0")
	require.NoError(t, catalog.Register(desc))

	got, err := catalog.Revision("mcas_cls", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, desc, got)

	_, err = catalog.Revision("mcas_cls", "9.9.9")
	assert.Error(t, err)
	_, err = catalog.Revision("unknown", "1.0.0")
	assert.Error(t, err)
}

func TestRegistryDuplicateRevision(t *testing.T) {
	catalog := MakeRegistry()
	require.NoError(t, catalog.Register(makeDescriptor(t, "1.0.0")))

	err := catalog.Register(makeDescriptor(t, "1.0.0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	// The original registration is untouched.
	_, err = catalog.Revision("mcas_cls", "1.0.0")
	assert.NoError(t, err)
}

func TestRegistryRejectsInvalid(t *testing.T) {
	catalog := MakeRegistry()
	err := catalog.Register(&relay.Descriptor{Name: "x", ID: "x", Version: "not-semver"})
	require.Error(t, err)

	// Nothing was partially registered.
	assert.Empty(t, catalog.IDs())
}

func TestRegistryLoad(t *testing.T) {
	catalog := MakeRegistry()
	desc, err := catalog.Load([]byte(fmt.Sprintf(descriptorTemplate, "1.0.0")))
	require.NoError(t, err)
	assert.Equal(t, "mcas_cls", desc.ID)

	_, err = catalog.Load([]byte("name: broken\n"))
	require.Error(t, err)
	assert.Equal(t, []string{"mcas_cls"}, catalog.IDs())
}

func TestRegistryLatest(t *testing.T) {
	catalog := MakeRegistry()
	for _, version := range []string{"1.0.0", "1.10.0", "1.2.0"} {
		require.NoError(t, catalog.Register(makeDescriptor(t, version)))
	}

	latest, err := catalog.Latest("mcas_cls")
	require.NoError(t, err)
	// Semver ordering, not lexical: 1.10.0 beats 1.2.0.
	assert.Equal(t, "1.10.0", latest.Version)

	_, err = catalog.Latest("unknown")
	assert.Error(t, err)
}

func TestRegistryRevisions(t *testing.T) {
	catalog := MakeRegistry()
	for _, version := range []string{"1.10.0", "1.0.0", "1.2.0"} {
		require.NoError(t, catalog.Register(makeDescriptor(t, version)))
	}

	var versions []string
	for _, desc := range catalog.Revisions("mcas_cls") {
		versions = append(versions, desc.Version)
	}
	assert.Equal(t, []string{"1.0.0", "1.2.0", "1.10.0"}, versions)

	assert.Empty(t, catalog.Revisions("unknown"))
}

func TestRegistryIDs(t *testing.T) {
	catalog := MakeRegistry()
	require.NoError(t, catalog.Register(makeDescriptor(t, "1.0.0")))

	other := makeDescriptor(t, "1.0.0")
	other.ID = "aws_s3"
	require.NoError(t, catalog.Register(other))

	assert.Equal(t, []string{"aws_s3", "mcas_cls"}, catalog.IDs())
}
