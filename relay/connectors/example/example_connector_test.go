package example

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opslog/relay/relay/connectors"
	"github.com/opslog/relay/relay/record"
)

var exCons = connectors.ConstructorFunc(func() connectors.Connector {
	return &exampleConnector{}
})

var exCon = exCons.New()

func TestConnectorDescriptor(t *testing.T) {
	desc := exCon.Descriptor()
	assert.Equal(t, "example", desc.ID)
	assert.Equal(t, descriptor, desc)
}

func TestConnectorActivatesOnDefaults(t *testing.T) {
	// endpoint is mandatory but carries a default, secret is optional, so a
	// fresh record activates without operator input.
	rec := record.New(exCon.Descriptor(), "tenant-a")
	require.NoError(t, rec.Activate())
}
