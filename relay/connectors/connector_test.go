package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opslog/relay/relay"
)

type testConnector struct {
	desc *relay.Descriptor
}

func (con *testConnector) Descriptor() *relay.Descriptor {
	return con.desc
}

func TestRegisterAndLookup(t *testing.T) {
	desc := &relay.Descriptor{
		Name:    "Test",
		ID:      "test_cls",
		Version: "1.0.0",
		Types:   []relay.DataType{relay.DataEvents},
	}
	Register(desc.ID, ConstructorFunc(func() Connector {
		return &testConnector{desc: desc}
	}))
	defer delete(Connectors, desc.ID)

	constructor, err := ConnectorBuilderByID("test_cls")
	require.NoError(t, err)
	assert.Equal(t, desc, constructor.New().Descriptor())

	got, err := DescriptorByID("test_cls")
	require.NoError(t, err)
	assert.Equal(t, desc, got)

	_, err = ConnectorBuilderByID("unknown")
	assert.Error(t, err)
	_, err = DescriptorByID("unknown")
	assert.Error(t, err)

	assert.Contains(t, IDs(), "test_cls")
}
