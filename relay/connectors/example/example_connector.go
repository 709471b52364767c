package example

import (
	_ "embed" // used to embed the descriptor
	"fmt"

	"github.com/opslog/relay/relay"
	"github.com/opslog/relay/relay/connectors"
)

// This is our connector object. It exists as a template for new connector
// packages and as a fixture for host-side tests.
type exampleConnector struct{}

//go:embed descriptor.yaml
var descriptorText string

var descriptor = func() *relay.Descriptor {
	d, err := relay.ParseDescriptor([]byte(descriptorText))
	if err != nil {
		panic(fmt.Sprintf("example: shipped descriptor failed validation: %v", err))
	}
	return d
}()

// Descriptor returns the connector's descriptor.
func (con *exampleConnector) Descriptor() *relay.Descriptor {
	return descriptor
}

func init() {
	connectors.Register(descriptor.ID, connectors.ConstructorFunc(func() connectors.Connector {
		return &exampleConnector{}
	}))
}
