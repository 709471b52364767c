package mcas

import (
	_ "embed" // used to embed the descriptor
	"fmt"

	"github.com/opslog/relay/relay"
	"github.com/opslog/relay/relay/connectors"
)

// The Defender for Cloud Apps connector. The connector itself is pure
// metadata, the engine that uploads log files against the portal API is a
// separate system consuming the activated configuration record.
type mcasConnector struct{}

//go:embed descriptor.yaml
var descriptorText string

// Parsed once at package load. The descriptor shouldn't change at runtime so
// there is no reason to construct more than a single copy.
var descriptor = func() *relay.Descriptor {
	d, err := relay.ParseDescriptor([]byte(descriptorText))
	if err != nil {
		panic(fmt.Sprintf("mcas: shipped descriptor failed validation: %v", err))
	}
	return d
}()

// Descriptor returns the connector's descriptor.
func (con *mcasConnector) Descriptor() *relay.Descriptor {
	return descriptor
}

func init() {
	// In order to provide a Constructor to the connector registry, we register
	// our Connector in the init block. To load this Connector, simply import
	// the package.
	connectors.Register(descriptor.ID, connectors.ConstructorFunc(func() connectors.Connector {
		return &mcasConnector{}
	}))
}
