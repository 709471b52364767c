package connectors

import (
	"fmt"
	"sort"

	"github.com/opslog/relay/relay"
)

// Connector is implemented by each in-tree connector package. The descriptor
// it returns is the validated, immutable metadata record the host registers
// in its catalog. The ingestion engine consuming the resulting configuration
// values is an external system.
type Connector interface {
	// Descriptor returns the connector's descriptor.
	Descriptor() *relay.Descriptor
}

// Constructor must be implemented by each Connector.
// It provides a basic no-arg constructor for instances of a Connector.
type Constructor interface {
	// New should return an instantiation of a Connector.
	New() Connector
}

// ConstructorFunc is Constructor implementation for connectors
type ConstructorFunc func() Connector

// New initializes a connector constructor
func (f ConstructorFunc) New() Connector {
	return f()
}

// Connectors are the constructors to build connector plugins.
var Connectors = make(map[string]Constructor)

// Register is used to register Constructor implementations. This mechanism allows
// for loose coupling between the configuration and the implementation. It is extremely similar to the way sql.DB
// drivers are configured and used.
func Register(id string, constructor Constructor) {
	Connectors[id] = constructor
}

// ConnectorBuilderByID returns a Connector constructor for the id provided
func ConnectorBuilderByID(id string) (Constructor, error) {
	constructor, ok := Connectors[id]
	if !ok {
		return nil, fmt.Errorf("no Connector Constructor for %s", id)
	}

	return constructor, nil
}

// DescriptorByID returns the descriptor of a registered connector.
func DescriptorByID(id string) (*relay.Descriptor, error) {
	constructor, err := ConnectorBuilderByID(id)
	if err != nil {
		return nil, err
	}
	return constructor.New().Descriptor(), nil
}

// IDs returns the sorted ids of all registered connectors.
func IDs() []string {
	ids := make([]string, 0, len(Connectors))
	for id := range Connectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
