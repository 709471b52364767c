package all

import (
	// Call package wide init function
	_ "github.com/opslog/relay/relay/connectors/example"
	_ "github.com/opslog/relay/relay/connectors/mcas"
)
