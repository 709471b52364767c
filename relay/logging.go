package relay

import (
	log "github.com/sirupsen/logrus"
)

const redactedValue = "*****"

// ConnectorLogFormatter tags log entries with the connector they originate
// from so that host and connector output can be told apart in one stream.
type ConnectorLogFormatter struct {
	Formatter *log.JSONFormatter
	Type      string
	Name      string
}

// MakeConnectorLogFormatter creates a formatter for the given connector.
func MakeConnectorLogFormatter(connectorType string, connectorName string) ConnectorLogFormatter {
	return ConnectorLogFormatter{
		Formatter: &log.JSONFormatter{
			DisableHTMLEscape: true,
		},
		Type: connectorType,
		Name: connectorName,
	}
}

// Format allows this to be used as a logrus formatter.
func (f ConnectorLogFormatter) Format(entry *log.Entry) ([]byte, error) {
	// Underscores force these to be in the front in order type -> name
	entry.Data["__type"] = f.Type
	entry.Data["_name"] = f.Name
	return f.Formatter.Format(entry)
}

// SecretScrubHook masks entry fields holding secret configuration values.
// Fields are matched by storage key against the descriptors it was built
// with, so a password value can never reach a log sink in plaintext.
type SecretScrubHook struct {
	secretKeys map[string]bool
}

// MakeSecretScrubHook creates a hook masking the password-typed keys of the
// given descriptors.
func MakeSecretScrubHook(descriptors ...*Descriptor) *SecretScrubHook {
	hook := &SecretScrubHook{secretKeys: make(map[string]bool)}
	for _, d := range descriptors {
		for _, field := range d.Configuration {
			if field.Type.Secret() {
				hook.secretKeys[field.Key] = true
			}
		}
	}
	return hook
}

// Levels implements logrus.Hook, secrets are masked at every level.
func (h *SecretScrubHook) Levels() []log.Level {
	return log.AllLevels
}

// Fire implements logrus.Hook.
func (h *SecretScrubHook) Fire(entry *log.Entry) error {
	for key := range entry.Data {
		if h.secretKeys[key] {
			entry.Data[key] = redactedValue
		}
	}
	return nil
}
