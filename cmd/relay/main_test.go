package main

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opslog/relay/relay"
	"github.com/opslog/relay/relay/registry"
)

func TestRegisterConnectors(t *testing.T) {
	catalog := registry.MakeRegistry()
	require.NoError(t, registerConnectors(catalog))
	assert.Equal(t, []string{"example", "mcas_cls"}, catalog.IDs())

	// A second pass would produce duplicate revisions.
	require.Error(t, registerConnectors(catalog))
}

func TestRunListCmd(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runListCmd(&buf, nil))
	assert.Contains(t, buf.String(), "mcas_cls (1.0.0) - Microsoft Defender for Cloud Apps")
	assert.Contains(t, buf.String(), "example (0.1.0) - Example")

	buf.Reset()
	require.NoError(t, runListCmd(&buf, []string{"mcas_cls"}))
	assert.Contains(t, buf.String(), "id: mcas_cls")
	assert.Contains(t, buf.String(), "key: portal_url")

	err := runListCmd(&buf, []string{"unknown"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no connector by id")
}

func writeTempFile(t *testing.T, name string, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunValidateCmd(t *testing.T) {
	var buf bytes.Buffer

	valid := writeTempFile(t, "valid.yaml", `name: Valid
id: valid_cls
version: 1.0.0
types: [events]
configuration:
  - label: API Token
    key: token
    type: password
    mandatory: true
`)
	require.NoError(t, runValidateCmd(&buf, valid))
	assert.Contains(t, buf.String(), "descriptor valid_cls@1.0.0 is valid")
	assert.Contains(t, buf.String(), "token (password) - API Token")

	duplicate := writeTempFile(t, "dup.yaml", `name: Dup
id: dup_cls
version: 1.0.0
types: [events]
configuration:
  - label: API Token
    key: token
    type: password
    mandatory: true
  - label: Token Again
    key: token
    type: text
    mandatory: false
`)
	err := runValidateCmd(&buf, duplicate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate configuration key: token")

	err = runValidateCmd(&buf, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunCheckConfigCmd(t *testing.T) {
	descPath := writeTempFile(t, "mcas.yaml", `name: Microsoft Defender for Cloud Apps
id: mcas_cls
version: 1.0.0
types: [events]
configuration:
  - label: Portal URL
    key: portal_url
    type: text
    mandatory: true
  - label: API Token
    key: token
    type: password
    mandatory: true
  - label: Data Source
    key: data_source
    type: text
    mandatory: true
`)

	var buf bytes.Buffer
	cfg := &relay.Config{}

	incomplete := writeTempFile(t, "incomplete.yaml", "portal_url: tenant.portal.cloudappsecurity.com\n")
	err := runCheckConfigCmd(&buf, cfg, descPath, incomplete, "tenant-a", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing value for mandatory field(s): token, data_source")

	complete := writeTempFile(t, "complete.yaml", `portal_url: tenant.portal.cloudappsecurity.com
token: super-secret-token
data_source: relay
`)
	buf.Reset()
	require.NoError(t, runCheckConfigCmd(&buf, cfg, descPath, complete, "tenant-a", false))
	assert.Contains(t, buf.String(), "activates cleanly")
	assert.NotContains(t, buf.String(), "super-secret-token")
}

func TestRunCheckConfigCmdSave(t *testing.T) {
	descPath := writeTempFile(t, "mcas.yaml", `name: Microsoft Defender for Cloud Apps
id: mcas_cls
version: 1.0.0
types: [events]
configuration:
  - label: API Token
    key: token
    type: password
    mandatory: true
`)
	values := writeTempFile(t, "values.yaml", "token: super-secret-token\n")

	dataDir := t.TempDir()
	cfg := &relay.Config{DataDir: dataDir}

	// No seal key, the save must be refused.
	var buf bytes.Buffer
	err := runCheckConfigCmd(&buf, cfg, descPath, values, "tenant-a", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RELAY_SEAL_KEY")

	key := bytes.Repeat([]byte{7}, 32)
	t.Setenv("RELAY_SEAL_KEY", base64.StdEncoding.EncodeToString(key))

	buf.Reset()
	require.NoError(t, runCheckConfigCmd(&buf, cfg, descPath, values, "tenant-a", true))

	matches, err := filepath.Glob(filepath.Join(dataDir, "*.yaml"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret-token")
}
