package synth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSources = `
sources:
  - name: LinkedIn
    teams: [Social Intelligence]
    data_types: [Profile Data]
    processes: [Ingestion]
    regions: [US]
    data_classification: Confidential
    sla_minutes: 60
contacts:
  Social Intelligence:
    email: social-intel@mstic.example.com
    channel: "#social-intel-oncall"
`

func TestParseTable_Valid(t *testing.T) {
	table, err := ParseTable([]byte(validSources))
	require.NoError(t, err)
	require.Len(t, table.Sources, 1)
	assert.Equal(t, "LinkedIn", table.Sources[0].Name)
	assert.Equal(t, 60, table.Sources[0].SLAMinutes)
	assert.Equal(t, "#social-intel-oncall", table.Contacts["Social Intelligence"].Channel)
}

func TestParseTable_RejectsZeroTeams(t *testing.T) {
	bad := `
sources:
  - name: Broken
    teams: []
    data_types: [X]
    processes: [Y]
    regions: [Z]
`
	_, err := ParseTable([]byte(bad))
	assert.Error(t, err)
}

func TestParseTable_RejectsMissingSources(t *testing.T) {
	_, err := ParseTable([]byte("contacts: {}"))
	assert.Error(t, err)
}

func TestParseTable_RejectsDuplicateSource(t *testing.T) {
	bad := `
sources:
  - name: Dup
    teams: [A]
    data_types: [X]
    processes: [Y]
    regions: [Z]
  - name: Dup
    teams: [B]
    data_types: [X]
    processes: [Y]
    regions: [Z]
`
	_, err := ParseTable([]byte(bad))
	assert.Error(t, err)
}

func TestParseTable_RejectsMalformedYAML(t *testing.T) {
	_, err := ParseTable([]byte("sources: ["))
	assert.Error(t, err)
}

func TestContactFor_Fallback(t *testing.T) {
	table := &Table{}
	c := table.ContactFor("Night Watch")
	assert.Equal(t, "night-watch@mstic.example.com", c.Email)
	assert.Equal(t, "#night-watch", c.Channel)
}

func TestLoadTable_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSources), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Len(t, table.Sources, 1)

	_, err = LoadTable(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
