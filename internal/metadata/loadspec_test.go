package metadata

import (
	"encoding/xml"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

const sampleSpec = `<load_spec>
  <connection>
    <management_system>postgresql</management_system>
    <host>db.example.org:5433</host>
    <database>mv_met</database>
    <user>met</user>
    <password>secret</password>
    <local_infile> true </local_infile>
  </connection>
  <force_dup_file>false</force_dup_file>
  <stat_header_db_check>true</stat_header_db_check>
  <load_xml>true</load_xml>
  <group>Grid stats</group>
  <description>GFS vs analysis</description>
  <load_note>nightly</load_note>
</load_spec>`

func TestParseLoadSpec(t *testing.T) {
	spec, err := ParseLoadSpec([]byte(sampleSpec))
	require.NoError(t, err)

	assert.Equal(t, "mv_met", spec.Connection.Database)
	assert.Equal(t, "Grid stats", spec.Group)
	assert.Equal(t, metdbload.LoadFlags{StatHeaderDBCheck: true, LoadXML: true, LocalInfile: true}, spec.Flags())

	host, port, err := spec.Connection.HostPort()
	require.NoError(t, err)
	assert.Equal(t, "db.example.org", host)
	assert.Equal(t, 5433, port)
}

func TestParseLoadSpec_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"syntax error", "<load_spec><connection>", "XML syntax"},
		{"missing database", "<load_spec><connection/></load_spec>", "connection/database is required"},
		{"other system", "<load_spec><connection><management_system>mysql</management_system><database>x</database></connection></load_spec>", "not supported"},
		{"bad port", "<load_spec><connection><host>h:abc</host><database>x</database></connection></load_spec>", "invalid port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLoadSpec([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, metdbload.ErrInvalidConfig))
			if tt.want != "XML syntax" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestParseLoadSpec_TooLarge(t *testing.T) {
	_, err := ParseLoadSpec(make([]byte, MaxLoadSpecSize+1))
	assert.ErrorIs(t, err, metdbload.ErrInvalidConfig)
}

func TestSettingsXML_OmitsPassword(t *testing.T) {
	cfg := metdbload.LoadConfig{
		DatabaseName: "mv_met",
		Flags:        metdbload.LoadFlags{ForceDupFile: true, LoadXML: true},
		Group:        "G",
		LoadNote:     "n",
	}

	out, err := SettingsXML(cfg, "localhost:5432", "met")
	require.NoError(t, err)
	assert.NotContains(t, out, "password")

	var back LoadSpec
	require.NoError(t, xml.Unmarshal([]byte(out), &back))
	assert.Equal(t, "mv_met", back.Connection.Database)
	assert.True(t, back.ForceDupFile)
	assert.Equal(t, "G", back.Group)
}

func TestLoadSpecError_Format(t *testing.T) {
	err := &LoadSpecError{Line: 3, Field: "group", Message: "bad", Hint: "fix it"}
	assert.Equal(t, "load spec (line 3) [field: group]: bad\n\nHint: fix it", err.Error())
}
