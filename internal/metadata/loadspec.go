package metadata

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// MaxLoadSpecSize bounds the XML accepted from a load spec file.
const MaxLoadSpecSize = 64 * 1024

// LoadSpec is the <load_spec> document.
type LoadSpec struct {
	XMLName    xml.Name       `xml:"load_spec"`
	Connection ConnectionSpec `xml:"connection"`

	ForceDupFile      bool `xml:"force_dup_file"`
	StatHeaderDBCheck bool `xml:"stat_header_db_check"`
	LoadXML           bool `xml:"load_xml"`

	Group       string `xml:"group,omitempty"`
	Description string `xml:"description,omitempty"`
	LoadNote    string `xml:"load_note,omitempty"`
}

// ConnectionSpec is the <connection> element.
type ConnectionSpec struct {
	ManagementSystem string `xml:"management_system,omitempty"`
	Host             string `xml:"host,omitempty"`
	Database         string `xml:"database"`
	User             string `xml:"user,omitempty"`
	Password         string `xml:"password,omitempty"`
	LocalInfile      bool   `xml:"local_infile"`
}

// Flags returns the load flags the document sets.
func (s *LoadSpec) Flags() metdbload.LoadFlags {
	return metdbload.LoadFlags{
		ForceDupFile:      s.ForceDupFile,
		StatHeaderDBCheck: s.StatHeaderDBCheck,
		LoadXML:           s.LoadXML,
		LocalInfile:       s.Connection.LocalInfile,
	}
}

// HostPort splits the host element into host and port. Port is 0 when absent.
func (c ConnectionSpec) HostPort() (string, int, error) {
	host, portStr, found := strings.Cut(c.Host, ":")
	if !found {
		return c.Host, 0, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, &LoadSpecError{Field: "connection/host", Message: fmt.Sprintf("invalid port %q", portStr)}
	}
	return host, port, nil
}

// ParseLoadSpec decodes and validates a load spec document.
func ParseLoadSpec(data []byte) (*LoadSpec, error) {
	if len(data) > MaxLoadSpecSize {
		return nil, &LoadSpecError{Message: fmt.Sprintf("load spec exceeds %d bytes", MaxLoadSpecSize)}
	}

	var spec LoadSpec
	if err := xml.Unmarshal(data, &spec); err != nil {
		return nil, wrapXMLError(err)
	}

	if result := Validate(&spec); !result.Valid {
		return nil, formatValidationErrors(result)
	}
	return &spec, nil
}

// SettingsXML marshals the job settings into a load spec document.
// The password is never included.
func SettingsXML(cfg metdbload.LoadConfig, host string, user string) (string, error) {
	spec := LoadSpec{
		Connection: ConnectionSpec{
			ManagementSystem: "postgresql",
			Host:             host,
			Database:         cfg.DatabaseName,
			User:             user,
			LocalInfile:      cfg.Flags.LocalInfile,
		},
		ForceDupFile:      cfg.Flags.ForceDupFile,
		StatHeaderDBCheck: cfg.Flags.StatHeaderDBCheck,
		LoadXML:           cfg.Flags.LoadXML,
		Group:             cfg.Group,
		Description:       cfg.Description,
		LoadNote:          cfg.LoadNote,
	}
	out, err := xml.MarshalIndent(spec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal load settings: %w", err)
	}
	return string(out), nil
}
