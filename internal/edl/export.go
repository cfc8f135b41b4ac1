package edl

import (
	"encoding/json"
	"fmt"

	"cutroom/internal/services"
)

// Format selects an export encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatFCPXML  Format = "fcpxml"
	FormatCMX3600 Format = "cmx3600"
)

// ParseFormat normalizes a user-supplied export format name.
func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case FormatJSON, FormatFCPXML, FormatCMX3600:
		return Format(value), nil
	}
	return "", fmt.Errorf("unknown export format %q (expected json, fcpxml, or cmx3600)", value)
}

// Export renders the document in the requested format. Documents export in
// any lifecycle state; drafts carry their current working program.
func Export(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatFCPXML:
		return GenerateFCPXML(doc)
	case FormatCMX3600:
		return nil, services.Wrap(services.ErrValidation, "edl", "export",
			"cmx3600 export is not yet supported", nil)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}
