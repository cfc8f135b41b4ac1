package edl_test

import (
	"encoding/json"
	"strings"
	"testing"

	"cutroom/internal/edl"
)

func TestExportWorksInEveryLifecycleState(t *testing.T) {
	for _, status := range []edl.Status{edl.StatusDraft, edl.StatusApproved, edl.StatusLocked} {
		doc := lockedDocument(t)
		doc.Status = status
		out, err := edl.Export(doc, edl.FormatJSON)
		if err != nil {
			t.Fatalf("Export(%s, json): %v", status, err)
		}
		var decoded edl.Document
		if err := json.Unmarshal(out, &decoded); err != nil {
			t.Fatalf("export in %s state does not parse: %v", status, err)
		}
		if decoded.Status != status {
			t.Fatalf("exported status = %s, want %s", decoded.Status, status)
		}
		if _, err := edl.Export(doc, edl.FormatFCPXML); err != nil {
			t.Fatalf("Export(%s, fcpxml): %v", status, err)
		}
	}
}

func TestExportJSONRoundTrips(t *testing.T) {
	doc := lockedDocument(t)
	out, err := edl.Export(doc, edl.FormatJSON)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var decoded edl.Document
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if decoded.SessionID != doc.SessionID || decoded.SchemaVersion != edl.SchemaVersion {
		t.Fatalf("decoded document = %+v", decoded)
	}
}

func TestExportCMX3600NotSupported(t *testing.T) {
	_, err := edl.Export(lockedDocument(t), edl.FormatCMX3600)
	if err == nil {
		t.Fatal("expected error for cmx3600")
	}
	if !strings.Contains(err.Error(), "not yet supported") {
		t.Fatalf("error = %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := edl.ParseFormat("fcpxml"); err != nil {
		t.Fatalf("ParseFormat(fcpxml): %v", err)
	}
	if _, err := edl.ParseFormat("avid"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
