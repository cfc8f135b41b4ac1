package edl

import (
	"fmt"
	"math"
	"strings"
)

// DefaultFrameRate is assumed when a document carries no frame rate.
const DefaultFrameRate = 30

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// GenerateFCPXML renders the document as a complete, importable FCPXML 1.10
// file: asset definitions per camera, one project with a spine of clips, and
// chapter markers. Cameras are emitted in sorted order so exporting the same
// document twice produces byte-identical output.
func GenerateFCPXML(doc *Document) ([]byte, error) {
	fps := int(doc.FrameRate)
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	title := fmt.Sprintf("Session %s", doc.SessionID)

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<!DOCTYPE fcpxml>\n")
	b.WriteString("<fcpxml version=\"1.10\">\n")
	b.WriteString("  <resources>\n")
	fmt.Fprintf(&b, "    <format id=\"r1\" name=\"%s\" frameDuration=\"%s\" width=\"1920\" height=\"1080\"/>\n",
		formatName(fps), fpsToFrameDuration(fps))
	writeAssets(&b, doc)
	b.WriteString("  </resources>\n")
	b.WriteString("  <library>\n")
	fmt.Fprintf(&b, "    <event name=\"%s\">\n", xmlEscaper.Replace(title))
	fmt.Fprintf(&b, "      <project name=\"%s\">\n", xmlEscaper.Replace(title))
	fmt.Fprintf(&b, "        <sequence format=\"r1\" duration=\"%s\" tcStart=\"0/1s\">\n",
		msToRational(doc.DurationMs, fps))
	b.WriteString("          <spine>\n")
	writeClips(&b, doc, fps)
	b.WriteString("          </spine>\n")
	b.WriteString("        </sequence>\n")
	writeChapterMarkers(&b, doc.Tracks.Chapters, fps)
	b.WriteString("      </project>\n")
	b.WriteString("    </event>\n")
	b.WriteString("  </library>\n")
	b.WriteString("</fcpxml>\n")
	return []byte(b.String()), nil
}

func writeAssets(b *strings.Builder, doc *Document) {
	for _, src := range doc.SortedSources() {
		fmt.Fprintf(b, "    <asset id=\"%s\" name=\"%s\" src=\"%s\" start=\"0/1s\" hasVideo=\"1\" hasAudio=\"1\" format=\"r1\">\n",
			stableAssetID(doc.SessionID, string(src.Camera)),
			xmlEscaper.Replace(fmt.Sprintf("Camera %s", src.Camera)),
			xmlEscaper.Replace(src.URL))
		b.WriteString("    </asset>\n")
	}
}

// writeClips emits one spine clip per program cut. The clip offset folds in
// the camera's sync offset so non-master angles land frame-aligned with the
// master audio.
func writeClips(b *strings.Builder, doc *Document, fps int) {
	for _, cut := range doc.Tracks.Program {
		src := doc.Sources[cut.Camera]
		sourceStartMs := cut.StartMs + src.OffsetMs

		startRational := msToRational(cut.StartMs, fps)
		durationRational := msToRational(cut.DurationMs(), fps)
		offsetRational := msToRational(sourceStartMs, fps)

		reason := string(cut.Reason)
		if reason == "" {
			reason = "cut"
		}
		name := fmt.Sprintf("%s / %s", cut.Camera, reason)

		fmt.Fprintf(b, "            <clip name=\"%s\" start=\"%s\" duration=\"%s\" offset=\"%s\" tcFormat=\"NDF\">\n",
			xmlEscaper.Replace(name), startRational, durationRational, offsetRational)
		fmt.Fprintf(b, "              <video ref=\"%s\" offset=\"%s\" duration=\"%s\"/>\n",
			stableAssetID(doc.SessionID, string(cut.Camera)), offsetRational, durationRational)
		b.WriteString("            </clip>\n")
	}
}

func writeChapterMarkers(b *strings.Builder, chapters []Chapter, fps int) {
	if len(chapters) == 0 {
		return
	}
	b.WriteString("        <metadata>\n")
	for _, chapter := range chapters {
		fmt.Fprintf(b, "          <md key=\"com.apple.proapps.studio.chapterMarker\" value=\"%s\" start=\"%s\"/>\n",
			xmlEscaper.Replace(chapter.Title), msToRational(chapter.TimeMs, fps))
	}
	b.WriteString("        </metadata>\n")
}

// msToRational converts milliseconds to FCP rational time. NTSC rates (24,
// 30) actually run at fps*1000/1001, so milliseconds snap to 1001-based frame
// boundaries to prevent drift on long sessions. PAL (25) uses exact integer
// frames.
func msToRational(ms int64, fps int) string {
	if fps == 25 {
		frames := int64(math.Round(float64(ms) / 1000 * 25))
		return fmt.Sprintf("%d/25s", frames)
	}
	realFps := float64(fps) * 1000 / 1001
	frameCount := int64(math.Round(float64(ms) / 1000 * realFps))
	return fmt.Sprintf("%d/%ds", frameCount*1001, fps*1000)
}

func fpsToFrameDuration(fps int) string {
	switch fps {
	case 25:
		return "1/25s"
	case 24:
		return "1001/24000s"
	}
	return "1001/30000s"
}

func formatName(fps int) string {
	switch fps {
	case 24:
		return "FFVideoFormat1080p24"
	case 25:
		return "FFVideoFormat1080p25"
	}
	return "FFVideoFormat1080p30"
}

// stableAssetID derives the asset id from session and camera so re-exports
// reference the same assets instead of duplicating them in FCP.
func stableAssetID(sessionID, camera string) string {
	return fmt.Sprintf("asset-%s-%s", sessionID, camera)
}
