// Package edl defines the canonical edit decision list: the cut and chapter
// model, program validation, the draft/approved/locked lifecycle, and export
// to interchange formats.
package edl
