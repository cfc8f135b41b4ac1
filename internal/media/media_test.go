package media_test

import (
	"testing"

	"cutroom/internal/media"
)

func TestParseCamera(t *testing.T) {
	cases := []struct {
		in      string
		want    media.Camera
		wantErr bool
	}{
		{"A", media.CameraA, false},
		{" b ", media.CameraB, false},
		{"c", media.CameraC, false},
		{"D", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := media.ParseCamera(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseCamera(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseCamera(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseCamera(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassifyConfidenceBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  media.Classification
	}{
		{15, media.ClassLooksGood},
		{10, media.ClassLooksGood},
		{9.99, media.ClassReviewSuggested},
		{5, media.ClassReviewSuggested},
		{4.99, media.ClassNeedsManual},
		{0, media.ClassNeedsManual},
	}
	for _, tc := range cases {
		if got := media.ClassifyConfidence(tc.score); got != tc.want {
			t.Fatalf("ClassifyConfidence(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestAllReliable(t *testing.T) {
	results := map[media.Camera]media.SyncResult{
		media.CameraA: {Camera: media.CameraA, Confidence: 100},
		media.CameraB: {Camera: media.CameraB, Confidence: 7.2},
	}
	if !media.AllReliable(results) {
		t.Fatal("expected all results reliable")
	}
	results[media.CameraC] = media.SyncResult{Camera: media.CameraC, Confidence: 4.9}
	if media.AllReliable(results) {
		t.Fatal("expected camera C to break reliability")
	}
	if media.AllReliable(nil) {
		t.Fatal("empty result set must not count as reliable")
	}
}

func TestBestAudioURLPreference(t *testing.T) {
	asset := media.Asset{
		Camera:       media.CameraA,
		AudioURL:     "https://cdn.example.com/a.wav",
		MezzanineURL: "https://cdn.example.com/a-mezz.mov",
		OriginalURL:  "https://cdn.example.com/a.mov",
	}
	if got := asset.BestAudioURL(); got != "https://cdn.example.com/a.wav" {
		t.Fatalf("BestAudioURL = %q", got)
	}
	asset.AudioURL = ""
	if got := asset.BestAudioURL(); got != "https://cdn.example.com/a-mezz.mov" {
		t.Fatalf("BestAudioURL without audio extraction = %q", got)
	}
	asset.MezzanineURL = ""
	if got := asset.BestAudioURL(); got != "https://cdn.example.com/a.mov" {
		t.Fatalf("BestAudioURL fallback = %q", got)
	}
}

func TestSessionValidate(t *testing.T) {
	session := &media.Session{
		ID: "svc-2026-01-04",
		Assets: map[media.Camera]media.Asset{
			media.CameraA: {Camera: media.CameraA, OriginalURL: "https://cdn.example.com/a.mov"},
			media.CameraB: {Camera: media.CameraB, OriginalURL: "https://cdn.example.com/b.mov"},
		},
	}
	if err := session.Validate(); err != nil {
		t.Fatalf("valid session rejected: %v", err)
	}

	delete(session.Assets, media.CameraB)
	if err := session.Validate(); err == nil {
		t.Fatal("single-camera session must fail validation")
	}

	session.Assets[media.CameraB] = media.Asset{Camera: media.CameraB}
	if err := session.Validate(); err == nil {
		t.Fatal("asset without media URL must fail validation")
	}

	session.Assets[media.CameraB] = media.Asset{Camera: media.CameraB, OriginalURL: "https://cdn.example.com/b.mov"}
	session.MasterCamera = media.CameraC
	if err := session.Validate(); err == nil {
		t.Fatal("master camera without asset must fail validation")
	}
}
