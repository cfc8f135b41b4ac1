// Package audio measures per-camera audio quality and selects the master
// camera for sync. Loudness comes from ffprobe's volumedetect filter with an
// ffmpeg fallback; scoring blends speech loudness, headroom, and
// signal-to-noise into a single 0..1 quality score.
package audio
