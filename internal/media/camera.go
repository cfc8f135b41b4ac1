package media

import (
	"fmt"
	"strings"
)

// Camera identifies one recording angle in a session.
type Camera string

const (
	CameraA Camera = "A"
	CameraB Camera = "B"
	CameraC Camera = "C"
)

// Cameras lists the known angles in canonical order.
func Cameras() []Camera {
	return []Camera{CameraA, CameraB, CameraC}
}

// ParseCamera normalizes a user-supplied camera label.
func ParseCamera(value string) (Camera, error) {
	switch Camera(strings.ToUpper(strings.TrimSpace(value))) {
	case CameraA:
		return CameraA, nil
	case CameraB:
		return CameraB, nil
	case CameraC:
		return CameraC, nil
	}
	return "", fmt.Errorf("unknown camera %q (expected A, B, or C)", value)
}

// Valid reports whether the camera is one of the known angles.
func (c Camera) Valid() bool {
	switch c {
	case CameraA, CameraB, CameraC:
		return true
	}
	return false
}

func (c Camera) String() string {
	return string(c)
}
