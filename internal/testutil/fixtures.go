package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// DemoYAML is a small complete harness: two 4-pin connectors joined by a
// shielded cable, with a ferrule crimped onto the shield.
const DemoYAML = `connectors:
  X1:
    type: Molex KK 254
    subtype: female
    pinout: [GND, VCC, RX, TX]
  X2:
    type: Molex KK 254
    subtype: female
    pincount: 4
    hide_disconnected_pins: true
cables:
  W1:
    gauge: 0.25 mm2
    length: 0.2
    colors: [BK, RD, YE, GN]
    shield: true
    show_equiv: true
ferrules:
  F1:
    type: Ferrule
    color: GY
connections:
  - - X1: 1-4
    - W1: [1-4]
    - X2: [1, 2, 4, 3]
  - - F1
    - W1: [s]
`

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// ReadFile returns the content of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
