package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/loom/internal/ir"
)

// WriteJSON writes g as indented JSON. Labels keep their markup unescaped.
func WriteJSON(w io.Writer, g *ir.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph json: %w", err)
	}
	return nil
}

// WriteYAML writes g as a YAML document.
func WriteYAML(w io.Writer, g *ir.Graph) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph yaml: %w", err)
	}
	return enc.Close()
}
