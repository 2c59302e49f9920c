// Package wirecolor holds the wire colour vocabulary: two-letter colour
// codes, standard colour-code palettes, and translation into display names
// and hex values for rendering.
//
// Multi-colour wires are written as concatenated codes ("GYPK" is grey with
// a pink stripe). English names ("red", "light blue") are accepted wherever a
// code is.
package wirecolor

import (
	"fmt"
	"strings"
)

// Mode selects how a colour is rendered in labels.
type Mode string

// Translation modes. Upper-case modes yield upper-case output.
const (
	ModeShort     Mode = "SHORT"
	ModeShortLow  Mode = "short"
	ModeFull      Mode = "FULL"
	ModeFullLow   Mode = "full"
	ModeHex       Mode = "HEX"
	ModeHexLow    Mode = "hex"
	ModeGerman    Mode = "GER"
	ModeGermanLow Mode = "ger"
)

// ValidModes lists the accepted modes in display order.
var ValidModes = []Mode{ModeShort, ModeShortLow, ModeFull, ModeFullLow, ModeHex, ModeHexLow, ModeGerman, ModeGermanLow}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range ValidModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid color mode %q: must be one of %v", s, ValidModes)
}

type colorInfo struct {
	hex    string
	full   string
	german string
}

var colors = map[string]colorInfo{
	"BK": {"#000000", "black", "sw"},
	"WH": {"#ffffff", "white", "ws"},
	"GY": {"#999999", "grey", "gr"},
	"PK": {"#ff66cc", "pink", "rs"},
	"RD": {"#ff0000", "red", "rt"},
	"OG": {"#ff8000", "orange", "or"},
	"YE": {"#ffff00", "yellow", "ge"},
	"OL": {"#708000", "olive green", "ol"},
	"GN": {"#00ff00", "green", "gn"},
	"TQ": {"#00ffff", "turquoise", "tk"},
	"LB": {"#a0dfff", "light blue", "hb"},
	"BU": {"#0066ff", "blue", "bl"},
	"VT": {"#8000ff", "violet", "vi"},
	"BN": {"#895956", "brown", "br"},
	"SL": {"#708090", "slate", "sl"},
	"CU": {"#d6775e", "copper", "cu"},
	"SN": {"#aaaaaa", "tin", "sn"},
	"SR": {"#84878c", "silver", "ag"},
	"GD": {"#ffcf80", "gold", "au"},
}

// fullToCode maps lower-case English names (and common alternates) to codes.
var fullToCode = func() map[string]string {
	m := map[string]string{"gray": "GY", "purple": "VT", "olive": "OL"}
	for code, info := range colors {
		m[info.full] = code
	}
	return m
}()

// Codes splits a colour into its two-letter codes. English names resolve to
// a single code. ok is false when any part is not a known colour.
func Codes(color string) (codes []string, ok bool) {
	c := strings.TrimSpace(color)
	if c == "" {
		return nil, true
	}
	if code, found := fullToCode[strings.ToLower(c)]; found {
		return []string{code}, true
	}
	if len(c)%2 != 0 {
		return nil, false
	}
	upper := strings.ToUpper(c)
	for i := 0; i < len(upper); i += 2 {
		code := upper[i : i+2]
		if _, found := colors[code]; !found {
			return nil, false
		}
		codes = append(codes, code)
	}
	return codes, true
}

// Known reports whether every part of color is a recognised colour.
func Known(color string) bool {
	codes, ok := Codes(color)
	return ok && len(codes) > 0
}

// HexBands returns one hex value per colour band, or nil when the colour is
// blank or unrecognised.
func HexBands(color string) []string {
	codes, ok := Codes(color)
	if !ok || len(codes) == 0 {
		return nil
	}
	out := make([]string, len(codes))
	for i, code := range codes {
		out[i] = colors[code].hex
	}
	return out
}

// Translate renders color for display in the given mode. Unrecognised
// colours are returned unchanged; blank input yields "".
func Translate(color string, mode Mode) string {
	if strings.TrimSpace(color) == "" {
		return ""
	}
	codes, ok := Codes(color)
	if !ok {
		return color
	}

	var parts []string
	sep := ""
	switch strings.ToUpper(string(mode)) {
	case string(ModeHex):
		sep = ":"
		for _, code := range codes {
			parts = append(parts, colors[code].hex)
		}
	case string(ModeFull):
		sep = "/"
		for _, code := range codes {
			parts = append(parts, colors[code].full)
		}
	case string(ModeGerman):
		sep = "/"
		for _, code := range codes {
			parts = append(parts, colors[code].german)
		}
	default:
		parts = codes
	}

	out := strings.Join(parts, sep)
	if mode == ModeShortLow || mode == ModeFullLow || mode == ModeHexLow || mode == ModeGermanLow {
		return strings.ToLower(out)
	}
	return strings.ToUpper(out)
}
