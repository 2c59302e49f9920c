package wirecolor

import (
	"fmt"
	"sort"
)

// telPrimary and telSecondary build the 25-pair telephone colour code.
var (
	telPrimary   = []string{"WH", "RD", "BK", "YE", "VT"}
	telSecondary = []string{"BU", "OG", "GN", "BN", "SL"}
)

// palettes holds the standard colour codes by name.
var palettes = map[string][]string{
	"DIN": {
		"WH", "BN", "GN", "YE", "GY", "PK", "BU", "RD", "BK", "VT",
		"GYPK", "RDBU", "WHGN", "BNGN", "WHYE", "YEBN", "WHGY", "GYBN", "WHPK", "PKBN",
		"WHBU", "BNBU", "WHRD", "BNRD", "WHBK", "BNBK", "GYGN", "YEGY", "PKGN", "YEPK",
		"GNBU", "YEBU", "GNRD", "YERD", "GNBK", "YEBK", "GYBU", "PKBU", "GYRD", "PKRD",
		"GYBK", "PKBK", "BUBK", "RDBK", "WHBNBK", "YEGNBK", "GYPKBK", "RDBUBK", "WHGNBK", "BNGNBK",
		"WHYEBK", "YEBNBK", "WHGYBK", "GYBNBK", "WHPKBK", "PKBNBK", "WHBUBK", "BNBUBK", "WHRDBK", "BNRDBK",
	},
	"IEC":    {"BN", "RD", "OG", "YE", "GN", "BU", "VT", "GY", "WH", "BK"},
	"BW":     {"BK", "WH"},
	"TEL":    telephonePairs(false),
	"TELALT": telephonePairs(true),
	"T568A":  {"WHGN", "GN", "WHOG", "BU", "WHBU", "OG", "WHBN", "BN"},
	"T568B":  {"WHOG", "OG", "WHGN", "BU", "WHBU", "GN", "WHBN", "BN"},
}

// telephonePairs returns the 50 conductors of the 25-pair code. The standard
// order puts the secondary (ring) colour first in each pair; alt swaps it.
func telephonePairs(alt bool) []string {
	out := make([]string, 0, 2*len(telPrimary)*len(telSecondary))
	for _, p := range telPrimary {
		for _, s := range telSecondary {
			if alt {
				out = append(out, p+s, s+p)
			} else {
				out = append(out, s+p, p+s)
			}
		}
	}
	return out
}

// Palette returns a copy of the named colour code.
func Palette(name string) ([]string, error) {
	p, ok := palettes[name]
	if !ok {
		return nil, fmt.Errorf("unknown color code %q: must be one of %v", name, PaletteNames())
	}
	return append([]string(nil), p...), nil
}

// PaletteNames returns the known colour code names, sorted.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fit repeats palette until it covers n entries and truncates the excess.
// An empty palette yields n blank entries.
func Fit(palette []string, n int) []string {
	out := make([]string, n)
	if len(palette) == 0 {
		return out
	}
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}
