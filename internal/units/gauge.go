package units

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// uncommonAWG maps alternative spellings of the aught sizes to N/0 notation.
var uncommonAWG = map[string]string{
	"0000": "4/0",
	"000":  "3/0",
	"00":   "2/0",
	"0":    "1/0",
}

// CommonMM2 lists industry-standard cross-sections (IEC 60228 and common
// vendor sizes) in ascending order. Strict conversions snap to this table.
var CommonMM2 = []float64{
	0.22, 0.23, 0.34, 0.5, 0.75, 1, 1.5, 2.5, 4, 6, 10, 16, 25, 35, 50, 70, 95,
	120, 150, 185, 240, 300, 400, 500, 630, 800, 1000, 1200, 1400, 1600, 1800,
	2000, 2500,
}

var (
	numberPattern  = regexp.MustCompile(`\d+(\.\d+)?`)
	integerPattern = regexp.MustCompile(`\d+`)
)

// Equivalent is the result of a gauge conversion: either a resolved value or
// the raw text that could not be interpreted.
type Equivalent struct {
	value    string
	raw      string
	resolved bool
}

// Resolved returns an Equivalent holding a converted value.
func Resolved(value string) Equivalent {
	return Equivalent{value: value, resolved: true}
}

// Unparsed returns an Equivalent for input that carried no usable number.
func Unparsed(raw string) Equivalent {
	return Equivalent{raw: raw}
}

// IsResolved reports whether the conversion produced a value.
func (e Equivalent) IsResolved() bool {
	return e.resolved
}

// Value returns the converted value and true, or the raw input and false.
func (e Equivalent) Value() (string, bool) {
	if e.resolved {
		return e.value, true
	}
	return e.raw, false
}

// String renders the value, or "Unknown (<raw>)" for unparsed input.
func (e Equivalent) String() string {
	if e.resolved {
		return e.value
	}
	return "Unknown (" + e.raw + ")"
}

// AWGFromMM2 converts a cross-section in mm² to an AWG size. The area is the
// first decimal number found in text, so unit suffixes are tolerated.
//
// Rounding is half-up. In strict mode sizes above 3 snap to the nearest even
// gauge. Sizes at or below zero use N/0 notation (0 → "1/0", −1 → "2/0").
func AWGFromMM2(text string, strict bool) Equivalent {
	match := numberPattern.FindString(text)
	if match == "" {
		return Unparsed(text)
	}
	area, err := strconv.ParseFloat(match, 64)
	if err != nil || area <= 0 {
		return Unparsed(text)
	}

	awg := awgFromArea(area)
	if awg > 0 {
		if strict && awg > 3 {
			awg = 2 * roundHalfUp(awg/2)
		} else {
			awg = roundHalfUp(awg)
		}
	}
	if awg <= 0 {
		return Resolved(fmt.Sprintf("%d/0", 1-int(math.Trunc(awg))))
	}
	return Resolved(strconv.Itoa(int(awg)))
}

// MM2FromAWG converts an AWG size to a cross-section in mm². Accepts plain
// gauges ("20", "20 AWG"), N/0 notation ("4/0") and the aught spellings
// ("0000"). Strict mode snaps to CommonMM2; otherwise the computed area is
// returned rounded to two decimals.
func MM2FromAWG(text string, strict bool) Equivalent {
	label := strings.TrimSpace(text)
	if alt, ok := uncommonAWG[label]; ok {
		label = alt
	}

	var n float64
	if i := strings.Index(label, "/"); i >= 0 {
		match := integerPattern.FindString(label[:i])
		if match == "" {
			return Unparsed(text)
		}
		aught, err := strconv.Atoi(match)
		if err != nil {
			return Unparsed(text)
		}
		n = float64(1 - aught)
	} else {
		match := integerPattern.FindString(label)
		if match == "" {
			return Unparsed(text)
		}
		gauge, err := strconv.Atoi(match)
		if err != nil {
			return Unparsed(text)
		}
		n = float64(gauge)
	}

	d := 0.127 * math.Pow(92, (36-n)/39)
	area := math.Round(math.Pi*math.Pow(d/2, 2)*100) / 100
	if strict {
		area = closest(CommonMM2, area)
	}
	return Resolved(strconv.FormatFloat(area, 'f', -1, 64))
}

func awgFromArea(area float64) float64 {
	d := 2 * math.Sqrt(area/math.Pi)
	return 36 - 39*math.Log(d/0.127)/math.Log(92)
}

// roundHalfUp rounds to the nearest integer, ties away from zero for
// positive values.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// closest returns the table entry nearest to k; ties resolve to the smaller entry.
func closest(table []float64, k float64) float64 {
	best := table[0]
	for _, v := range table[1:] {
		if math.Abs(v-k) < math.Abs(best-k) {
			best = v
		}
	}
	return best
}
