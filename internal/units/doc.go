// Package units converts wire gauges between metric cross-section (mm²) and
// American Wire Gauge (AWG).
//
// Conversions never fail. Text that carries no number degrades to an
// Unparsed Equivalent, which renders as "Unknown (<text>)", so documents that
// are still being written keep producing a BOM.
//
// Physical relation used in both directions:
//
//	d   = 2·sqrt(area/π)              (mm)
//	awg = 36 − 39·log92(d / 0.127)
package units
