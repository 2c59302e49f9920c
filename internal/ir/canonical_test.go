package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Scalars(t *testing.T) {
	tests := map[any]string{
		"X1":        `"X1"`,
		"":          `""`,
		7:           "7",
		int64(-100): "-100",
		true:        "true",
		false:       "false",
	}
	for in, want := range tests {
		got, err := MarshalCanonical(in)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), "%#v", in)
	}
}

func TestMarshalCanonical_Containers(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"empty array", []any{}, "[]"},
		{"designators", []string{"X1", "X2"}, `["X1","X2"]`},
		{"nil string slice", []string(nil), "[]"},
		{"mixed", []any{1, "W1", false}, `[1,"W1",false]`},
		{"empty object", map[string]any{}, "{}"},
		{"attrs", map[string]string{"shape": "box", "color": "#000000"}, `{"color":"#000000","shape":"box"}`},
		{"nested", map[string]any{
			"nodes": []any{map[string]any{"id": "X1", "ports": []string{"p1r"}}},
			"edges": []any{},
		}, `{"edges":[],"nodes":[{"id":"X1","ports":["p1r"]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_KeyOrderIsUTF16(t *testing.T) {
	// U+10000 encodes as a surrogate pair (0xD800...) and so precedes U+E000,
	// the reverse of their UTF-8 byte order.
	got, err := MarshalCanonical(map[string]any{"\uE000": 1, "\U00010000": 2, "a": 0})
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":0,\"\U00010000\":2,\"\uE000\":1}", string(got))
}

func TestMarshalCanonical_Escaping(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"html is literal", `<td port="p1r">X1 & X2</td>`, `"<td port=\"p1r\">X1 & X2</td>"`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"backspace", "a\bb", `"a\bb"`},
		{"form feed", "a\fb", `"a\fb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"other control", "a\x01b\x1fc", `"a\u0001b\u001fc"`},
		{"backslash", `1\2`, `"1\\2"`},
		{"line separator", "a\u2028b", "\"a\u2028b\""},
		{"escaped text stays text", `\u2028`, `"\\u2028"`},
		{"delete is literal", "a\x7fb", "\"a\x7fb\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_NFC(t *testing.T) {
	composed, err := MarshalCanonical(map[string]any{"gr\u00fcn": "gr\u00fcn"})
	require.NoError(t, err)
	decomposed, err := MarshalCanonical(map[string]any{"gru\u0308n": "gru\u0308n"})
	require.NoError(t, err)

	assert.Equal(t, string(composed), string(decomposed))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"null", nil, "null"},
		{"float", 0.25, "float"},
		{"float32", float32(1.5), "float"},
		{"nested float", map[string]any{"items": []any{"W1", 0.2}}, `"items": [1]: not canonical: float`},
		{"struct", struct{ ID string }{"X1"}, "unsupported type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.in)
			require.ErrorIs(t, err, ErrNotCanonical)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

