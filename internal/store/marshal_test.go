package store

import (
	"testing"
)

func TestMarshalDesignators(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{"nil", nil, "[]"},
		{"empty", []string{}, "[]"},
		{"values", []string{"X1", "X2"}, `["X1","X2"]`},
		{"markup kept", []string{"<J1>"}, `["<J1>"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalDesignators(tt.input)
			if err != nil {
				t.Fatalf("marshalDesignators() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("marshalDesignators() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnmarshalDesignators(t *testing.T) {
	got, err := unmarshalDesignators(`["W1","W2"]`)
	if err != nil {
		t.Fatalf("unmarshalDesignators() failed: %v", err)
	}
	if len(got) != 2 || got[0] != "W1" || got[1] != "W2" {
		t.Errorf("unmarshalDesignators() = %v", got)
	}

	for _, in := range []string{"", "[]", "null"} {
		got, err := unmarshalDesignators(in)
		if err != nil {
			t.Fatalf("unmarshalDesignators(%q) failed: %v", in, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("unmarshalDesignators(%q) = %#v, want empty non-nil", in, got)
		}
	}

	if _, err := unmarshalDesignators("{"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestUnmarshalQty(t *testing.T) {
	d, err := unmarshalQty("0.125")
	if err != nil {
		t.Fatalf("unmarshalQty() failed: %v", err)
	}
	if d.String() != "0.125" {
		t.Errorf("unmarshalQty() = %s", d)
	}

	if _, err := unmarshalQty("abc"); err == nil {
		t.Error("expected error for non-numeric qty")
	}
}
