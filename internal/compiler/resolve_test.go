package compiler

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loom/internal/model"
)

func intPtr(n int) *int { return &n }

// newTestHarness declares X1 and X2 (4 pins each) and W1 (3 wires, shielded).
func newTestHarness(t *testing.T) *model.Harness {
	t.Helper()
	h := model.New()
	for _, name := range []string{"X1", "X2"} {
		_, err := h.DeclareConnector(name, model.ConnectorConfig{Pincount: intPtr(4)})
		require.NoError(t, err)
	}
	_, err := h.DeclareCable("W1", model.CableConfig{Wirecount: intPtr(3), Shield: true})
	require.NoError(t, err)
	return h
}

var testFerrules = map[string]model.ConnectorConfig{
	"F1": {Type: "Ferrule", Subtype: "0.25 mm²", Color: "YE"},
}

func TestLookup(t *testing.T) {
	r := NewResolver(newTestHarness(t), testFerrules)

	tests := []struct {
		name string
		role Role
	}{
		{"X1", RoleConnector},
		{"W1", RoleCable},
		{"F1", RoleFerrule},
		{"Q7", RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.Lookup(tt.name)
			assert.Equal(t, tt.role, d.Role)
			assert.Equal(t, tt.name, d.Name)
		})
	}

	d := r.Lookup("X1")
	assert.NotNil(t, d.Connector)
	assert.Nil(t, d.Cable)
	assert.Nil(t, d.Ferrule)

	d = r.Lookup("F1")
	require.NotNil(t, d.Ferrule)
	assert.Equal(t, "YE", d.Ferrule.Color)
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord(1, []any{"F1", map[string]any{"W1": "1-3"}})
	require.NoError(t, err)
	assert.Equal(t, Record{
		{Name: "F1", Pins: "F1", Bare: true},
		{Name: "W1", Pins: "1-3"},
	}, rec)
}

func TestParseRecord_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"not a list", map[string]any{"X1": 1}},
		{"one element", []any{map[string]any{"X1": 1}}},
		{"four elements", []any{"X1", "W1", "X2", "W2"}},
		{"two keys", []any{map[string]any{"X1": 1, "X2": 1}, map[string]any{"W1": 1}}},
		{"no keys", []any{map[string]any{}, map[string]any{"W1": 1}}},
		{"number element", []any{3, map[string]any{"W1": 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord(7, tt.raw)
			require.Error(t, err)
			assert.True(t, model.IsMalformedRecord(err))

			var e *model.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, 7, e.Record)
		})
	}
}

func TestResolve_ThreeElement(t *testing.T) {
	h := newTestHarness(t)
	r := NewResolver(h, nil)

	err := r.Resolve([]Record{{
		{Name: "X1", Pins: "1-3"},
		{Name: "W1", Pins: []any{1, 2, "s"}},
		{Name: "X2", Pins: "3-1"},
	}})
	require.NoError(t, err)

	conns := h.Cable("W1").Connections()
	require.Len(t, conns, 3)
	assert.Equal(t, model.Connection{
		From: model.Endpoint{Name: "X1", Pin: 1},
		Via:  model.Conductor{Wire: 1},
		To:   model.Endpoint{Name: "X2", Pin: 3},
	}, conns[0])
	assert.Equal(t, model.Connection{
		From: model.Endpoint{Name: "X1", Pin: 3},
		Via:  model.Conductor{Shield: true},
		To:   model.Endpoint{Name: "X2", Pin: 1},
	}, conns[2])

	assert.False(t, h.Connector("X1").IsActive(4))
}

func TestResolve_ThreeElementLengthMismatch(t *testing.T) {
	r := NewResolver(newTestHarness(t), nil)

	err := r.Resolve([]Record{{
		{Name: "X1", Pins: []any{1, 2}},
		{Name: "W1", Pins: []any{1, 2, 3}},
		{Name: "X2", Pins: []any{1, 2}},
	}})
	require.Error(t, err)
	assert.True(t, model.IsMalformedRecord(err))
	assert.Contains(t, err.Error(), "length mismatch")
	assert.Contains(t, err.Error(), "connection #1")
}

func TestResolve_ThreeElementWrongRoles(t *testing.T) {
	r := NewResolver(newTestHarness(t), testFerrules)

	tests := []struct {
		name string
		rec  Record
		bad  string
	}{
		{
			name: "cable first",
			rec:  Record{{Name: "W1", Pins: 1}, {Name: "X1", Pins: 1}, {Name: "X2", Pins: 1}},
			bad:  "W1",
		},
		{
			name: "ferrule in connector slot",
			rec:  Record{{Name: "F1", Pins: 1}, {Name: "W1", Pins: 1}, {Name: "X2", Pins: 1}},
			bad:  "F1",
		},
		{
			name: "undeclared",
			rec:  Record{{Name: "X1", Pins: 1}, {Name: "W1", Pins: 1}, {Name: "X9", Pins: 1}},
			bad:  "X9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Resolve([]Record{tt.rec})
			require.Error(t, err)
			assert.True(t, model.IsUnresolvedDesignator(err))

			var e *model.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.bad, e.Designator)
		})
	}
}

func TestResolve_ThreeElementBareName(t *testing.T) {
	r := NewResolver(newTestHarness(t), nil)
	err := r.Resolve([]Record{{
		{Name: "X1", Pins: "X1", Bare: true},
		{Name: "W1", Pins: 1},
		{Name: "X2", Pins: 1},
	}})
	assert.True(t, model.IsMalformedRecord(err))
}

func TestResolve_ConnectorCable(t *testing.T) {
	h := newTestHarness(t)
	r := NewResolver(h, nil)

	require.NoError(t, r.Resolve([]Record{
		{{Name: "X1", Pins: []any{1, 2}}, {Name: "W1", Pins: []any{1, 2}}},
		{{Name: "W1", Pins: 3}, {Name: "X2", Pins: 4}},
	}))

	conns := h.Cable("W1").Connections()
	require.Len(t, conns, 3)
	assert.True(t, conns[0].To.Open())
	assert.Equal(t, model.Endpoint{Name: "X1", Pin: 2}, conns[1].From)
	assert.True(t, conns[2].From.Open())
	assert.Equal(t, model.Endpoint{Name: "X2", Pin: 4}, conns[2].To)

	assert.True(t, h.Connector("X1").PortsRight)
	assert.False(t, h.Connector("X1").PortsLeft)
	assert.True(t, h.Connector("X2").PortsLeft)
}

func TestResolve_PairLengthMismatch(t *testing.T) {
	r := NewResolver(newTestHarness(t), nil)
	err := r.Resolve([]Record{
		{{Name: "X1", Pins: "1-3"}, {Name: "W1", Pins: "1-2"}},
	})
	assert.True(t, model.IsMalformedRecord(err))
}

func TestResolve_Loop(t *testing.T) {
	h := newTestHarness(t)
	r := NewResolver(h, nil)

	require.NoError(t, r.Resolve([]Record{
		{{Name: "X1", Pins: []any{1, 3}}, {Name: "X1", Pins: []any{2, 4}}},
	}))

	x1 := h.Connector("X1")
	assert.Equal(t, []model.Loop{{From: 1, To: 2}, {From: 3, To: 4}}, x1.Loops())
	assert.True(t, x1.IsActive(4))
	assert.Empty(t, h.Cable("W1").Connections())
}

func TestResolve_LoopAcrossConnectors(t *testing.T) {
	r := NewResolver(newTestHarness(t), nil)
	err := r.Resolve([]Record{
		{{Name: "X1", Pins: 1}, {Name: "X2", Pins: 2}},
	})
	require.Error(t, err)
	assert.True(t, model.IsUnresolvedDesignator(err))
	assert.False(t, model.IsMalformedRecord(err))
	assert.Contains(t, err.Error(), "wrong designators")
}

func TestResolve_FerruleSynthesis(t *testing.T) {
	for k := 1; k <= 3; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			h := newTestHarness(t)
			r := NewResolver(h, testFerrules)

			err := r.Resolve([]Record{
				{{Name: "F1", Pins: "F1", Bare: true}, {Name: "W1", Pins: fmt.Sprintf("1-%d", k)}},
			})
			require.NoError(t, err)

			assert.Equal(t, k, r.FerruleCount())
			assert.Len(t, h.Connectors(), 2+k)

			conns := h.Cable("W1").Connections()
			require.Len(t, conns, k)
			for i := 1; i <= k; i++ {
				id := fmt.Sprintf("_F%d", i)
				f := h.Connector(id)
				require.NotNil(t, f, id)
				assert.True(t, f.IsFerrule())
				assert.Equal(t, 1, f.Pincount())
				assert.True(t, f.IsActive(1))
				assert.True(t, f.PortsRight)
				assert.Equal(t, "Ferrule", f.Type)

				assert.Equal(t, model.Endpoint{Name: id, Pin: 1}, conns[i-1].From)
				assert.Equal(t, i, conns[i-1].Via.Wire)
			}
		})
	}
}

func TestResolve_CableFerrule(t *testing.T) {
	h := newTestHarness(t)
	r := NewResolver(h, testFerrules)

	require.NoError(t, r.Resolve([]Record{
		{{Name: "W1", Pins: []any{2, 3}}, {Name: "F1", Pins: "F1", Bare: true}},
	}))

	conns := h.Cable("W1").Connections()
	require.Len(t, conns, 2)
	assert.True(t, conns[0].From.Open())
	assert.Equal(t, model.Endpoint{Name: "_F1", Pin: 1}, conns[0].To)
	assert.Equal(t, model.Endpoint{Name: "_F2", Pin: 1}, conns[1].To)
	assert.True(t, h.Connector("_F2").PortsLeft)
}

func TestResolve_FerruleCounterPerResolver(t *testing.T) {
	rec := []Record{{{Name: "F1", Pins: "F1", Bare: true}, {Name: "W1", Pins: 1}}}

	for i := 0; i < 2; i++ {
		h := newTestHarness(t)
		r := NewResolver(h, testFerrules)
		require.NoError(t, r.Resolve(rec))
		assert.NotNil(t, h.Connector("_F1"))
		assert.Nil(t, h.Connector("_F2"))
	}

	h := newTestHarness(t)
	r := NewResolver(h, testFerrules)
	require.NoError(t, r.Resolve(append(rec, rec...)))
	assert.NotNil(t, h.Connector("_F2"))
}

func TestResolve_WrongDesignators(t *testing.T) {
	r := NewResolver(newTestHarness(t), testFerrules)

	tests := []struct {
		name string
		rec  Record
	}{
		{"undeclared bare name", Record{{Name: "X9", Pins: "X9", Bare: true}, {Name: "W1", Pins: 1}}},
		{"cable to cable", Record{{Name: "W1", Pins: 1}, {Name: "W1", Pins: 2}}},
		{"ferrule to connector", Record{{Name: "F1", Pins: "F1", Bare: true}, {Name: "X1", Pins: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Resolve([]Record{tt.rec})
			require.Error(t, err)
			assert.True(t, model.IsUnresolvedDesignator(err))
		})
	}
}

func TestResolve_UnknownPin(t *testing.T) {
	r := NewResolver(newTestHarness(t), nil)
	err := r.Resolve([]Record{
		{{Name: "X1", Pins: 1}, {Name: "W1", Pins: 1}},
		{{Name: "X1", Pins: 5}, {Name: "W1", Pins: 2}},
	})
	require.Error(t, err)
	assert.True(t, model.IsUnknownPin(err))
	assert.Contains(t, err.Error(), "connection #2")
}

func TestResolve_MalformedRange(t *testing.T) {
	r := NewResolver(newTestHarness(t), nil)
	err := r.Resolve([]Record{
		{{Name: "X1", Pins: "A-3"}, {Name: "W1", Pins: "1-3"}},
	})
	assert.True(t, model.IsMalformedRecord(err))
}

func TestResolve_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := NewResolver(newTestHarness(t), testFerrules, WithLogger(logger))
	require.NoError(t, r.Resolve([]Record{
		{{Name: "F1", Pins: "F1", Bare: true}, {Name: "W1", Pins: 1}},
	}))

	assert.Contains(t, buf.String(), "synthesized ferrule")
	assert.Contains(t, buf.String(), "id=_F1")
}
