package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}
	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysUTF16Order(t *testing.T) {
	// U+FB01 sorts before U+1F600 in UTF-8 but after it in UTF-16.
	obj := IRObject{
		"\U0001F600": IRInt(1),
		"\ufb01":     IRInt(2),
	}
	assert.Equal(t, []string{"\U0001F600", "\ufb01"}, obj.SortedKeys())
}

func TestIRObjectMarshalJSON(t *testing.T) {
	obj := IRObject{"b": IRInt(2), "a": StringArray("x", "y"), "c": IRBool(false)}
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":["x","y"],"b":2,"c":false}`, string(data))
}

func TestIRArrayStrings(t *testing.T) {
	arr := IRArray{IRString("a"), IRInt(3), IRString("b")}
	assert.Equal(t, []string{"a", "b"}, arr.Strings())
}

func TestToIRValue(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    IRValue
		wantErr bool
	}{
		{"string", "x", IRString("x"), false},
		{"int", 3, IRInt(3), false},
		{"int64", int64(-4), IRInt(-4), false},
		{"bool", true, IRBool(true), false},
		{"string slice", []string{"a"}, IRArray{IRString("a")}, false},
		{"nested", map[string]any{"k": []any{"v", 1}}, IRObject{"k": IRArray{IRString("v"), IRInt(1)}}, false},
		{"float", 1.5, nil, true},
		{"nil", nil, nil, true},
		{"unsupported", struct{}{}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToIRValue(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFloatsOrdered(t *testing.T) {
	var f Floats
	f.Set("view", StringArray("sort:#x"))
	f.Set("legend", IRString("Green papers"))
	f.Set("tags", StringArray("x"))
	f.Set("legend", IRString("Renamed"))

	assert.Equal(t, []string{"view", "legend", "tags"}, f.Keys())
	assert.Equal(t, "Renamed", f.String("legend"))
	assert.Equal(t, []string{"x"}, f.StringList("tags"))

	f.Delete("view")
	assert.Equal(t, []string{"legend", "tags"}, f.Keys())
	f.Set("tags", nil)
	assert.Equal(t, 1, f.Len())
	assert.False(t, f.Has("tags"))
}

func TestFloatsNil(t *testing.T) {
	var f *Floats
	assert.Nil(t, f.Get("x"))
	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.Keys())
	assert.Equal(t, "", f.String("legend"))
}
