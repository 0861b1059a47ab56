package contract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "hello", want: `'hello'`},
		{in: "", want: `''`},
		{in: "it's", want: `"it's"`},
		{in: `both ' and "`, want: `'both \' and "'`},
		{in: "line\nbreak\ttab", want: `'line\nbreak\ttab'`},
		{in: `back\slash`, want: `'back\\slash'`},
		{in: "\x01", want: `'\x01'`},
		{in: "héllo", want: `'héllo'`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, quote(tt.in))
		})
	}
}

func TestReprNumber(t *testing.T) {
	tests := map[string]string{
		"2":      "2",
		"-17":    "-17",
		"1.5":    "1.5",
		"1.0":    "1.0",
		"2e3":    "2000.0",
		"1e20":   "1e+20",
		"0.0001": "0.0001",
	}

	for in, want := range tests {
		assert.Equal(t, want, reprNumber(json.Number(in)), in)
	}
}

func TestRepr_SchemaKeyOrder(t *testing.T) {
	doc, err := compileDocument(Request, []byte(`{"not": {"type": "string", "minLength": 3}}`))
	if !assert.NoError(t, err) {
		return
	}

	assert.Equal(t, "{'type': 'string', 'minLength': 3}", doc.repr(doc.raw.(map[string]any)["not"], []string{"not"}))
	assert.Equal(t, "{'minLength': 3, 'type': 'string'}", doc.repr(doc.raw.(map[string]any)["not"], nil),
		"instance maps are printed with sorted keys")
	assert.Equal(t, "[None, True, False]", doc.repr([]any{nil, true, false}, nil))
}
