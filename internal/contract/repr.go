package contract

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// repr renders a generic JSON value in the literal notation used by
// violation messages: None, True and False for the JSON literals, quoted
// strings, [a, b] lists and {'k': v} objects. When path locates v inside the schema document,
// object keys keep their document order; otherwise they are sorted.
func (d *document) repr(v any, path []string) string {
	var b strings.Builder
	d.writeRepr(&b, v, path)
	return b.String()
}

func (d *document) writeRepr(b *strings.Builder, v any, path []string) {
	switch t := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if t {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case string:
		b.WriteString(quote(t))
	case json.Number:
		b.WriteString(reprNumber(t))
	case float64:
		b.WriteString(reprNumber(json.Number(strconv.FormatFloat(t, 'g', -1, 64))))
	case []any:
		b.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				b.WriteString(", ")
			}
			d.writeRepr(b, item, childPath(path, strconv.Itoa(i)))
		}
		b.WriteByte(']')
	case map[string]any:
		b.WriteByte('{')
		for i, key := range d.orderedKeys(t, path) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quote(key))
			b.WriteString(": ")
			d.writeRepr(b, t[key], childPath(path, key))
		}
		b.WriteByte('}')
	default:
		fmt.Fprintf(b, "%v", t)
	}
}

func (d *document) orderedKeys(obj map[string]any, path []string) []string {
	if path != nil {
		if keys, ok := d.order.keys(path); ok && len(keys) == len(obj) {
			return keys
		}
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func childPath(path []string, seg string) []string {
	if path == nil {
		return nil
	}
	return append(path[:len(path):len(path)], seg)
}

// reprNumber prints integers verbatim and floats in shortest round-trip
// notation, always with a fraction or an exponent.
func reprNumber(n json.Number) string {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		return s
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// quote renders s as a string literal: single quotes unless the
// text contains a single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case !unicode.IsPrint(r) && r > 0x7f:
			if r <= 0xffff {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
