package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ahrav/go-grader/internal/domain"
)

// resourceBase prefixes the in-memory resource name of each contract.
// Documents are registered directly with the compiler, so nothing is ever
// fetched from this address.
const resourceBase = "https://contracts.grader.internal/"

// document is one compiled contract together with the decoded source it was
// compiled from. The source is kept to render violation messages and to
// order violations the way they appear in the document.
type document struct {
	id     ID
	raw    any
	order  keyOrder
	schema *jsonschema.Schema
}

func compileDocument(id ID, data []byte) (*document, error) {
	raw, err := domain.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s contract is not valid JSON: %w", ErrSchemaCompile, id, err)
	}

	order, err := indexKeyOrder(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s contract: %w", ErrSchemaCompile, id, err)
	}

	url := resourceBase + string(id) + ".json"
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	if err := c.AddResource(url, raw); err != nil {
		return nil, fmt.Errorf("%w: %s contract: %w", ErrSchemaCompile, id, err)
	}

	schema, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s contract: %w", ErrSchemaCompile, id, err)
	}

	return &document{id: id, raw: raw, order: order, schema: schema}, nil
}

// keyOrder maps a JSON pointer of every object in the schema document to
// its keys in document order.
type keyOrder map[string][]string

func indexKeyOrder(data []byte) (keyOrder, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	order := keyOrder{}
	if err := order.walk(dec, nil); err != nil {
		return nil, err
	}
	return order, nil
}

func (o keyOrder) walk(dec *json.Decoder, path []string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}

	switch delim {
	case '{':
		var keys []string
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("unexpected object key %v", keyTok)
			}
			keys = append(keys, key)
			if err := o.walk(dec, append(path, key)); err != nil {
				return err
			}
		}
		o[pointer(path)] = keys
	case '[':
		for i := 0; dec.More(); i++ {
			if err := o.walk(dec, append(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
	}

	// Closing delimiter.
	_, err = dec.Token()
	return err
}

// keys returns the document-order keys of the object at path, if known.
func (o keyOrder) keys(path []string) ([]string, bool) {
	keys, ok := o[pointer(path)]
	return keys, ok
}

// rank positions key among its siblings at path. "then" and "else" take the
// position of their "if", which is where their errors are produced.
func (o keyOrder) rank(path []string, key string) (int, bool) {
	keys, ok := o.keys(path)
	if !ok {
		return 0, false
	}
	if key == "then" || key == "else" {
		if i := indexOf(keys, "if"); i >= 0 {
			return i, true
		}
	}
	if i := indexOf(keys, key); i >= 0 {
		return i, true
	}
	return 0, false
}

// less orders two absolute schema paths by where their rules appear in the
// document.
func (o keyOrder) less(a, b []string) bool {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			continue
		}
		ra, okA := o.rank(a[:i], a[i])
		rb, okB := o.rank(a[:i], b[i])
		if okA && okB && ra != rb {
			return ra < rb
		}
		na, errA := strconv.Atoi(a[i])
		nb, errB := strconv.Atoi(b[i])
		if errA == nil && errB == nil {
			return na < nb
		}
		return a[i] < b[i]
	}
	return len(a) < len(b)
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func pointer(path []string) string {
	if len(path) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range path {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(seg))
	}
	return b.String()
}

func indexOf(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}

// resolve walks a generic JSON value along path.
func resolve(root any, path []string) (any, bool) {
	cur := root
	for _, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// typedPath converts path segments into the wire form: ints for array
// indices, strings for object keys.
func typedPath(root any, path []string) []any {
	out := make([]any, 0, len(path))
	cur := root
	for _, seg := range path {
		switch node := cur.(type) {
		case []any:
			if i, err := strconv.Atoi(seg); err == nil {
				out = append(out, i)
				if i >= 0 && i < len(node) {
					cur = node[i]
				} else {
					cur = nil
				}
				continue
			}
			cur = nil
		case map[string]any:
			cur = node[seg]
		default:
			cur = nil
		}
		out = append(out, seg)
	}
	return out
}
