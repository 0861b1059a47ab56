package contract

import (
	"errors"
	"net/url"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/ahrav/go-grader/internal/domain"
)

// failure is one leaf of the validation error tree, located absolutely in
// both the schema document and the instance.
type failure struct {
	schemaPath   []string
	instancePath []string
	keyword      string
	err          *jsonschema.ValidationError
}

// terminal keywords report a single error for the whole keyword instead of
// descending into the subschema errors that caused it.
var terminal = map[string]bool{
	"anyOf": true,
	"oneOf": true,
	"not":   true,
}

// check validates instance and returns its first violation, or nil.
func (d *document) check(instance any) *domain.Violation {
	err := d.schema.Validate(instance)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &domain.Violation{Message: err.Error(), SchemaPath: []any{}, InstancePath: []any{}}
	}

	var leaves []failure
	collect(verr, &leaves)
	if len(leaves) == 0 {
		return &domain.Violation{Message: verr.Error(), SchemaPath: []any{}, InstancePath: []any{}}
	}

	first := leaves[0]
	for _, f := range leaves[1:] {
		if d.before(f, first) {
			first = f
		}
	}

	return &domain.Violation{
		Message:      d.describe(first, instance),
		SchemaPath:   typedPath(d.raw, first.schemaPath),
		InstancePath: typedPath(instance, first.instancePath),
	}
}

// before reports whether a precedes b in schema-document order, falling back
// to instance location for rules that fail at several places.
func (d *document) before(a, b failure) bool {
	if !slices.Equal(a.schemaPath, b.schemaPath) {
		return d.order.less(a.schemaPath, b.schemaPath)
	}
	return slices.Compare(a.instancePath, b.instancePath) < 0
}

func collect(e *jsonschema.ValidationError, out *[]failure) {
	path := schemaPath(e)
	keyword := ""
	if kw := keywordPath(e); len(kw) > 0 {
		keyword = kw[len(kw)-1]
	}

	if len(e.Causes) == 0 || terminal[keyword] {
		*out = append(*out, failure{
			schemaPath:   path,
			instancePath: slices.Clone(e.InstanceLocation),
			keyword:      keyword,
			err:          e,
		})
		return
	}

	for _, cause := range e.Causes {
		collect(cause, out)
	}
}

// schemaPath joins the fragment of the error's schema location with the
// keyword that failed there.
func schemaPath(e *jsonschema.ValidationError) []string {
	var path []string

	if _, frag, ok := strings.Cut(e.SchemaURL, "#"); ok && frag != "" {
		if unescaped, err := url.PathUnescape(frag); err == nil {
			frag = unescaped
		}
		for _, seg := range strings.Split(strings.TrimPrefix(frag, "/"), "/") {
			path = append(path, pointerUnescaper.Replace(seg))
		}
	}

	return append(path, keywordPath(e)...)
}

// keywordPath is the location of the failing keyword relative to the
// error's schema. The engine reports "not" failures against the enclosing
// schema with an empty keyword path.
func keywordPath(e *jsonschema.ValidationError) []string {
	if _, ok := e.ErrorKind.(*kind.Not); ok {
		return []string{"not"}
	}
	return e.ErrorKind.KeywordPath()
}
