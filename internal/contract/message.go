package contract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders engine messages for keywords without a dedicated format.
var printer = message.NewPrinter(language.English)

// describe renders the violation message in the established contract
// wording, e.g. "'response' is a required property".
func (d *document) describe(f failure, instance any) string {
	value, _ := resolve(instance, f.instancePath)

	if f.keyword == "" {
		if node, ok := resolve(d.raw, f.schemaPath); ok {
			if b, isBool := node.(bool); isBool && !b {
				return fmt.Sprintf("False schema does not allow %s", d.repr(value, nil))
			}
		}
		return f.err.ErrorKind.LocalizedString(printer)
	}

	kwPath := f.schemaPath
	parentPath := kwPath[:len(kwPath)-1]
	kwValue, _ := resolve(d.raw, kwPath)
	parent, _ := resolve(d.raw, parentPath)
	parentObj, _ := parent.(map[string]any)

	got := d.repr(value, nil)
	switch f.keyword {
	case "required":
		if name, ok := firstMissing(kwValue, value); ok {
			return fmt.Sprintf("%s is a required property", d.repr(name, nil))
		}
	case "type":
		return fmt.Sprintf("%s is not of type %s", got, d.reprTypes(kwValue))
	case "enum":
		return fmt.Sprintf("%s is not one of %s", got, d.repr(kwValue, kwPath))
	case "const":
		return fmt.Sprintf("%s was expected", d.repr(kwValue, kwPath))
	case "not":
		return fmt.Sprintf("%s should not be valid under %s", got, d.repr(kwValue, kwPath))
	case "anyOf", "oneOf":
		if len(f.err.Causes) > 0 {
			return fmt.Sprintf("%s is not valid under any of the given schemas", got)
		}
	case "additionalProperties":
		if extras := unexpectedProperties(parentObj, value); len(extras) > 0 {
			quoted := make([]string, len(extras))
			for i, e := range extras {
				quoted[i] = d.repr(e, nil)
			}
			verb := "was"
			if len(extras) > 1 {
				verb = "were"
			}
			return fmt.Sprintf("Additional properties are not allowed (%s %s unexpected)",
				strings.Join(quoted, ", "), verb)
		}
	case "minLength", "minItems":
		return fmt.Sprintf("%s is too short", got)
	case "maxLength", "maxItems":
		return fmt.Sprintf("%s is too long", got)
	case "minimum":
		return fmt.Sprintf("%s is less than the minimum of %s", got, d.repr(kwValue, kwPath))
	case "maximum":
		return fmt.Sprintf("%s is greater than the maximum of %s", got, d.repr(kwValue, kwPath))
	case "exclusiveMinimum":
		return fmt.Sprintf("%s is less than or equal to the minimum of %s", got, d.repr(kwValue, kwPath))
	case "exclusiveMaximum":
		return fmt.Sprintf("%s is greater than or equal to the maximum of %s", got, d.repr(kwValue, kwPath))
	case "multipleOf":
		return fmt.Sprintf("%s is not a multiple of %s", got, d.repr(kwValue, kwPath))
	case "pattern":
		return fmt.Sprintf("%s does not match %s", got, d.repr(kwValue, kwPath))
	case "format":
		return fmt.Sprintf("%s is not a %s", got, d.repr(kwValue, kwPath))
	case "minProperties":
		return fmt.Sprintf("%s does not have enough properties", got)
	case "maxProperties":
		return fmt.Sprintf("%s has too many properties", got)
	case "uniqueItems":
		return fmt.Sprintf("%s has non-unique elements", got)
	}

	return f.err.ErrorKind.LocalizedString(printer)
}

func (d *document) reprTypes(v any) string {
	switch t := v.(type) {
	case string:
		return d.repr(t, nil)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = d.repr(item, nil)
		}
		return strings.Join(parts, ", ")
	default:
		return d.repr(v, nil)
	}
}

// firstMissing returns the first required name, in schema order, absent
// from the instance object.
func firstMissing(required, instance any) (string, bool) {
	obj, ok := instance.(map[string]any)
	if !ok {
		return "", false
	}
	names, _ := required.([]any)
	for _, n := range names {
		name, ok := n.(string)
		if !ok {
			continue
		}
		if _, present := obj[name]; !present {
			return name, true
		}
	}
	return "", false
}

// unexpectedProperties lists instance keys matched by neither "properties"
// nor "patternProperties" of the schema object. Decoded objects are Go maps,
// which keep no key order, so the names are sorted rather than listed in
// the order the body spelled them.
func unexpectedProperties(schema map[string]any, instance any) []string {
	obj, ok := instance.(map[string]any)
	if !ok {
		return nil
	}

	declared, _ := schema["properties"].(map[string]any)
	var patterns []*regexp.Regexp
	if pp, ok := schema["patternProperties"].(map[string]any); ok {
		for expr := range pp {
			if re, err := regexp.Compile(expr); err == nil {
				patterns = append(patterns, re)
			}
		}
	}

	var extras []string
	for key := range obj {
		if _, ok := declared[key]; ok {
			continue
		}
		if matchesAny(patterns, key) {
			continue
		}
		extras = append(extras, key)
	}
	sort.Strings(extras)
	return extras
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
