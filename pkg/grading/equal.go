package grading

import (
	"encoding/json"
	"reflect"
)

// jsonEqual compares two generic JSON values. Numbers compare by value so
// 1, 1.0 and 1e0 are equal.
func jsonEqual(a, b any) bool {
	switch av := a.(type) {
	case json.Number:
		bn, ok := b.(json.Number)
		if !ok {
			if f, isFloat := b.(float64); isFloat {
				x, err := av.Float64()
				return err == nil && x == f
			}
			return false
		}
		if av == bn {
			return true
		}
		x, errA := av.Float64()
		y, errB := bn.Float64()
		return errA == nil && errB == nil && x == y
	case float64:
		if bn, ok := b.(json.Number); ok {
			return jsonEqual(bn, av)
		}
		return reflect.DeepEqual(a, b)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, present := bv[k]
			if !present || !jsonEqual(v, w) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}
