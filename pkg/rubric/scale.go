package rubric

import (
	"reflect"

	"github.com/spf13/cast"
)

// Scale maps bucket names to scores.
type Scale map[string]float64

var defaultScale = Scale{
	string(Perfect): 1.0,
	string(Close):   0.8,
	string(NiceTry): 0.6,
	string(Decent):  0.4,
	string(Fail):    0.0,
}

// DefaultScale returns a fresh copy of the default scale.
func DefaultScale() Scale {
	s := make(Scale, len(defaultScale))
	for k, v := range defaultScale {
		s[k] = v
	}
	return s
}

// For returns the score for bucket b, falling back to the default scale when
// s lacks it.
func (s Scale) For(b Bucket) float64 {
	if v, ok := s[string(b)]; ok {
		return v
	}
	return defaultScale[string(b)]
}

// ResolveScale overlays a caller-supplied mapping on the default scale.
// Every value is coerced to a float; a value that fails coercion reverts to
// the default for a known bucket and is dropped for any other key. Input that
// is not a mapping yields the defaults.
func ResolveScale(raw any) Scale {
	scale := DefaultScale()

	entries, ok := toStringMap(raw)
	if !ok {
		return scale
	}

	for key, val := range entries {
		f, err := toFloat(val)
		if err != nil {
			if def, known := defaultScale[key]; known {
				scale[key] = def
			} else {
				delete(scale, key)
			}
			continue
		}
		scale[key] = f
	}
	return scale
}

func toStringMap(raw any) (map[string]any, bool) {
	if raw == nil {
		return nil, false
	}
	v := reflect.ValueOf(raw)
	if v.Kind() != reflect.Map {
		return nil, false
	}

	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := cast.ToStringE(iter.Key().Interface())
		if err != nil {
			continue
		}
		out[key] = iter.Value().Interface()
	}
	return out, true
}

type coercionError struct{}

func (coercionError) Error() string { return "value is not numeric" }

func toFloat(v any) (float64, error) {
	if v == nil {
		return 0, coercionError{}
	}
	return cast.ToFloat64E(v)
}
