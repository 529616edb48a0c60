package netcdf

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// flatten converts the nested slices returned by the reader into a row-major []float64.
func flatten(values any) ([]float64, error) {
	switch v := values.(type) {
	case []float64:
		return convert(v), nil
	case []float32:
		return convert(v), nil
	case []int64:
		return convert(v), nil
	case []int32:
		return convert(v), nil
	case []int16:
		return convert(v), nil
	case []int8:
		return convert(v), nil
	case [][]float64:
		return flatten2(v), nil
	case [][]float32:
		return flatten2(v), nil
	case [][]int32:
		return flatten2(v), nil
	case [][]int16:
		return flatten2(v), nil
	case [][][]float64:
		return flatten3(v), nil
	case [][][]float32:
		return flatten3(v), nil
	case [][][]int32:
		return flatten3(v), nil
	case [][][]int16:
		return flatten3(v), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", values)
	}
}

func convert[T number](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func flatten2[T number](v [][]T) []float64 {
	var out []float64
	for _, row := range v {
		for _, x := range row {
			out = append(out, float64(x))
		}
	}
	return out
}

func flatten3[T number](v [][][]T) []float64 {
	var out []float64
	for _, plane := range v {
		for _, row := range plane {
			for _, x := range row {
				out = append(out, float64(x))
			}
		}
	}
	return out
}

func attrString(attrs api.AttributeMap, key string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	v, ok := attrs.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// attrFloat reads a numeric attribute, taking the first element of array attributes.
func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	v, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case []float64, []float32, []int64, []int32, []int16, []int8:
		vals, err := flatten(x)
		if err != nil || len(vals) == 0 {
			return 0, false
		}
		return vals[0], true
	default:
		return 0, false
	}
}
