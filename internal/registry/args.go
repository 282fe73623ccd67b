package registry

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/dop251/goja"

	"github.com/vovakirdan/scriptloop/internal/core"
)

var (
	errMissing   = errors.New("missing argument")
	errEmptyText = errors.New("text is empty")
	errFontSize  = errors.New("font size must be a finite non-negative number")
)

func missing(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

// numberArg accepts any script number.
func numberArg(v goja.Value) (float64, error) {
	if missing(v) {
		return 0, errMissing
	}
	switch n := v.Export().(type) {
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("expected number, got %q", v.String())
}

// stringArg accepts script strings only; numbers are not coerced.
func stringArg(v goja.Value) (string, error) {
	if missing(v) {
		return "", errMissing
	}
	s, ok := v.Export().(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %q", v.String())
	}
	return s, nil
}

// colorArg accepts a four element array or typed array of numbers in
// [0, 255]. Fractional channels are truncated.
func colorArg(v goja.Value) (core.Color, error) {
	if missing(v) {
		return core.Color{}, errMissing
	}

	items := reflect.ValueOf(v.Export())
	if items.Kind() != reflect.Slice {
		return core.Color{}, fmt.Errorf("color must be an array, got %q", v.String())
	}
	if items.Len() != 4 {
		return core.Color{}, fmt.Errorf("invalid color array length: %d", items.Len())
	}

	var ch [4]uint8
	for i := range ch {
		b, err := channel(items.Index(i))
		if err != nil {
			return core.Color{}, fmt.Errorf("color channel %d: %w", i, err)
		}
		ch[i] = b
	}
	return core.RGBA(ch[0], ch[1], ch[2], ch[3]), nil
}

// channel reads one colour element. Plain arrays hold int64 or float64;
// typed arrays export as slices of their element type.
func channel(item reflect.Value) (uint8, error) {
	if item.Kind() == reflect.Interface {
		item = item.Elem()
	}

	switch item.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := item.Int()
		if n < 0 || n > 255 {
			return 0, fmt.Errorf("%d out of range 0-255", n)
		}
		return uint8(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := item.Uint()
		if n > 255 {
			return 0, fmt.Errorf("%d out of range 0-255", n)
		}
		return uint8(n), nil
	case reflect.Float32, reflect.Float64:
		n := item.Float()
		if math.IsNaN(n) || n < 0 || n >= 256 {
			return 0, fmt.Errorf("%v out of range 0-255", n)
		}
		return uint8(n), nil
	case reflect.Invalid:
		return 0, errMissing
	}
	return 0, fmt.Errorf("expected number, got %s", item.Type())
}
