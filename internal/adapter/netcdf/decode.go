package netcdf

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// flatten converts the nested slices returned by a VarGetter into a row-major
// float64 slice.
func flatten(v interface{}) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		out := make([]float64, len(x))
		copy(out, x)
		return out, nil
	case []float32:
		out := make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out, nil
	case [][]float32:
		var out []float64
		for _, row := range x {
			for _, f := range row {
				out = append(out, float64(f))
			}
		}
		return out, nil
	case [][][]float32:
		var out []float64
		for _, plane := range x {
			for _, row := range plane {
				for _, f := range row {
					out = append(out, float64(f))
				}
			}
		}
		return out, nil
	}

	var out []float64
	if err := appendFlat(&out, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return out, nil
}

// window flattens rows y0..y1 and columns x0..x1 of a single time step,
// dropping a leading length-1 time axis.
func window(v interface{}, y0, y1, x0, x1 int) ([]float64, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
	if et := rv.Type().Elem(); rv.Len() == 1 && et.Kind() == reflect.Slice && et.Elem().Kind() == reflect.Slice {
		rv = rv.Index(0)
	}
	if rv.Type().Elem().Kind() != reflect.Slice {
		return nil, fmt.Errorf("want a 2-D field, got %T", v)
	}
	if y0 < 0 || y1 >= rv.Len() {
		return nil, fmt.Errorf("rows %d..%d outside field of %d rows", y0, y1, rv.Len())
	}

	out := make([]float64, 0, (y1-y0+1)*(x1-x0+1))
	for y := y0; y <= y1; y++ {
		row := rv.Index(y)
		if x0 < 0 || x1 >= row.Len() {
			return nil, fmt.Errorf("columns %d..%d outside row of %d cells", x0, x1, row.Len())
		}
		if err := appendFlat(&out, row.Slice(x0, x1+1)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendFlat(out *[]float64, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := appendFlat(out, rv.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Float32, reflect.Float64:
		*out = append(*out, rv.Float())
		return nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		*out = append(*out, float64(rv.Int()))
		return nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		*out = append(*out, float64(rv.Uint()))
		return nil
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return errors.New("nil value in numeric data")
		}
		return appendFlat(out, rv.Elem())
	}
	return fmt.Errorf("unsupported value type %s", rv.Type())
}

// shape returns the lengths of each nesting level of a nested slice.
func shape(v interface{}) []int {
	var dims []int
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		dims = append(dims, rv.Len())
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
	}
	return dims
}

// attrFloat reads a numeric attribute stored either as a scalar or as a
// one-element array.
func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	raw, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	vals, err := flatten(raw)
	if err != nil || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

func attrString(attrs api.AttributeMap, key string) string {
	if attrs == nil {
		return ""
	}
	raw, ok := attrs.Get(key)
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}

// decoder maps packed values to physical values: fill and missing markers
// become NaN, then scale_factor and add_offset apply.
type decoder struct {
	fill, missing       float64
	hasFill, hasMissing bool
	scale, offset       float64
}

func newDecoder(attrs api.AttributeMap) decoder {
	d := decoder{scale: 1}
	d.fill, d.hasFill = attrFloat(attrs, "_FillValue")
	d.missing, d.hasMissing = attrFloat(attrs, "missing_value")
	if s, ok := attrFloat(attrs, "scale_factor"); ok {
		d.scale = s
	}
	if o, ok := attrFloat(attrs, "add_offset"); ok {
		d.offset = o
	}
	return d
}

func (d decoder) decode(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	if d.hasFill && v == d.fill {
		return math.NaN()
	}
	if d.hasMissing && v == d.missing {
		return math.NaN()
	}
	return v*d.scale + d.offset
}

// timeUnits is a parsed CF "<unit> since <epoch>" string.
type timeUnits struct {
	step  time.Duration
	epoch time.Time
}

var epochLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2 15:4:5",
	"2006-1-2",
}

func parseTimeUnits(s string) (timeUnits, error) {
	unit, since, ok := strings.Cut(strings.TrimSpace(s), " since ")
	if !ok {
		return timeUnits{}, fmt.Errorf("time units %q: missing \"since\"", s)
	}

	var step time.Duration
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "days", "day", "d":
		step = 24 * time.Hour
	case "hours", "hour", "hrs", "hr", "h":
		step = time.Hour
	case "minutes", "minute", "mins", "min":
		step = time.Minute
	case "seconds", "second", "secs", "sec", "s":
		step = time.Second
	default:
		return timeUnits{}, fmt.Errorf("time units %q: unsupported unit %q", s, unit)
	}

	since = strings.TrimSpace(since)
	for _, suffix := range []string{" UTC", "Z", " +00:00", "+00:00", " +0000"} {
		since = strings.TrimSuffix(since, suffix)
	}
	if i := strings.IndexByte(since, '.'); i > 0 {
		since = since[:i] // fractional seconds
	}
	for _, layout := range epochLayouts {
		if t, err := time.ParseInLocation(layout, since, time.UTC); err == nil {
			return timeUnits{step: step, epoch: t}, nil
		}
	}
	return timeUnits{}, fmt.Errorf("time units %q: unparseable epoch %q", s, since)
}

// at converts an offset in units to an absolute time, rounded to the second.
func (u timeUnits) at(offset float64) time.Time {
	whole := math.Trunc(offset)
	t := u.epoch
	if u.step == 24*time.Hour {
		t = t.AddDate(0, 0, int(whole))
	} else {
		t = t.Add(time.Duration(whole) * u.step)
	}
	frac := time.Duration((offset - whole) * float64(u.step))
	return t.Add(frac).Round(time.Second)
}
