// Package geo builds the map layers of the dashboards: GeoJSON point
// features, marker styling, popups, legend symbols and address geocoding.
package geo

import (
	"fmt"
	"io"
	"math"
	"nerisdash/pkg/format"
	"nerisdash/pkg/relation"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Property is a feature property copied from a frame column. Default is used
// when the column is absent or null.
type Property struct {
	Name    string
	Default any
}

// Feature is a GeoJSON point feature. Coordinates are [lon, lat].
type Feature struct {
	Coordinates [2]float64
	Properties  map[string]any
}

// Prop returns property name as a string, or "" when absent or null.
func (f Feature) Prop(name string) string {
	v, ok := f.Properties[name]
	if !ok || v == nil {
		return ""
	}

	return format.Scalar(v)
}

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Features []Feature
}

// FromFrame builds one point feature per row of frame, reading coordinates
// from the x and y columns. Rows with a NaN or infinite coordinate are
// skipped since GeoJSON cannot represent them.
func FromFrame(frame *relation.Frame, props []Property) FeatureCollection {
	fc := FeatureCollection{Features: make([]Feature, 0, frame.Len())}
	for i := 0; i < frame.Len(); i++ {
		f := Feature{Properties: make(map[string]any, len(props))}
		f.Coordinates[0] = coordinate(frame, i, "x")
		f.Coordinates[1] = coordinate(frame, i, "y")
		if !finite(f.Coordinates[0]) || !finite(f.Coordinates[1]) {
			continue
		}
		for _, p := range props {
			v, ok := frame.Value(i, p.Name)
			if !ok || v == nil {
				v = p.Default
			}
			f.Properties[p.Name] = v
		}
		fc.Features = append(fc.Features, f)
	}

	return fc
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func coordinate(frame *relation.Frame, i int, column string) float64 {
	v, _ := frame.Value(i, column)
	f, ok := format.AsFloat(v)
	if !ok {
		return 0
	}

	return f
}

// Encode writes fc as GeoJSON. Property keys are sorted.
func (fc FeatureCollection) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("type", func(e *jx.Encoder) { e.Str("FeatureCollection") })
		e.Field("features", func(e *jx.Encoder) {
			e.ArrStart()
			for _, f := range fc.Features {
				f.Encode(e)
			}
			e.ArrEnd()
		})
	})
}

// Encode writes f as a GeoJSON feature.
func (f Feature) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("type", func(e *jx.Encoder) { e.Str("Feature") })
		e.Field("geometry", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("type", func(e *jx.Encoder) { e.Str("Point") })
				e.Field("coordinates", func(e *jx.Encoder) {
					e.Arr(func(e *jx.Encoder) {
						e.Float64(f.Coordinates[0])
						e.Float64(f.Coordinates[1])
					})
				})
			})
		})
		e.Field("properties", func(e *jx.Encoder) {
			keys := make([]string, 0, len(f.Properties))
			for k := range f.Properties {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			e.ObjStart()
			for _, k := range keys {
				e.FieldStart(k)
				encodeValue(e, f.Properties[k])
			}
			e.ObjEnd()
		})
	})
}

// MarshalJSON implements json.Marshaler.
func (fc FeatureCollection) MarshalJSON() ([]byte, error) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	fc.Encode(e)

	return append([]byte(nil), e.Bytes()...), nil
}

// WriteTo streams fc to w.
func (fc FeatureCollection) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	e := jx.NewStreamingEncoder(cw, -1)
	fc.Encode(e)
	if err := e.Close(); err != nil {
		return cw.n, errors.Wrap(err, "write geojson")
	}

	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err //nolint: wrapcheck
}

func encodeValue(e *jx.Encoder, v any) {
	switch val := v.(type) {
	case nil:
		e.Null()
	case string:
		e.Str(val)
	case bool:
		e.Bool(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			e.Null()

			return
		}
		e.Float64(val)
	case float32:
		encodeValue(e, float64(val))
	case time.Time:
		e.Str(val.Format(time.DateTime))
	case []any:
		e.Arr(func(e *jx.Encoder) {
			for _, item := range val {
				encodeValue(e, item)
			}
		})
	case []string:
		e.Arr(func(e *jx.Encoder) {
			for _, item := range val {
				e.Str(item)
			}
		})
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.ObjStart()
		for _, k := range keys {
			e.FieldStart(k)
			encodeValue(e, val[k])
		}
		e.ObjEnd()
	default:
		if n, ok := format.AsInt(v); ok {
			e.Int64(n)

			return
		}
		if f, ok := format.AsFloat(v); ok {
			e.Float64(f)

			return
		}
		e.Str(fmt.Sprint(v))
	}
}

// HasFeatures reports whether raw is a GeoJSON object with a non-empty
// features array.
func HasFeatures(raw []byte) (bool, error) {
	found := false
	d := jx.DecodeBytes(raw)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "features" || d.Next() != jx.Array {
			return d.Skip()
		}

		return d.Arr(func(d *jx.Decoder) error {
			found = true

			return d.Skip()
		})
	})
	if err != nil {
		return false, errors.Wrap(err, "decode geojson")
	}

	return found, nil
}
