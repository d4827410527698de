package copilotdb

import (
	"encoding/binary"
	"math"
	"time"
)

// Field numbers of the Value one-of as the synchronization framework
// compiles them. The string marker 0x8A 0x01 seen in raw segment files is
// exactly fvString<<3|WireBytes varint-encoded.
const (
	fvBool      = 1
	fvInt       = 2
	fvDouble    = 3
	fvReference = 5
	fvMap       = 6
	fvGeoPoint  = 8
	fvArray     = 9
	fvTimestamp = 10
	fvNull      = 11
	fvString    = 17
	fvBytes     = 18

	fMapEntries = 1
	fEntryKey   = 1
	fEntryValue = 2
	fArrayElem  = 1

	fTimeSeconds = 1
	fTimeNanos   = 2
	fGeoLat      = 1
	fGeoLng      = 2
)

// Kind identifies the active variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindBytes
	KindReference
	KindTimestamp
	KindGeoPoint
	KindMap
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindReference:
		return "reference"
	case KindTimestamp:
		return "timestamp"
	case KindGeoPoint:
		return "geopoint"
	case KindMap:
		return "map"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

type Timestamp struct {
	Seconds int64
	Nanos   int32
}

type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Value is a tagged union; exactly one variant is active, identified by Kind.
// Map and array children are fully parsed before the parent is returned.
type Value struct {
	Kind Kind
	Bool bool
	Int  int64
	Dbl  float64
	Str  string // string and reference variants
	Raw  []byte
	Time Timestamp
	Geo  GeoPoint
	Map  map[string]Value
	Arr  []Value
}

func Null() Value { return Value{Kind: KindNull} }

func Bool(v bool) Value { return Value{Kind: KindBool, Bool: v} }

func Int(v int64) Value { return Value{Kind: KindInt, Int: v} }

func Double(v float64) Value { return Value{Kind: KindDouble, Dbl: v} }

func String(v string) Value { return Value{Kind: KindString, Str: v} }

func Bytes(v []byte) Value { return Value{Kind: KindBytes, Raw: v} }

func Reference(path string) Value { return Value{Kind: KindReference, Str: path} }

func Time(sec int64, ns int32) Value { return Value{Kind: KindTimestamp, Time: Timestamp{sec, ns}} }

func Geo(lat, lng float64) Value { return Value{Kind: KindGeoPoint, Geo: GeoPoint{lat, lng}} }

func MapOf(m map[string]Value) Value { return Value{Kind: KindMap, Map: m} }

func ArrayOf(elems ...Value) Value { return Value{Kind: KindArray, Arr: elems} }

// Interface converts a Value into plain Go data: nil, bool, int64, float64,
// string, []byte, time.Time, GeoPoint, map[string]any or []any.
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindDouble:
		return v.Dbl
	case KindString, KindReference:
		return v.Str
	case KindBytes:
		return v.Raw
	case KindTimestamp:
		return time.Unix(v.Time.Seconds, int64(v.Time.Nanos)).UTC()
	case KindGeoPoint:
		return v.Geo
	case KindMap:
		m := make(map[string]any, len(v.Map))
		for k, kid := range v.Map {
			m[k] = kid.Interface()
		}
		return m
	case KindArray:
		a := make([]any, len(v.Arr))
		for i, kid := range v.Arr {
			a[i] = kid.Interface()
		}
		return a
	default:
		return nil
	}
}

// parseValue decodes the one-of variant of a Value message found in
// buf[start:end]. The first recognized one-of field terminates parsing and
// is returned as is; a stricter writer only ever supplies one such field,
// and the raw scanner relies on the same first-match interpretation, so do
// not change this to last-seen-wins. Unknown field numbers are skipped.
// A region with no recognized field decodes as the null variant.
func parseValue(buf []byte, start, end int) (Value, error) {
	pos := start
	for pos < end {
		tag, n, err := decodeVarint(buf, pos)
		if err != nil {
			return Value{}, err
		}
		pos += n
		field, wt := parseTag(tag)

		switch field {
		case fvBool:
			v, err := wantVarint(buf, pos, end, field, wt)
			if err != nil {
				return Value{}, err
			}
			return Bool(v != 0), nil

		case fvInt:
			v, err := wantVarint(buf, pos, end, field, wt)
			if err != nil {
				return Value{}, err
			}
			return Int(v), nil

		case fvDouble:
			v, err := wantFixed64(buf, pos, end, field, wt)
			if err != nil {
				return Value{}, err
			}
			return Double(math.Float64frombits(v)), nil

		case fvNull:
			if _, err := wantVarint(buf, pos, end, field, wt); err != nil {
				return Value{}, err
			}
			return Null(), nil

		case fvString:
			s, _, err := wantBytes(buf, pos, end, field, wt)
			if err != nil {
				return Value{}, err
			}
			return String(string(s)), nil

		case fvReference:
			s, _, err := wantBytes(buf, pos, end, field, wt)
			if err != nil {
				return Value{}, err
			}
			return Reference(string(s)), nil

		case fvBytes:
			s, _, err := wantBytes(buf, pos, end, field, wt)
			if err != nil {
				return Value{}, err
			}
			raw := make([]byte, len(s))
			copy(raw, s)
			return Bytes(raw), nil

		case fvTimestamp:
			_, sub, err := wantBytes(buf, pos, end, field, wt)
			if err != nil {
				return Value{}, err
			}
			ts, err := parseTimestamp(buf, sub.start, sub.end)
			if err != nil {
				return Value{}, err
			}
			return Value{Kind: KindTimestamp, Time: ts}, nil

		case fvGeoPoint:
			_, sub, err := wantBytes(buf, pos, end, field, wt)
			if err != nil {
				return Value{}, err
			}
			gp, err := parseGeoPoint(buf, sub.start, sub.end)
			if err != nil {
				return Value{}, err
			}
			return Value{Kind: KindGeoPoint, Geo: gp}, nil

		case fvMap:
			_, sub, err := wantBytes(buf, pos, end, field, wt)
			if err != nil {
				return Value{}, err
			}
			m, err := parseMapValue(buf, sub.start, sub.end)
			if err != nil {
				return Value{}, err
			}
			return MapOf(m), nil

		case fvArray:
			_, sub, err := wantBytes(buf, pos, end, field, wt)
			if err != nil {
				return Value{}, err
			}
			a, err := parseArrayValue(buf, sub.start, sub.end)
			if err != nil {
				return Value{}, err
			}
			return Value{Kind: KindArray, Arr: a}, nil

		default:
			skip, err := skipField(buf, pos, wt)
			if err != nil {
				return Value{}, err
			}
			pos += skip
		}
	}
	return Null(), nil
}

type region struct {
	start, end int
}

func wantVarint(buf []byte, pos, end int, field int, wt WireType) (int64, error) {
	if wt != WireVarint {
		return 0, wireTypeErr(field, WireVarint, wt)
	}
	v, n, err := decodeVarint(buf, pos)
	if err != nil {
		return 0, err
	}
	if pos+n > end {
		return 0, dataErrf(buf, pos, ErrTruncatedVarint, "field %d runs past region end", field)
	}
	return v, nil
}

func wantFixed64(buf []byte, pos, end int, field int, wt WireType) (uint64, error) {
	if wt != WireFixed64 {
		return 0, wireTypeErr(field, WireFixed64, wt)
	}
	if pos+8 > end || pos+8 > len(buf) {
		return 0, dataErrf(buf, pos, nil, "field %d: need 8 bytes, have %d", field, end-pos)
	}
	return binary.LittleEndian.Uint64(buf[pos : pos+8]), nil
}

func wantBytes(buf []byte, pos, end int, field int, wt WireType) ([]byte, region, error) {
	if wt != WireBytes {
		return nil, region{}, wireTypeErr(field, WireBytes, wt)
	}
	length, n, err := decodeVarint(buf, pos)
	if err != nil {
		return nil, region{}, err
	}
	start := pos + n
	stop := start + int(length)
	if length < 0 || stop > end || stop > len(buf) {
		return nil, region{}, dataErrf(buf, pos, nil, "field %d: length prefix %d exceeds region", field, length)
	}
	return buf[start:stop], region{start, stop}, nil
}

// parseTimestamp and parseGeoPoint are fixed two-field loops with the same
// skip-unknown-fields discipline as parseValue.
func parseTimestamp(buf []byte, start, end int) (Timestamp, error) {
	var ts Timestamp
	pos := start
	for pos < end {
		tag, n, err := decodeVarint(buf, pos)
		if err != nil {
			return ts, err
		}
		pos += n
		field, wt := parseTag(tag)
		switch field {
		case fTimeSeconds:
			v, err := wantVarint(buf, pos, end, field, wt)
			if err != nil {
				return ts, err
			}
			ts.Seconds = v
		case fTimeNanos:
			v, err := wantVarint(buf, pos, end, field, wt)
			if err != nil {
				return ts, err
			}
			ts.Nanos = int32(v)
		}
		skip, err := skipField(buf, pos, wt)
		if err != nil {
			return ts, err
		}
		pos += skip
	}
	return ts, nil
}

func parseGeoPoint(buf []byte, start, end int) (GeoPoint, error) {
	var gp GeoPoint
	pos := start
	for pos < end {
		tag, n, err := decodeVarint(buf, pos)
		if err != nil {
			return gp, err
		}
		pos += n
		field, wt := parseTag(tag)
		switch field {
		case fGeoLat:
			v, err := wantFixed64(buf, pos, end, field, wt)
			if err != nil {
				return gp, err
			}
			gp.Latitude = math.Float64frombits(v)
		case fGeoLng:
			v, err := wantFixed64(buf, pos, end, field, wt)
			if err != nil {
				return gp, err
			}
			gp.Longitude = math.Float64frombits(v)
		}
		skip, err := skipField(buf, pos, wt)
		if err != nil {
			return gp, err
		}
		pos += skip
	}
	return gp, nil
}

// parseMapValue reads the entry list of a map variant. Entries missing a key
// are dropped silently.
func parseMapValue(buf []byte, start, end int) (map[string]Value, error) {
	m := make(map[string]Value)
	pos := start
	for pos < end {
		tag, n, err := decodeVarint(buf, pos)
		if err != nil {
			return nil, err
		}
		pos += n
		field, wt := parseTag(tag)
		if field != fMapEntries {
			skip, err := skipField(buf, pos, wt)
			if err != nil {
				return nil, err
			}
			pos += skip
			continue
		}
		_, sub, err := wantBytes(buf, pos, end, field, wt)
		if err != nil {
			return nil, err
		}
		pos = sub.end
		key, val, ok, err := parseMapEntry(buf, sub.start, sub.end)
		if err != nil {
			return nil, err
		}
		if ok {
			m[key] = val
		}
	}
	return m, nil
}

// parseMapEntry decodes a single key/value entry sub-message. ok is false
// when the entry has no key.
func parseMapEntry(buf []byte, start, end int) (string, Value, bool, error) {
	var key string
	var hasKey, hasVal bool
	var val Value
	pos := start
	for pos < end {
		tag, n, err := decodeVarint(buf, pos)
		if err != nil {
			return "", Value{}, false, err
		}
		pos += n
		field, wt := parseTag(tag)
		switch field {
		case fEntryKey:
			s, sub, err := wantBytes(buf, pos, end, field, wt)
			if err != nil {
				return "", Value{}, false, err
			}
			key, hasKey = string(s), true
			pos = sub.end
		case fEntryValue:
			_, sub, err := wantBytes(buf, pos, end, field, wt)
			if err != nil {
				return "", Value{}, false, err
			}
			val, err = parseValue(buf, sub.start, sub.end)
			if err != nil {
				return "", Value{}, false, err
			}
			hasVal = true
			pos = sub.end
		default:
			skip, err := skipField(buf, pos, wt)
			if err != nil {
				return "", Value{}, false, err
			}
			pos += skip
		}
	}
	if !hasVal {
		val = Null()
	}
	return key, val, hasKey, nil
}

// parseArrayValue reads the element list of an array variant in encounter
// order; each element is directly a Value.
func parseArrayValue(buf []byte, start, end int) ([]Value, error) {
	a := make([]Value, 0)
	pos := start
	for pos < end {
		tag, n, err := decodeVarint(buf, pos)
		if err != nil {
			return nil, err
		}
		pos += n
		field, wt := parseTag(tag)
		if field != fArrayElem {
			skip, err := skipField(buf, pos, wt)
			if err != nil {
				return nil, err
			}
			pos += skip
			continue
		}
		_, sub, err := wantBytes(buf, pos, end, field, wt)
		if err != nil {
			return nil, err
		}
		pos = sub.end
		elem, err := parseValue(buf, sub.start, sub.end)
		if err != nil {
			return nil, err
		}
		a = append(a, elem)
	}
	return a, nil
}
