package copilotdb

import (
	"encoding/binary"
	"math"
	"sort"
)

// AppendValue appends the wire encoding of v to buf. It is the inverse of
// parseValue over the bounded nesting depths exercised in tests; map keys
// are written in sorted order so encoding is deterministic.
func AppendValue(buf []byte, v Value) []byte {
	switch v.Kind {
	case KindNull:
		buf = appendTag(buf, fvNull, WireVarint)
		return appendVarint(buf, 0)
	case KindBool:
		buf = appendTag(buf, fvBool, WireVarint)
		if v.Bool {
			return appendVarint(buf, 1)
		}
		return appendVarint(buf, 0)
	case KindInt:
		buf = appendTag(buf, fvInt, WireVarint)
		return appendVarint(buf, v.Int)
	case KindDouble:
		buf = appendTag(buf, fvDouble, WireFixed64)
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.Dbl))
	case KindString:
		buf = appendTag(buf, fvString, WireBytes)
		return appendLenPrefixed(buf, []byte(v.Str))
	case KindReference:
		buf = appendTag(buf, fvReference, WireBytes)
		return appendLenPrefixed(buf, []byte(v.Str))
	case KindBytes:
		buf = appendTag(buf, fvBytes, WireBytes)
		return appendLenPrefixed(buf, v.Raw)
	case KindTimestamp:
		var sub []byte
		if v.Time.Seconds != 0 {
			sub = appendTag(sub, fTimeSeconds, WireVarint)
			sub = appendVarint(sub, v.Time.Seconds)
		}
		if v.Time.Nanos != 0 {
			sub = appendTag(sub, fTimeNanos, WireVarint)
			sub = appendVarint(sub, int64(v.Time.Nanos))
		}
		buf = appendTag(buf, fvTimestamp, WireBytes)
		return appendLenPrefixed(buf, sub)
	case KindGeoPoint:
		var sub []byte
		sub = appendTag(sub, fGeoLat, WireFixed64)
		sub = binary.LittleEndian.AppendUint64(sub, math.Float64bits(v.Geo.Latitude))
		sub = appendTag(sub, fGeoLng, WireFixed64)
		sub = binary.LittleEndian.AppendUint64(sub, math.Float64bits(v.Geo.Longitude))
		buf = appendTag(buf, fvGeoPoint, WireBytes)
		return appendLenPrefixed(buf, sub)
	case KindMap:
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sub []byte
		for _, k := range keys {
			var entry []byte
			entry = appendTag(entry, fEntryKey, WireBytes)
			entry = appendLenPrefixed(entry, []byte(k))
			entry = appendTag(entry, fEntryValue, WireBytes)
			entry = appendLenPrefixed(entry, AppendValue(nil, v.Map[k]))
			sub = appendTag(sub, fMapEntries, WireBytes)
			sub = appendLenPrefixed(sub, entry)
		}
		buf = appendTag(buf, fvMap, WireBytes)
		return appendLenPrefixed(buf, sub)
	case KindArray:
		var sub []byte
		for _, elem := range v.Arr {
			sub = appendTag(sub, fArrayElem, WireBytes)
			sub = appendLenPrefixed(sub, AppendValue(nil, elem))
		}
		buf = appendTag(buf, fvArray, WireBytes)
		return appendLenPrefixed(buf, sub)
	default:
		panic("invalid value kind")
	}
}

func appendTag(buf []byte, field int, wt WireType) []byte {
	return appendVarint(buf, int64(field)<<3|int64(wt))
}

func appendLenPrefixed(buf, payload []byte) []byte {
	buf = appendVarint(buf, int64(len(payload)))
	return append(buf, payload...)
}
