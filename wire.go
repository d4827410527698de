package copilotdb

import (
	"encoding/binary"
)

// WireType is the 3-bit framing discriminator carried in a field tag.
type WireType uint8

const (
	WireVarint  = WireType(0)
	WireFixed64 = WireType(1)
	WireBytes   = WireType(2)
	WireSGroup  = WireType(3)
	WireEGroup  = WireType(4)
	WireFixed32 = WireType(5)
)

func (wt WireType) String() string {
	switch wt {
	case WireVarint:
		return "varint"
	case WireFixed64:
		return "fixed64"
	case WireBytes:
		return "bytes"
	case WireSGroup:
		return "start-group"
	case WireEGroup:
		return "end-group"
	case WireFixed32:
		return "fixed32"
	default:
		return "invalid"
	}
}

const maxVarintBytes = 10 // 64 payload bits at 7 bits per byte

// decodeVarint reads a base-128 varint at pos, returning the value and the
// number of bytes consumed. Values with bit 63 set come back negative via
// two's-complement reinterpretation.
func decodeVarint(buf []byte, pos int) (int64, int, error) {
	var v uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= maxVarintBytes {
			return 0, 0, dataErrf(buf, pos, ErrVarintTooLong, "varint")
		}
		if pos+i >= len(buf) {
			return 0, 0, dataErrf(buf, pos, ErrTruncatedVarint, "varint")
		}
		b := buf[pos+i]
		v |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return int64(v), i + 1, nil
		}
		shift += 7
	}
}

// decodeZigzag undoes the small-negative-friendly signed mapping.
func decodeZigzag(v int64) int64 {
	u := uint64(v)
	return int64(u>>1) ^ -int64(u&1)
}

// appendVarint is the encoder inverse of decodeVarint; negative values are
// written as their unsigned 64-bit two's complement.
func appendVarint(buf []byte, v int64) []byte {
	return binary.AppendUvarint(buf, uint64(v))
}

// parseTag splits a tag varint into field number and wire type.
func parseTag(tag int64) (int, WireType) {
	return int(tag >> 3), WireType(tag & 0x7)
}

// skipField returns how many bytes after the tag belong to a field of the
// given wire type. Group wire types are deprecated and never produced by
// this format, so they fail rather than guess.
func skipField(buf []byte, pos int, wt WireType) (int, error) {
	switch wt {
	case WireVarint:
		_, n, err := decodeVarint(buf, pos)
		return n, err
	case WireFixed64:
		return 8, nil
	case WireBytes:
		length, n, err := decodeVarint(buf, pos)
		if err != nil {
			return 0, err
		}
		if length < 0 {
			return 0, dataErrf(buf, pos, nil, "negative length prefix %d", length)
		}
		return n + int(length), nil
	case WireFixed32:
		return 4, nil
	default:
		return 0, dataErrf(buf, pos, ErrUnsupportedWireType, "wire type %d", wt)
	}
}
