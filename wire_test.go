package copilotdb

import (
	"errors"
	"math"
	"testing"
)

func TestVarint_RoundTrip(t *testing.T) {
	values := []int64{
		0, 1, 2, 127, 128, 300, 16383, 16384,
		math.MaxInt64, math.MinInt64,
		-1, -127, -300,
	}
	for _, v := range values {
		buf := appendVarint(nil, v)
		got, n, err := decodeVarint(buf, 0)
		if err != nil {
			t.Fatalf("decodeVarint(%x) err = %v", buf, err)
		}
		if got != v || n != len(buf) {
			t.Fatalf("decodeVarint(appendVarint(%d)) = (%d, %d), wanted (%d, %d)", v, got, n, v, len(buf))
		}
	}
}

func TestVarint_NegativeTakesTenBytes(t *testing.T) {
	buf := appendVarint(nil, -1)
	if len(buf) != 10 {
		t.Fatalf("appendVarint(-1) = %d bytes, wanted 10", len(buf))
	}
}

func TestVarint_Truncated(t *testing.T) {
	_, _, err := decodeVarint([]byte{0x80, 0x80}, 0)
	if !errors.Is(err, ErrTruncatedVarint) {
		t.Fatalf("err = %v, wanted ErrTruncatedVarint", err)
	}
	_, _, err = decodeVarint(nil, 0)
	if !errors.Is(err, ErrTruncatedVarint) {
		t.Fatalf("empty buffer err = %v, wanted ErrTruncatedVarint", err)
	}
}

func TestVarint_TooLong(t *testing.T) {
	buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, _, err := decodeVarint(buf, 0)
	if !errors.Is(err, ErrVarintTooLong) {
		t.Fatalf("err = %v, wanted ErrVarintTooLong", err)
	}
}

func TestZigzag(t *testing.T) {
	cases := []struct{ in, want int64 }{
		{0, 0},
		{1, -1},
		{2, 1},
		{3, -2},
		{4, 2},
		{4294967294, 2147483647},
		{4294967295, -2147483648},
	}
	for _, c := range cases {
		if got := decodeZigzag(c.in); got != c.want {
			t.Fatalf("decodeZigzag(%d) = %d, wanted %d", c.in, got, c.want)
		}
	}
}

func TestParseTag(t *testing.T) {
	field, wt := parseTag(0x8A) // 17<<3 | 2
	if field != 17 || wt != WireBytes {
		t.Fatalf("parseTag(0x8A) = (%d, %v), wanted (17, bytes)", field, wt)
	}
	field, wt = parseTag(0x19) // 3<<3 | 1
	if field != 3 || wt != WireFixed64 {
		t.Fatalf("parseTag(0x19) = (%d, %v), wanted (3, fixed64)", field, wt)
	}
}

func TestSkipField(t *testing.T) {
	t.Run("varint", func(t *testing.T) {
		n, err := skipField([]byte{0xAC, 0x02, 0xFF}, 0, WireVarint)
		if err != nil || n != 2 {
			t.Fatalf("skip = (%d, %v), wanted (2, nil)", n, err)
		}
	})
	t.Run("fixed64", func(t *testing.T) {
		n, err := skipField(nil, 0, WireFixed64)
		if err != nil || n != 8 {
			t.Fatalf("skip = (%d, %v), wanted (8, nil)", n, err)
		}
	})
	t.Run("length-delimited", func(t *testing.T) {
		buf := append([]byte{0x03}, "abc"...)
		n, err := skipField(buf, 0, WireBytes)
		if err != nil || n != 4 {
			t.Fatalf("skip = (%d, %v), wanted (4, nil)", n, err)
		}
	})
	t.Run("fixed32", func(t *testing.T) {
		n, err := skipField(nil, 0, WireFixed32)
		if err != nil || n != 4 {
			t.Fatalf("skip = (%d, %v), wanted (4, nil)", n, err)
		}
	})
	t.Run("groups unsupported", func(t *testing.T) {
		_, err := skipField(nil, 0, WireSGroup)
		if !errors.Is(err, ErrUnsupportedWireType) {
			t.Fatalf("start-group err = %v, wanted ErrUnsupportedWireType", err)
		}
		_, err = skipField(nil, 0, WireEGroup)
		if !errors.Is(err, ErrUnsupportedWireType) {
			t.Fatalf("end-group err = %v, wanted ErrUnsupportedWireType", err)
		}
	})
}
