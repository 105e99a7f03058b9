// Package msgpack implements the subset of MessagePack used by the dictionary
// cache and the wordfreq data files.
package msgpack

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Decode reads a single MessagePack value from r. Integers decode as int64
// (uint64 above math.MaxInt64), floats as float64, str as string, bin as
// []byte, arrays as []any and maps as map[any]any.
func Decode(r io.Reader) (any, error) {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	d := decoder{r: br}
	return d.value()
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

type decoder struct {
	r byteReader
}

func (d *decoder) value() (any, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}

	switch {
	case b <= 0x7f:
		return int64(b), nil
	case b >= 0xe0:
		return int64(int8(b)), nil
	case b&0xe0 == 0xa0:
		return d.str(int(b & 0x1f))
	case b&0xf0 == 0x90:
		return d.array(int(b & 0x0f))
	case b&0xf0 == 0x80:
		return d.dict(int(b & 0x0f))
	}

	switch b {
	case 0xc0:
		return nil, nil
	case 0xc2:
		return false, nil
	case 0xc3:
		return true, nil
	case 0xc4, 0xc5, 0xc6:
		n, err := d.length(b - 0xc4)
		if err != nil {
			return nil, err
		}
		return d.bytes(n)
	case 0xca:
		v, err := d.uint(4)
		if err != nil {
			return nil, err
		}
		return float64(math.Float32frombits(uint32(v))), nil
	case 0xcb:
		v, err := d.uint(8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(v), nil
	case 0xcc, 0xcd, 0xce:
		v, err := d.uint(1 << (b - 0xcc))
		if err != nil {
			return nil, err
		}
		return int64(v), nil
	case 0xcf:
		v, err := d.uint(8)
		if err != nil {
			return nil, err
		}
		if v > math.MaxInt64 {
			return v, nil
		}
		return int64(v), nil
	case 0xd0:
		v, err := d.uint(1)
		return int64(int8(v)), err
	case 0xd1:
		v, err := d.uint(2)
		return int64(int16(v)), err
	case 0xd2:
		v, err := d.uint(4)
		return int64(int32(v)), err
	case 0xd3:
		v, err := d.uint(8)
		return int64(v), err
	case 0xd9, 0xda, 0xdb:
		n, err := d.length(b - 0xd9)
		if err != nil {
			return nil, err
		}
		return d.str(n)
	case 0xdc, 0xdd:
		n, err := d.length(b - 0xdc + 1)
		if err != nil {
			return nil, err
		}
		return d.array(n)
	case 0xde, 0xdf:
		n, err := d.length(b - 0xde + 1)
		if err != nil {
			return nil, err
		}
		return d.dict(n)
	default:
		return nil, fmt.Errorf("unsupported msgpack prefix 0x%x", b)
	}
}

// length reads a big-endian length prefix of 1, 2 or 4 bytes (class 0, 1, 2).
func (d *decoder) length(class byte) (int, error) {
	v, err := d.uint(1 << class)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, fmt.Errorf("msgpack length %d too large", v)
	}
	return int(v), nil
}

func (d *decoder) uint(size int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:size]); err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(buf[:2])), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(buf[:4])), nil
	default:
		return binary.BigEndian.Uint64(buf[:8]), nil
	}
}

func (d *decoder) array(n int) ([]any, error) {
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *decoder) dict(n int) (map[any]any, error) {
	out := make(map[any]any, n)
	for i := 0; i < n; i++ {
		k, err := d.value()
		if err != nil {
			return nil, err
		}
		switch key := k.(type) {
		case []byte:
			k = string(key)
		case []any, map[any]any:
			return nil, fmt.Errorf("unsupported msgpack map key %T", k)
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (d *decoder) str(n int) (string, error) {
	data, err := d.bytes(n)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (d *decoder) bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
