package msgpack

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
)

// Encoder writes MessagePack values.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder returns an Encoder that buffers writes to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Flush writes any buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// Encode writes v. Supported types: nil, bool, int, int64, uint64, float64,
// string, []byte, []string, []any and map[string]any. Map keys are written in
// sorted order so equal values encode to equal bytes.
func (e *Encoder) Encode(v any) error {
	switch val := v.(type) {
	case nil:
		return e.w.WriteByte(0xc0)
	case bool:
		if val {
			return e.w.WriteByte(0xc3)
		}
		return e.w.WriteByte(0xc2)
	case int:
		return e.encodeInt(int64(val))
	case int64:
		return e.encodeInt(val)
	case uint64:
		if val <= math.MaxInt64 {
			return e.encodeInt(int64(val))
		}
		return e.writeUint(0xcf, val, 8)
	case float64:
		return e.writeUint(0xcb, math.Float64bits(val), 8)
	case string:
		if err := e.strHeader(len(val)); err != nil {
			return err
		}
		_, err := e.w.WriteString(val)
		return err
	case []byte:
		if err := e.sizedHeader(len(val), 0xc4, 0xc5, 0xc6); err != nil {
			return err
		}
		_, err := e.w.Write(val)
		return err
	case []string:
		if err := e.arrayHeader(len(val)); err != nil {
			return err
		}
		for _, s := range val {
			if err := e.Encode(s); err != nil {
				return err
			}
		}
		return nil
	case []any:
		if err := e.arrayHeader(len(val)); err != nil {
			return err
		}
		for _, item := range val {
			if err := e.Encode(item); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		if err := e.mapHeader(len(val)); err != nil {
			return err
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := e.Encode(k); err != nil {
				return err
			}
			if err := e.Encode(val[k]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported msgpack type %T", v)
	}
}

func (e *Encoder) encodeInt(v int64) error {
	switch {
	case v >= 0 && v <= 0x7f:
		return e.w.WriteByte(byte(v))
	case v < 0 && v >= -32:
		return e.w.WriteByte(byte(int8(v)))
	case v >= 0 && v <= math.MaxUint8:
		return e.writeUint(0xcc, uint64(v), 1)
	case v >= 0 && v <= math.MaxUint16:
		return e.writeUint(0xcd, uint64(v), 2)
	case v >= 0 && v <= math.MaxUint32:
		return e.writeUint(0xce, uint64(v), 4)
	case v >= math.MinInt8 && v < 0:
		return e.writeUint(0xd0, uint64(uint8(int8(v))), 1)
	case v >= math.MinInt16 && v < 0:
		return e.writeUint(0xd1, uint64(uint16(int16(v))), 2)
	case v >= math.MinInt32 && v < 0:
		return e.writeUint(0xd2, uint64(uint32(int32(v))), 4)
	default:
		return e.writeUint(0xd3, uint64(v), 8)
	}
}

func (e *Encoder) strHeader(n int) error {
	if n <= 31 {
		return e.w.WriteByte(0xa0 | byte(n))
	}
	return e.sizedHeader(n, 0xd9, 0xda, 0xdb)
}

func (e *Encoder) arrayHeader(n int) error {
	if n <= 15 {
		return e.w.WriteByte(0x90 | byte(n))
	}
	if n <= math.MaxUint16 {
		return e.writeUint(0xdc, uint64(n), 2)
	}
	return e.writeUint(0xdd, uint64(n), 4)
}

func (e *Encoder) mapHeader(n int) error {
	if n <= 15 {
		return e.w.WriteByte(0x80 | byte(n))
	}
	if n <= math.MaxUint16 {
		return e.writeUint(0xde, uint64(n), 2)
	}
	return e.writeUint(0xdf, uint64(n), 4)
}

// sizedHeader writes a prefix followed by an 8, 16 or 32 bit length.
func (e *Encoder) sizedHeader(n int, p8, p16, p32 byte) error {
	switch {
	case n <= math.MaxUint8:
		return e.writeUint(p8, uint64(n), 1)
	case n <= math.MaxUint16:
		return e.writeUint(p16, uint64(n), 2)
	case uint64(n) <= math.MaxUint32:
		return e.writeUint(p32, uint64(n), 4)
	default:
		return fmt.Errorf("msgpack length %d too large", n)
	}
}

func (e *Encoder) writeUint(prefix byte, v uint64, size int) error {
	var buf [9]byte
	buf[0] = prefix
	switch size {
	case 1:
		buf[1] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(buf[1:], uint16(v))
	case 4:
		binary.BigEndian.PutUint32(buf[1:], uint32(v))
	default:
		binary.BigEndian.PutUint64(buf[1:], v)
	}
	_, err := e.w.Write(buf[:size+1])
	return err
}
