package borsh

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// ErrInvalidValue indicates a record value is missing or does not match its
// field's encoding.
var ErrInvalidValue = errors.New("borsh: invalid value")

// Encode serializes the record with the schema's field order. It is the
// inverse of Decode, except for fields that a schema transform altered in a
// lossy way. Fixed byte fields accept []byte or string values and are zero
// padded, or truncated, to their declared size.
func Encode(schema *Schema, r Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeRecord(&buf, schema, r, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeRecord(buf *bytes.Buffer, schema *Schema, r Record, path string) error {
	for _, f := range schema.fields {
		fieldPath := joinPath(path, f.Name)

		v, ok := r[f.Name]
		if !ok {
			return errors.Wrapf(ErrInvalidValue, "%s: missing", fieldPath)
		}

		if err := encodeValue(buf, schema, f.Encoding, v, fieldPath); err != nil {
			return err
		}
	}
	return nil
}

func encodeValue(buf *bytes.Buffer, schema *Schema, e Encoding, v interface{}, path string) error {
	switch e.Kind {
	case KindU8:
		n, err := toUint64(v, math.MaxUint8, path)
		if err != nil {
			return err
		}
		buf.WriteByte(uint8(n))
	case KindU16:
		n, err := toUint64(v, math.MaxUint16, path)
		if err != nil {
			return err
		}
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(n))
		buf.Write(b[:])
	case KindU32:
		n, err := toUint64(v, math.MaxUint32, path)
		if err != nil {
			return err
		}
		putLength(buf, uint32(n))
	case KindU64:
		n, err := toUint64(v, math.MaxUint64, path)
		if err != nil {
			return err
		}
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], n)
		buf.Write(b[:])
	case KindString:
		s, ok := v.(string)
		if !ok {
			return errors.Wrapf(ErrInvalidValue, "%s: expected string, got %T", path, v)
		}
		if uint64(len(s)) > math.MaxUint32 {
			return errors.Wrapf(ErrInvalidValue, "%s: string too long", path)
		}
		putLength(buf, uint32(len(s)))
		buf.WriteString(s)
	case KindFixedBytes:
		var raw []byte
		switch t := v.(type) {
		case []byte:
			raw = t
		case string:
			raw = []byte(t)
		default:
			return errors.Wrapf(ErrInvalidValue, "%s: expected bytes, got %T", path, v)
		}

		fixed := make([]byte, e.Size)
		copy(fixed, raw)
		buf.Write(fixed)
	case KindPublicKey:
		key, err := toPublicKey(v, path)
		if err != nil {
			return err
		}
		buf.Write(key)
	case KindOption:
		if v == nil {
			buf.WriteByte(0)
			return nil
		}
		buf.WriteByte(1)
		return encodeValue(buf, schema, *e.Elem, v, path)
	case KindVec:
		values, err := toSlice(v, path)
		if err != nil {
			return err
		}
		putLength(buf, uint32(len(values)))
		for i, elem := range values {
			if err := encodeValue(buf, schema, *e.Elem, elem, indexPath(path, i)); err != nil {
				return err
			}
		}
	case KindStruct:
		nested, ok := schema.nested[e.Schema]
		if !ok {
			return errors.Wrap(ErrMissingSchema, e.Schema)
		}
		r, ok := v.(Record)
		if !ok {
			return errors.Wrapf(ErrInvalidValue, "%s: expected record, got %T", path, v)
		}
		return encodeRecord(buf, nested, r, path)
	default:
		return errors.Wrapf(ErrInvalidEncoding, "%s: unknown kind %d", path, e.Kind)
	}

	return nil
}

func putLength(buf *bytes.Buffer, n uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], n)
	buf.Write(b[:])
}

func toUint64(v interface{}, max uint64, path string) (uint64, error) {
	var n uint64
	switch t := v.(type) {
	case uint8:
		n = uint64(t)
	case uint16:
		n = uint64(t)
	case uint32:
		n = uint64(t)
	case uint64:
		n = t
	case uint:
		n = uint64(t)
	case int:
		if t < 0 {
			return 0, errors.Wrapf(ErrInvalidValue, "%s: negative value %d", path, t)
		}
		n = uint64(t)
	case bool:
		if t {
			n = 1
		}
	default:
		return 0, errors.Wrapf(ErrInvalidValue, "%s: expected unsigned integer, got %T", path, v)
	}

	if n > max {
		return 0, errors.Wrapf(ErrInvalidValue, "%s: %d overflows %d", path, n, max)
	}
	return n, nil
}

func toPublicKey(v interface{}, path string) ([]byte, error) {
	var key []byte
	switch t := v.(type) {
	case string:
		decoded, err := base58.Decode(t)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidValue, "%s: invalid base58 public key", path)
		}
		key = decoded
	case ed25519.PublicKey:
		key = t
	case []byte:
		key = t
	default:
		return nil, errors.Wrapf(ErrInvalidValue, "%s: expected public key, got %T", path, v)
	}

	if len(key) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidValue, "%s: public key is %d bytes", path, len(key))
	}
	return key, nil
}

func toSlice(v interface{}, path string) ([]interface{}, error) {
	switch t := v.(type) {
	case []interface{}:
		return t, nil
	case []Record:
		values := make([]interface{}, len(t))
		for i, r := range t {
			values[i] = r
		}
		return values, nil
	default:
		return nil, errors.Wrapf(ErrInvalidValue, "%s: expected slice, got %T", path, v)
	}
}
