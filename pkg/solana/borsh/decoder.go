package borsh

import (
	"crypto/ed25519"
	"encoding/binary"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// ErrMalformedData indicates the buffer ended before a declared field could
// be read.
var ErrMalformedData = errors.New("borsh: malformed data")

type decoder struct {
	data   []byte
	offset int
}

// Decode reads the schema's fields, in order, from the start of data. Bytes
// after the last declared field are ignored.
func Decode(schema *Schema, data []byte) (Record, error) {
	d := &decoder{data: data}
	return d.record(schema, "")
}

func (d *decoder) record(schema *Schema, path string) (Record, error) {
	r := make(Record, len(schema.fields))
	for _, f := range schema.fields {
		fieldPath := joinPath(path, f.Name)

		v, err := d.value(schema, f.Encoding, fieldPath)
		if err != nil {
			return nil, err
		}
		r[f.Name] = v
	}

	if schema.transform != "" {
		fn, ok := lookupTransform(schema.transform)
		if !ok {
			return nil, errors.Wrap(ErrMissingTransform, schema.transform)
		}
		r = fn(r)
	}

	return r, nil
}

func (d *decoder) value(schema *Schema, e Encoding, path string) (interface{}, error) {
	switch e.Kind {
	case KindU8:
		b, err := d.next(1, path)
		if err != nil {
			return nil, err
		}
		return b[0], nil
	case KindU16:
		b, err := d.next(2, path)
		if err != nil {
			return nil, err
		}
		return binary.LittleEndian.Uint16(b), nil
	case KindU32:
		b, err := d.next(4, path)
		if err != nil {
			return nil, err
		}
		return binary.LittleEndian.Uint32(b), nil
	case KindU64:
		b, err := d.next(8, path)
		if err != nil {
			return nil, err
		}
		return binary.LittleEndian.Uint64(b), nil
	case KindString:
		length, err := d.length(path)
		if err != nil {
			return nil, err
		}
		b, err := d.next(length, path)
		if err != nil {
			return nil, err
		}
		return strings.ToValidUTF8(string(b), "\uFFFD"), nil
	case KindFixedBytes:
		b, err := d.next(e.Size, path)
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), b...), nil
	case KindPublicKey:
		b, err := d.next(ed25519.PublicKeySize, path)
		if err != nil {
			return nil, err
		}
		return base58.Encode(b), nil
	case KindOption:
		b, err := d.next(1, path)
		if err != nil {
			return nil, err
		}
		if b[0] == 0 {
			return nil, nil
		}
		return d.value(schema, *e.Elem, path)
	case KindVec:
		count, err := d.length(path)
		if err != nil {
			return nil, err
		}

		// Bound the allocation for corrupt counts by the smallest possible
		// element size, which schema validation guarantees is non-zero.
		elemSize, err := schema.validate(*e.Elem)
		if err != nil {
			return nil, err
		}
		if count > (len(d.data)-d.offset)/elemSize {
			return nil, errors.Wrapf(ErrMalformedData, "%s: vec length %d exceeds remaining data", path, count)
		}

		values := make([]interface{}, 0, count)
		for i := 0; i < count; i++ {
			v, err := d.value(schema, *e.Elem, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	case KindStruct:
		nested, ok := schema.nested[e.Schema]
		if !ok {
			return nil, errors.Wrap(ErrMissingSchema, e.Schema)
		}
		return d.record(nested, path)
	default:
		return nil, errors.Wrapf(ErrInvalidEncoding, "%s: unknown kind %d", path, e.Kind)
	}
}

func (d *decoder) length(path string) (int, error) {
	b, err := d.next(4, path)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint32(b)), nil
}

func (d *decoder) next(n int, path string) ([]byte, error) {
	if n < 0 || len(d.data)-d.offset < n {
		return nil, errors.Wrapf(ErrMalformedData, "%s: need %d bytes at offset %d, have %d", path, n, d.offset, len(d.data)-d.offset)
	}

	b := d.data[d.offset : d.offset+n]
	d.offset += n
	return b, nil
}
