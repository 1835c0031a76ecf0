package borsh

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrMissingSchema    = errors.New("borsh: nested schema not provided")
	ErrMissingTransform = errors.New("borsh: transform not registered")
	ErrDuplicateField   = errors.New("borsh: duplicate field name")
	ErrInvalidEncoding  = errors.New("borsh: invalid encoding")
)

// Kind is the wire encoding of a single schema field.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindString
	KindFixedBytes
	KindPublicKey
	KindOption
	KindVec
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindString:
		return "string"
	case KindFixedBytes:
		return "fixed_bytes"
	case KindPublicKey:
		return "pubkey"
	case KindOption:
		return "option"
	case KindVec:
		return "vec"
	case KindStruct:
		return "struct"
	}
	return "unknown"
}

// Encoding describes how a field is laid out on the wire.
//
// Size is only used by KindFixedBytes, Elem by KindOption and KindVec, and
// Schema by KindStruct, where it names an entry in the nested schema set of the
// enclosing schema.
type Encoding struct {
	Kind   Kind
	Size   int
	Elem   *Encoding
	Schema string
}

func U8() Encoding        { return Encoding{Kind: KindU8} }
func U16() Encoding       { return Encoding{Kind: KindU16} }
func U32() Encoding       { return Encoding{Kind: KindU32} }
func U64() Encoding       { return Encoding{Kind: KindU64} }
func String() Encoding    { return Encoding{Kind: KindString} }
func PublicKey() Encoding { return Encoding{Kind: KindPublicKey} }

func FixedBytes(size int) Encoding {
	return Encoding{Kind: KindFixedBytes, Size: size}
}

func Option(elem Encoding) Encoding {
	return Encoding{Kind: KindOption, Elem: &elem}
}

func Vec(elem Encoding) Encoding {
	return Encoding{Kind: KindVec, Elem: &elem}
}

func Struct(schema string) Encoding {
	return Encoding{Kind: KindStruct, Schema: schema}
}

// Field is a named, encoded member of a Schema.
type Field struct {
	Name     string
	Encoding Encoding
}

// Schema is an immutable, ordered field layout for a record type. Schemas are
// created once, typically as package level variables, and shared by every
// decode and encode call.
type Schema struct {
	name      string
	fields    []Field
	nested    map[string]*Schema
	transform string
	minSize   int
}

// DefineSchema validates and returns a new schema.
//
// Every struct encoding, including those wrapped in an option or vec, must
// reference a schema in nested. The transform, if non-empty, must already be
// registered with RegisterTransform.
func DefineSchema(name string, fields []Field, nested []*Schema, transform string) (*Schema, error) {
	s := &Schema{
		name:      name,
		fields:    make([]Field, len(fields)),
		nested:    make(map[string]*Schema),
		transform: transform,
	}
	copy(s.fields, fields)

	for _, n := range nested {
		if n == nil {
			continue
		}
		s.nested[n.name] = n
	}

	if transform != "" {
		if _, ok := lookupTransform(transform); !ok {
			return nil, errors.Wrapf(ErrMissingTransform, "schema %s: %s", name, transform)
		}
	}

	seen := make(map[string]struct{})
	for _, f := range s.fields {
		if _, ok := seen[f.Name]; ok {
			return nil, errors.Wrapf(ErrDuplicateField, "schema %s: %s", name, f.Name)
		}
		seen[f.Name] = struct{}{}

		size, err := s.validate(f.Encoding)
		if err != nil {
			return nil, errors.Wrapf(err, "schema %s: field %s", name, f.Name)
		}
		s.minSize += size
	}

	return s, nil
}

// MustDefineSchema is DefineSchema for package level declarations.
func MustDefineSchema(name string, fields []Field, nested []*Schema, transform string) *Schema {
	s, err := DefineSchema(name, fields, nested, transform)
	if err != nil {
		panic(err)
	}
	return s
}

// validate checks an encoding and returns the minimum number of bytes it can
// occupy on the wire.
func (s *Schema) validate(e Encoding) (int, error) {
	switch e.Kind {
	case KindU8:
		return 1, nil
	case KindU16:
		return 2, nil
	case KindU32:
		return 4, nil
	case KindU64:
		return 8, nil
	case KindString:
		return 4, nil
	case KindPublicKey:
		return ed25519.PublicKeySize, nil
	case KindFixedBytes:
		if e.Size <= 0 {
			return 0, errors.Wrap(ErrInvalidEncoding, "fixed bytes size must be positive")
		}
		return e.Size, nil
	case KindOption:
		if e.Elem == nil {
			return 0, errors.Wrap(ErrInvalidEncoding, "option without element")
		}
		if _, err := s.validate(*e.Elem); err != nil {
			return 0, err
		}
		return 1, nil
	case KindVec:
		if e.Elem == nil {
			return 0, errors.Wrap(ErrInvalidEncoding, "vec without element")
		}
		elemSize, err := s.validate(*e.Elem)
		if err != nil {
			return 0, err
		}
		// The element size bounds the count read from the data.
		if elemSize == 0 {
			return 0, errors.Wrap(ErrInvalidEncoding, "vec element must occupy at least one byte")
		}
		return 4, nil
	case KindStruct:
		nested, ok := s.nested[e.Schema]
		if !ok {
			return 0, errors.Wrap(ErrMissingSchema, e.Schema)
		}
		return nested.minSize, nil
	default:
		return 0, errors.Wrapf(ErrInvalidEncoding, "unknown kind %d", e.Kind)
	}
}

func (s *Schema) Name() string {
	return s.name
}

// Fields returns a copy of the ordered field list.
func (s *Schema) Fields() []Field {
	fields := make([]Field, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// MinSize is the smallest buffer that can satisfy the schema, counting length
// prefixes and presence bytes but no variable payloads.
func (s *Schema) MinSize() int {
	return s.minSize
}

func (s *Schema) String() string {
	return "Schema{" + s.name + "}"
}
