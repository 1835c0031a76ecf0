package borsh

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/metaplex-go/pkg/pointer"
)

// Record is a decoded record keyed by field name.
//
// Values are uint8, uint16, uint32, uint64, string (strings and public keys),
// []byte (fixed byte arrays), Record (nested structs), []interface{} (vecs) and
// nil for absent options.
type Record map[string]interface{}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = cloneValue(v)
	}
	return clone
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case Record:
		return t.Clone()
	case []byte:
		return append([]byte(nil), t...)
	case []interface{}:
		values := make([]interface{}, len(t))
		for i, e := range t {
			values[i] = cloneValue(e)
		}
		return values
	default:
		return v
	}
}

// Has reports whether the field is present and non-nil. Absent options
// are present as nil and report false.
func (r Record) Has(name string) bool {
	v, ok := r[name]
	return ok && v != nil
}

func (r Record) Uint8(name string) uint8 {
	v, _ := r[name].(uint8)
	return v
}

func (r Record) Uint16(name string) uint16 {
	v, _ := r[name].(uint16)
	return v
}

func (r Record) Uint32(name string) uint32 {
	v, _ := r[name].(uint32)
	return v
}

func (r Record) Uint64(name string) uint64 {
	v, _ := r[name].(uint64)
	return v
}

func (r Record) Bool(name string) bool {
	return r.Uint8(name) != 0
}

func (r Record) String(name string) string {
	v, _ := r[name].(string)
	return v
}

// PublicKey decodes a public key field. It returns nil when the field is
// absent or is not a base58 encoded 32 byte key.
func (r Record) PublicKey(name string) ed25519.PublicKey {
	encoded, ok := r[name].(string)
	if !ok {
		return nil
	}

	decoded, err := base58.Decode(encoded)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		return nil
	}
	return decoded
}

func (r Record) Bytes(name string) []byte {
	v, _ := r[name].([]byte)
	return v
}

func (r Record) Record(name string) Record {
	v, _ := r[name].(Record)
	return v
}

// OptionalUint32 returns nil when the option is absent.
func (r Record) OptionalUint32(name string) *uint32 {
	v, ok := r[name].(uint32)
	if !ok {
		return nil
	}
	return pointer.Uint32(v)
}

// OptionalUint64 returns nil when the option is absent.
func (r Record) OptionalUint64(name string) *uint64 {
	v, ok := r[name].(uint64)
	if !ok {
		return nil
	}
	return pointer.Uint64(v)
}

// Records returns the nested records of a vec field. It returns nil when the
// field is absent or is not a vec of records.
func (r Record) Records(name string) []Record {
	values, ok := r[name].([]interface{})
	if !ok {
		return nil
	}

	records := make([]Record, 0, len(values))
	for _, v := range values {
		nested, ok := v.(Record)
		if !ok {
			return nil
		}
		records = append(records, nested)
	}
	return records
}
