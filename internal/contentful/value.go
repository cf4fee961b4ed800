package contentful

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindLink
	KindSequence
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindLink:
		return "link"
	case KindSequence:
		return "sequence"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is one field/locale value: a scalar, a link, an ordered sequence, or
// a keyed object. The explicit tag keeps traversal exhaustive instead of
// probing untyped maps.
type Value struct {
	Kind Kind

	// Raw preserves the original encoding for KindScalar and KindLink, so a
	// kept value round-trips unchanged even when the link shape is unusual.
	Raw json.RawMessage

	Link   *Link
	Seq    []*Value
	Object map[string]*Value
}

// Null returns the explicit empty marker written in place of a removed
// single-link value.
func Null() *Value {
	return &Value{Kind: KindNull}
}

// NewLink builds a link value with a canonical encoding.
func NewLink(lt LinkType, id string) *Value {
	var lj linkJSON
	lj.Sys.Type = "Link"
	lj.Sys.LinkType = string(lt)
	lj.Sys.ID = id
	raw, _ := json.Marshal(lj)
	return &Value{
		Kind: KindLink,
		Raw:  raw,
		Link: &Link{LinkType: lt, ID: id},
	}
}

// UnmarshalJSON parses an arbitrary field value into the tagged variant.
// An object whose sys.type is "Link" becomes KindLink even when linkType or
// id are missing; Link.Malformed reports that case.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty field value")
	}

	switch trimmed[0] {
	case 'n':
		if !bytes.Equal(trimmed, []byte("null")) {
			return fmt.Errorf("invalid literal %q", trimmed)
		}
		*v = Value{Kind: KindNull}
		return nil

	case '[':
		var seq []*Value
		if err := json.Unmarshal(trimmed, &seq); err != nil {
			return err
		}
		*v = Value{Kind: KindSequence, Seq: seq}
		return nil

	case '{':
		var probe struct {
			Sys *struct {
				Type string `json:"type"`
			} `json:"sys"`
		}
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return err
		}
		if probe.Sys != nil && probe.Sys.Type == "Link" {
			var lj linkJSON
			if err := json.Unmarshal(trimmed, &lj); err != nil {
				return err
			}
			*v = Value{
				Kind: KindLink,
				Raw:  append(json.RawMessage(nil), trimmed...),
				Link: &Link{LinkType: LinkType(lj.Sys.LinkType), ID: lj.Sys.ID},
			}
			return nil
		}

		var obj map[string]*Value
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		*v = Value{Kind: KindObject, Object: obj}
		return nil

	default:
		*v = Value{Kind: KindScalar, Raw: append(json.RawMessage(nil), trimmed...)}
		return nil
	}
}

// MarshalJSON re-encodes the variant. Links and scalars emit their preserved
// original bytes.
func (v *Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindScalar, KindLink:
		if len(v.Raw) == 0 {
			return nil, fmt.Errorf("%s value has no raw encoding", v.Kind)
		}
		return v.Raw, nil
	case KindSequence:
		if v.Seq == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Seq)
	case KindObject:
		return json.Marshal(v.Object)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}

// Clone returns a deep copy of the value.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{Kind: v.Kind}
	if v.Raw != nil {
		out.Raw = append(json.RawMessage(nil), v.Raw...)
	}
	if v.Link != nil {
		l := *v.Link
		out.Link = &l
	}
	if v.Seq != nil {
		out.Seq = make([]*Value, len(v.Seq))
		for i, e := range v.Seq {
			out.Seq[i] = e.Clone()
		}
	}
	if v.Object != nil {
		out.Object = make(map[string]*Value, len(v.Object))
		for k, e := range v.Object {
			out.Object[k] = e.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the field map.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for field, locales := range f {
		cloned := make(map[string]*Value, len(locales))
		for locale, v := range locales {
			cloned[locale] = v.Clone()
		}
		out[field] = cloned
	}
	return out
}
