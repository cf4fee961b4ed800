package contentful

import (
	"encoding/json"
	"reflect"
	"testing"
)

func mustUnmarshalValue(t *testing.T, data string) *Value {
	t.Helper()
	var v Value
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return &v
}

func TestValueUnmarshalKinds(t *testing.T) {
	tests := []struct {
		name string
		json string
		kind Kind
	}{
		{"null", `null`, KindNull},
		{"string scalar", `"hello"`, KindScalar},
		{"number scalar", `42.5`, KindScalar},
		{"bool scalar", `true`, KindScalar},
		{"sequence", `[1, 2, 3]`, KindSequence},
		{"empty sequence", `[]`, KindSequence},
		{"object", `{"lat": 1.0, "lon": 2.0}`, KindObject},
		{"link", `{"sys": {"type": "Link", "linkType": "Entry", "id": "abc"}}`, KindLink},
		{"object with non-link sys", `{"sys": {"type": "Other"}}`, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustUnmarshalValue(t, tt.json)
			if v.Kind != tt.kind {
				t.Errorf("kind = %s, expected %s", v.Kind, tt.kind)
			}
		})
	}
}

func TestValueLinkParsing(t *testing.T) {
	v := mustUnmarshalValue(t, `{"sys": {"type": "Link", "linkType": "Asset", "id": "img9"}}`)
	if v.Link == nil {
		t.Fatal("expected parsed link")
	}
	if v.Link.LinkType != LinkTypeAsset || v.Link.ID != "img9" {
		t.Errorf("unexpected link %+v", v.Link)
	}
	if v.Link.Malformed() {
		t.Error("well-formed link reported malformed")
	}
}

func TestMalformedLinks(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"missing id", `{"sys": {"type": "Link", "linkType": "Entry"}}`},
		{"missing linkType", `{"sys": {"type": "Link", "id": "abc"}}`},
		{"unknown linkType", `{"sys": {"type": "Link", "linkType": "Space", "id": "abc"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustUnmarshalValue(t, tt.json)
			if v.Kind != KindLink {
				t.Fatalf("expected link kind, got %s", v.Kind)
			}
			if !v.Link.Malformed() {
				t.Error("expected Malformed() = true")
			}
		})
	}
}

func TestValueRoundTripPreservesEncoding(t *testing.T) {
	// A link carrying extra keys must survive a keep decision byte-for-byte.
	original := `{"sys":{"type":"Link","linkType":"Entry","id":"abc","extra":"x"}}`
	v := mustUnmarshalValue(t, original)

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != original {
		t.Errorf("link encoding changed: %s", out)
	}

	scalar := mustUnmarshalValue(t, `3.14000`)
	out, err = json.Marshal(scalar)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `3.14000` {
		t.Errorf("scalar encoding changed: %s", out)
	}
}

func TestValueSequenceOfLinks(t *testing.T) {
	v := mustUnmarshalValue(t, `[
		{"sys": {"type": "Link", "linkType": "Entry", "id": "a"}},
		"plain string",
		{"sys": {"type": "Link", "linkType": "Asset", "id": "b"}}
	]`)
	if v.Kind != KindSequence || len(v.Seq) != 3 {
		t.Fatalf("expected 3-element sequence, got %s len %d", v.Kind, len(v.Seq))
	}
	if v.Seq[0].Kind != KindLink || v.Seq[1].Kind != KindScalar || v.Seq[2].Kind != KindLink {
		t.Errorf("unexpected element kinds: %s %s %s", v.Seq[0].Kind, v.Seq[1].Kind, v.Seq[2].Kind)
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	raw := `{
		"title": {"en-US": "Hello", "de-DE": "Hallo"},
		"hero": {"en-US": {"sys": {"type": "Link", "linkType": "Asset", "id": "img1"}}},
		"related": {"en-US": [{"sys": {"type": "Link", "linkType": "Entry", "id": "e1"}}]}
	}`
	var fields Fields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		t.Fatalf("unmarshal fields: %v", err)
	}

	if fields["hero"]["en-US"].Kind != KindLink {
		t.Error("hero should parse as link")
	}
	if fields["related"]["en-US"].Kind != KindSequence {
		t.Error("related should parse as sequence")
	}

	out, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal fields: %v", err)
	}
	var before, after map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &before); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(out, &after); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("fields changed across round trip:\nbefore: %v\nafter:  %v", before, after)
	}
}

func TestFieldsClone(t *testing.T) {
	var fields Fields
	if err := json.Unmarshal([]byte(`{"refs": {"en-US": [{"sys": {"type": "Link", "linkType": "Entry", "id": "e1"}}]}}`), &fields); err != nil {
		t.Fatal(err)
	}

	clone := fields.Clone()
	clone["refs"]["en-US"].Seq = nil

	if fields["refs"]["en-US"].Seq == nil {
		t.Error("mutating the clone leaked into the original")
	}

	if (Fields)(nil).Clone() != nil {
		t.Error("cloning nil fields should return nil")
	}
}

func TestSysHelpers(t *testing.T) {
	draft := Sys{ID: "d", Version: 1}
	if !draft.Draft() || draft.Published() || draft.Changed() {
		t.Error("version-1 record should be an unchanged draft")
	}

	published := Sys{ID: "p", Version: 2, PublishedVersion: 1}
	if published.Draft() || !published.Published() || published.Changed() {
		t.Error("freshly published record should not be changed")
	}

	changed := Sys{ID: "c", Version: 5, PublishedVersion: 3}
	if !changed.Changed() {
		t.Error("version 5 with publishedVersion 3 should be changed")
	}

	archived := Sys{ID: "a", Version: 3, ArchivedVersion: 2}
	if !archived.Archived() {
		t.Error("archivedVersion > 0 should report archived")
	}
}
