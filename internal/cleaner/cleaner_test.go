package cleaner

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/fulmenhq/cfops/internal/contentful"
)

// fakeChecker resolves existence from fixed sets and counts lookups.
type fakeChecker struct {
	entries map[string]bool
	assets  map[string]bool
	failOn  map[string]error
	lookups int
}

func (f *fakeChecker) EntryExists(_ context.Context, id string) (bool, error) {
	f.lookups++
	if err, ok := f.failOn[id]; ok {
		return false, err
	}
	return f.entries[id], nil
}

func (f *fakeChecker) AssetExists(_ context.Context, id string) (bool, error) {
	f.lookups++
	if err, ok := f.failOn[id]; ok {
		return false, err
	}
	return f.assets[id], nil
}

func parseFields(t *testing.T, raw string) contentful.Fields {
	t.Helper()
	var fields contentful.Fields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		t.Fatalf("parse fields: %v", err)
	}
	return fields
}

func fieldsJSON(t *testing.T, fields contentful.Fields) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal fields: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestCleanNoLinks(t *testing.T) {
	fields := parseFields(t, `{
		"title": {"en-US": "Hello"},
		"count": {"en-US": 3},
		"tags": {"en-US": ["a", "b"]},
		"geo": {"en-US": {"lat": 1, "lon": 2}}
	}`)
	checker := &fakeChecker{}
	cleaned, result := New(checker).CleanFields(context.Background(), "e1", fields)

	if result.RemovedCount != 0 || result.AnyRemoved {
		t.Errorf("expected no removals, got %+v", result)
	}
	if checker.lookups != 0 {
		t.Errorf("no lookups expected for link-free entry, got %d", checker.lookups)
	}
	if !reflect.DeepEqual(fieldsJSON(t, fields), fieldsJSON(t, cleaned)) {
		t.Error("link-free field map must come back unmodified")
	}
}

func TestCleanNilFields(t *testing.T) {
	cleaned, result := New(&fakeChecker{}).CleanFields(context.Background(), "e1", nil)
	if cleaned != nil || result.AnyRemoved || result.RemovedCount != 0 {
		t.Errorf("nil fields must short-circuit to a no-op, got %v %+v", cleaned, result)
	}
}

func TestCleanRemovesBrokenSequenceLink(t *testing.T) {
	fields := parseFields(t, `{
		"related": {"en-US": [
			{"sys": {"type": "Link", "linkType": "Entry", "id": "alive"}},
			{"sys": {"type": "Link", "linkType": "Entry", "id": "dead"}},
			"keep-me"
		]}
	}`)
	checker := &fakeChecker{entries: map[string]bool{"alive": true}}
	cleaned, result := New(checker).CleanFields(context.Background(), "e1", fields)

	if result.RemovedCount != 1 || result.RemovedEntryLinks != 1 || result.RemovedAssetLinks != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	seq := cleaned["related"]["en-US"].Seq
	if len(seq) != 2 {
		t.Fatalf("expected 2 surviving elements, got %d", len(seq))
	}
	if seq[0].Link == nil || seq[0].Link.ID != "alive" {
		t.Error("surviving link should be the alive one")
	}
	if seq[1].Kind != contentful.KindScalar {
		t.Error("non-link element must survive")
	}

	// Original input untouched
	if len(fields["related"]["en-US"].Seq) != 3 {
		t.Error("cleaning must not mutate the input fields")
	}
}

func TestCleanNullsSingleBrokenLink(t *testing.T) {
	fields := parseFields(t, `{
		"hero": {"en-US": {"sys": {"type": "Link", "linkType": "Asset", "id": "gone"}}}
	}`)
	checker := &fakeChecker{}
	cleaned, result := New(checker).CleanFields(context.Background(), "e1", fields)

	if result.RemovedAssetLinks != 1 || result.RemovedCount != 1 {
		t.Errorf("unexpected result %+v", result)
	}
	v, ok := cleaned["hero"]["en-US"]
	if !ok {
		t.Fatal("field must not be deleted, only nulled")
	}
	if v.Kind != contentful.KindNull {
		t.Errorf("expected explicit null marker, got %s", v.Kind)
	}
}

func TestCleanKeepsMalformedLinks(t *testing.T) {
	fields := parseFields(t, `{
		"refs": {"en-US": [
			{"sys": {"type": "Link", "linkType": "Entry"}},
			{"sys": {"type": "Link", "id": "no-type"}}
		]},
		"single": {"en-US": {"sys": {"type": "Link", "linkType": "Bogus", "id": "x"}}}
	}`)
	checker := &fakeChecker{}
	cleaned, result := New(checker).CleanFields(context.Background(), "e1", fields)

	if result.RemovedCount != 0 {
		t.Errorf("malformed links must never be removed, got %+v", result)
	}
	if len(cleaned["refs"]["en-US"].Seq) != 2 {
		t.Error("malformed sequence links must survive")
	}
	if cleaned["single"]["en-US"].Kind != contentful.KindLink {
		t.Error("malformed single link must survive")
	}
	if checker.lookups != 0 {
		t.Errorf("malformed links must not be checked, got %d lookups", checker.lookups)
	}
}

func TestCleanKeepsLinkOnCheckError(t *testing.T) {
	fields := parseFields(t, `{
		"refs": {"en-US": [{"sys": {"type": "Link", "linkType": "Entry", "id": "flaky"}}]}
	}`)
	checker := &fakeChecker{failOn: map[string]error{"flaky": errors.New("timeout")}}
	cleaned, result := New(checker).CleanFields(context.Background(), "e1", fields)

	if result.RemovedCount != 0 {
		t.Errorf("check errors must not remove links, got %+v", result)
	}
	if len(cleaned["refs"]["en-US"].Seq) != 1 {
		t.Error("link with failed check must survive")
	}
}

func TestCleanEndToEndScenario(t *testing.T) {
	// Entry abc123: 2 entry links (one valid, one dead) and 1 dead asset link.
	fields := parseFields(t, `{
		"related": {"en-US": [
			{"sys": {"type": "Link", "linkType": "Entry", "id": "valid1"}},
			{"sys": {"type": "Link", "linkType": "Entry", "id": "deleted1"}}
		]},
		"image": {"en-US": {"sys": {"type": "Link", "linkType": "Asset", "id": "deletedAsset"}}}
	}`)
	checker := &fakeChecker{entries: map[string]bool{"valid1": true}}
	_, result := New(checker).CleanFields(context.Background(), "abc123", fields)

	if result.RemovedCount != 2 {
		t.Errorf("expected removedCount=2, got %d", result.RemovedCount)
	}
	if result.RemovedEntryLinks != 1 {
		t.Errorf("expected removedEntryLinks=1, got %d", result.RemovedEntryLinks)
	}
	if result.RemovedAssetLinks != 1 {
		t.Errorf("expected removedAssetLinks=1, got %d", result.RemovedAssetLinks)
	}
	if !result.AnyRemoved {
		t.Error("expected anyRemoved=true")
	}
	if result.RemovedEntryLinks+result.RemovedAssetLinks != result.RemovedCount {
		t.Error("per-type counters must sum to removedCount")
	}
}

func TestCleanMemoisesExistenceChecks(t *testing.T) {
	fields := parseFields(t, `{
		"a": {"en-US": {"sys": {"type": "Link", "linkType": "Entry", "id": "shared"}}},
		"b": {"en-US": [{"sys": {"type": "Link", "linkType": "Entry", "id": "shared"}}]},
		"c": {"de-DE": {"sys": {"type": "Link", "linkType": "Entry", "id": "shared"}}}
	}`)
	checker := &fakeChecker{entries: map[string]bool{"shared": true}}
	c := New(checker)
	c.CleanFields(context.Background(), "e1", fields)

	if checker.lookups != 1 {
		t.Errorf("expected a single memoised lookup for repeated target, got %d", checker.lookups)
	}

	// Cache persists across entries within one cleaner
	c.CleanFields(context.Background(), "e2", fields)
	if checker.lookups != 1 {
		t.Errorf("cache should span entries, got %d lookups", checker.lookups)
	}
}

func TestAuditLocales(t *testing.T) {
	fields := parseFields(t, `{
		"title": {"en-US": "ok", "zz-!!": "bad"},
		"body": {"de-DE": "ok", "zz-!!": "dup", "not a locale": "bad"}
	}`)

	bad := AuditLocales(fields)
	want := []string{"not a locale", "zz-!!"}
	if !reflect.DeepEqual(bad, want) {
		t.Errorf("AuditLocales = %v, expected %v", bad, want)
	}

	if AuditLocales(parseFields(t, `{"title": {"en-US": "ok"}}`)) != nil {
		t.Error("well-formed locales should audit clean")
	}
}
