// Package contentful models the slice of the Contentful management API that
// cfops drives: entries, assets, typed links between them, and the error
// taxonomy the API surfaces.
package contentful

import (
	"encoding/json"
	"fmt"
)

// LinkType identifies what a Link points at.
type LinkType string

const (
	LinkTypeEntry LinkType = "Entry"
	LinkTypeAsset LinkType = "Asset"
)

// Link is a typed reference to another record. It carries no ownership; it is
// a lookup key into the remote store.
type Link struct {
	LinkType LinkType
	ID       string
}

// Malformed reports whether the link is missing its type or identifier, or
// carries a type we do not recognize. Malformed links are never removed by the
// cleaner; only a confirmed missing target is.
func (l Link) Malformed() bool {
	if l.ID == "" {
		return true
	}
	return l.LinkType != LinkTypeEntry && l.LinkType != LinkTypeAsset
}

func (l Link) String() string {
	return fmt.Sprintf("%s:%s", l.LinkType, l.ID)
}

// linkJSON is the wire shape of a link value.
type linkJSON struct {
	Sys struct {
		Type     string `json:"type"`
		LinkType string `json:"linkType"`
		ID       string `json:"id"`
	} `json:"sys"`
}

// ContentTypeRef is the sys.contentType reference carried by entries.
type ContentTypeRef struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
}

// Sys holds the system metadata of a remote record.
type Sys struct {
	ID               string          `json:"id"`
	Type             string          `json:"type"`
	Version          int             `json:"version"`
	PublishedVersion int             `json:"publishedVersion,omitempty"`
	ArchivedVersion  int             `json:"archivedVersion,omitempty"`
	ContentType      *ContentTypeRef `json:"contentType,omitempty"`
}

// ContentTypeID returns the entry's content type id, or "" for assets and
// records without one.
func (s Sys) ContentTypeID() string {
	if s.ContentType == nil {
		return ""
	}
	return s.ContentType.Sys.ID
}

// Published reports whether the record has ever been published.
func (s Sys) Published() bool {
	return s.PublishedVersion > 0
}

// Archived reports whether the record is currently archived.
func (s Sys) Archived() bool {
	return s.ArchivedVersion > 0
}

// Draft reports whether the record has never been published.
func (s Sys) Draft() bool {
	return s.PublishedVersion == 0
}

// Changed reports whether the record has unpublished changes. The management
// API bumps version by one on publish, so "changed" means at least two ahead.
func (s Sys) Changed() bool {
	return s.Published() && s.Version >= s.PublishedVersion+2
}

// Fields maps field name -> locale code -> value.
type Fields map[string]map[string]*Value

// Entry is a content record. The local copy is transient and possibly stale
// between fetch and write; the remote store owns it.
type Entry struct {
	Sys    Sys    `json:"sys"`
	Fields Fields `json:"fields"`
}

// Asset is a media record, referenced the same way as an Entry.
type Asset struct {
	Sys    Sys    `json:"sys"`
	Fields Fields `json:"fields"`
}

// ContentType is a content model definition, listed when resolving
// content-type glob selectors.
type ContentType struct {
	Sys  Sys    `json:"sys"`
	Name string `json:"name"`
}

// Collection is one listing window of a paginated endpoint.
type Collection[T any] struct {
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Items []T `json:"items"`
}

// updatePayload is the body sent on entry updates.
type updatePayload struct {
	Fields Fields `json:"fields"`
}

var _ json.Marshaler = (*Value)(nil)
var _ json.Unmarshaler = (*Value)(nil)
