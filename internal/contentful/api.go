package contentful

import "context"

// ListQuery parameterizes a listing call.
type ListQuery struct {
	ContentType string // filter entries by content type id ("" = all)
	LinksTo     string // reverse lookup: entries referencing this entry id
	Skip        int
	Limit       int
}

// API is the management-API surface consumed by the pager, cleaner, and
// orchestrator. Client implements it against the real service; tests supply
// fakes.
type API interface {
	// CheckAuth verifies the token can reach the configured space. Failure is
	// fatal for a run.
	CheckAuth(ctx context.Context) error

	Entries(ctx context.Context, q ListQuery) (*Collection[Entry], error)
	Assets(ctx context.Context, q ListQuery) (*Collection[Asset], error)
	ContentTypes(ctx context.Context, skip, limit int) (*Collection[ContentType], error)

	GetEntry(ctx context.Context, id string) (*Entry, error)
	EntryExists(ctx context.Context, id string) (bool, error)
	AssetExists(ctx context.Context, id string) (bool, error)

	UpdateEntry(ctx context.Context, entry *Entry) (*Entry, error)
	PublishEntry(ctx context.Context, id string, version int) (*Entry, error)
	UnpublishEntry(ctx context.Context, id string, version int) (*Entry, error)
	UnarchiveEntry(ctx context.Context, id string, version int) (*Entry, error)
	DeleteEntry(ctx context.Context, id string, version int) error

	PublishAsset(ctx context.Context, id string, version int) (*Asset, error)
}
