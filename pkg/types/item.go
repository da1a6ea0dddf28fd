package types

// Source identifies how an archive item entered the system.
type Source string

const (
	SourceManual   Source = "manual"    // Raw text pasted by the user
	SourceURL      Source = "url"       // Captured from a web page
	SourceFeed     Source = "feed"      // Pulled from an external feed
	SourceCodeHost Source = "code-host" // Derived from a code-hosting account
)

// Origin is the tagged variant behind an item's raw content: an item either
// points at a canonical URL or carries manual text, never both.
type Origin interface {
	origin()
}

// URLOrigin marks an item captured from the web.
type URLOrigin struct {
	URL string
}

func (URLOrigin) origin() {}

// ManualOrigin marks an item captured as raw text.
type ManualOrigin struct {
	Content string
}

func (ManualOrigin) origin() {}

// ArchiveItem is one previously captured knowledge unit. Items are created
// once by the capture pipeline and never mutated afterwards.
type ArchiveItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	Tags          []string `json:"tags"`
	DetectedTools []string `json:"detectedTools,omitempty"`
	Source        Source   `json:"source"`
	Timestamp     int64    `json:"timestamp"` // epoch ms; 0 means unknown
	URL           string   `json:"url,omitempty"`

	// Origin is the typed capture origin. It is not serialized directly;
	// URL above is the denormalized wire view.
	Origin Origin `json:"-"`
}

// CanonicalURL returns the item's source location, or "" for manual items.
func (it *ArchiveItem) CanonicalURL() string {
	if o, ok := it.Origin.(URLOrigin); ok {
		return o.URL
	}
	return it.URL
}

// Validate checks invariants the rest of the system relies on.
func (it *ArchiveItem) Validate() error {
	if it.ID == "" {
		return ErrMissingItemID
	}
	if it.Title == "" && it.Summary == "" {
		return ErrEmptyItem
	}
	switch it.Source {
	case SourceManual, SourceURL, SourceFeed, SourceCodeHost:
	default:
		return ErrUnknownSource
	}
	return nil
}
