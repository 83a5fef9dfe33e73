package model

import "time"

// Platform identifies a publish destination.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformX         Platform = "x"
)

// WorkItem represents one schedulable unit of content tracked in the ledger.
// The ledger owns the row; this struct only mirrors its fields.
type WorkItem struct {
	ID            string     `json:"id"`
	WorkName      string     `json:"work_name"`
	StudentName   *string    `json:"student_name,omitempty"`
	FolderID      string     `json:"folder_id"`
	ImageCount    int        `json:"image_count"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	Skip          bool       `json:"skip"`
	Caption       *string    `json:"caption,omitempty"`
	Tags          *string    `json:"tags,omitempty"`
	IGPosted      bool       `json:"ig_posted"`
	IGPostID      *string    `json:"ig_post_id,omitempty"`
	XPosted       bool       `json:"x_posted"`
	XPostID       *string    `json:"x_post_id,omitempty"`
	ErrorLog      *string    `json:"error_log,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PostedOn reports whether the item has already been published to the platform.
func (w *WorkItem) PostedOn(p Platform) bool {
	switch p {
	case PlatformInstagram:
		return w.IGPosted
	case PlatformX:
		return w.XPosted
	}
	return false
}

// CaptionText returns the custom caption, empty when unset.
func (w *WorkItem) CaptionText() string {
	if w.Caption == nil {
		return ""
	}
	return *w.Caption
}

// TagsText returns the custom tag line, empty when unset.
func (w *WorkItem) TagsText() string {
	if w.Tags == nil {
		return ""
	}
	return *w.Tags
}

// WorkItemFilter narrows ledger listings.
type WorkItemFilter struct {
	StudentName  string
	OnlyUnposted bool
}

// AssetRef points at one media file inside the asset storage.
type AssetRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// MediaAsset is the downloaded media for one publish attempt. It is never persisted.
type MediaAsset struct {
	Content  []byte
	Filename string
	MimeType string
}

// PublishResult captures the outcome of one platform leg.
type PublishResult struct {
	Platform Platform `json:"platform"`
	Success  bool     `json:"success"`
	PostID   string   `json:"post_id,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

// RunStatistics aggregates one orchestration run. Counters only grow during a run.
type RunStatistics struct {
	Processed        int `json:"processed"`
	InstagramSuccess int `json:"ig_success"`
	XSuccess         int `json:"x_success"`
	Errors           int `json:"errors"`
}
