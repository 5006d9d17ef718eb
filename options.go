package px

// NeedIt says how soon a GPU update is needed.
type NeedIt uint8

const (
	// NeedItLater queues the update. It becomes visible with the next
	// submission, e.g. the next frame.
	NeedItLater NeedIt = iota

	// NeedItNow queues the update and flushes the accelerator.
	NeedItNow
)

// UploadMode selects how a CPU copy is transferred to its texture.
type UploadMode uint8

const (
	// UploadFlattened transfers the whole buffer in one texture write.
	UploadFlattened UploadMode = iota

	// UploadPerRow issues one texture write per row.
	UploadPerRow
)

func (m UploadMode) String() string {
	if m == UploadPerRow {
		return "per-row"
	}
	return "flattened"
}

// Option configures Pixels during creation.
//
// Example:
//
//	pixels := px.New(px.Sz(320, 240), px.WithLabel("canvas"))
type Option func(*options)

// options holds optional configuration for Pixels creation.
type options struct {
	label  string
	upload UploadMode
}

// defaultOptions returns the default pixels options.
func defaultOptions() options {
	return options{upload: UploadFlattened}
}

// WithLabel sets the debug label used for the GPU texture.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithUploadMode selects how the CPU copy is uploaded.
func WithUploadMode(m UploadMode) Option {
	return func(o *options) {
		o.upload = m
	}
}
