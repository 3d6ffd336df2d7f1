package gmail

import "strings"

// LabelFilter identifies a system label.
type LabelFilter string

const (
	// LabelInbox matches emails in INBOX.
	LabelInbox LabelFilter = "INBOX"
	// LabelSent matches sent emails.
	LabelSent LabelFilter = "SENT"
	// LabelAll applies no label filter.
	LabelAll LabelFilter = ""
)

// Message formats accepted by Get.
const (
	FormatFull     = "full"
	FormatMetadata = "metadata"
	FormatMinimal  = "minimal"
	FormatRaw      = "raw"
)

// ListOptions holds optional parameters for listing messages.
type ListOptions struct {
	// LabelIDs limits results to messages carrying every label (optional).
	LabelIDs []string
	// Query is a Gmail search query, e.g. "has:attachment from:a@example.com".
	Query string
	// MaxResults is the page size for API requests.
	MaxResults int64
	// IncludeSpamTrash includes spam and trash if true.
	IncludeSpamTrash bool
	// PageToken continues a previous listing.
	PageToken string
}

// DefaultListOptions returns the default listing options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		MaxResults: 100,
	}
}

// ParseLabels splits a comma separated label list.
func ParseLabels(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}
