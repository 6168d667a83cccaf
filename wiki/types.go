package wiki

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Timestamps on the wire are ISO 8601 in UTC.
const apiTimestamp = "2006-01-02T15:04:05Z"

// Event is the common shape of revisions, log entries and recent
// changes. The server can redact ("RevisionDelete") the user, comment
// or content of a record for unprivileged consumers; a redacted field
// is nil with its *Deleted flag true, while a field that was simply not
// requested is nil with the flag false. The two cases must stay
// distinguishable.
type Event struct {
	ID             int64
	Timestamp      time.Time
	User           *string
	UserDeleted    bool
	Title          *string
	Comment        *string
	ParsedComment  *string
	CommentDeleted bool
	ContentDeleted bool
	Tags           []string
}

// Revision is one page revision or recent-changes entry.
type Revision struct {
	Event
	SHA1     string
	Minor    bool
	Bot      bool
	New      bool
	Size     int64
	SizeDiff int64
}

// LogEntry is one entry from the server's action logs.
type LogEntry struct {
	Event
	Type    string
	Action  string
	Details map[string]string
}

// PageText is the wikitext of one requested title. Exists is false when
// the page is missing; Title is the server's canonical spelling.
type PageText struct {
	Title  string
	Text   string
	Exists bool
}

// PageInfo is the metadata of one requested title.
type PageInfo struct {
	Title     string
	PageID    int64
	Namespace int
	Exists    bool
	Redirect  bool
	LastRevID int64
	Length    int64
	Touched   time.Time
}

// SearchResult is one full-text search hit.
type SearchResult struct {
	Title     string
	Snippet   string
	Size      int
	WordCount int
	Timestamp time.Time
}

// User is the public record of one account.
type User struct {
	Username     string
	UserID       int64
	EditCount    int
	Registration time.Time
	Groups       []string
	Rights       []string
	Blocked      bool
}

// SiteStatistics is the server's live page and user counters.
type SiteStatistics struct {
	Pages       int64
	Articles    int64
	Edits       int64
	Images      int64
	Users       int64
	ActiveUsers int64
	Admins      int64
}

// QueryOptions narrows list queries by time window, user, namespace or
// tag. The zero value applies no filter. Limit caps the number of
// accumulated records; zero or negative falls back to the session's
// query limit.
type QueryOptions struct {
	Start       time.Time
	End         time.Time
	User        string
	ExcludeUser string
	Namespaces  []int
	Tag         string
	Reverse     bool
	Limit       int
}

// apply writes the options into params under the module's parameter
// prefix ("rc", "le", "uc", ...). Limit is handled by the query loop,
// not here.
func (o *QueryOptions) apply(params url.Values, prefix string) {
	if o == nil {
		return
	}
	if !o.Start.IsZero() {
		params.Set(prefix+"start", o.Start.UTC().Format(apiTimestamp))
	}
	if !o.End.IsZero() {
		params.Set(prefix+"end", o.End.UTC().Format(apiTimestamp))
	}
	if o.User != "" {
		params.Set(prefix+"user", o.User)
	}
	if o.ExcludeUser != "" {
		params.Set(prefix+"excludeuser", o.ExcludeUser)
	}
	if len(o.Namespaces) > 0 {
		parts := make([]string, 0, len(o.Namespaces))
		for _, ns := range o.Namespaces {
			parts = append(parts, strconv.Itoa(ns))
		}
		params.Set(prefix+"namespace", strings.Join(parts, "|"))
	}
	if o.Tag != "" {
		params.Set(prefix+"tag", o.Tag)
	}
	if o.Reverse {
		params.Set(prefix+"dir", "newer")
	}
}

func (o *QueryOptions) limit() int {
	if o == nil {
		return -1
	}
	if o.Limit <= 0 {
		return -1
	}
	return o.Limit
}

// parseEvent extracts the fields shared by revisions, log entries and
// recent changes from one record segment.
func parseEvent(seg string) Event {
	var ev Event
	if ts, ok := scanAttribute(seg, "timestamp", 0); ok {
		ev.Timestamp, _ = time.Parse(apiTimestamp, ts)
	}
	if t, ok := scanAttribute(seg, "title", 0); ok {
		ev.Title = &t
	}

	if hasAttribute(seg, "userhidden", 0) {
		ev.UserDeleted = true
	} else if u, ok := scanAttribute(seg, " user", 0); ok {
		ev.User = &u
	}

	if hasAttribute(seg, "commenthidden", 0) {
		ev.CommentDeleted = true
	} else {
		if pc, ok := scanAttribute(seg, "parsedcomment", 0); ok {
			ev.ParsedComment = &pc
		}
		if cm, ok := scanAttribute(seg, " comment", 0); ok {
			ev.Comment = &cm
		}
	}

	if hasAttribute(seg, "sha1hidden", 0) || hasAttribute(seg, "texthidden", 0) || hasAttribute(seg, "suppressed", 0) {
		ev.ContentDeleted = true
	}

	for _, tag := range scanElements(seg, "tag") {
		if t, ok := elementText(tag); ok {
			ev.Tags = append(ev.Tags, t)
		}
	}
	return ev
}

// parseRevision reads one <rev>, <rc> or contributions <item> segment.
// The three modules emit overlapping attribute sets; fields absent from
// a given module stay at their zero value.
func parseRevision(seg string) Revision {
	rev := Revision{Event: parseEvent(seg)}
	rev.ID = scanInt(seg, "revid")
	rev.Minor = hasAttribute(seg, "minor", 0)
	rev.Bot = hasAttribute(seg, " bot", 0)
	rev.New = hasAttribute(seg, " new", 0)
	if s, ok := scanAttribute(seg, "sha1", 0); ok {
		rev.SHA1 = s
	}

	// recentchanges reports oldlen/newlen, revisions reports size.
	if hasAttribute(seg, "newlen", 0) {
		newlen := scanInt(seg, "newlen")
		rev.Size = newlen
		rev.SizeDiff = newlen - scanInt(seg, "oldlen")
	} else {
		rev.Size = scanInt(seg, " size")
		if hasAttribute(seg, "sizediff", 0) {
			rev.SizeDiff = scanInt(seg, "sizediff")
		}
	}
	return rev
}

// parseLogEntry reads one log <item> segment. Details carries the
// type-specific parameters verbatim; a redacted action leaves it nil.
func parseLogEntry(seg string) LogEntry {
	le := LogEntry{Event: parseEvent(seg)}
	le.ID = scanInt(seg, "logid")
	le.Type, _ = scanAttribute(seg, "type", 0)
	le.Action, _ = scanAttribute(seg, "action", 0)

	if hasAttribute(seg, "actionhidden", 0) {
		le.ContentDeleted = true
		return le
	}
	for _, params := range scanElements(seg, "params") {
		le.Details = scanPairs(params)
	}
	return le
}

// scanInt returns the integer value of an attribute, or zero when the
// attribute is absent or malformed.
func scanInt(seg, name string) int64 {
	v, ok := scanAttribute(seg, name, 0)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
