package wiki

import (
	"regexp"
	"strings"
)

// Response bodies can run to tens of megabytes (page dumps, full
// histories). Records arrive as flat, attribute-bearing tags, so fields
// are pulled out with a forward substring scan instead of a parse tree.

// scanAttribute returns the decoded value of the next name="value"
// occurrence at or after from. The bool is false when the attribute does
// not occur.
func scanAttribute(text, name string, from int) (string, bool) {
	if from < 0 || from > len(text) {
		return "", false
	}
	marker := name + `="`
	i := strings.Index(text[from:], marker)
	if i < 0 {
		return "", false
	}
	start := from + i + len(marker)
	end := strings.IndexByte(text[start:], '"')
	if end < 0 {
		return "", false
	}
	return decodeEntities(text[start : start+end]), true
}

// hasAttribute reports whether the attribute occurs at or after from.
// Flag attributes (minor="", userhidden="") carry empty values, so
// presence is the signal.
func hasAttribute(text, name string, from int) bool {
	_, ok := scanAttribute(text, name, from)
	return ok
}

// scanElements returns every <name .../> or <name ...>...</name> segment
// in document order. A match must be followed by a space, '>' or '/',
// so scanning for "rev" does not pick up "revisions".
func scanElements(text, name string) []string {
	var out []string
	open := "<" + name
	closing := "</" + name + ">"
	for pos := 0; ; {
		i := strings.Index(text[pos:], open)
		if i < 0 {
			return out
		}
		start := pos + i
		after := start + len(open)
		if after >= len(text) {
			return out
		}
		switch text[after] {
		case ' ', '\t', '\n', '>', '/':
		default:
			pos = after
			continue
		}
		gt := strings.IndexByte(text[after:], '>')
		if gt < 0 {
			return out
		}
		gtAbs := after + gt
		if text[gtAbs-1] == '/' {
			out = append(out, text[start:gtAbs+1])
			pos = gtAbs + 1
			continue
		}
		end := strings.Index(text[gtAbs:], closing)
		if end < 0 {
			return out
		}
		endAbs := gtAbs + end + len(closing)
		out = append(out, text[start:endAbs])
		pos = endAbs
	}
}

// elementText returns the decoded inner text of a container element
// segment. Self-closing segments have no inner text.
func elementText(element string) (string, bool) {
	gt := strings.IndexByte(element, '>')
	lt := strings.LastIndexByte(element, '<')
	if gt < 0 || lt <= gt {
		return "", false
	}
	return decodeEntities(element[gt+1 : lt]), true
}

var attrPairRegex = regexp.MustCompile(`(\w+)="([^"]*)"`)

// scanPairs returns every key="value" pair in an element segment. Used
// for blocks whose attribute names are not known up front, such as
// continuation markers.
func scanPairs(element string) map[string]string {
	pairs := make(map[string]string)
	for _, m := range attrPairRegex.FindAllStringSubmatch(element, -1) {
		pairs[m[1]] = decodeEntities(m[2])
	}
	return pairs
}

// decodeEntities reverses the entity encoding the server applies to
// attribute values and element text. &amp; runs last so already-decoded
// sequences are not unescaped twice.
func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#039;", "'")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}

// encodeEntities is the inverse of decodeEntities, applied when
// synthesizing attribute values. &amp; runs first for the same reason
// it runs last when decoding.
func encodeEntities(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "'", "&#039;")
	return s
}
