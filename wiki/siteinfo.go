package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/olgasafonova/mediawiki-bot/metrics"
)

// SiteInfo is the wiki's own description of itself: namespace table,
// capitalization rule, timezone, locale, version and installed
// extensions. It is fetched once per session; every accessor populates
// it on first use. Population is all or nothing, the cache is never
// partially filled.
type SiteInfo struct {
	Version           string
	Timezone          string
	Locale            string
	CaseSensitive     bool
	Namespaces        map[string]int
	NamespaceNames    map[int]string
	SubpageNamespaces map[int]bool
	Extensions        map[string]bool
}

// siteInfo returns the cached metadata, issuing the metadata request on
// first access. Concurrent first accesses collapse into one request.
func (c *Client) siteInfo(ctx context.Context) (*SiteInfo, error) {
	c.siteMu.RLock()
	site := c.site
	c.siteMu.RUnlock()
	if site != nil {
		return site, nil
	}

	v, err, _ := c.siteGroup.Do("siteinfo", func() (any, error) {
		c.siteMu.RLock()
		cached := c.site
		c.siteMu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		get := url.Values{}
		get.Set("action", "query")
		get.Set("meta", "siteinfo")
		get.Set("siprop", "general|namespaces|namespacealiases|extensions")
		resp, err := c.apiRequest(ctx, get, nil, "siteInfo")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch site metadata: %w", err)
		}
		if _, err := c.checkErrors(resp, "siteInfo", nil); err != nil {
			return nil, err
		}

		site, err := parseSiteInfo(resp)
		if err != nil {
			return nil, err
		}
		c.siteMu.Lock()
		c.site = site
		c.siteMu.Unlock()
		metrics.RecordSiteInfoLoad()
		c.logger.Debug("Site metadata populated",
			"version", site.Version,
			"namespaces", len(site.NamespaceNames),
			"extensions", len(site.Extensions))
		return site, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SiteInfo), nil
}

func parseSiteInfo(resp string) (*SiteInfo, error) {
	general := scanElements(resp, "general")
	if len(general) == 0 {
		return nil, &ProtocolError{Info: "siteinfo response missing general block"}
	}
	site := &SiteInfo{
		Namespaces:        make(map[string]int),
		NamespaceNames:    make(map[int]string),
		SubpageNamespaces: make(map[int]bool),
		Extensions:        make(map[string]bool),
	}

	gen := general[0]
	if g, ok := scanAttribute(gen, "generator", 0); ok {
		site.Version = strings.TrimPrefix(g, "MediaWiki ")
	}
	site.Timezone, _ = scanAttribute(gen, "timezone", 0)
	site.Locale, _ = scanAttribute(gen, "lang", 0)
	if cs, ok := scanAttribute(gen, "case", 0); ok {
		site.CaseSensitive = cs == "case-sensitive"
	}

	// Canonical namespaces and their localized names come from the
	// namespaces block; the alias block reuses the same tag but only
	// feeds the name-to-id map.
	for _, seg := range blockSegment(resp, "namespaces") {
		for _, ns := range scanElements(seg, "ns") {
			id, err := strconv.Atoi(firstAttr(ns, "id"))
			if err != nil {
				continue
			}
			name, _ := elementText(ns)
			site.NamespaceNames[id] = name
			if name != "" {
				site.Namespaces[strings.ToLower(name)] = id
			}
			if canonical, ok := scanAttribute(ns, "canonical", 0); ok && canonical != "" {
				site.Namespaces[strings.ToLower(canonical)] = id
			}
			if hasAttribute(ns, "subpages", 0) {
				site.SubpageNamespaces[id] = true
			}
		}
	}
	for _, seg := range blockSegment(resp, "namespacealiases") {
		for _, ns := range scanElements(seg, "ns") {
			id, err := strconv.Atoi(firstAttr(ns, "id"))
			if err != nil {
				continue
			}
			if alias, ok := elementText(ns); ok && alias != "" {
				site.Namespaces[strings.ToLower(alias)] = id
			}
		}
	}

	for _, seg := range blockSegment(resp, "extensions") {
		for _, ext := range scanElements(seg, "ext") {
			if name, ok := scanAttribute(ext, " name", 0); ok && name != "" {
				site.Extensions[name] = true
			}
		}
	}
	return site, nil
}

// blockSegment returns the <name>...</name> container segments of a
// response, without matching unrelated tags that share the prefix.
func blockSegment(resp, name string) []string {
	var out []string
	open := "<" + name + ">"
	closing := "</" + name + ">"
	for pos := 0; ; {
		start := strings.Index(resp[pos:], open)
		if start < 0 {
			return out
		}
		start += pos
		end := strings.Index(resp[start:], closing)
		if end < 0 {
			return out
		}
		out = append(out, resp[start:start+end+len(closing)])
		pos = start + end + len(closing)
	}
}

func firstAttr(seg, name string) string {
	v, _ := scanAttribute(seg, name, 0)
	return v
}

// Version returns the MediaWiki version string, e.g. "1.43.0".
func (c *Client) Version(ctx context.Context) (string, error) {
	site, err := c.siteInfo(ctx)
	if err != nil {
		return "", err
	}
	return site.Version, nil
}

// Timezone returns the wiki's configured timezone name.
func (c *Client) Timezone(ctx context.Context) (string, error) {
	site, err := c.siteInfo(ctx)
	if err != nil {
		return "", err
	}
	return site.Timezone, nil
}

// Locale returns the wiki's content language code.
func (c *Client) Locale(ctx context.Context) (string, error) {
	site, err := c.siteInfo(ctx)
	if err != nil {
		return "", err
	}
	return site.Locale, nil
}

// NamespaceID resolves a namespace name or alias, case-insensitively.
// The second return is false for names the wiki does not know.
func (c *Client) NamespaceID(ctx context.Context, name string) (int, bool, error) {
	site, err := c.siteInfo(ctx)
	if err != nil {
		return 0, false, err
	}
	id, ok := site.Namespaces[strings.ToLower(strings.TrimSpace(name))]
	return id, ok, nil
}

// NamespaceName returns the localized name of a namespace id. The main
// namespace's name is the empty string.
func (c *Client) NamespaceName(ctx context.Context, id int) (string, bool, error) {
	site, err := c.siteInfo(ctx)
	if err != nil {
		return "", false, err
	}
	name, ok := site.NamespaceNames[id]
	return name, ok, nil
}

// Namespace returns the namespace id of a title, 0 when the prefix is
// absent or unknown.
func (c *Client) Namespace(ctx context.Context, title string) (int, error) {
	site, err := c.siteInfo(ctx)
	if err != nil {
		return 0, err
	}
	colon := strings.Index(title, ":")
	if colon <= 0 {
		return 0, nil
	}
	prefix := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(title[:colon], "_", " ")))
	if id, ok := site.Namespaces[prefix]; ok {
		return id, nil
	}
	return 0, nil
}

// SupportsSubpages reports whether a namespace has subpages enabled.
func (c *Client) SupportsSubpages(ctx context.Context, ns int) (bool, error) {
	site, err := c.siteInfo(ctx)
	if err != nil {
		return false, err
	}
	return site.SubpageNamespaces[ns], nil
}

// HasExtension reports whether the named extension is installed.
func (c *Client) HasExtension(ctx context.Context, name string) (bool, error) {
	site, err := c.siteInfo(ctx)
	if err != nil {
		return false, err
	}
	return site.Extensions[name], nil
}

// RequireExtension is the precondition check for operations that only
// work with a server extension present.
func (c *Client) RequireExtension(ctx context.Context, name string) error {
	ok, err := c.HasExtension(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return &UnsupportedError{Extension: name}
	}
	return nil
}

// NormalizeTitle applies the wiki's own title conventions: trimmed,
// underscores to spaces, namespace prefix canonicalized, and the first
// letter of the page name uppercased unless this wiki is
// case-sensitive.
func (c *Client) NormalizeTitle(ctx context.Context, title string) (string, error) {
	site, err := c.siteInfo(ctx)
	if err != nil {
		return "", err
	}

	title = strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
	for strings.Contains(title, "  ") {
		title = strings.ReplaceAll(title, "  ", " ")
	}
	if title == "" {
		return "", nil
	}

	rest := title
	prefix := ""
	if colon := strings.Index(title, ":"); colon > 0 {
		name := strings.ToLower(strings.TrimSpace(title[:colon]))
		if id, ok := site.Namespaces[name]; ok {
			if canonical := site.NamespaceNames[id]; canonical != "" {
				prefix = canonical + ":"
			}
			rest = strings.TrimSpace(title[colon+1:])
		}
	}
	if rest != "" && !site.CaseSensitive {
		r, size := utf8.DecodeRuneInString(rest)
		rest = string(unicode.ToUpper(r)) + rest[size:]
	}
	return prefix + rest, nil
}
