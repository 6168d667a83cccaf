package wiki

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"
)

// EditOptions adjusts how an edit is saved. The zero value saves a
// plain non-minor edit that creates the page when absent.
type EditOptions struct {
	Minor      bool
	Bot        bool
	CreateOnly bool
	NoCreate   bool
	// BaseTimestamp is the revision timestamp the new text was based
	// on. When set, the server rejects the save with an edit conflict
	// if someone else edited in between.
	BaseTimestamp time.Time
}

// Edit creates or replaces the wikitext of a page. The text is
// fingerprinted with an md5 parameter so a body mangled in transit is
// rejected instead of saved. A conflicting concurrent edit surfaces
// as a ConflictError.
func (c *Client) Edit(ctx context.Context, title, text, summary string, opts *EditOptions) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if err := c.throttleWrite(ctx); err != nil {
		return err
	}
	token, err := c.getToken(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("edit failed: %w", err)
	}

	sum := md5.Sum([]byte(text))
	post := map[string]any{
		"title":   title,
		"text":    text,
		"summary": summary,
		"token":   token,
		"md5":     hex.EncodeToString(sum[:]),
	}
	if opts != nil {
		if opts.Minor {
			post["minor"] = true
		}
		if opts.Bot {
			post["bot"] = true
		}
		if opts.CreateOnly {
			post["createonly"] = true
		}
		if opts.NoCreate {
			post["nocreate"] = true
		}
		if !opts.BaseTimestamp.IsZero() {
			post["basetimestamp"] = opts.BaseTimestamp
		}
	}

	resp, err := c.apiRequest(ctx, url.Values{"action": {"edit"}}, post, "edit")
	if err != nil {
		return fmt.Errorf("failed to edit %s: %w", title, err)
	}
	overrides := map[string]ErrorHandler{
		"editconflict": func(code, info string) error {
			return &ConflictError{Title: title, Info: info}
		},
	}
	if found, err := c.checkErrors(resp, "edit", overrides); err != nil {
		return err
	} else if found {
		return nil
	}

	result, _ := scanAttribute(resp, "result", 0)
	if result != "Success" {
		return &ProtocolError{Info: fmt.Sprintf("edit of %s returned %q", title, result)}
	}
	if hasAttribute(resp, "nochange", 0) {
		c.logger.Debug("Edit saved nothing, content unchanged", "title", title)
	}
	return nil
}

// Delete removes a page. Deleting a page that is already gone is not
// an error.
func (c *Client) Delete(ctx context.Context, title, reason string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if err := c.throttleWrite(ctx); err != nil {
		return err
	}
	token, err := c.getToken(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	post := map[string]any{
		"title":  title,
		"reason": reason,
		"token":  token,
	}
	resp, err := c.apiRequest(ctx, url.Values{"action": {"delete"}}, post, "delete")
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", title, err)
	}
	overrides := map[string]ErrorHandler{
		"missingtitle": nil,
	}
	if _, err := c.checkErrors(resp, "delete", overrides); err != nil {
		return err
	}
	return nil
}

// MoveOptions adjusts how a page rename is carried out.
type MoveOptions struct {
	MoveTalk     bool
	MoveSubpages bool
	NoRedirect   bool
}

// Move renames a page. By default the old title is left behind as a
// redirect to the new one.
func (c *Client) Move(ctx context.Context, from, to, reason string, opts *MoveOptions) error {
	if from == "" || to == "" {
		return fmt.Errorf("both titles are required")
	}
	if err := c.throttleWrite(ctx); err != nil {
		return err
	}
	token, err := c.getToken(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("move failed: %w", err)
	}

	post := map[string]any{
		"from":   from,
		"to":     to,
		"reason": reason,
		"token":  token,
	}
	if opts != nil {
		if opts.MoveTalk {
			post["movetalk"] = true
		}
		if opts.MoveSubpages {
			post["movesubpages"] = true
		}
		if opts.NoRedirect {
			post["noredirect"] = true
		}
	}

	resp, err := c.apiRequest(ctx, url.Values{"action": {"move"}}, post, "move")
	if err != nil {
		return fmt.Errorf("failed to move %s: %w", from, err)
	}
	if _, err := c.checkErrors(resp, "move", nil); err != nil {
		return err
	}
	return nil
}

// Purge invalidates the server-side render cache of the given pages.
// This touches no content, so it is neither throttled nor tokened.
func (c *Client) Purge(ctx context.Context, titles ...string) error {
	for _, chunk := range c.titleBatches(titles) {
		post := map[string]any{"titles": chunk}
		resp, err := c.apiRequest(ctx, url.Values{"action": {"purge"}}, post, "purge")
		if err != nil {
			return fmt.Errorf("failed to purge: %w", err)
		}
		if _, err := c.checkErrors(resp, "purge", nil); err != nil {
			return err
		}
	}
	return nil
}
