package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/olgasafonova/mediawiki-bot/metrics"
)

// Upload stores a file on the wiki under filename. description becomes
// the file's description page, reason the upload log entry. Files
// smaller than the session's chunk size go up in one multipart POST;
// larger files are cut into power-of-two chunks, stashed under a
// server-issued key and committed in a final call.
func (c *Client) Upload(ctx context.Context, file []byte, filename, description, reason string) error {
	if filename == "" {
		return fmt.Errorf("filename is required")
	}
	if err := c.throttleWrite(ctx); err != nil {
		return err
	}
	token, err := c.getToken(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	c.mu.RLock()
	chunkSize := 1 << c.chunkExponent
	c.mu.RUnlock()

	if len(file) < chunkSize {
		return c.uploadDirect(ctx, file, filename, description, reason, token)
	}
	return c.uploadChunked(ctx, file, filename, description, reason, token, chunkSize)
}

// uploadDirect sends the whole file inline in one multipart request.
func (c *Client) uploadDirect(ctx context.Context, file []byte, filename, description, reason, token string) error {
	post := map[string]any{
		"filename":       filename,
		"text":           description,
		"comment":        reason,
		"token":          token,
		"ignorewarnings": "1",
		"file":           file,
	}
	resp, err := c.apiRequest(ctx, url.Values{"action": {"upload"}}, post, "upload")
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	if _, err := c.checkErrors(resp, "upload", nil); err != nil {
		return err
	}
	return checkUploadResult(resp, filename)
}

// uploadChunked stashes the file chunk by chunk, threading the
// server's filekey through every request, then commits the stash.
func (c *Client) uploadChunked(ctx context.Context, file []byte, filename, description, reason, token string, chunkSize int) error {
	total := len(file)
	filekey := ""
	for offset := 0; offset < total; offset += chunkSize {
		end := offset + chunkSize
		if end > total {
			end = total
		}
		post := map[string]any{
			"filename":       filename,
			"token":          token,
			"ignorewarnings": "1",
			"stash":          "1",
			"offset":         offset,
			"filesize":       total,
			"chunk":          file[offset:end],
		}
		if filekey != "" {
			post["filekey"] = filekey
		}
		resp, err := c.apiRequest(ctx, url.Values{"action": {"upload"}}, post, "uploadChunk")
		if err != nil {
			metrics.RecordUploadChunk("error")
			return fmt.Errorf("failed to upload chunk at offset %d of %s: %w", offset, filename, err)
		}
		if _, err := c.checkErrors(resp, "uploadChunk", nil); err != nil {
			metrics.RecordUploadChunk("error")
			return err
		}
		key, ok := scanAttribute(resp, "filekey", 0)
		if !ok || key == "" {
			metrics.RecordUploadChunk("error")
			return &ProtocolError{Info: "chunk at offset " + strconv.Itoa(offset) + " returned no filekey"}
		}
		filekey = key
		metrics.RecordUploadChunk("stashed")
		c.logger.Debug("Stashed upload chunk",
			"filename", filename,
			"offset", offset,
			"size", end-offset,
			"total", total)
	}

	post := map[string]any{
		"filename":       filename,
		"filekey":        filekey,
		"text":           description,
		"comment":        reason,
		"token":          token,
		"ignorewarnings": "1",
	}
	resp, err := c.apiRequest(ctx, url.Values{"action": {"upload"}}, post, "upload")
	if err != nil {
		return fmt.Errorf("failed to commit upload of %s: %w", filename, err)
	}
	if _, err := c.checkErrors(resp, "upload", nil); err != nil {
		return err
	}
	return checkUploadResult(resp, filename)
}

// checkUploadResult verifies the final upload response reported
// Success.
func checkUploadResult(resp, filename string) error {
	result, ok := scanAttribute(resp, "result", 0)
	if !ok {
		return &ProtocolError{Info: "upload response missing result"}
	}
	if result != "Success" {
		return &ProtocolError{Info: fmt.Sprintf("upload of %s returned %q", filename, result)}
	}
	return nil
}
