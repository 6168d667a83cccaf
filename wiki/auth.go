package wiki

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Cached tokens are trusted for an hour before a fresh one is fetched.
const tokenLifetime = 60 * time.Minute

// Login authenticates the session with a bot password. On success the
// session remembers the user and, when the account holds
// apihighlimits, raises its batch and page sizes to the elevated tier.
func (c *Client) Login(ctx context.Context, username, password string) error {
	get := url.Values{}
	get.Set("action", "query")
	get.Set("meta", "tokens")
	get.Set("type", "login")
	resp, err := c.apiRequest(ctx, get, nil, "login")
	if err != nil {
		return fmt.Errorf("failed to get login token: %w", err)
	}
	if _, err := c.checkErrors(resp, "login", nil); err != nil {
		return err
	}
	loginToken, ok := scanAttribute(resp, "logintoken", 0)
	if !ok {
		return &ProtocolError{Info: "no login token in response"}
	}

	post := map[string]any{
		"lgname":     username,
		"lgpassword": password,
		"lgtoken":    loginToken,
	}
	resp, err = c.apiRequest(ctx, url.Values{"action": {"login"}}, post, "login")
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if _, err := c.checkErrors(resp, "login", nil); err != nil {
		return err
	}

	result, ok := scanAttribute(resp, "result", 0)
	if !ok {
		return &ProtocolError{Info: "login response missing result"}
	}
	if result != "Success" {
		reason, _ := scanAttribute(resp, "reason", 0)
		if reason == "" {
			reason = result
		}
		return &CredentialError{Code: "loginfailed", Info: reason}
	}

	name := username
	if lg, ok := scanAttribute(resp, "lgusername", 0); ok {
		name = lg
	}
	c.mu.Lock()
	c.username = name
	c.loggedIn = true
	c.mu.Unlock()

	if err := c.applyUserLimits(ctx); err != nil {
		// The login itself stood; degraded limits are just slower.
		c.logger.Warn("Could not determine account limits, keeping defaults", "error", err)
	}
	c.logger.Info("Successfully logged in", "username", name)
	return nil
}

// applyUserLimits reads the logged-in account's rights and switches the
// session to the elevated batch and page sizes when allowed.
func (c *Client) applyUserLimits(ctx context.Context) error {
	get := url.Values{}
	get.Set("action", "query")
	get.Set("meta", "userinfo")
	get.Set("uiprop", "rights|groups")
	resp, err := c.apiRequest(ctx, get, nil, "userLimits")
	if err != nil {
		return err
	}
	if _, err := c.checkErrors(resp, "userLimits", nil); err != nil {
		return err
	}

	elevated := false
	for _, r := range scanElements(resp, "r") {
		if right, ok := elementText(r); ok && right == "apihighlimits" {
			elevated = true
			break
		}
	}
	c.setElevatedLimits(elevated)
	if elevated {
		c.logger.Debug("Account holds apihighlimits, using elevated batch sizes")
	}
	return nil
}

// EnsureLoggedIn logs in with the configured credentials unless the
// session already is.
func (c *Client) EnsureLoggedIn(ctx context.Context) error {
	c.mu.RLock()
	loggedIn := c.loggedIn
	c.mu.RUnlock()
	if loggedIn {
		return nil
	}
	if !c.cfg.HasCredentials() {
		return fmt.Errorf("no credentials configured. Set MEDIAWIKI_USERNAME and MEDIAWIKI_PASSWORD environment variables")
	}
	return c.Login(ctx, c.cfg.Username, c.cfg.Password)
}

// Logout ends the server session and tears the local one down:
// credentials, cached tokens and cookies are cleared and the derived
// batch limits drop back to the ordinary tier.
func (c *Client) Logout(ctx context.Context) error {
	token, err := c.getToken(ctx, "csrf")
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	post := map[string]any{"token": token}
	resp, err := c.apiRequest(ctx, url.Values{"action": {"logout"}}, post, "logout")
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	if _, err := c.checkErrors(resp, "logout", nil); err != nil {
		return err
	}

	c.mu.Lock()
	c.username = ""
	c.loggedIn = false
	c.tokens = make(map[string]string)
	c.tokenExpiry = time.Time{}
	c.batchMax = DefaultBatchSize
	c.pageMax = DefaultPageSize
	c.mu.Unlock()
	c.resetCookies()

	c.logger.Info("Logged out")
	return nil
}

// getToken returns a cached action token of the given kind (csrf,
// watch, ...), fetching a fresh one when missing or expired.
func (c *Client) getToken(ctx context.Context, kind string) (string, error) {
	c.mu.RLock()
	token, ok := c.tokens[kind]
	fresh := time.Now().Before(c.tokenExpiry)
	c.mu.RUnlock()
	if ok && fresh {
		return token, nil
	}

	get := url.Values{}
	get.Set("action", "query")
	get.Set("meta", "tokens")
	get.Set("type", kind)
	resp, err := c.apiRequest(ctx, get, nil, "getToken")
	if err != nil {
		return "", fmt.Errorf("failed to get %s token: %w", kind, err)
	}
	if _, err := c.checkErrors(resp, "getToken", nil); err != nil {
		return "", err
	}
	token, ok = scanAttribute(resp, kind+"token", 0)
	if !ok {
		return "", &ProtocolError{Info: "no " + kind + " token in response"}
	}

	c.mu.Lock()
	c.tokens[kind] = token
	c.tokenExpiry = time.Now().Add(tokenLifetime)
	c.mu.Unlock()
	return token, nil
}
