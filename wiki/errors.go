package wiki

import (
	"errors"
	"fmt"
	"strings"

	"github.com/olgasafonova/mediawiki-bot/metrics"
)

// The server reports failures as an <error code="..." info="..."/>
// element. Codes fall into three classes: transient ones the request
// loop retries on its own (lag, rate limit, read-only database),
// recoverable ones a caller may whitelist per operation, and fatal ones
// mapped to the typed errors below. Unrecognized codes are never
// swallowed.

// AssertionError means the server rejected an assert= precondition.
// The session has lost its login or bot flag and must be rebuilt.
type AssertionError struct {
	Code string
	Info string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed [%s]: %s (session lost its login or bot status)", e.Code, e.Info)
}

// PermissionError means the current user lacks the right needed for the
// attempted action.
type PermissionError struct {
	Code string
	Info string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied [%s]: %s", e.Code, e.Info)
}

// CredentialError means the action was refused for this account on this
// page, typically page or namespace protection. Logging in with a more
// privileged account may succeed.
type CredentialError struct {
	Code string
	Info string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("insufficient credentials [%s]: %s", e.Code, e.Info)
}

// AccountLockedError means the account is blocked or globally locked.
// Retrying will not help.
type AccountLockedError struct {
	Code string
	Info string
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked [%s]: %s", e.Code, e.Info)
}

// ConflictError means an edit raced a newer revision of the same page.
type ConflictError struct {
	Title string
	Info  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("edit conflict on %q: %s", e.Title, e.Info)
}

// ProtocolError covers responses this client cannot account for: an
// unrecognized error code, an empty body, or a reply missing a field
// the protocol requires. It signals either a client bug or a server API
// change, so it is always surfaced, never retried or ignored.
type ProtocolError struct {
	Code string
	Info string
}

func (e *ProtocolError) Error() string {
	if e.Code == "" {
		return "protocol error: " + e.Info
	}
	return fmt.Sprintf("protocol error [%s]: %s", e.Code, e.Info)
}

// UnsupportedError means an operation needs a server extension that is
// not installed on this wiki.
type UnsupportedError struct {
	Extension string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported operation: requires the %s extension", e.Extension)
}

// IsAssertion reports whether err is an assertion failure.
func IsAssertion(err error) bool {
	var e *AssertionError
	return errors.As(err, &e)
}

// IsPermission reports whether err is a permission denial.
func IsPermission(err error) bool {
	var e *PermissionError
	return errors.As(err, &e)
}

// IsLocked reports whether err is an account block or lock.
func IsLocked(err error) bool {
	var e *AccountLockedError
	return errors.As(err, &e)
}

// IsConflict reports whether err is an edit conflict.
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// ErrorHandler decides what happens when a specific error code comes
// back from the server. Returning nil downgrades the code to a logged
// warning and the operation carries on with whatever it has; returning
// an error propagates it unchanged. The same wire code means different
// things to different operations, so the mapping is supplied per call.
type ErrorHandler func(code, info string) error

// classifyError maps a wire error code to its typed error. Codes the
// request loop retries by itself never reach here.
func classifyError(code, info string) error {
	switch code {
	case "assertuserfailed", "assertbotfailed", "assertnameduserfailed":
		return &AssertionError{Code: code, Info: info}
	case "permissiondenied", "mustbeloggedin", "readapidenied", "writeapidenied", "noapiwrite":
		return &PermissionError{Code: code, Info: info}
	case "protectedpage", "protectednamespace", "protectednamespace-interface", "protectedtitle", "cascadeprotected", "customcssjsprotected":
		return &CredentialError{Code: code, Info: info}
	case "blocked", "autoblocked", "blockedfrommail", "globalblocking-ipblocked", "locked":
		return &AccountLockedError{Code: code, Info: info}
	default:
		return &ProtocolError{Code: code, Info: info}
	}
}

// checkErrors inspects a response for an error element and resolves it
// through the caller's overrides first, then the default taxonomy. A
// nil error with found=true means the code was downgraded to a warning;
// the response carries no records in that case and the caller should
// return a partial or empty result.
func (c *Client) checkErrors(resp, caller string, overrides map[string]ErrorHandler) (found bool, err error) {
	i := strings.Index(resp, "<error ")
	if i < 0 {
		return false, nil
	}
	code, _ := scanAttribute(resp, "code", i)
	info, _ := scanAttribute(resp, "info", i)

	if handler, ok := overrides[code]; ok {
		if handler != nil {
			if err := handler(code, info); err != nil {
				return true, err
			}
		}
		c.logger.Warn("API warning ignored",
			"caller", caller,
			"code", code,
			"info", info)
		return true, nil
	}
	metrics.RecordError(code)
	return true, classifyError(code, info)
}
