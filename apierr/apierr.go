// Package apierr defines the structured errors raised by simulated API calls.
//
// Every validation, permission and not-found failure is an *Error carrying a
// Discord JSON error code, an HTTP-style status, the simulated request path
// and method, and optional per-field detail. Tests match on those fields, not
// on message text.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Method is the simulated HTTP verb of the failing request.
type Method string

// Simulated request methods.
const (
	MethodGet    Method = "get"
	MethodPut    Method = "put"
	MethodPatch  Method = "patch"
	MethodPost   Method = "post"
	MethodDelete Method = "delete"
)

// Discord JSON error codes used by the mock.
const (
	CodeUnknownChannel     = 10003
	CodeUnknownGuild       = 10004
	CodeUnknownIntegration = 10005
	CodeUnknownInvite      = 10006
	CodeUnknownMember      = 10007
	CodeUnknownMessage     = 10008
	CodeUnknownOverwrite   = 10009
	CodeUnknownRole        = 10011
	CodeUnknownUser        = 10013
	CodeUnknownEmoji       = 10014
	CodeUnknownWebhook     = 10015
	CodeUnknownBan         = 10026

	CodeMaxGuilds    = 30001
	CodeMaxPins      = 30003
	CodeMaxRoles     = 30005
	CodeMaxWebhooks  = 30007
	CodeMaxEmojis    = 30008
	CodeMaxReactions = 30010
	CodeMaxChannels  = 30013

	CodeUserBanned       = 40007
	CodeTargetNotInVoice = 40032

	CodeMissingAccess          = 50001
	CodeCannotExecuteOnDM      = 50003
	CodeCannotEditOthers       = 50005
	CodeEmptyMessage           = 50006
	CodeCannotMessageUser      = 50007
	CodeInvalidBulkDeleteCount = 50016
	CodeInvalidRole            = 50028
	CodeMissingPermissions     = 50013
	CodeBulkDeleteTooOld       = 50034
	CodeInvalidFormBody        = 50035
	CodeInvalidGuild           = 50055
)

// Detail is one machine-readable reason a field was rejected.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldErrors holds the details for one field, in Discord's "_errors" shape.
type FieldErrors struct {
	Errors []Detail `json:"_errors"`
}

// Error is a simulated Discord API error.
type Error struct {
	discordgo.APIErrorMessage

	Status int                    `json:"-"`
	Path   string                 `json:"-"`
	Method Method                 `json:"-"`
	Errors map[string]FieldErrors `json:"errors,omitempty"`
}

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d %s (code %d)", strings.ToUpper(string(e.Method)), e.Path, e.Status, e.Message, e.Code)
	if len(e.Errors) > 0 {
		fields := make([]string, 0, len(e.Errors))
		for f := range e.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			for _, d := range e.Errors[f].Errors {
				fmt.Fprintf(&b, "; %s: %s", f, d.Message)
			}
		}
	}
	return b.String()
}

// Is matches another *Error with the same code and status, so sentinel-style
// comparisons such as errors.Is(err, &apierr.Error{...}) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Status == 0 || t.Status == e.Status)
}

func newError(status, code int, message, path string, method Method) *Error {
	return &Error{
		APIErrorMessage: discordgo.APIErrorMessage{Code: code, Message: message},
		Status:          status,
		Path:            path,
		Method:          method,
	}
}

// BadRequest returns a 400 error.
func BadRequest(code int, message, path string, method Method) *Error {
	return newError(http.StatusBadRequest, code, message, path, method)
}

// Forbidden returns a 403 error.
func Forbidden(code int, message, path string, method Method) *Error {
	return newError(http.StatusForbidden, code, message, path, method)
}

// NotFound returns a 404 error.
func NotFound(code int, message, path string, method Method) *Error {
	return newError(http.StatusNotFound, code, message, path, method)
}

// MissingPermissions is the 403 raised when a permission bit is absent or the
// role hierarchy forbids the action.
func MissingPermissions(path string, method Method) *Error {
	return Forbidden(CodeMissingPermissions, "Missing Permissions", path, method)
}

// MissingAccess is the 403 raised when the actor cannot see the resource.
func MissingAccess(path string, method Method) *Error {
	return Forbidden(CodeMissingAccess, "Missing Access", path, method)
}

var unknownMessages = map[int]string{
	CodeUnknownChannel:     "Unknown Channel",
	CodeUnknownGuild:       "Unknown Guild",
	CodeUnknownIntegration: "Unknown Integration",
	CodeUnknownInvite:      "Unknown Invite",
	CodeUnknownMember:      "Unknown Member",
	CodeUnknownMessage:     "Unknown Message",
	CodeUnknownOverwrite:   "Unknown Overwrite",
	CodeUnknownRole:        "Unknown Role",
	CodeUnknownUser:        "Unknown User",
	CodeUnknownEmoji:       "Unknown Emoji",
	CodeUnknownWebhook:     "Unknown Webhook",
	CodeUnknownBan:         "Unknown Ban",
}

// Unknown returns the 404 for a missing or deleted resource identified by one
// of the CodeUnknown* codes.
func Unknown(code int, path string, method Method) *Error {
	msg, ok := unknownMessages[code]
	if !ok {
		msg = "Unknown Resource"
	}
	return NotFound(code, msg, path, method)
}

// InvalidFormBody returns the 400/50035 validation error with per-field
// detail.
func InvalidFormBody(path string, method Method, fields map[string][]Detail) *Error {
	e := BadRequest(CodeInvalidFormBody, "Invalid Form Body", path, method)
	e.Errors = make(map[string]FieldErrors, len(fields))
	for f, details := range fields {
		e.Errors[f] = FieldErrors{Errors: append([]Detail(nil), details...)}
	}
	return e
}

// FieldError is InvalidFormBody for a single field and reason.
func FieldError(path string, method Method, field, code, message string) *Error {
	return InvalidFormBody(path, method, map[string][]Detail{field: {{Code: code, Message: message}}})
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code int) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

// StatusOf returns the status of an *Error in err's chain, or zero.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return 0
}

// ErrTimeout matches every TimeoutError via errors.Is.
var ErrTimeout = errors.New("timed out waiting for gateway event")

// TimeoutError reports that a bounded wait for a correlated event expired.
// Callers tell it apart from an *Error with errors.Is(err, ErrTimeout).
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %v after %s", e.Op, ErrTimeout, e.After)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
