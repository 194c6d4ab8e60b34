package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Constructors_StatusAndCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        *Error
		wantStatus int
		wantCode   int
		wantMsg    string
	}{
		{"missing permissions", MissingPermissions("/guilds/1/roles", MethodPost), http.StatusForbidden, CodeMissingPermissions, "Missing Permissions"},
		{"missing access", MissingAccess("/channels/2", MethodGet), http.StatusForbidden, CodeMissingAccess, "Missing Access"},
		{"unknown role", Unknown(CodeUnknownRole, "/guilds/1/roles/3", MethodDelete), http.StatusNotFound, CodeUnknownRole, "Unknown Role"},
		{"unknown invite", Unknown(CodeUnknownInvite, "/invites/abc", MethodDelete), http.StatusNotFound, CodeUnknownInvite, "Unknown Invite"},
		{"unlisted unknown code", Unknown(12345, "/x", MethodGet), http.StatusNotFound, 12345, "Unknown Resource"},
		{"bad request", BadRequest(CodeBulkDeleteTooOld, "too old", "/channels/2/messages/bulk-delete", MethodPost), http.StatusBadRequest, CodeBulkDeleteTooOld, "too old"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
		})
	}
}

func Test_InvalidFormBody_Shape(t *testing.T) {
	t.Parallel()

	err := FieldError("/guilds/1/audit-logs", MethodGet, "limit", "NUMBER_TYPE_MAX", "int value should be less than or equal to 100.")
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodeInvalidFormBody, err.Code)
	assert.Equal(t, MethodGet, err.Method)
	assert.Equal(t, "/guilds/1/audit-logs", err.Path)

	raw, jerr := json.Marshal(err)
	require.NoError(t, jerr)
	assert.JSONEq(t, `{
		"code": 50035,
		"message": "Invalid Form Body",
		"errors": {"limit": {"_errors": [{"code": "NUMBER_TYPE_MAX", "message": "int value should be less than or equal to 100."}]}}
	}`, string(raw))

	assert.Contains(t, err.Error(), "limit: int value should be less than or equal to 100.")
}

func Test_As_ThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("create role: %w", MissingPermissions("/guilds/1/roles", MethodPost))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeMissingPermissions, e.Code)
	assert.True(t, HasCode(wrapped, CodeMissingPermissions))
	assert.False(t, HasCode(wrapped, CodeMissingAccess))
	assert.Equal(t, http.StatusForbidden, StatusOf(wrapped))
	assert.Equal(t, 0, StatusOf(errors.New("plain")))

	assert.ErrorIs(t, wrapped, &Error{APIErrorMessage: e.APIErrorMessage})
}

func Test_TimeoutError_IsDistinct(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("fetch members: %w", &TimeoutError{Op: "guild members chunk", After: 2 * time.Second})
	assert.ErrorIs(t, err, ErrTimeout)
	_, ok := As(err)
	assert.False(t, ok, "a timeout is not an API error")
	assert.Contains(t, err.Error(), "2s")
}
