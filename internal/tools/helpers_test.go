package tools

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/internal/testutil"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// ---------------------------------------------------------------------------
// JSONResult / ErrorResult
// ---------------------------------------------------------------------------

func Test_JSONResult_Cases(t *testing.T) {
	t.Parallel()

	type channel struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	tests := []struct {
		name         string
		input        any
		wantContains string
	}{
		{name: "struct", input: channel{ID: "1", Name: "general"}, wantContains: `"name": "general"`},
		{name: "nil", input: nil, wantContains: "null"},
		{name: "empty slice", input: []channel{}, wantContains: "[]"},
		{name: "unmarshalable", input: func() {}, wantContains: "error marshaling result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := JSONResult(tt.input)
			if result.IsError {
				t.Error("JSONResult() set IsError")
			}
			testutil.AssertTextContains(t, result, tt.wantContains)
		})
	}
}

func Test_ErrorResult_Prefix(t *testing.T) {
	t.Parallel()
	result := ErrorResult("channel #general not accessible")
	if !result.IsError {
		t.Error("ErrorResult() did not set IsError")
	}
	testutil.AssertTextContains(t, result, "error: channel #general not accessible")
}

// ---------------------------------------------------------------------------
// DefaultLogger / LogCall
// ---------------------------------------------------------------------------

func Test_DefaultLogger_Cases(t *testing.T) {
	t.Parallel()
	if DefaultLogger(nil) != slog.Default() {
		t.Error("DefaultLogger(nil) should return slog.Default()")
	}
	custom, _ := bufferLogger()
	if DefaultLogger(custom) != custom {
		t.Error("DefaultLogger(custom) should return custom")
	}
}

func Test_LogCall_WritesToolAndResult(t *testing.T) {
	t.Parallel()
	logger, buf := bufferLogger()

	LogCall(logger, "discord_send_message", map[string]any{"channel": "general"}, "ok: 42", time.Now())

	out := buf.String()
	for _, want := range []string{"tool call", "tool=discord_send_message", `result="ok: 42"`, "duration="} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

// ---------------------------------------------------------------------------
// ErrorCallResult
// ---------------------------------------------------------------------------

func Test_ErrorCallResult_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantText    string
		wantLogCode string
	}{
		{
			name:     "plain error",
			err:      errors.New("boom"),
			wantText: "error: boom",
		},
		{
			name:        "api error",
			err:         apierr.Unknown(apierr.CodeUnknownChannel, "/channels/9", apierr.MethodGet),
			wantText:    "Unknown Channel",
			wantLogCode: "code=10003",
		},
		{
			name:        "wrapped api error",
			err:         errors.Join(errors.New("send"), apierr.MissingPermissions("/channels/9/messages", apierr.MethodPost)),
			wantText:    "Missing Permissions",
			wantLogCode: "status=403",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, buf := bufferLogger()

			result := ErrorCallResult(logger, "discord_get_messages", nil, tt.err, time.Now())

			if !result.IsError {
				t.Error("ErrorCallResult() did not set IsError")
			}
			testutil.AssertTextContains(t, result, tt.wantText)
			out := buf.String()
			if !strings.Contains(out, "level=WARN") {
				t.Errorf("log output %q, want a WARN record", out)
			}
			if tt.wantLogCode != "" && !strings.Contains(out, tt.wantLogCode) {
				t.Errorf("log output %q missing %q", out, tt.wantLogCode)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// ResolveChannel
// ---------------------------------------------------------------------------

func Test_ResolveChannel_Cases(t *testing.T) {
	t.Parallel()
	r := testutil.NewMockChannelResolver()

	tests := []struct {
		name     string
		channel  string
		wantID   string
		wantName string
		wantErr  bool
	}{
		{name: "by name", channel: "general", wantID: "1001", wantName: "general"},
		{name: "hash name", channel: "#random", wantID: "1002", wantName: "random"},
		{name: "known id", channel: "1001", wantID: "1001", wantName: "general"},
		{name: "unknown id passes through", channel: "555", wantID: "555", wantName: "555"},
		{name: "unknown name", channel: "nope", wantErr: true},
		{name: "empty", channel: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, _ := bufferLogger()
			id, name, errResult := ResolveChannel(r, logger, "tool", tt.channel, nil, time.Now())
			if tt.wantErr {
				if errResult == nil {
					t.Fatal("ResolveChannel() errResult = nil, want error")
				}
				return
			}
			if errResult != nil {
				t.Fatalf("ResolveChannel() errResult = %q", testutil.ExtractText(t, errResult))
			}
			if id != tt.wantID || name != tt.wantName {
				t.Errorf("ResolveChannel(%q) = %q, %q; want %q, %q", tt.channel, id, name, tt.wantID, tt.wantName)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// RegisterAll / Names
// ---------------------------------------------------------------------------

func Test_RegisterAll_CountsEveryGroup(t *testing.T) {
	t.Parallel()

	noop := func(name string) Registration {
		return Registration{
			Tool:    mcp.NewTool(name, mcp.WithDescription(name)),
			Handler: func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) { return nil, nil },
		}
	}
	a := []Registration{noop("a1"), noop("a2")}
	b := []Registration{noop("b1")}

	s := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(false))
	if n := RegisterAll(s, a, nil, b); n != 3 {
		t.Errorf("RegisterAll() = %d, want 3", n)
	}
	got := strings.Join(Names(a, b), ",")
	if got != "a1,a2,b1" {
		t.Errorf("Names() = %q, want a1,a2,b1", got)
	}
}
