// Package tools provides shared helper utilities for MCP tool handlers.
package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jamesprial/discordmock/apierr"
	"github.com/jamesprial/discordmock/internal/resolve"
)

// JSONResult marshals v to indented JSON and returns an mcp.CallToolResult.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error marshaling result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// ErrorResult returns an mcp.CallToolResult that describes an error condition.
func ErrorResult(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("error: %s", msg))
}

// DefaultLogger returns l if non-nil, otherwise slog.Default().
func DefaultLogger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// LogCall records one finished tool invocation at info level.
func LogCall(logger *slog.Logger, toolName string, params map[string]any, result string, start time.Time) {
	logger.Info("tool call",
		"tool", toolName,
		"params", params,
		"result", result,
		"duration", time.Since(start),
	)
}

// ErrorCallResult logs a failed invocation and turns err into an error
// result. Simulated Discord errors are logged with their code and status.
func ErrorCallResult(logger *slog.Logger, toolName string, params map[string]any, err error, start time.Time) *mcp.CallToolResult {
	attrs := []any{
		"tool", toolName,
		"params", params,
		"error", err,
		"duration", time.Since(start),
	}
	if e, ok := apierr.As(err); ok {
		attrs = append(attrs, "code", e.Code, "status", e.Status)
	}
	logger.Warn("tool call failed", attrs...)
	return ErrorResult(err.Error())
}

// ResolveChannel turns a channel name or ID into an ID and display name. On
// failure errResult is non-nil and should be returned to the caller as is.
func ResolveChannel(
	r resolve.ChannelResolver,
	logger *slog.Logger,
	toolName string,
	channel string,
	params map[string]any,
	start time.Time,
) (channelID string, channelName string, errResult *mcp.CallToolResult) {
	channelID, err := resolve.ResolveChannelParam(r, channel)
	if err != nil {
		return "", "", ErrorCallResult(logger, toolName, params, err, start)
	}
	logger.Debug("resolved channel", "input", channel, "channelID", channelID)
	return channelID, r.ChannelName(channelID), nil
}
