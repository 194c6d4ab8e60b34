package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Registration pairs a tool definition with its handler.
type Registration struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// RegisterAll adds every registration in groups to s.
func RegisterAll(s *server.MCPServer, groups ...[]Registration) int {
	n := 0
	for _, group := range groups {
		for _, reg := range group {
			s.AddTool(reg.Tool, reg.Handler)
			n++
		}
	}
	return n
}

// Names lists the tool names in groups, in order.
func Names(groups ...[]Registration) []string {
	var out []string
	for _, group := range groups {
		for _, reg := range group {
			out = append(out, reg.Tool.Name)
		}
	}
	return out
}

// Find returns the registration named name.
func Find(regs []Registration, name string) (Registration, bool) {
	for _, reg := range regs {
		if reg.Tool.Name == name {
			return reg, true
		}
	}
	return Registration{}, false
}
