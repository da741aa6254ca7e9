package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/lowvis/magnifier/internal/engine"
	"github.com/lowvis/magnifier/internal/version"
)

// controlServer exposes the running magnifier over MCP so assistive
// scripts and agents can drive zoom, tracking mode and badges without
// touching the machine's input.
type controlServer struct {
	ctl engine.Controller
	mcp *mcpserver.MCPServer
}

func newControlServer(ctl engine.Controller) *controlServer {
	s := &controlServer{ctl: ctl}
	s.mcp = mcpserver.NewMCPServer("magnifier", version.Version)
	s.registerTools()
	return s
}

func (s *controlServer) serve(transport string, port int) error {
	switch transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

func (s *controlServer) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("status",
			mcp.WithDescription("Get the current magnifier state: mode, zoom, monitors, recovery flag"),
		),
		s.handleStatus,
	)

	s.mcp.AddTool(
		mcp.NewTool("set_zoom",
			mcp.WithDescription("Set the zoom factor (clamped to 1.0-12.0)"),
			mcp.WithNumber("zoom", mcp.Description("Absolute zoom factor"), mcp.Required()),
		),
		s.handleSetZoom,
	)

	s.mcp.AddTool(
		mcp.NewTool("set_mode",
			mcp.WithDescription("Set the tracking mode: auto, caret, mouse, focus or manual"),
			mcp.WithString("mode", mcp.Description("Tracking mode name"), mcp.Required()),
		),
		s.handleSetMode,
	)

	s.mcp.AddTool(
		mcp.NewTool("cycle_mode",
			mcp.WithDescription("Advance to the next tracking mode in the cycle"),
		),
		s.handleCycleMode,
	)

	s.mcp.AddTool(
		mcp.NewTool("toggle_invert",
			mcp.WithDescription("Toggle color inversion of the magnified view"),
		),
		s.handleToggleInvert,
	)

	s.mcp.AddTool(
		mcp.NewTool("show_badge",
			mcp.WithDescription("Show a short text badge in the magnified view"),
			mcp.WithString("text", mcp.Description("Badge text"), mcp.Required()),
			mcp.WithNumber("duration", mcp.Description("Display duration in milliseconds (default 2000)")),
		),
		s.handleShowBadge,
	)

	s.mcp.AddTool(
		mcp.NewTool("show_time",
			mcp.WithDescription("Show the current time as a badge"),
		),
		s.handleShowTime,
	)

	s.mcp.AddTool(
		mcp.NewTool("restore_center",
			mcp.WithDescription("Jump back to the viewport center saved before the last large move"),
		),
		s.handleRestoreCenter,
	)

	s.mcp.AddTool(
		mcp.NewTool("center_caret",
			mcp.WithDescription("Recenter the viewport on the last known caret position"),
		),
		s.handleCenterCaret,
	)

	s.mcp.AddTool(
		mcp.NewTool("swap_monitors",
			mcp.WithDescription("Exchange the source and destination monitors"),
		),
		s.handleSwapMonitors,
	)
}

func (s *controlServer) statusText() string {
	b, err := yaml.Marshal(s.ctl.Status())
	if err != nil {
		return fmt.Sprintf("status marshal failed: %v", err)
	}
	return string(b)
}

func (s *controlServer) handleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.statusText()), nil
}

func (s *controlServer) handleSetZoom(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	zoom, ok := floatParam(params, "zoom")
	if !ok {
		return mcp.NewToolResultError("zoom parameter is required"), nil
	}
	s.ctl.SetZoom(float32(zoom))
	return mcp.NewToolResultText(fmt.Sprintf("zoom set to %.2f", zoom)), nil
}

func (s *controlServer) handleSetMode(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	mode, _ := params["mode"].(string)
	if mode == "" {
		return mcp.NewToolResultError("mode parameter is required"), nil
	}
	if err := s.ctl.SetMode(mode); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("mode set to " + mode), nil
}

func (s *controlServer) handleCycleMode(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ctl.CycleMode()
	return mcp.NewToolResultText(s.statusText()), nil
}

func (s *controlServer) handleToggleInvert(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ctl.ToggleInvert()
	return mcp.NewToolResultText("invert toggled"), nil
}

func (s *controlServer) handleShowBadge(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	text, _ := params["text"].(string)
	if text == "" {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	durationMs, _ := floatParam(params, "duration")
	s.ctl.ShowBadge(text, time.Duration(durationMs)*time.Millisecond)
	return mcp.NewToolResultText("badge shown"), nil
}

func (s *controlServer) handleShowTime(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ctl.ShowTime()
	return mcp.NewToolResultText("time badge shown"), nil
}

func (s *controlServer) handleRestoreCenter(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ctl.RestoreCenter()
	return mcp.NewToolResultText("previous center restored"), nil
}

func (s *controlServer) handleCenterCaret(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ctl.CenterOnCaret()
	return mcp.NewToolResultText("centered on caret"), nil
}

func (s *controlServer) handleSwapMonitors(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ctl.SwapMonitors()
	return mcp.NewToolResultText(s.statusText()), nil
}

// floatParam reads a numeric MCP argument, accepting the float64 form
// JSON decoding produces.
func floatParam(params map[string]interface{}, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
