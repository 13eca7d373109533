// Package mcpserver exposes the registered suites over the Model Context
// Protocol so that agents can list and run tests.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"specrun/internal/engine"
	"specrun/internal/reporting"
	"specrun/internal/runner"
	"specrun/pkg/logging"
)

// SuiteSource builds fresh suites for every request.
type SuiteSource func() []*engine.Suite

// Server serves the test tools.
type Server struct {
	source  SuiteSource
	base    runner.Config
	version string

	mcpServer *server.MCPServer

	mu         sync.Mutex
	lastResult *RunResult
}

// RunResult is the answer of the run_tests tool.
type RunResult struct {
	Succeeded bool                   `json:"succeeded"`
	Report    reporting.RunReport    `json:"report"`
	Failures  []reporting.TestRecord `json:"failures,omitempty"`
}

// SuiteInfo describes one suite in list_tests.
type SuiteInfo struct {
	Name  string     `json:"name"`
	Style string     `json:"style"`
	Error string     `json:"error,omitempty"`
	Tests []TestInfo `json:"tests"`
}

// TestInfo describes one test in list_tests.
type TestInfo struct {
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

// New creates a Server. base provides the defaults of every run.
func New(source SuiteSource, base runner.Config, version string) *Server {
	s := &Server{source: source, base: base, version: version}

	s.mcpServer = server.NewMCPServer(
		"specrun",
		version,
		server.WithToolCapabilities(false),
	)
	s.mcpServer.AddTools(s.tools()...)
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves requests on stdin and stdout until the input closes.
func (s *Server) ServeStdio() error {
	logging.Info("MCPServer", "Serving specrun tools on stdio")
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("list_tests",
				mcp.WithDescription("List registered suites and their tests"),
				mcp.WithString("suites",
					mcp.Description("Comma-separated glob patterns selecting suites"),
				),
			),
			Handler: s.handleListTests,
		},
		{
			Tool: mcp.NewTool("run_tests",
				mcp.WithDescription("Run the selected tests and return the run report"),
				mcp.WithString("suites",
					mcp.Description("Comma-separated glob patterns selecting suites"),
				),
				mcp.WithString("names",
					mcp.Description("Comma-separated glob patterns matched against test names"),
				),
				mcp.WithString("test",
					mcp.Description("Exact name of a single test to run"),
				),
				mcp.WithString("include_tags",
					mcp.Description("Comma-separated tags; only tests carrying one of them run"),
				),
				mcp.WithString("exclude_tags",
					mcp.Description("Comma-separated tags; tests carrying any of them are skipped"),
				),
				mcp.WithBoolean("parallel",
					mcp.Description("Run tests on a worker pool"),
				),
				mcp.WithBoolean("fail_fast",
					mcp.Description("Stop after the first failed test"),
				),
				mcp.WithNumber("timeout_seconds",
					mcp.Description("Time limit for the whole run"),
				),
			),
			Handler: s.handleRunTests,
		},
		{
			Tool: mcp.NewTool("get_last_result",
				mcp.WithDescription("Return the result of the most recent run_tests call"),
			),
			Handler: s.handleGetLastResult,
		},
	}
}

func (s *Server) handleListTests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	filter := runner.Filter{Suites: splitList(args["suites"])}
	if err := filter.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var infos []SuiteInfo
	for _, suite := range s.source() {
		if !filter.MatchSuite(suite.Name()) {
			continue
		}
		infos = append(infos, describeSuite(suite))
	}
	if len(infos) == 0 {
		return mcp.NewToolResultText("No suites found"), nil
	}
	return jsonResult(infos)
}

func describeSuite(suite *engine.Suite) SuiteInfo {
	info := SuiteInfo{Name: suite.Name(), Style: suite.Style().String(), Tests: []TestInfo{}}
	if err := suite.Err(); err != nil {
		info.Error = err.Error()
	}
	e := suite.Engine()
	for _, leaf := range e.Trunk().Leaves() {
		info.Tests = append(info.Tests, TestInfo{Name: e.ResolveName(leaf), Tags: leaf.Tags()})
	}
	return info
}

func (s *Server) handleRunTests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	cfg := s.base
	cfg.RunID = ""

	cfg.Filter = runner.Filter{
		Suites:      splitList(args["suites"]),
		Names:       splitList(args["names"]),
		IncludeTags: splitList(args["include_tags"]),
		ExcludeTags: splitList(args["exclude_tags"]),
	}
	if test, ok := args["test"].(string); ok {
		cfg.Filter.TestName = test
	}
	if parallel, ok := args["parallel"].(bool); ok {
		cfg.Mode = runner.Sequential
		if parallel {
			cfg.Mode = runner.Parallel
		}
	}
	if failFast, ok := args["fail_fast"].(bool); ok {
		cfg.FailFast = failFast
	}
	if err := cfg.Validate(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid run parameters: %v", err)), nil
	}

	if timeout, ok := args["timeout_seconds"].(float64); ok {
		if timeout <= 0 {
			return mcp.NewToolResultError("timeout_seconds must be positive"), nil
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout*float64(time.Second)))
		defer cancel()
	}

	result := s.run(ctx, cfg)
	return jsonResult(result)
}

// run executes one run and remembers its result.
func (s *Server) run(ctx context.Context, cfg runner.Config) *RunResult {
	collector := reporting.NewReportCollector()
	status := runner.New(cfg).Run(ctx, s.source(), collector)
	logging.Info("MCPServer", "Run %s finished: %s", status.RunID, status.Summary)

	result := &RunResult{
		Succeeded: status.Succeeded(),
		Report:    collector.Report(),
		Failures:  collector.Failures(),
	}

	s.mu.Lock()
	s.lastResult = result
	s.mu.Unlock()
	return result
}

func (s *Server) handleGetLastResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	result := s.lastResult
	s.mu.Unlock()

	if result == nil {
		return mcp.NewToolResultText("No test run has been executed yet"), nil
	}
	return jsonResult(result)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// splitList accepts a comma-separated string or a JSON array of strings.
func splitList(v interface{}) []string {
	var raw []string
	switch val := v.(type) {
	case string:
		raw = strings.Split(val, ",")
	case []interface{}:
		for _, item := range val {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	var out []string
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
