package config

import (
	"time"
)

// SpecrunConfig is the top-level configuration structure for specrun.
type SpecrunConfig struct {
	GlobalSettings GlobalSettings `yaml:"globalSettings"`
	Run            RunSettings    `yaml:"run"`
	Output         OutputSettings `yaml:"output"`
	Filter         FilterSettings `yaml:"filter"`
}

// GlobalSettings holds settings that apply to every command.
type GlobalSettings struct {
	LogLevel  string `yaml:"logLevel,omitempty"`  // "debug", "info", "warn" or "error"
	LogFormat string `yaml:"logFormat,omitempty"` // "text" or "json"
}

// RunSettings controls how suites are executed.
type RunSettings struct {
	Mode        string        `yaml:"mode,omitempty"`        // "sequential" or "parallel"
	Workers     int           `yaml:"workers,omitempty"`     // Parallel worker pool size, 0 means GOMAXPROCS
	FailFast    *bool         `yaml:"failFast,omitempty"`    // Stop after the first failed test
	TestTimeout time.Duration `yaml:"testTimeout,omitempty"` // Default per-test time limit, e.g. "30s"
	RunTimeout  time.Duration `yaml:"runTimeout,omitempty"`  // Limit for the whole run
}

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// OutputSettings controls reporting.
type OutputSettings struct {
	Format      string `yaml:"format,omitempty"`      // FormatText or FormatJSON
	Verbose     *bool  `yaml:"verbose,omitempty"`     // Show informers of passing tests
	NoColor     *bool  `yaml:"noColor,omitempty"`     // Disable ANSI styling
	Width       int    `yaml:"width,omitempty"`       // Console width used to truncate messages
	ReportDir   string `yaml:"reportDir,omitempty"`   // Directory for the detailed JSON report
	MetricsFile string `yaml:"metricsFile,omitempty"` // Prometheus textfile written after the run
}

// FilterSettings selects suites and tests.
type FilterSettings struct {
	Suites      []string `yaml:"suites,omitempty"`
	Names       []string `yaml:"names,omitempty"`
	IncludeTags []string `yaml:"includeTags,omitempty"`
	ExcludeTags []string `yaml:"excludeTags,omitempty"`
}

// Bool dereferences an optional flag, treating nil as false.
func Bool(b *bool) bool {
	return b != nil && *b
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
