package config

import (
	"errors"
	"fmt"

	"specrun/internal/runner"
	"specrun/pkg/logging"
)

// Validate checks the merged configuration and reports every problem found.
func (c SpecrunConfig) Validate() error {
	var errs []error

	if c.GlobalSettings.LogLevel != "" {
		if _, err := logging.ParseLevel(c.GlobalSettings.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}
	switch c.Output.Format {
	case "", FormatText, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Output.Format))
	}
	if c.Output.Width < 0 {
		errs = append(errs, fmt.Errorf("output width must not be negative, got %d", c.Output.Width))
	}
	if c.Run.RunTimeout < 0 {
		errs = append(errs, fmt.Errorf("run timeout must not be negative, got %v", c.Run.RunTimeout))
	}

	if rc, err := c.runnerConfig(); err != nil {
		errs = append(errs, err)
	} else if err := rc.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// RunnerConfig converts the run and filter settings into a runner.Config.
func (c SpecrunConfig) RunnerConfig() (runner.Config, error) {
	rc, err := c.runnerConfig()
	if err != nil {
		return runner.Config{}, err
	}
	return rc, rc.Validate()
}

func (c SpecrunConfig) runnerConfig() (runner.Config, error) {
	mode, err := runner.ParseMode(c.Run.Mode)
	if err != nil {
		return runner.Config{}, err
	}
	return runner.Config{
		Mode:        mode,
		Workers:     c.Run.Workers,
		FailFast:    Bool(c.Run.FailFast),
		TestTimeout: c.Run.TestTimeout,
		Filter: runner.Filter{
			Suites:      c.Filter.Suites,
			Names:       c.Filter.Names,
			IncludeTags: c.Filter.IncludeTags,
			ExcludeTags: c.Filter.ExcludeTags,
		},
	}, nil
}
