// Package config provides configuration management for specrun.
//
// Configuration is loaded from several YAML layers and merged in order, with
// later layers overriding earlier ones:
//
//  1. Defaults compiled into the binary
//  2. User configuration (~/.config/specrun/config.yaml)
//  3. Project configuration (./.specrun/config.yaml)
//  4. The file named by --config, when given
//
// Command-line flags override the merged result.
//
// # Configuration Structure
//
//	globalSettings:
//	  logLevel: info
//	run:
//	  mode: parallel
//	  workers: 8
//	  failFast: true
//	  testTimeout: 30s
//	output:
//	  format: text
//	  verbose: false
//	  reportDir: ./reports
//	  metricsFile: ./specrun.prom
//	filter:
//	  suites: ["api/*"]
//	  includeTags: ["unit"]
//	  excludeTags: ["slow"]
//
// Scalar fields override the lower layer when set. Filter lists replace the
// lower layer's list.
package config
