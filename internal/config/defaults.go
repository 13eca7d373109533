package config

// Defaults used when no configuration layer sets a value.
const (
	DefaultLogLevel = "info"
	DefaultMode     = "sequential"
	DefaultFormat   = FormatText
	DefaultWidth    = 100
)

// GetDefaultConfig returns the configuration every layer is merged onto.
func GetDefaultConfig() SpecrunConfig {
	return SpecrunConfig{
		GlobalSettings: GlobalSettings{
			LogLevel:  DefaultLogLevel,
			LogFormat: "text",
		},
		Run: RunSettings{
			Mode:     DefaultMode,
			FailFast: BoolPtr(false),
		},
		Output: OutputSettings{
			Format:  DefaultFormat,
			Verbose: BoolPtr(false),
			NoColor: BoolPtr(false),
			Width:   DefaultWidth,
		},
	}
}
