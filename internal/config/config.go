package config

import (
	"fmt"
	"strings"
)

// Model hyperparameters, fixed for this encoder. All arithmetic in the core
// assumes these exact shapes; they are compile-time constants, not tunables.
const (
	SeqLen    = 16 // S: tokens per input grid
	ModelDim  = 32 // D: model width
	HiddenDim = 64 // FFN: feed-forward hidden width
	NumClass  = 6  // classifier output classes
)

// Selection picks, per hot operation, whether the accelerated provider is
// used instead of the portable reference. Fixed for the lifetime of a run.
type Selection struct {
	HWDot    bool // 4-lane dot-product
	HWExpLUT bool // exponential lookup
	HWMatVec bool // matrix-vector multiply
}

// Baseline is the all-software selection every other selection is verified against.
var Baseline = Selection{}

// Mode returns the banner name for this selection. Six combinations carry the
// names the firmware builds used; the remaining two compose their parts.
func (s Selection) Mode() string {
	switch s {
	case Selection{}:
		return "BASELINE"
	case Selection{HWDot: true}:
		return "DOT8"
	case Selection{HWExpLUT: true}:
		return "LUT"
	case Selection{HWMatVec: true}:
		return "GEMV"
	case Selection{HWDot: true, HWExpLUT: true}:
		return "DOT8 + LUT"
	case Selection{HWDot: true, HWExpLUT: true, HWMatVec: true}:
		return "DOT8 + LUT + GEMV"
	}
	parts := []string{}
	if s.HWDot {
		parts = append(parts, "DOT8")
	}
	if s.HWExpLUT {
		parts = append(parts, "LUT")
	}
	if s.HWMatVec {
		parts = append(parts, "GEMV")
	}
	return strings.Join(parts, " + ")
}

// ParseMode resolves a mode name (case-insensitive, '+' separated) to a Selection.
func ParseMode(name string) (Selection, error) {
	var s Selection
	trimmed := strings.TrimSpace(strings.ToUpper(name))
	if trimmed == "" || trimmed == "BASELINE" {
		return s, nil
	}
	for _, part := range strings.Split(trimmed, "+") {
		switch strings.TrimSpace(part) {
		case "DOT8":
			s.HWDot = true
		case "LUT":
			s.HWExpLUT = true
		case "GEMV":
			s.HWMatVec = true
		default:
			return Selection{}, fmt.Errorf("unknown mode component %q in %q", part, name)
		}
	}
	return s, nil
}

// AllSelections enumerates the 8 backend combinations, baseline first.
func AllSelections() []Selection {
	out := make([]Selection, 0, 8)
	for i := 0; i < 8; i++ {
		out = append(out, Selection{
			HWDot:    i&1 != 0,
			HWExpLUT: i&2 != 0,
			HWMatVec: i&4 != 0,
		})
	}
	return out
}

// Config carries run-level settings for the CLIs.
type Config struct {
	Selection Selection

	WeightsPath string // empty: compiled-in placeholder weights
	SamplesPath string // empty: builtin deterministic sample set

	LogLevel  string
	LogFormat string

	MetricsAddr string // empty: metrics endpoint disabled
}

func (c *Config) Validate() error {
	switch strings.ToUpper(c.LogLevel) {
	case "", "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format: %q (must be console or json)", c.LogFormat)
	}
	return nil
}

func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "console",
	}
}
