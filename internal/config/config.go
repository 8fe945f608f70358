package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/philipparndt/gotoolpath/pkg/gcode"
	"github.com/philipparndt/gotoolpath/pkg/sequencer"
	"github.com/philipparndt/gotoolpath/pkg/toolpath"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when --config is not given
const DefaultFile = "gotoolpath.yaml"

// Config represents the optional gotoolpath.yaml configuration.
type Config struct {
	Serial    SerialConfig            `yaml:"serial"`
	Sequencer SequencerConfig         `yaml:"sequencer"`
	Journal   JournalConfig           `yaml:"journal"`
	Toolpath  ToolpathConfig          `yaml:"toolpath"`
	GCode     GCodeConfig             `yaml:"gcode"`
	Preview   PreviewConfig           `yaml:"preview"`
	Vars      map[string]string       `yaml:"vars,omitempty"`
	Macros    map[string][]StepConfig `yaml:"macros,omitempty"`
}

// SerialConfig describes the link to the machine
type SerialConfig struct {
	Port        string        `yaml:"port"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// SequencerConfig contains the macro runner settings and side files
type SequencerConfig struct {
	Grace        time.Duration `yaml:"grace"`
	Settle       time.Duration `yaml:"settle"`
	Timeout      time.Duration `yaml:"timeout"`
	TraceFile    string        `yaml:"trace_file,omitempty"`
	ResponseFile string        `yaml:"response_file,omitempty"`
	StatusFile   string        `yaml:"status_file,omitempty"`
}

// JournalConfig locates the run journal. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// ToolpathConfig contains the tool radius compensation defaults
type ToolpathConfig struct {
	Layer        string  `yaml:"layer,omitempty"`
	ToolDiameter float64 `yaml:"tool_diameter"`
	Side         string  `yaml:"side"`
}

// GCodeConfig mirrors gcode.Params
type GCodeConfig struct {
	SafeZ      float64  `yaml:"safe_z"`
	CutZ       float64  `yaml:"cut_z"`
	Feed       float64  `yaml:"feed"`
	PlungeFeed float64  `yaml:"plunge_feed"`
	Decimals   int      `yaml:"decimals"`
	Header     []string `yaml:"header"`
	Footer     []string `yaml:"footer"`
}

// PreviewConfig sizes the PNG preview
type PreviewConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Margin float64 `yaml:"margin"`
}

// StepConfig is one step of a configured macro
type StepConfig struct {
	Code    string        `yaml:"code"`
	Expect  string        `yaml:"expect,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Message string        `yaml:"message,omitempty"`
	Delay   time.Duration `yaml:"delay,omitempty"`
	Warning bool          `yaml:"warning,omitempty"`
	Quiet   bool          `yaml:"quiet,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	params := gcode.DefaultParams()
	return &Config{
		Serial: SerialConfig{
			Baud:        115200,
			ReadTimeout: 100 * time.Millisecond,
		},
		Sequencer: SequencerConfig{
			Grace:   5 * time.Second,
			Settle:  300 * time.Millisecond,
			Timeout: 10 * time.Second,
		},
		Journal: JournalConfig{Path: "gotoolpath.db"},
		Toolpath: ToolpathConfig{
			ToolDiameter: 3,
			Side:         toolpath.SideOutside.String(),
		},
		GCode: GCodeConfig{
			SafeZ:      params.SafeZ,
			CutZ:       params.CutZ,
			Feed:       params.Feed,
			PlungeFeed: params.PlungeFeed,
			Decimals:   params.Decimals,
			Header:     params.Header,
			Footer:     params.Footer,
		},
		Preview: PreviewConfig{
			Width:  800,
			Height: 600,
			Margin: 20,
		},
	}
}

// Load reads the configuration file. A missing file yields the defaults;
// values present in the file override them.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late, e.g. halfway
// through a macro
func (c *Config) Validate() error {
	var problems []string
	if c.Serial.Baud <= 0 {
		problems = append(problems, fmt.Sprintf("serial.baud must be positive, got %d", c.Serial.Baud))
	}
	if c.Toolpath.ToolDiameter < 0 {
		problems = append(problems, fmt.Sprintf("toolpath.tool_diameter must not be negative, got %g", c.Toolpath.ToolDiameter))
	}
	if _, err := toolpath.ParseSide(c.Toolpath.Side); err != nil {
		problems = append(problems, "toolpath.side: "+err.Error())
	}
	if c.GCode.Decimals < 0 || c.GCode.Decimals > 6 {
		problems = append(problems, fmt.Sprintf("gcode.decimals must be between 0 and 6, got %d", c.GCode.Decimals))
	}
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		problems = append(problems, fmt.Sprintf("preview size must be positive, got %dx%d", c.Preview.Width, c.Preview.Height))
	}
	for _, name := range c.MacroNames() {
		for i, step := range c.Macros[name] {
			if strings.TrimSpace(step.Code) == "" {
				problems = append(problems, fmt.Sprintf("macros.%s[%d]: empty code", name, i))
			}
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// MacroNames returns the configured macro names, sorted
func (c *Config) MacroNames() []string {
	names := make([]string, 0, len(c.Macros))
	for name := range c.Macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Steps resolves a macro into sequencer steps, expanding ${var}
// placeholders. Steps without a timeout use sequencer.timeout.
func (c *Config) Steps(macro string) ([]sequencer.Step, error) {
	configured, ok := c.Macros[macro]
	if !ok {
		return nil, fmt.Errorf("unknown macro %q (available: %s)", macro, strings.Join(c.MacroNames(), ", "))
	}

	steps := make([]sequencer.Step, 0, len(configured))
	for i, sc := range configured {
		code, err := sequencer.Expand(sc.Code, c.Vars)
		if err != nil {
			return nil, fmt.Errorf("macros.%s[%d]: %w", macro, i, err)
		}
		timeout := sc.Timeout
		if timeout == 0 {
			timeout = c.Sequencer.Timeout
		}
		steps = append(steps, sequencer.Step{
			Code:    code,
			Expect:  sc.Expect,
			Timeout: timeout,
			Message: sc.Message,
			Delay:   sc.Delay,
			Warning: sc.Warning,
			Quiet:   sc.Quiet,
		})
	}
	return steps, nil
}

// ToolpathOptions converts the toolpath section. Validate has already
// checked the side name.
func (c *Config) ToolpathOptions() (toolpath.Options, error) {
	side, err := toolpath.ParseSide(c.Toolpath.Side)
	if err != nil {
		return toolpath.Options{}, err
	}
	return toolpath.Options{ToolRadius: c.Toolpath.ToolDiameter / 2, Side: side}, nil
}

// GCodeParams converts the gcode section
func (c *Config) GCodeParams() gcode.Params {
	return gcode.Params{
		SafeZ:      c.GCode.SafeZ,
		CutZ:       c.GCode.CutZ,
		Feed:       c.GCode.Feed,
		PlungeFeed: c.GCode.PlungeFeed,
		Decimals:   c.GCode.Decimals,
		Header:     c.GCode.Header,
		Footer:     c.GCode.Footer,
	}
}
