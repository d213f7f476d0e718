// scenario defines the toml file format describing inputs to run through the
// capture demonstrator.
//
// See [Config] for the format of the toml file itself.
package scenario

import (
	"io"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/goose-lang/loopcapture/capture"
)

// DefaultNull stands for the absence marker when a file doesn't set null.
const DefaultNull = "None"

// Config defines the format of the toml files.
type Config struct {
	// Input elements equal to this string become nil. Defaults to "None" when
	// the key is absent.
	Null string `toml:"null"`
	// Scenarios in the order they run.
	Scenarios []Scenario `toml:"scenario"`
}

// Scenario is one call of the demonstrator.
type Scenario struct {
	Name string `toml:"name"`
	// Elements may mix types; toml integers decode as int64.
	Inputs []interface{} `toml:"inputs"`
	// One of the capture.Mode names. Defaults to "shared".
	Mode string `toml:"mode"`
}

var ErrNoScenarios = errors.New("no scenarios")

// Default is used when there is no scenario file: [1, 2, 2] in shared mode.
func Default() Config {
	return Config{
		Null: DefaultNull,
		Scenarios: []Scenario{
			{Name: "default", Inputs: []interface{}{1, 2, 2}},
		},
	}
}

// Printers converts s.Inputs into demonstrator input, mapping null to nil.
func (s Scenario) Printers(null string) []capture.Printer {
	printers := make([]capture.Printer, len(s.Inputs))
	for i, in := range s.Inputs {
		if str, ok := in.(string); ok && str == null {
			continue
		}
		printers[i] = in
	}
	return printers
}

// Validate checks names are present and unique and every mode is known.
func (c Config) Validate() error {
	if len(c.Scenarios) == 0 {
		return ErrNoScenarios
	}
	seen := make(map[string]bool)
	for i, s := range c.Scenarios {
		if s.Name == "" {
			return errors.Errorf("scenario %d has no name", i)
		}
		if seen[s.Name] {
			return errors.Errorf("duplicate scenario %s", s.Name)
		}
		seen[s.Name] = true
		if _, err := capture.ParseMode(s.Mode); err != nil {
			return errors.Wrapf(err, "scenario %s", s.Name)
		}
	}
	return nil
}

// ParseConfig decodes and validates a scenario file. A file without a null key
// uses DefaultNull; an explicit null = "" makes empty strings absent.
func ParseConfig(raw []byte) (Config, error) {
	var f struct {
		Null      *string    `toml:"null"`
		Scenarios []Scenario `toml:"scenario"`
	}
	if err := toml.Unmarshal(raw, &f); err != nil {
		return Config{}, err
	}
	c := Config{Null: DefaultNull, Scenarios: f.Scenarios}
	if f.Null != nil {
		c.Null = *f.Null
	}
	return c, c.Validate()
}

// ReadConfig reads a scenario file, falling back to Default if it does not
// exist.
func ReadConfig(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	} else if err != nil {
		return Config{}, errors.Wrapf(err, "scenario file %s could not be read", path)
	}
	c, err := ParseConfig(contents)
	if err != nil {
		return Config{}, errors.Errorf("could not parse scenario file %s:\n%v", path, err)
	}
	return c, nil
}

// Run builds the actions for s, writing eager output to w, then invokes them.
func (c Config) Run(w io.Writer, s Scenario) error {
	mode, err := capture.ParseMode(s.Mode)
	if err != nil {
		return errors.Wrapf(err, "scenario %s", s.Name)
	}
	capture.Invoke(capture.Build(w, s.Printers(c.Null), mode))
	return nil
}
