package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"condcomp/internal/parser"
)

// ConfigFileName is looked up in the project directory.
const ConfigFileName = "condcomp.yaml"

// Config holds all configuration options for condcomp. File values are
// overridden by command line flags in cmd/main.go.
type Config struct {
	ProjectDir string `yaml:"-"` // directory the config was loaded from

	InputDir  string `yaml:"input"`
	OutputDir string `yaml:"output"`
	Watch     bool   `yaml:"watch"`
	Verbose   bool   `yaml:"verbose"`
	Serve     bool   `yaml:"serve"` // enable preview server and watch mode
	Port      int    `yaml:"port"`  // port for preview server (default 8080)
	WriteMaps bool   `yaml:"maps"`  // write a .map JSON next to each output

	// Values seeds the compile-time variable environment.
	Values map[string]interface{} `yaml:"values"`
	// Comments lists retention selectors for non-directive comments.
	Comments []string `yaml:"comments"`
	// Extensions adds or overrides comment syntaxes per file extension.
	Extensions map[string]SyntaxConfig `yaml:"extensions"`
}

// SyntaxConfig is the YAML shape of a comment syntax descriptor.
type SyntaxConfig struct {
	Line  []string   `yaml:"line"`
	Block [][]string `yaml:"block"`
}

// Default returns the configuration used when no file is present.
func Default(projectDir string) Config {
	return Config{
		ProjectDir: projectDir,
		InputDir:   "src",
		OutputDir:  "build",
		Port:       8080,
	}
}

// LoadConfigFromFile reads condcomp.yaml from projectDir, returning defaults
// when the file does not exist.
func LoadConfigFromFile(projectDir string) (Config, error) {
	cfg := Default(projectDir)

	data, err := os.ReadFile(filepath.Join(projectDir, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("cannot read %s: %w", ConfigFileName, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse %s: %w", ConfigFileName, err)
	}
	cfg.ProjectDir = projectDir
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	return cfg, nil
}

// Syntaxes converts the extensions section into parser descriptors.
func (c *Config) Syntaxes() (map[string]parser.Syntax, error) {
	if len(c.Extensions) == 0 {
		return nil, nil
	}
	out := make(map[string]parser.Syntax, len(c.Extensions))
	for ext, sc := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		syn := parser.Syntax{Line: sc.Line}
		for _, pair := range sc.Block {
			if len(pair) != 2 {
				return nil, fmt.Errorf("extension %s: block delimiters must be [open, close] pairs", ext)
			}
			syn.Block = append(syn.Block, [2]string{pair[0], pair[1]})
		}
		if len(syn.Line) == 0 && len(syn.Block) == 0 {
			return nil, fmt.Errorf("extension %s: no comment delimiters configured", ext)
		}
		out[strings.ToLower(ext)] = syn
	}
	return out, nil
}

// GetAbsoluteInputDir resolves the input directory against the project dir.
func (c *Config) GetAbsoluteInputDir() string {
	return c.resolve(c.InputDir)
}

// GetAbsoluteOutputDir resolves the output directory against the project dir.
func (c *Config) GetAbsoluteOutputDir() string {
	return c.resolve(c.OutputDir)
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.ProjectDir, dir)
}
