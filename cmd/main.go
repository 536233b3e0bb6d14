package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"condcomp/internal/builder"
	"condcomp/internal/config"
)

const version = "0.3.1"

func main() {
	var cfg config.Config
	var valueFlags multiFlag

	flag.StringVar(&cfg.InputDir, "i", "", "source directory")
	flag.StringVar(&cfg.InputDir, "in", "", "source directory")
	flag.StringVar(&cfg.OutputDir, "o", "", "output directory for rewritten files")
	flag.StringVar(&cfg.OutputDir, "out", "", "output directory for rewritten files")
	flag.BoolVar(&cfg.Watch, "w", false, "keep watching the input directory")
	flag.BoolVar(&cfg.Watch, "watch", false, "keep watching the input directory")
	flag.BoolVar(&cfg.Verbose, "v", false, "extra console messages")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "extra console messages")
	flag.BoolVar(&cfg.Serve, "s", false, "start preview server and enable watch mode")
	flag.BoolVar(&cfg.Serve, "serve", false, "start preview server and enable watch mode")
	flag.IntVar(&cfg.Port, "p", 0, "port for preview server (default 8080)")
	flag.IntVar(&cfg.Port, "port", 0, "port for preview server (default 8080)")
	flag.BoolVar(&cfg.WriteMaps, "maps", false, "write a .map JSON file next to each output")
	flag.Var(&valueFlags, "D", "define a compile-time variable as NAME=VALUE (repeatable)")

	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "show version")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Rewrite sources with comment-embedded conditional-compilation directives:\n\n")
		fmt.Fprintf(os.Stderr, "  // #if __DEBUG\n  // #elif, #else, #endif, #ifset, #ifnset\n  // #set __NAME expr, #unset __NAME, #error message\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s -i source_folder -o destination_folder [-w] [-v] [-s [-p port]]\n\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("condcomp %s\n", version)
		return
	}

	projectDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("Cannot get current working directory: %v", err)
	}
	projectDir, err = filepath.Abs(projectDir)
	if err != nil {
		log.Fatalf("Cannot get absolute project directory: %v", err)
	}

	flagCfg := cfg
	cfg, err = config.LoadConfigFromFile(projectDir)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Command line flags override config file values.
	if flagCfg.InputDir != "" {
		cfg.InputDir = flagCfg.InputDir
	}
	if flagCfg.OutputDir != "" {
		cfg.OutputDir = flagCfg.OutputDir
	}
	if flagCfg.Watch {
		cfg.Watch = true
	}
	if flagCfg.Verbose {
		cfg.Verbose = true
	}
	if flagCfg.Serve {
		cfg.Serve = true
	}
	if flagCfg.Port != 0 {
		cfg.Port = flagCfg.Port
	}
	if flagCfg.WriteMaps {
		cfg.WriteMaps = true
	}
	for _, def := range valueFlags {
		name, value := splitDefine(def)
		if cfg.Values == nil {
			cfg.Values = make(map[string]interface{})
		}
		cfg.Values[name] = value
	}

	// Serve implies watch.
	if cfg.Serve {
		cfg.Watch = true
	}

	absInputDir := cfg.GetAbsoluteInputDir()
	if _, err := os.Stat(absInputDir); os.IsNotExist(err) {
		log.Fatalf("Input directory %s does not exist", absInputDir)
	}
	if err := os.MkdirAll(cfg.GetAbsoluteOutputDir(), 0755); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}

	b := builder.New(cfg)
	if err := b.Run(); err != nil {
		log.Fatalf("Build failed: %v", err)
	}
}

// multiFlag collects repeated -D flags.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

// splitDefine parses NAME=VALUE; a bare NAME defines true. Values that look
// like booleans or numbers keep their type, everything else stays a string.
func splitDefine(def string) (string, interface{}) {
	name, raw, ok := strings.Cut(def, "=")
	if !ok {
		return def, true
	}
	switch raw {
	case "true":
		return name, true
	case "false":
		return name, false
	case "null":
		return name, nil
	}
	var f float64
	if _, err := fmt.Sscanf(raw, "%g", &f); err == nil && fmt.Sprintf("%g", f) == raw {
		return name, f
	}
	return name, raw
}
