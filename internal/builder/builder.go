// Package builder discovers source files, runs them through the preprocessor
// instance it owns and writes the rewritten output tree. It also hosts the
// optional watch and preview-serve modes.
package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"condcomp/internal/config"
	"condcomp/internal/processor"
	"condcomp/internal/watcher"
	"condcomp/internal/web"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/skratchdot/open-golang/open"
)

// Builder runs complete builds of one project. One preprocessor instance is
// shared by every file in a build, so directive side effects carry across
// files in walk order. Rebuilds triggered by watch mode get a fresh instance
// so stale #set state from a previous run cannot leak in.
type Builder struct {
	config config.Config
	stats  web.Status
}

// New creates a Builder for cfg.
func New(cfg config.Config) *Builder {
	return &Builder{config: cfg}
}

func (b *Builder) newPreprocessor() (*processor.Preprocessor, error) {
	extensions, err := b.config.Syntaxes()
	if err != nil {
		return nil, err
	}
	return processor.New(processor.Options{
		Values:     b.config.Values,
		Comments:   b.config.Comments,
		Extensions: extensions,
		Root:       b.config.GetAbsoluteInputDir(),
	})
}

// Build processes the whole input directory once. Files whose extension has a
// comment syntax are transformed; everything else is copied through. A
// failing file is reported and skipped, the walk continues.
func (b *Builder) Build() error {
	pre, err := b.newPreprocessor()
	if err != nil {
		return err
	}

	inputDir := b.config.GetAbsoluteInputDir()
	outputDir := b.config.GetAbsoluteOutputDir()

	processed, copied, failed := 0, 0, 0
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)

	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != inputDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}

		if !pre.Recognizes(filepath.Ext(path)) {
			if err := copyFile(path, outPath); err != nil {
				return err
			}
			copied++
			return nil
		}

		if err := b.transformFile(pre, path, outPath); err != nil {
			failed++
			fmt.Printf("%s %v\n", red.Sprint("error:"), err)
			return nil
		}
		processed++
		if b.config.Verbose {
			fmt.Printf("  %s %s\n", green.Sprint("wrote"), rel)
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.stats = web.Status{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Processed: processed,
		Copied:    copied,
		Failed:    failed,
		LastBuild: time.Now(),
	}

	fmt.Printf("Build complete: %d processed, %d copied", processed, copied)
	if failed > 0 {
		fmt.Printf(", %s", red.Sprintf("%d failed", failed))
	}
	fmt.Println()

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to process", failed)
	}
	return nil
}

func (b *Builder) transformFile(pre *processor.Preprocessor, path, outPath string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	result, err := pre.Transform(string(source), path)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, []byte(result.Code), 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", outPath, err)
	}

	if b.config.WriteMaps {
		data, err := json.MarshalIndent(result.Map, "", "  ")
		if err != nil {
			return fmt.Errorf("cannot encode source map for %s: %w", outPath, err)
		}
		if err := os.WriteFile(outPath+".map", data, 0644); err != nil {
			return fmt.Errorf("cannot write %s.map: %w", outPath, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", dst, err)
	}
	return nil
}

// Run performs the initial build and then enters watch and/or serve mode when
// configured. Without either it behaves exactly like Build.
func (b *Builder) Run() error {
	buildErr := b.Build()
	if !b.config.Watch && !b.config.Serve {
		return buildErr
	}
	if buildErr != nil {
		log.Printf("Initial build reported errors: %v", buildErr)
	}

	manager := watcher.NewManager(func() {
		if err := b.Build(); err != nil {
			log.Printf("Rebuild error: %v", err)
		}
	})
	if err := manager.Start(b.config.GetAbsoluteInputDir()); err != nil {
		return fmt.Errorf("cannot start file watcher: %w", err)
	}
	defer manager.Stop()

	if !b.config.Serve {
		fmt.Printf("%s\n", color.New(color.FgYellow).Sprint("Watching for changes, press Ctrl+C to stop"))
		waitForSignal()
		return nil
	}
	return b.serve()
}

// serve hosts the output directory with a status endpoint until interrupted.
func (b *Builder) serve() error {
	handler := web.NewHandler(b.config.GetAbsoluteOutputDir(), func() web.Status {
		return b.stats
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", b.config.Port),
		Handler: handler,
	}

	go func() {
		cyan := color.New(color.FgCyan)
		serverURL := fmt.Sprintf("http://127.0.0.1:%d", b.config.Port)
		fmt.Printf("Preview server at %s\n", cyan.Sprint(serverURL))

		if err := clipboard.WriteAll(serverURL); err == nil {
			fmt.Println("URL copied to clipboard")
		}
		if err := open.Run(serverURL); err != nil {
			fmt.Printf("Open %s in your browser\n", cyan.Sprint(serverURL))
		}

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	fmt.Printf("%s\n", color.New(color.FgYellow).Sprint("Press Ctrl+C to stop watching and serving"))
	waitForSignal()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	return nil
}

func waitForSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	fmt.Println()
}
