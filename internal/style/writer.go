package style

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Asset names of generated files.
const (
	TailwindConfigFile = "tailwind.config.js"
	ThemeCSSFile       = "theme.css"
)

// WriteFile renders into path atomically: readers see the old file or the
// complete new one, never a partial write.
func WriteFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			slog.Debug("Cleanup of pending asset failed", "path", path, "error", err)
		}
	}()

	if err := render(pending); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Generate writes tailwind.config.js and theme.css into dir.
func Generate(cfg *StyleConfig, dir string) error {
	if err := WriteFile(filepath.Join(dir, TailwindConfigFile), cfg.RenderTailwind); err != nil {
		return err
	}
	return WriteFile(filepath.Join(dir, ThemeCSSFile), cfg.RenderCSSVariables)
}
