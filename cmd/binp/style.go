package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pscheid92/binp/internal/highlight"
	"github.com/pscheid92/binp/internal/style"
)

type styleOptions struct {
	config string
	output string
}

func (o *styleOptions) load() (*style.StyleConfig, error) {
	return style.Load(o.config)
}

// emit writes to --output atomically when set, to stdout otherwise.
func (o *styleOptions) emit(cmd *cobra.Command, render func(io.Writer) error) error {
	if o.output == "" {
		return render(cmd.OutOrStdout())
	}
	if err := style.WriteFile(o.output, render); err != nil {
		return err
	}
	_, err := fmt.Fprintln(cmd.ErrOrStderr(), "wrote", o.output)
	return err
}

func newStyleCmd() *cobra.Command {
	opts := &styleOptions{}

	cmd := &cobra.Command{
		Use:   "style",
		Short: "Validate and render the style configuration",
	}
	cmd.PersistentFlags().StringVarP(&opts.config, "config", "c", style.DefaultPath, "Style configuration file (.json, .yaml or .toml)")

	cmd.AddCommand(
		newStyleValidateCmd(opts),
		newStyleRenderCmd(opts),
		newStyleCSSCmd(opts),
		newStyleChromaCmd(opts),
		newStylePreviewCmd(opts),
		newStyleExportCmd(opts),
		newStyleWatchCmd(opts),
	)
	return cmd
}

func newStyleValidateCmd(opts *styleOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the style configuration and list every violation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := opts.load(); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", opts.config)
			return err
		},
	}
}

func newStyleRenderCmd(opts *styleOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render tailwind.config.js",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return opts.emit(cmd, cfg.RenderTailwind)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newStyleCSSCmd(opts *styleOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "css",
		Short: "Render the palette as CSS custom properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return opts.emit(cmd, cfg.RenderCSSVariables)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newStyleChromaCmd(opts *styleOptions) *cobra.Command {
	var styleName string

	cmd := &cobra.Command{
		Use:   "chroma",
		Short: "Render the syntax highlighting stylesheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.emit(cmd, highlight.New(styleName).WriteCSS)
		},
	}
	cmd.Flags().StringVar(&styleName, "style", highlight.DefaultStyle, "Chroma style name")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newStylePreviewCmd(opts *styleOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Show the palette as terminal swatches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return cfg.Preview(cmd.OutOrStdout())
		},
	}
}

func newStyleExportCmd(opts *styleOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the configuration in another format",
		Long:  "Print the configuration as JSON or YAML. With no --config file the built-in default is exported.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := style.Default()
			if cmd.Flags().Changed("config") {
				var err error
				if cfg, err = opts.load(); err != nil {
					return err
				}
			}
			return opts.emit(cmd, func(w io.Writer) error {
				return style.Encode(w, cfg, style.Format(format))
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(style.FormatYAML), "Output format (json or yaml)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newStyleWatchCmd(opts *styleOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate tailwind.config.js and theme.css whenever the configuration changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if err := generate(cmd, cfg, dir); err != nil {
				return err
			}

			return style.Watch(cmd.Context(), opts.config, func(cfg *style.StyleConfig) {
				if err := generate(cmd, cfg, dir); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory the assets are written to")
	return cmd
}

func generate(cmd *cobra.Command, cfg *style.StyleConfig, dir string) error {
	if err := style.Generate(cfg, dir); err != nil {
		return err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "generated %s and %s in %s\n", style.TailwindConfigFile, style.ThemeCSSFile, abs)
	return err
}
