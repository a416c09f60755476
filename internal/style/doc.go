// Package style holds the build-time styling configuration of binp.
//
// A StyleConfig is the declarative record handed to the Tailwind CLI: colour
// palettes, the dark-mode strategy, the content globs scanned for utility
// classes and the plugins to load. The package loads it from JSON, YAML or
// TOML, validates it, and renders it as tailwind.config.js and as CSS custom
// properties. Generating CSS from utility classes is left to Tailwind.
package style
