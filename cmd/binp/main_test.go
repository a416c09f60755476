package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/binp/internal/adapter/httpserver"
	"github.com/pscheid92/binp/internal/adapter/sqlite"
	"github.com/pscheid92/binp/internal/app"
	"github.com/pscheid92/binp/internal/highlight"
	"github.com/pscheid92/binp/internal/platform/config"
	"github.com/pscheid92/binp/internal/style"
)

// startServer runs the real HTTP stack on an in-memory database.
func startServer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	chroma := highlight.New(highlight.DefaultStyle)
	svc := app.NewService(sqlite.NewSnippetRepo(db, nil), chroma, clockwork.NewRealClock())
	cfg := &config.Config{AppEnv: "development", Port: "8080", RateLimit: 1000}

	srv, err := httpserver.NewServer(cfg, svc, chroma, style.Default())
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts.URL
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, stdin io.Reader, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	err := cmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func createdID(t *testing.T, server, stdout string) string {
	t.Helper()
	url := strings.TrimSpace(stdout)
	require.True(t, strings.HasPrefix(url, server+"/"), "unexpected output %q", stdout)
	return strings.TrimPrefix(url, server+"/")
}

func TestCreateAndGet(t *testing.T) {
	server := startServer(t)

	res := run(t, nil, "--server", server, "create", "-l", "go", "-e", "1h", "package main")
	require.NoError(t, res.err)
	id := createdID(t, server, res.stdout)
	assert.Len(t, id, 10)

	res = run(t, nil, "--server", server, "get", id)
	require.NoError(t, res.err)
	assert.Equal(t, "package main\n", res.stdout)
}

func TestCreate_FromStdin(t *testing.T) {
	server := startServer(t)

	res := run(t, strings.NewReader("line one\nline two\n"), "--server", server, "create")
	require.NoError(t, res.err)
	id := createdID(t, server, res.stdout)

	res = run(t, nil, "--server", server, "get", "--json", id)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"text": "line one\nline two\n"`)
	assert.Contains(t, res.stdout, `"language": "txt"`)
}

func TestCreate_EmptyStdin(t *testing.T) {
	res := run(t, strings.NewReader("  \n"), "--server", "http://127.0.0.1:1", "create")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "no text given")
}

func TestCreate_InvalidLanguage(t *testing.T) {
	server := startServer(t)

	res := run(t, nil, "--server", server, "create", "-l", "cobol", "hello")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `invalid language "cobol"`)
}

func TestGet_BurnAfterRead(t *testing.T) {
	server := startServer(t)

	res := run(t, nil, "--server", server, "create", "--burn", "secret")
	require.NoError(t, res.err)
	id := createdID(t, server, res.stdout)

	res = run(t, nil, "--server", server, "get", server+"/"+id)
	require.NoError(t, res.err)
	assert.Equal(t, "secret\n", res.stdout)

	res = run(t, nil, "--server", server, "get", id)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "not found")
}

func TestGet_JSONAndPrettyExclusive(t *testing.T) {
	res := run(t, nil, "get", "--json", "--pretty", "abc")

	require.Error(t, res.err)
}

func TestGet_PrettyRequiresBat(t *testing.T) {
	old := batCommand
	batCommand = "binp-test-no-such-bat"
	t.Cleanup(func() { batCommand = old })

	res := run(t, nil, "--server", "http://127.0.0.1:1", "get", "--pretty", "abc")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "requires bat")
}

func TestSnippetID(t *testing.T) {
	assert.Equal(t, "abc", snippetID("abc"))
	assert.Equal(t, "abc", snippetID("https://binp.example.org/abc"))
	assert.Equal(t, "abc", snippetID("https://binp.example.org/abc/"))
}

func TestVersion(t *testing.T) {
	res := run(t, nil, "version")

	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "binp dev"))
}

const testStyleYAML = `darkMode: selector
content:
  - ./web/**/*.html
theme:
  extend:
    colors:
      brand: "#123456"
      night:
        background: "#1a1b26"
plugins:
  - "@tailwindcss/forms"
`

func writeStyleFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStyleValidate(t *testing.T) {
	path := writeStyleFile(t, "style.yaml", testStyleYAML)

	res := run(t, nil, "style", "validate", "-c", path)

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "is valid")
}

func TestStyleValidate_ReportsViolations(t *testing.T) {
	path := writeStyleFile(t, "style.yaml", `darkMode: sometimes
content: []
theme:
  colors:
    brand: "#12345"
plugins: []
`)

	res := run(t, nil, "style", "validate", "-c", path)

	require.Error(t, res.err)
	msg := res.err.Error()
	assert.Contains(t, msg, "darkMode")
	assert.Contains(t, msg, "content")
	assert.Contains(t, msg, "theme.colors.brand")
}

func TestStyleRender(t *testing.T) {
	path := writeStyleFile(t, "style.yaml", testStyleYAML)

	res := run(t, nil, "style", "render", "-c", path)

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "module.exports = {")
	assert.Contains(t, res.stdout, `brand: "#123456"`)
}

func TestStyleRender_ToFile(t *testing.T) {
	path := writeStyleFile(t, "style.yaml", testStyleYAML)
	out := filepath.Join(t.TempDir(), "assets", "tailwind.config.js")

	res := run(t, nil, "style", "render", "-c", path, "-o", out)

	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `require("@tailwindcss/forms")`)
}

func TestStyleCSS(t *testing.T) {
	path := writeStyleFile(t, "style.yaml", testStyleYAML)

	res := run(t, nil, "style", "css", "-c", path)

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "--color-brand: #123456;")
	assert.Contains(t, res.stdout, "--color-night-background: #1a1b26;")
}

func TestStyleChroma(t *testing.T) {
	res := run(t, nil, "style", "chroma")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, ".chroma")
	assert.NotContains(t, res.stdout, "background-color")
}

func TestStylePreview(t *testing.T) {
	path := writeStyleFile(t, "style.yaml", testStyleYAML)

	res := run(t, nil, "style", "preview", "-c", path)

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "brand")
	assert.Contains(t, res.stdout, "#1a1b26")
}

func TestStyleExport(t *testing.T) {
	t.Run("default as json", func(t *testing.T) {
		res := run(t, nil, "style", "export", "-f", "json")

		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, `"tokyonight": {`)
	})

	t.Run("toml source as yaml", func(t *testing.T) {
		path := writeStyleFile(t, "style.toml", `darkMode = "media"
content = ["./web/**/*.html"]
plugins = []

[theme.extend.colors]
brand = "#123456"
`)

		res := run(t, nil, "style", "export", "-c", path)

		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "darkMode: media")
		assert.Contains(t, res.stdout, `brand: "#123456"`)
	})

	t.Run("toml output is rejected", func(t *testing.T) {
		res := run(t, nil, "style", "export", "-f", "toml")

		require.ErrorIs(t, res.err, style.ErrUnsupportedFormat)
	})
}

func TestStyleWatch_GeneratesAndStops(t *testing.T) {
	path := writeStyleFile(t, "style.yaml", testStyleYAML)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"style", "watch", "-c", path, "-d", dir})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	require.NoError(t, cmd.ExecuteContext(ctx))

	assert.FileExists(t, filepath.Join(dir, style.TailwindConfigFile))
	assert.FileExists(t, filepath.Join(dir, style.ThemeCSSFile))
}
