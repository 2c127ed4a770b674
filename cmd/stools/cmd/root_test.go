package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperloopupv-h8/stools/internal/config"
	"github.com/hyperloopupv-h8/stools/internal/domain/release"
	"github.com/hyperloopupv-h8/stools/internal/version"
)

// execute runs the command tree with args and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

// writeSettings stores a settings file pointing the client at apiURL.
func writeSettings(t *testing.T, apiURL, output string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stools.yaml")
	contents := "api_url: " + apiURL + "\n" +
		"organization: acme\n" +
		"output: " + output + "\n" +
		"log_level: error\n"

	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func newBackendServer(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/h8-backend/releases", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]release.Release{
			{
				Tag: "v1.2.0",
				Assets: []release.Asset{
					{DownloadURL: server.URL + "/files/app.zip", Name: "app.zip", ContentType: "application/zip"},
					{DownloadURL: server.URL + "/files/missing.txt", Name: "checksums.txt", ContentType: "text/plain"},
				},
			},
			{
				Tag: "v1.1.0",
				Assets: []release.Asset{
					{DownloadURL: server.URL + "/files/app.zip", Name: "app.zip", ContentType: "application/zip"},
				},
			},
		})
	})
	mux.HandleFunc("GET /files/app.zip", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("bundle"))
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestVersion(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "version", "--config", writeSettings(t, "http://127.0.0.1", t.TempDir()))
	require.NoError(t, err)
	require.Equal(t, version.Full()+"\n", stdout)
}

// TestBrokenSettings_CommandsWithoutClient still work with an unreadable settings file.
func TestBrokenSettings_CommandsWithoutClient(t *testing.T) {
	t.Parallel()

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("api_url: [unterminated"), 0o600))

	stdout, _, err := execute(t, "--config", broken, "version")
	require.NoError(t, err)
	require.Equal(t, version.Full()+"\n", stdout)

	stdout, _, err = execute(t, "--config", broken, "help", "download")
	require.NoError(t, err)
	require.Contains(t, stdout, "download <target> [tag]")

	stdout, _, err = execute(t, "--config", broken, "completion", "bash")
	require.NoError(t, err)
	require.NotEmpty(t, stdout)

	_, _, err = execute(t, "--config", broken, "list", "backend")
	require.ErrorContains(t, err, "unmarshal settings")
}

func TestConfigInit(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"stools.yaml", "stools.toml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), name)

			stdout, _, err := execute(t, "config", "init", "--config", path)
			require.NoError(t, err)
			require.Equal(t, "Settings written to "+path+"\n", stdout)

			loaded, err := config.Load(path)
			require.NoError(t, err)
			require.Equal(t, config.Default(), loaded)

			// The written file is usable by the other commands.
			_, _, err = execute(t, "mount", "backend", "-p", t.TempDir(), "--config", path)
			require.NoError(t, err)
		})
	}
}

func TestConfigInit_KeepsExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stools.yaml")
	require.NoError(t, os.WriteFile(path, []byte("organization: acme\n"), 0o600))

	_, _, err := execute(t, "config", "init", "--config", path)
	require.ErrorIs(t, err, errSettingsExist)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "organization: acme\n", string(data))

	_, _, err = execute(t, "config", "init", "--force", "--config", path)
	require.NoError(t, err)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.DefaultOrganization, loaded.Organization)
}

func TestList(t *testing.T) {
	t.Parallel()

	server := newBackendServer(t)

	stdout, _, err := execute(t, "list", "back", "--config", writeSettings(t, server.URL, t.TempDir()))
	require.NoError(t, err)
	require.Equal(t, "v1.2.0\nv1.1.0\n", stdout)
}

func TestDownload(t *testing.T) {
	t.Parallel()

	server := newBackendServer(t)

	t.Run("reports every asset and fails on one", func(t *testing.T) {
		t.Parallel()

		output := filepath.Join(t.TempDir(), "out")

		stdout, stderr, err := execute(t, "download", "backend",
			"--config", writeSettings(t, server.URL, output))
		require.ErrorIs(t, err, errReported)
		require.Equal(t, "app.zip\n", stdout)
		require.Contains(t, stderr, "error downloading checksums.txt")

		data, err := os.ReadFile(filepath.Join(output, "app.zip"))
		require.NoError(t, err)
		require.Equal(t, "bundle", string(data))
	})

	t.Run("older tag and output flag", func(t *testing.T) {
		t.Parallel()

		output := t.TempDir()

		stdout, _, err := execute(t, "download", "backend", "v1.1.0", "-o", output,
			"--config", writeSettings(t, server.URL, "unused"))
		require.NoError(t, err)
		require.Equal(t, "app.zip\n", stdout)
		require.FileExists(t, filepath.Join(output, "app.zip"))
	})

	t.Run("unknown tag", func(t *testing.T) {
		t.Parallel()

		output := filepath.Join(t.TempDir(), "out")

		_, stderr, err := execute(t, "download", "backend", "v9.9.9",
			"--config", writeSettings(t, server.URL, output))
		require.ErrorIs(t, err, errReported)
		require.Contains(t, stderr, "tag v9.9.9 not found")
		require.NoDirExists(t, output)
	})
}

func TestTargetValidation(t *testing.T) {
	t.Parallel()

	settings := writeSettings(t, "http://127.0.0.1", t.TempDir())

	_, _, err := execute(t, "download", "frontend", "--config", settings)
	require.ErrorIs(t, err, release.ErrUnknownTarget)

	_, _, err = execute(t, "sync", "backend", "--config", settings)
	require.ErrorIs(t, err, release.ErrNotFrontend)
}

func TestMount_Backend(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "mount", "backend", "-p", t.TempDir(),
		"--config", writeSettings(t, "http://127.0.0.1", t.TempDir()))
	require.NoError(t, err)
	require.Equal(t, "Target mounted correctly\n", stdout)
}

func TestMount_MissingArchive(t *testing.T) {
	t.Parallel()

	_, stderr, err := execute(t, "mount", "ethernet", "-p", t.TempDir(),
		"--config", writeSettings(t, "http://127.0.0.1", t.TempDir()))
	require.ErrorIs(t, err, errReported)
	require.Contains(t, stderr, "Error mounting:")
}
