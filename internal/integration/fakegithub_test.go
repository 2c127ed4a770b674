package integration

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
)

// fakeAsset is one file served by fakeGitHub.
type fakeAsset struct {
	name        string
	contentType string
	body        []byte
	// broken makes the download endpoint answer 500.
	broken bool
}

// fakeGitHub serves release listings and asset downloads for an organization.
type fakeGitHub struct {
	server *httptest.Server
	// releases maps a repository name to its tags, newest first, and their assets.
	releases map[string][]fakeRelease
	// downloads counts asset requests.
	downloads atomic.Int32
}

// fakeRelease is one tag of a repository.
type fakeRelease struct {
	tag    string
	assets []fakeAsset
}

func newFakeGitHub(t *testing.T, releases map[string][]fakeRelease) *fakeGitHub {
	t.Helper()

	fake := &fakeGitHub{releases: releases}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/{repo}/releases", fake.listReleases)
	mux.HandleFunc("GET /download/{repo}/{tag}/{name}", fake.downloadAsset)

	fake.server = httptest.NewServer(mux)
	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeGitHub) listReleases(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Accept") != "application/vnd.github.v3+json" || r.Header.Get("User-Agent") != "stools" {
		http.Error(w, "missing headers", http.StatusBadRequest)

		return
	}

	repo := r.PathValue("repo")

	releases, ok := f.releases[repo]
	if !ok {
		http.NotFound(w, r)

		return
	}

	listing := make([]release.Release, 0, len(releases))

	for _, rel := range releases {
		entry := release.Release{Tag: rel.tag, Assets: []release.Asset{}}

		for _, asset := range rel.assets {
			entry.Assets = append(entry.Assets, release.Asset{
				DownloadURL: fmt.Sprintf("%s/download/%s/%s/%s", f.server.URL, repo, rel.tag, asset.name),
				Name:        asset.name,
				ContentType: asset.contentType,
				Size:        uint64(len(asset.body)),
				UpdatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			})
		}

		listing = append(listing, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(listing)
}

func (f *fakeGitHub) downloadAsset(w http.ResponseWriter, r *http.Request) {
	f.downloads.Add(1)

	for _, rel := range f.releases[r.PathValue("repo")] {
		if rel.tag != r.PathValue("tag") {
			continue
		}

		for _, asset := range rel.assets {
			if asset.name != r.PathValue("name") {
				continue
			}

			if asset.broken {
				http.Error(w, "storage unavailable", http.StatusInternalServerError)

				return
			}

			if r.Header.Get("Accept") != asset.contentType {
				http.Error(w, "unexpected accept header", http.StatusNotAcceptable)

				return
			}

			_, _ = w.Write(asset.body)

			return
		}
	}

	http.NotFound(w, r)
}

// zipBytes builds an archive from name -> contents.
func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	writer := zip.NewWriter(&buf)

	for name, contents := range entries {
		w, err := writer.Create(name)
		require.NoError(t, err)

		_, err = w.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	return buf.Bytes()
}
