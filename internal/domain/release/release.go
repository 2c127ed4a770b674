package release

import "time"

// Release is one tagged entry of a target's release history.
type Release struct {
	// Tag is the version tag, unique within the target's history.
	Tag string `json:"tag_name"`
	// Assets are the downloadable files, in index order.
	Assets []Asset `json:"assets"`
}

// Asset is one downloadable file of a release.
type Asset struct {
	// DownloadURL is where the asset bytes are served.
	DownloadURL string `json:"browser_download_url"`
	// Name is used verbatim as the destination file name.
	Name string `json:"name"`
	// ContentType is sent as the Accept header of the download request.
	ContentType string `json:"content_type"`
	// Size is informational only.
	Size uint64 `json:"size"`
	// UpdatedAt is when the asset was last uploaded.
	UpdatedAt time.Time `json:"updated_at"`
}

// Select returns the release with the given tag, or the first (newest) one
// when tag is empty.
func Select(releases []Release, tag string) (*Release, error) {
	if tag == "" {
		if len(releases) == 0 {
			return nil, NewTagNotFound("")
		}

		return &releases[0], nil
	}

	for i := range releases {
		if releases[i].Tag == tag {
			return &releases[i], nil
		}
	}

	return nil, NewTagNotFound(tag)
}
