package github

import (
	"fmt"

	"github.com/hyperloopupv-h8/stools/internal/config"
	"github.com/hyperloopupv-h8/stools/internal/domain/release"
)

// FromConfig builds a client for every target listed in the settings.
func FromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	options := []Option{
		WithBaseURL(cfg.APIURL),
		WithUserAgent(cfg.UserAgent),
	}

	for _, target := range release.Targets() {
		repository, err := cfg.Repository(target)
		if err != nil {
			return nil, fmt.Errorf("configure github client: %w", err)
		}

		options = append(options, WithRepository(target, repository))
	}

	return NewClient(append(options, opts...)...), nil
}
