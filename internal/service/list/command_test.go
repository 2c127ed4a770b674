package list

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperloopupv-h8/stools/internal/domain/release"
)

// staticLister returns fixed releases for one target.
type staticLister struct {
	target   release.Target
	releases []release.Release
	err      error
}

func (s *staticLister) List(_ context.Context, target release.Target) ([]release.Release, error) {
	if target != s.target {
		return nil, release.NewError(release.KindRequest, io.EOF)
	}

	return s.releases, s.err
}

// TestRun returns tags in listing order.
func TestRun(t *testing.T) {
	t.Parallel()

	lister := &staticLister{
		target:   release.TargetControl,
		releases: []release.Release{{Tag: "v3.0.0"}, {Tag: "v2.1.0"}, {Tag: "v2.0.0"}},
	}

	tags, err := Run(context.Background(), lister, &Options{Target: release.TargetControl})
	require.NoError(t, err)
	require.Equal(t, []string{"v3.0.0", "v2.1.0", "v2.0.0"}, tags)

	var out, errOut bytes.Buffer

	Print(&out, &errOut, tags, nil)
	require.Equal(t, "v3.0.0\nv2.1.0\nv2.0.0\n", out.String())
	require.Empty(t, errOut.String())
}

// TestRun_Failure keeps the listing error kind.
func TestRun_Failure(t *testing.T) {
	t.Parallel()

	lister := &staticLister{target: release.TargetBackend}

	tags, err := Run(context.Background(), lister, &Options{Target: release.TargetEthernet})
	require.Nil(t, tags)
	require.ErrorIs(t, err, release.ErrRequest)

	var out, errOut bytes.Buffer

	Print(&out, &errOut, tags, err)
	require.Empty(t, out.String())
	require.Contains(t, errOut.String(), "list releases of ethernet")
}
