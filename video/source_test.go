package video

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptStillsKeepsCallerTimestamps(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("jpegbytes"), 0o644))
		paths = append(paths, p)
	}

	s := NewSource(filepath.Join(dir, "frames"), 0, nil)
	frames, err := s.AcceptStills(paths, []float64{0.0, 2.5, 7.1}, "session-1")
	require.NoError(t, err)
	require.Len(t, frames, 3)

	for i, f := range frames {
		assert.Equal(t, i, f.Index, "frame indices must be dense and zero-based")
		assert.FileExists(t, f.Path)
	}
	assert.Equal(t, 2.5, frames[1].Timestamp)
	assert.Equal(t, 7.1, frames[2].Timestamp)
}

func TestAcceptStillsMismatchedTimestamps(t *testing.T) {
	s := NewSource(t.TempDir(), 0, nil)
	_, err := s.AcceptStills([]string{"x.jpg"}, []float64{0.0, 1.0}, "session-1")
	assert.Error(t, err)
}

func TestAcceptStillsSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.jpg")
	require.NoError(t, os.WriteFile(good, []byte("jpegbytes"), 0o644))

	s := NewSource(filepath.Join(dir, "frames"), 0, nil)
	frames, err := s.AcceptStills(
		[]string{filepath.Join(dir, "missing.jpg"), good},
		[]float64{0.0, 1.0},
		"session-1",
	)
	require.NoError(t, err)
	require.Len(t, frames, 1, "unreadable stills degrade to fewer frames, not an error")
	assert.Equal(t, 0, frames[0].Index, "surviving frames are reindexed densely")
	assert.Equal(t, 1.0, frames[0].Timestamp)
}

func TestExtractionInterval(t *testing.T) {
	cases := []struct {
		name      string
		nativeFPS float64
		targetFPS float64
		want      int
	}{
		{"30fps down to 1.5fps", 30.0, 1.5, 20},
		{"29.97fps down to 1.5fps", 29.97, 1.5, 20},
		{"24fps down to 1.5fps", 24.0, 1.5, 16},
		{"60fps down to 2fps", 60.0, 2.0, 30},
		{"native slower than target keeps every frame", 1.0, 1.5, 1},
		{"equal rates keep every frame", 30.0, 30.0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractionInterval(tc.nativeFPS, tc.targetFPS))
		})
	}
}

// TestExtractFramesUnopenableVideo verifies the no-raise contract: an
// unreadable video yields zero frames and the pipeline completes empty.
func TestExtractFramesUnopenableVideo(t *testing.T) {
	s := NewSource(t.TempDir(), 1.5, nil)
	frames := s.ExtractFrames(context.Background(), "/nonexistent/walkthrough.mp4", "session-1")
	assert.Empty(t, frames)
}
