package gallery_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/readme_gallery/gallery"
	"github.com/byte4ever/readme_gallery/readme"
)

// newRepo lays out a repository with the given image
// files and README content.
func newRepo(
	tb testing.TB,
	readmeText string,
	images ...string,
) string {
	tb.Helper()

	root := tb.TempDir()

	for _, name := range images {
		writeTemp(tb, root, name, "img")
	}

	if readmeText != "" {
		writeTemp(tb, root, "README.md", readmeText)
	}

	return root
}

func readText(tb testing.TB, pa string) string {
	tb.Helper()

	data, err := os.ReadFile(pa) //nolint:gosec // test file
	require.NoError(tb, err)

	return string(data)
}

func TestRun_end_to_end(t *testing.T) {
	t.Parallel()

	root := newRepo(
		t, emptyReadme,
		"img/a.png", "img/b.jpg", "img/c.jpeg", "img/d.png",
		"scripts/tool.png",
	)

	rep, err := gallery.Run(root, testConfig(), gallery.Options{})

	require.NoError(t, err)
	assert.Equal(t, gallery.StatusUpdated, rep.Status)
	assert.Equal(t, 4, rep.Total)
	assert.Equal(
		t,
		[]string{"img/a.png", "img/b.jpg", "img/c.jpeg", "img/d.png"},
		rep.Images,
	)

	got := readText(t, filepath.Join(root, "README.md"))

	assert.Equal(t, 1, strings.Count(got, "|---|---|---|"))
	assert.Contains(t, got, rawURL("img/a.png"))
	assert.Contains(t, got, rawURL("img/d.png"))
	assert.NotContains(t, got, "scripts/tool.png")
	assert.Contains(t, got, "| "+imageCell("img/d.png")+" |  |  |")

	tables, rows := tableShape(t, got)
	assert.Equal(t, 1, tables)
	assert.Equal(t, []int{3, 3, 3, 3}, rows)
}

func TestRun_second_run_is_noop(t *testing.T) {
	t.Parallel()

	root := newRepo(t, emptyReadme, "a.png", "b.png")
	readmePath := filepath.Join(root, "README.md")

	rep, err := gallery.Run(root, testConfig(), gallery.Options{})
	require.NoError(t, err)
	require.Equal(t, gallery.StatusUpdated, rep.Status)

	first := readText(t, readmePath)

	rep, err = gallery.Run(root, testConfig(), gallery.Options{})

	require.NoError(t, err)
	assert.Equal(t, gallery.StatusUnchanged, rep.Status)
	assert.Equal(t, first, readText(t, readmePath))
}

func TestRun_missing_markers_leaves_file_untouched(t *testing.T) {
	t.Parallel()

	original := "# No markers here\n"
	root := newRepo(t, original, "a.png")
	readmePath := filepath.Join(root, "README.md")

	past := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(readmePath, past, past))

	_, err := gallery.Run(root, testConfig(), gallery.Options{})

	require.ErrorIs(t, err, readme.ErrMarkersNotFound)
	assert.Equal(t, original, readText(t, readmePath))

	fi, err := os.Stat(readmePath)
	require.NoError(t, err)
	assert.True(t, fi.ModTime().Equal(past))
}

func TestRun_no_images_skips_readme(t *testing.T) {
	t.Parallel()

	// No README at all: it must not be read.
	root := newRepo(t, "", "notes.txt")

	rep, err := gallery.Run(root, testConfig(), gallery.Options{})

	require.NoError(t, err)
	assert.Equal(t, gallery.StatusNoImages, rep.Status)
	assert.Empty(t, rep.Images)
}

func TestRun_missing_readme(t *testing.T) {
	t.Parallel()

	root := newRepo(t, "", "a.png")

	_, err := gallery.Run(root, testConfig(), gallery.Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading document")
}

func TestRun_check_reports_stale_without_writing(t *testing.T) {
	t.Parallel()

	root := newRepo(t, emptyReadme, "a.png")
	readmePath := filepath.Join(root, "README.md")

	rep, err := gallery.Run(
		root, testConfig(), gallery.Options{Check: true},
	)

	require.NoError(t, err)
	assert.Equal(t, gallery.StatusStale, rep.Status)
	assert.Equal(t, emptyReadme, readText(t, readmePath))

	_, err = gallery.Run(root, testConfig(), gallery.Options{})
	require.NoError(t, err)

	rep, err = gallery.Run(
		root, testConfig(), gallery.Options{Check: true},
	)

	require.NoError(t, err)
	assert.Equal(t, gallery.StatusUnchanged, rep.Status)
}

func TestRun_limit_keeps_last_entries(t *testing.T) {
	t.Parallel()

	root := newRepo(
		t, emptyReadme, "a.png", "B.png", "c.png", "D.png",
	)

	cfg := testConfig()
	cfg.Limit = 3

	rep, err := gallery.Run(root, cfg, gallery.Options{})

	require.NoError(t, err)
	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, []string{"B.png", "c.png", "D.png"}, rep.Images)
	assert.NotContains(
		t, readText(t, filepath.Join(root, "README.md")), "a.png",
	)
}

func TestRun_invalid_config(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Columns = 0

	_, err := gallery.Run(t.TempDir(), cfg, gallery.Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestReport_JSON(t *testing.T) {
	t.Parallel()

	rep := gallery.Report{
		Status: gallery.StatusUpdated,
		Readme: "README.md",
		Total:  2,
		Images: []string{"a.png", "b.png"},
	}

	out, err := rep.JSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))

	assert.Equal(t, "updated", decoded["status"])
	assert.Equal(t, "README.md", decoded["readme"])
	assert.InDelta(t, 2, decoded["total"], 0)
	assert.Equal(t, []interface{}{"a.png", "b.png"}, decoded["images"])
}

func TestRun_symlinked_root_and_readme(t *testing.T) {
	t.Parallel()

	repoDir := newRepo(t, "", "img/a.png")

	docs := t.TempDir()
	target := writeTemp(t, docs, "README.md", emptyReadme)
	require.NoError(
		t, os.Symlink(target, filepath.Join(repoDir, "README.md")),
	)

	link := filepath.Join(t.TempDir(), "checkout")
	require.NoError(t, os.Symlink(repoDir, link))

	rep, err := gallery.Run(link, testConfig(), gallery.Options{})

	require.NoError(t, err)
	assert.Equal(t, gallery.StatusUpdated, rep.Status)
	assert.Equal(t, []string{"img/a.png"}, rep.Images)

	fi, err := os.Lstat(filepath.Join(repoDir, "README.md"))
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode()&os.ModeSymlink)
	assert.Contains(t, readText(t, target), rawURL("img/a.png"))
}
