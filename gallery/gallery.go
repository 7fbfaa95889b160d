package gallery

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/readme_gallery/readme"
)

// Status is the outcome of a gallery update.
type Status int

const (
	// StatusNoImages means nothing matched; the README
	// was not touched.
	StatusNoImages Status = iota
	// StatusUnchanged means the generated section is
	// already up to date.
	StatusUnchanged
	// StatusUpdated means the README content changed.
	StatusUpdated
	// StatusStale means the README would change but
	// the run was a check.
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusNoImages:
		return "no-images"
	case StatusUnchanged:
		return "unchanged"
	case StatusUpdated:
		return "updated"
	case StatusStale:
		return "stale"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Image is one gallery entry.
type Image struct {
	// Rel is the root-relative path with forward
	// slashes.
	Rel string
	// URL is the public raw-content address of Rel.
	URL string
}

// NewImage derives the public URL of rel.
func NewImage(cfg Config, rel string) Image {
	return Image{
		Rel: rel,
		URL: fmt.Sprintf(
			"https://%s/%s/%s/%s",
			strings.Trim(cfg.Host, "/"),
			strings.Trim(cfg.Repo, "/"),
			cfg.Branch,
			rel,
		),
	}
}

// canonical cleans rel into a slash-separated relative
// path without a leading "./".
func canonical(rel string) string {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))

	return strings.TrimPrefix(rel, "./")
}

// dedupe canonicalises paths and drops repeats and
// empty entries, keeping the first occurrence.
func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))

	for _, p := range paths {
		cp := canonical(p)
		if cp == "." {
			continue
		}

		if _, ok := seen[cp]; ok {
			continue
		}

		seen[cp] = struct{}{}
		out = append(out, cp)
	}

	return out
}

// SortPaths sorts root-relative paths in place by their
// lowercase form. Paths equal under case folding are
// ordered by their exact bytes.
func SortPaths(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		li := strings.ToLower(paths[i])
		lj := strings.ToLower(paths[j])

		if li != lj {
			return li < lj
		}

		return paths[i] < paths[j]
	})
}

// Select returns the last limit entries of sorted. A
// limit of zero or less keeps everything.
func Select(sorted []string, limit int) []string {
	if limit <= 0 || limit >= len(sorted) {
		return sorted
	}

	return sorted[len(sorted)-limit:]
}

// Prepare turns discovered paths into the ordered list
// of images to render: canonicalised, deduplicated,
// stripped of excluded segments, sorted, then truncated
// to cfg.Limit.
func Prepare(cfg Config, paths []string) []Image {
	ps := dedupe(paths)

	kept := ps[:0]
	for _, p := range ps {
		if !hasExcludedSegment(p, cfg.Exclude) {
			kept = append(kept, p)
		}
	}

	ps = kept
	SortPaths(ps)
	ps = Select(ps, cfg.Limit)

	images := make([]Image, 0, len(ps))
	for _, p := range ps {
		images = append(images, NewImage(cfg, p))
	}

	return images
}

// Render produces the gallery block: the title, then for
// each group of cfg.Columns images an image row and a
// metadata row. The column separator follows the first
// image row. Short groups are padded with empty cells.
// The result ends with exactly one newline. Unparsable
// cell templates are reported as an error.
func Render(cfg Config, images []Image) (string, error) {
	const errCtx = "rendering gallery"

	imageTpl, err := fasttemplate.NewTemplate(cfg.ImageCell, "{", "}")
	if err != nil {
		return "", fmt.Errorf("%s: image_cell: %w", errCtx, err)
	}

	metaTpl, err := fasttemplate.NewTemplate(cfg.MetaCell, "{", "}")
	if err != nil {
		return "", fmt.Errorf("%s: meta_cell: %w", errCtx, err)
	}

	width := strconv.Itoa(cfg.ThumbWidth)

	cols := cfg.Columns
	if cols < 1 {
		cols = 1
	}

	var lines []string

	if cfg.Title != "" {
		lines = append(lines, cfg.Title, "")
	}

	for i := 0; i < len(images); i += cols {
		group := images[i:min(i+cols, len(images))]

		imageCells := make([]string, 0, len(group))
		metaCells := make([]string, 0, len(group))

		for _, im := range group {
			vars := map[string]interface{}{
				"url":   im.URL,
				"rel":   im.Rel,
				"width": width,
			}

			imageCells = append(
				imageCells, imageTpl.ExecuteString(vars),
			)
			metaCells = append(
				metaCells, metaTpl.ExecuteString(vars),
			)
		}

		lines = append(lines, tableRow(imageCells, cols))

		if i == 0 {
			lines = append(
				lines, "|"+strings.Repeat("---|", cols),
			)
		}

		lines = append(lines, tableRow(metaCells, cols))
	}

	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n", nil
}

// tableRow formats cells as a markdown table row padded
// to cols cells.
func tableRow(cells []string, cols int) string {
	var sb strings.Builder

	sb.WriteByte('|')

	for _, c := range cells {
		sb.WriteByte(' ')
		sb.WriteString(c)
		sb.WriteString(" |")
	}

	for n := len(cells); n < cols; n++ {
		sb.WriteString("  |")
	}

	return sb.String()
}

// Update computes the new README text for the given
// discovered paths. It performs no I/O. When no image
// survives Prepare the text is returned untouched with
// StatusNoImages.
func Update(
	cfg Config,
	paths []string,
	text string,
) (string, Status, error) {
	const errCtx = "updating gallery"

	images := Prepare(cfg, paths)
	if len(images) == 0 {
		return text, StatusNoImages, nil
	}

	block, err := Render(cfg, images)
	if err != nil {
		return text, StatusUnchanged, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	out, err := readme.Replace(text, cfg.markers(), block)
	if err != nil {
		return text, StatusUnchanged, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	if out == text {
		return text, StatusUnchanged, nil
	}

	return out, StatusUpdated, nil
}
