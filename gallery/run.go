package gallery

import (
	"fmt"
	"log/slog"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/readme_gallery/readme"
)

// Options controls the side effects of Run.
type Options struct {
	// Check computes the update without writing it.
	// A README that would change yields StatusStale.
	Check bool
}

// Report summarises a run.
type Report struct {
	Status Status   `json:"status"`
	Readme string   `json:"readme"`
	Total  int      `json:"total"`
	Images []string `json:"images"`
}

// JSON encodes the report with indentation.
func (r Report) JSON() ([]byte, error) {
	const errCtx = "encoding report"

	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return append(out, '\n'), nil
}

// Run discovers images under root and regenerates the
// gallery section of the README. The README is read only
// when images were found, and written only when its
// content changed and opts.Check is false.
func Run(root string, cfg Config, opts Options) (Report, error) {
	const errCtx = "running gallery update"

	if err := cfg.Validate(); err != nil {
		return Report{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	readmePath := filepath.Join(root, filepath.FromSlash(cfg.Readme))

	rep := Report{
		Readme: readmePath,
		Images: []string{},
	}

	paths, err := Discover(root, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	images := Prepare(cfg, paths)
	rep.Total = len(paths)

	if len(images) == 0 {
		slog.Info("no images found, skipping", "root", root)

		rep.Status = StatusNoImages

		return rep, nil
	}

	for _, im := range images {
		rep.Images = append(rep.Images, im.Rel)
	}

	text, err := readme.ReadFile(readmePath)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	out, status, err := Update(cfg, paths, text)
	if err != nil {
		return Report{}, fmt.Errorf(
			"%s: %s: %w", errCtx, readmePath, err,
		)
	}

	rep.Status = status

	switch status {
	case StatusUnchanged:
		slog.Info("readme unchanged", "path", readmePath)
	case StatusUpdated:
		if opts.Check {
			rep.Status = StatusStale

			current, _ := readme.Extract(text, cfg.markers())

			slog.Warn(
				"readme gallery is stale",
				"path", readmePath,
				"images", len(images),
				"current_bytes", len(current),
			)

			return rep, nil
		}

		if err := readme.WriteFile(readmePath, out); err != nil {
			return Report{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		slog.Info(
			"readme updated",
			"path", readmePath,
			"images", len(images),
		)
	default:
	}

	return rep, nil
}
