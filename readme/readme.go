package readme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/renameio/v2"
)

const (
	startMarker = "<!-- AUTO-GALLERY-START -->"
	endMarker   = "<!-- AUTO-GALLERY-END -->"
)

// ErrMarkersNotFound is returned when the document has
// no start marker followed by an end marker.
var ErrMarkersNotFound = errors.New("markers not found")

// Markers is the pair of sentinel lines delimiting a
// generated section.
type Markers struct {
	Start string
	End   string
}

// DefaultMarkers returns the AUTO-GALLERY marker pair.
func DefaultMarkers() Markers {
	return Markers{
		Start: startMarker,
		End:   endMarker,
	}
}

// pattern matches the start marker, the shortest run of
// text after it, and the next end marker.
func (m Markers) pattern() *regexp.Regexp {
	return regexp.MustCompile(
		"(?s)" + regexp.QuoteMeta(m.Start) +
			"(.*?)" + regexp.QuoteMeta(m.End),
	)
}

// Block wraps body in the marker pair, separated from
// each marker by a blank line. Body is expected to end
// with a newline.
func Block(m Markers, body string) string {
	return m.Start + "\n\n" + body + "\n" + m.End
}

// Replace substitutes every marker-delimited span of
// text with Block(m, body). Text outside the spans is
// left untouched.
func Replace(text string, m Markers, body string) (string, error) {
	const errCtx = "replacing generated section"

	re := m.pattern()
	if !re.MatchString(text) {
		return "", fmt.Errorf(
			"%s: %w: %s ... %s",
			errCtx, ErrMarkersNotFound, m.Start, m.End,
		)
	}

	return re.ReplaceAllLiteralString(text, Block(m, body)), nil
}

// Extract returns the raw text between the first marker
// pair. The boolean is false when no pair is present.
func Extract(text string, m Markers) (string, bool) {
	sub := m.pattern().FindStringSubmatch(text)
	if sub == nil {
		return "", false
	}

	return sub[1], true
}

// ReadFile reads the document at path as text.
func ReadFile(path string) (string, error) {
	const errCtx = "reading document"

	content, err := os.ReadFile(path) //nolint:gosec // path from config
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return string(content), nil
}

// WriteFile atomically replaces the document at path
// with content. The temporary file is synced before the
// rename, and the permissions of an existing document
// are kept. A symlinked path is resolved first so the
// link target is replaced, not the link.
func WriteFile(path string, content string) error {
	const errCtx = "writing document"

	target, err := filepath.EvalSymlinks(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		target = path
	case err != nil:
		return fmt.Errorf("%s: %w", errCtx, err)
	default:
	}

	if err := renameio.WriteFile(
		target,
		[]byte(content),
		0o644,
		renameio.WithExistingPermissions(),
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
