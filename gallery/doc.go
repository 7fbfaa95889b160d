// Package gallery regenerates the image gallery section of a repository
// README. Discover walks the repository for image files, Update is a pure
// function that turns the discovered paths and the current README text into
// the new README text, and Run ties both to the filesystem, writing the
// README only when the generated section changed.
//
// All settings live in Config. DefaultConfig carries the compiled-in values;
// LoadConfig overlays an optional YAML file on top of them.
package gallery
