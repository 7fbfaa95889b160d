// Package readme replaces auto-generated sections of a markdown document.
// A section is delimited by a start and an end marker comment; everything
// between them is owned by the generator and rewritten on every run, while
// the text outside the markers is preserved byte for byte.
package readme
