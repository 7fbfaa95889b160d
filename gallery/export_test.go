package gallery

// Exported aliases for testing unexported helpers from
// the gallery_test package.

// CanonicalForTest exposes canonical.
var CanonicalForTest = canonical

// DedupeForTest exposes dedupe.
var DedupeForTest = dedupe

// HasExcludedSegmentForTest exposes hasExcludedSegment.
var HasExcludedSegmentForTest = hasExcludedSegment

// TableRowForTest exposes tableRow.
var TableRowForTest = tableRow
