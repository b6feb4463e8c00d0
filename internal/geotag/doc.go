// Package geotag reads the capture location embedded in a photo.
//
// Extract understands EXIF GPS metadata carried in a JPEG APP1 segment or in a
// bare TIFF stream. Anything it cannot read (no metadata, no GPS block,
// truncated or corrupt data, out-of-range values) yields "no location" rather
// than an error: a missing geotag is an ordinary outcome for the publish
// pipeline, which then falls back to the device location.
package geotag
