package engine

import "errors"

// Error kinds surfaced by both pipelines. Callers classify with errors.Is
// and map to transport responses; the engine never downgrades an
// infrastructure failure into an empty-result success.
var (
	// ErrAlbumNotFound: the album id/slug does not resolve to an active album.
	ErrAlbumNotFound = errors.New("album not found")

	// ErrInvalidInput: malformed filename, size or image payload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractorUnavailable: transport or processing failure in the
	// external embedding extraction call. Safe to retry.
	ErrExtractorUnavailable = errors.New("extractor unavailable")

	// ErrCatalogUnavailable: transport or query failure against the catalog
	// or vector store. Safe to retry.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
