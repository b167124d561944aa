// Package domain defines the core business entities for Respondo.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A loaded FAQ text source
//   - Chunk: A retrieval unit cut from a document
//   - SearchHit: A retrieved chunk with a similarity score
//   - Answer: A composed answer with its production tier
//   - ConversationTurn: One question/answer exchange
//   - IndexManifest: The configuration an index was built with
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
