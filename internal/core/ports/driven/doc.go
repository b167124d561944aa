// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Generates vector embeddings. Both indexing and
//     retrieval require it.
//   - VectorIndex: Stores vectors and answers nearest-neighbour queries.
//   - ChunkLog: The metadata log parallel to the vector index.
//   - HistoryStore: Append-only conversation history.
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, the composer falls through
//     to verbatim retrieval and the safe response.
//   - PromptStore: User-customisable prompt templates. Without it, adapters
//     use embedded defaults.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
