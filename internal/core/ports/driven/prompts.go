package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the
// binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a
	// sensible default or an error, depending on whether the prompt
	// is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next
	// access. Useful when prompts have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// Templates exist per system language; use PromptName to resolve the
// language-qualified name.
const (
	// PromptGroundedAnswer instructs the model to answer only from
	// the retrieved context. Placeholders: %s (context), %s (question).
	PromptGroundedAnswer = "grounded_answer"

	// PromptUngroundedAnswer asks the model to answer from its own
	// knowledge. Placeholder: %s (question).
	PromptUngroundedAnswer = "ungrounded_answer"
)

// PromptName returns the language-qualified prompt name, e.g.
// "grounded_answer_pt".
func PromptName(base, language string) string {
	return base + "_" + language
}
