package llm

import "context"

// Request bundles the inputs for a single completion call.
type Request struct {
	// System is the system prompt establishing the model's role.
	System string

	// User is the user-turn prompt carrying the actual task.
	User string

	// Temperature controls sampling randomness. Zero means provider default.
	Temperature float64

	// JSONMode asks the provider to constrain output to a single JSON object.
	// Providers without native JSON modes may satisfy this through prompting;
	// callers must still validate the returned text.
	JSONMode bool
}

// Generator is the contract for language-model backends. Implementations live
// under contrib/generator and wrap the official provider SDKs.
type Generator interface {
	// Complete returns the model's text for the given request. When
	// Request.JSONMode is set the returned string is expected to be a JSON
	// object; callers treat a parse failure the same as a call failure.
	Complete(ctx context.Context, req Request) (string, error)
}
