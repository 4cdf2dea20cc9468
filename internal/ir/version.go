package ir

// Version constants for the expression language and engine.
const (
	// LanguageVersion is the condition language version recorded with every
	// stored run. Bump when grammar or evaluation semantics change.
	LanguageVersion = "1"

	// EngineVersion is the legends engine version.
	EngineVersion = "0.1.0"
)
