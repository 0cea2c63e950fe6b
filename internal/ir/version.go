package ir

// Version constants recorded with every stored run.
const (
	// IRVersion is the formula model schema version. Bump it when the
	// canonical encoding changes, since expression keys change with it.
	IRVersion = "1"

	// EngineVersion is the framecheck version.
	EngineVersion = "0.1.0"
)
