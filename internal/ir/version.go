package ir

// Version constants recorded with every journal session.
const (
	// IRVersion is the version of the record shapes in this package.
	IRVersion = "1"

	// EngineVersion is the backlash engine version.
	EngineVersion = "0.3.0"
)
