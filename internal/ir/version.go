package ir

// Version constants.
const (
	// SchemaVersion is the version of the relational schema the planner
	// generates SQL for.
	SchemaVersion = "1"

	// EngineVersion is the papersearch engine version.
	EngineVersion = "0.1.0"
)
