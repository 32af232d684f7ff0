package lifecycle

import "time"

// DefaultStepInterval is how often the progress indicator advances.
const DefaultStepInterval = 3 * time.Second

// DefaultSteps are the cosmetic progress labels shown while a request is in
// flight. They do not reflect actual pipeline progress.
var DefaultSteps = []string{
	"Ingesting document data...",
	"Extracting ledger balances...",
	"Cross-referencing accounts and loans...",
	"Detecting spending anomalies...",
	"Calculating category distributions...",
	"Synthesizing savings suggestions...",
	"Finalizing charts...",
}
