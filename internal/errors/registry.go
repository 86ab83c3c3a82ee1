package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactive Graph Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryReactive,
		Message:  "Circular derivation",
		Detail:   "A derivation read itself while computing. Break the cycle by moving one side into a cell written from a reactor.",
		DocURL:   "https://weave.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryReactive,
		Message:  "Flush pass limit exceeded",
		Detail:   "Reactors kept writing cells that re-queued other reactors. This usually means two reactors write each other's inputs.",
		DocURL:   "https://weave.dev/docs/errors/E002",
	},
	"E004": {
		Category: CategoryReactive,
		Message:  "Write to disposed cell",
		Detail:   "The cell's owning scope has been disposed; the write was dropped.",
		DocURL:   "https://weave.dev/docs/errors/E004",
	},
	"E007": {
		Category: CategoryReactive,
		Message:  "Reactor failed",
		Detail:   "A reactor panicked while running. Its remaining tier was deferred to the next flush.",
		DocURL:   "https://weave.dev/docs/errors/E007",
	},

	// ============================================
	// Reconciler Errors (E020-E039)
	// ============================================

	"E003": {
		Category: CategoryReconcile,
		Message:  "Unknown patch target",
		Detail:   "An edit script referenced a node that is not present in the live tree.",
		DocURL:   "https://weave.dev/docs/errors/E003",
	},
	"E020": {
		Category: CategoryReconcile,
		Message:  "Patcher not mounted",
		Detail:   "Apply was called before the first Mount.",
		DocURL:   "https://weave.dev/docs/errors/E020",
	},

	// ============================================
	// Protocol Errors (E040-E059)
	// ============================================

	"E005": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
		Detail:   "A binary frame could not be decoded.",
		DocURL:   "https://weave.dev/docs/errors/E005",
	},
	"E040": {
		Category: CategoryProtocol,
		Message:  "Frame exceeds limits",
		Detail:   "A decoded length exceeded the configured protocol limits.",
		DocURL:   "https://weave.dev/docs/errors/E040",
	},
	"E041": {
		Category: CategoryProtocol,
		Message:  "Stream unavailable",
		Detail:   "The stream hub is closed or its runtime loop is not running.",
		DocURL:   "https://weave.dev/docs/errors/E041",
	},

	// ============================================
	// Configuration Errors (E060-E079)
	// ============================================

	"E006": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be read or failed validation.",
		DocURL:   "https://weave.dev/docs/errors/E006",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
