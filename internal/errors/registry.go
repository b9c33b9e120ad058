package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Invariant violations (N001-N099)
	// ============================================

	"N001": {
		Category:   CategoryInvariant,
		Message:    "Prerendered fallback path has no matching dynamic route",
		Suggestion: "The build description's prerenderFallbackFalse map names a page absent from dynamicRoutes. Re-run the framework build; the output graph is inconsistent.",
	},
	"N002": {
		Category:   CategoryInvariant,
		Message:    "Prerendered variant is missing its parent function output",
		Suggestion: "A prerendered path could not be linked to the function that renders its page. Re-run the framework build; the output graph is inconsistent.",
	},

	// ============================================
	// Configuration errors (N101-N199)
	// ============================================

	"N101": {
		Category:   CategoryConfig,
		Message:    "Cannot read project configuration",
		Suggestion: "Check that nextroute.json exists and is valid JSON.",
	},
	"N102": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration value",
		Suggestion: "Check the reported field against the configuration reference.",
	},

	// ============================================
	// Packaging errors (N201-N299)
	// ============================================

	"N201": {
		Category:   CategoryPackaging,
		Message:    "Cannot read the build description",
		Suggestion: "Run the framework build first; the build description document is written into the framework's output directory.",
	},
	"N202": {
		Category:   CategoryPackaging,
		Message:    "Cannot write the routing configuration",
		Suggestion: "Check permissions on the output directory.",
	},
	"N203": {
		Category:   CategoryPackaging,
		Message:    "Static asset copy failed",
		Suggestion: "Check that the framework's static output directory exists and is readable.",
	},

	// ============================================
	// Upload errors (N301-N399)
	// ============================================

	"N301": {
		Category:   CategoryUpload,
		Message:    "Static asset upload failed",
		Suggestion: "Check the offload bucket, region, and credentials in nextroute.json.",
	},
}
