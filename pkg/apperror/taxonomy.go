package apperror

// Severity represents the operational impact of an error
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// IncludesStackTrace reports whether persisted records for this severity
// carry the captured stack trace. Warning and info records are redacted.
func (s Severity) IncludesStackTrace() bool {
	return s == SeverityCritical || s == SeverityError
}

// Component identifies the subsystem where an error originated. It is used
// purely as a partition key for routing and file naming, so new components
// can be added without touching the logging pipeline.
type Component string

const (
	ComponentAI          Component = "ai"
	ComponentSchema      Component = "schema"
	ComponentFile        Component = "file"
	ComponentTemplate    Component = "template"
	ComponentLaTeX       Component = "latex"
	ComponentDatabase    Component = "database"
	ComponentAPI         Component = "api"
	ComponentFrontend    Component = "frontend"
	ComponentExtraction  Component = "extraction"
	ComponentCompilation Component = "compilation"
	ComponentConversion  Component = "conversion"
	ComponentAuth        Component = "auth"
	ComponentValidation  Component = "validation"
	ComponentSystem      Component = "system"

	ComponentProjectService           Component = "project_service"
	ComponentWorkflowService          Component = "workflow_service"
	ComponentJobGroupService          Component = "job_group_service"
	ComponentExtractionProfileService Component = "extraction_profile_service"
	ComponentAIService                Component = "ai_service"
	ComponentSchemaService            Component = "schema_service"
	ComponentFileService              Component = "file_service"
	ComponentTemplateService          Component = "template_service"
	ComponentLaTeXCompiler            Component = "latex_compiler"
)

// Category classifies the semantic kind of an error. Categories are grouped
// by domain below but flat in representation; any category may occur under
// any component.
type Category string

const (
	// API categories
	CategoryAPIKeyInvalid      Category = "api_key_invalid"
	CategoryAPIRateLimit       Category = "api_rate_limit"
	CategoryAPITimeout         Category = "api_timeout"
	CategoryAPIConnection      Category = "api_connection"
	CategoryAPIResponseInvalid Category = "api_response_invalid"

	// Validation categories
	CategoryValidationFailed Category = "validation_failed"
	CategorySchemaInvalid    Category = "schema_invalid"
	CategoryXMLInvalid       Category = "xml_invalid"
	CategoryDataMissing      Category = "data_missing"
	CategoryDataConflict     Category = "data_conflict"

	// File categories
	CategoryFileNotFound        Category = "file_not_found"
	CategoryFileReadError       Category = "file_read_error"
	CategoryFileWriteError      Category = "file_write_error"
	CategoryFileTypeUnsupported Category = "file_type_unsupported"
	CategoryFileTooLarge        Category = "file_too_large"
	CategoryFileCorrupted       Category = "file_corrupted"

	// LaTeX categories
	CategoryLaTeXCompilationFailed Category = "latex_compilation_failed"
	CategoryLaTeXSyntaxError       Category = "latex_syntax_error"
	CategoryLaTeXPackageMissing    Category = "latex_package_missing"
	CategoryLaTeXCommandUndefined  Category = "latex_command_undefined"

	// Database categories
	CategoryDatabaseConnection  Category = "database_connection"
	CategoryDatabaseQueryFailed Category = "database_query_failed"
	CategoryDatabaseConstraint  Category = "database_constraint"
	CategoryDatabaseTransaction Category = "database_transaction"

	// Extraction categories
	CategoryExtractionFailed  Category = "extraction_failed"
	CategoryExtractionParsing Category = "extraction_parsing"
	CategoryExtractionTimeout Category = "extraction_timeout"

	// Template categories
	CategoryTemplateNotFound         Category = "template_not_found"
	CategoryTemplateInvalid          Category = "template_invalid"
	CategoryTemplateGenerationFailed Category = "template_generation_failed"

	// System categories
	CategorySystemError       Category = "system_error"
	CategoryPermissionDenied  Category = "permission_denied"
	CategoryResourceExhausted Category = "resource_exhausted"
	CategoryNotImplemented    Category = "not_implemented"

	// General categories
	CategoryNotFound           Category = "not_found"
	CategoryValidationError    Category = "validation_error"
	CategoryProcessingError    Category = "processing_error"
	CategoryConfigurationError Category = "configuration_error"
	CategoryDatabaseError      Category = "database_error"

	CategoryUnknown Category = "unknown"
)

// userMessages maps categories to the canned sentence shown to end users.
// Categories without an entry fall back to genericUserMessage.
var userMessages = map[Category]string{
	CategoryAPIKeyInvalid:          "Invalid API key. Please check your API configuration.",
	CategoryAPIRateLimit:           "Rate limit exceeded. Please wait a moment and try again.",
	CategoryAPITimeout:             "Request timed out. Please try again.",
	CategoryFileNotFound:           "File not found. Please check the file path.",
	CategoryFileTooLarge:           "File is too large. Please use a smaller file.",
	CategoryLaTeXCompilationFailed: "Document compilation failed. Please check the template.",
	CategoryValidationFailed:       "Data validation failed. Please check your input.",
	CategoryDatabaseConnection:     "Database connection error. Please try again.",
}

const genericUserMessage = "An error occurred. Please try again or contact support."

// DefaultUserMessage returns the user-facing sentence for a category. The
// lookup is total: unrecognized categories yield a generic message.
func DefaultUserMessage(c Category) string {
	if msg, ok := userMessages[c]; ok {
		return msg
	}
	return genericUserMessage
}
