package apperror

// Variant discriminates the domain-specific error flavors. The base fields
// are shared by all variants; each variant pins its component (and for some,
// its category) and contributes one payload field in Detail.
type Variant string

const (
	VariantGeneric          Variant = "generic"
	VariantAIProvider       Variant = "ai_provider"
	VariantSchemaValidation Variant = "schema_validation"
	VariantFileProcessing   Variant = "file_processing"
	VariantLaTeXCompilation Variant = "latex_compilation"
	VariantDatabase         Variant = "database"
	VariantExtraction       Variant = "extraction"
	VariantTemplate         Variant = "template"
)

// Detail is the variant-specific payload. Only the fields matching the
// error's Variant are meaningful; the rest stay zero.
type Detail struct {
	Provider         string   `json:"provider,omitempty"`
	SchemaID         int64    `json:"schema_id,omitempty"`
	FilePath         string   `json:"file_path,omitempty"`
	LaTeXErrors      []string `json:"latex_errors,omitempty"`
	Query            string   `json:"query,omitempty"`
	ExtractionMethod string   `json:"extraction_method,omitempty"`
	TemplateID       int64    `json:"template_id,omitempty"`
}

// defaultsFor returns the component and category a variant pins before
// caller options are applied. An empty category keeps the base default.
func defaultsFor(v Variant) (Component, Category, bool) {
	switch v {
	case VariantAIProvider:
		return ComponentAI, "", true
	case VariantSchemaValidation:
		return ComponentSchema, CategoryValidationFailed, true
	case VariantFileProcessing:
		return ComponentFile, "", true
	case VariantLaTeXCompilation:
		return ComponentLaTeX, CategoryLaTeXCompilationFailed, true
	case VariantDatabase:
		return ComponentDatabase, "", true
	case VariantExtraction:
		return ComponentExtraction, CategoryExtractionFailed, true
	case VariantTemplate:
		return ComponentTemplate, "", true
	default:
		return "", "", false
	}
}

// NewAIProviderError constructs an error originating from an AI provider
// integration.
func NewAIProviderError(message, provider string, opts ...Option) *AppError {
	return newVariant(VariantAIProvider, message, Detail{Provider: provider}, opts)
}

// NewSchemaValidationError constructs a schema validation error.
func NewSchemaValidationError(message string, schemaID int64, opts ...Option) *AppError {
	return newVariant(VariantSchemaValidation, message, Detail{SchemaID: schemaID}, opts)
}

// NewFileProcessingError constructs a file processing error.
func NewFileProcessingError(message, filePath string, opts ...Option) *AppError {
	return newVariant(VariantFileProcessing, message, Detail{FilePath: filePath}, opts)
}

// NewLaTeXCompilationError constructs a LaTeX compilation error carrying the
// compiler's reported errors.
func NewLaTeXCompilationError(message string, latexErrors []string, opts ...Option) *AppError {
	if latexErrors == nil {
		latexErrors = []string{}
	}
	return newVariant(VariantLaTeXCompilation, message, Detail{LaTeXErrors: latexErrors}, opts)
}

// NewDatabaseError constructs a database operation error.
func NewDatabaseError(message, query string, opts ...Option) *AppError {
	return newVariant(VariantDatabase, message, Detail{Query: query}, opts)
}

// NewExtractionError constructs a data extraction error.
func NewExtractionError(message, extractionMethod string, opts ...Option) *AppError {
	return newVariant(VariantExtraction, message, Detail{ExtractionMethod: extractionMethod}, opts)
}

// NewTemplateError constructs a template error.
func NewTemplateError(message string, templateID int64, opts ...Option) *AppError {
	return newVariant(VariantTemplate, message, Detail{TemplateID: templateID}, opts)
}
