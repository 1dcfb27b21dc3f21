package apperror

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

var testCodePattern = regexp.MustCompile(`^[A-Z0-9_]+-[0-9A-F]{8}$`)

func TestNew_Defaults(t *testing.T) {
	e := New("something broke")

	if e.Severity != SeverityError {
		t.Errorf("expected severity %q, got %q", SeverityError, e.Severity)
	}
	if e.Component != ComponentSystem {
		t.Errorf("expected component %q, got %q", ComponentSystem, e.Component)
	}
	if e.Category != CategorySystemError {
		t.Errorf("expected category %q, got %q", CategorySystemError, e.Category)
	}
	if e.Variant != VariantGeneric {
		t.Errorf("expected generic variant, got %q", e.Variant)
	}
	if e.Context == nil {
		t.Error("expected non-nil context")
	}
	if e.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if e.StackTrace == "" {
		t.Error("expected stack trace to be captured")
	}
	if e.UserMessage != "An error occurred. Please try again or contact support." {
		t.Errorf("unexpected default user message: %q", e.UserMessage)
	}
}

func TestNew_OptionsOverrideDefaults(t *testing.T) {
	cause := errors.New("root cause")
	e := New("db write failed",
		WithSeverity(SeverityCritical),
		WithComponent(ComponentDatabase),
		WithCategory(CategoryDatabaseQueryFailed),
		WithCause(cause),
		WithSuggestedFix("check the connection pool"),
	)

	if e.Severity != SeverityCritical {
		t.Errorf("expected critical severity, got %q", e.Severity)
	}
	if e.Component != ComponentDatabase {
		t.Errorf("expected database component, got %q", e.Component)
	}
	if e.Category != CategoryDatabaseQueryFailed {
		t.Errorf("expected category override, got %q", e.Category)
	}
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if e.SuggestedFix != "check the connection pool" {
		t.Errorf("unexpected suggested fix: %q", e.SuggestedFix)
	}
}

func TestGenerateCode_Format(t *testing.T) {
	code := GenerateCode(ComponentLaTeX)

	if !testCodePattern.MatchString(code) {
		t.Errorf("code %q does not match expected format", code)
	}
	if !strings.HasPrefix(code, "LATEX-") {
		t.Errorf("expected LATEX- prefix, got %q", code)
	}
}

func TestGenerateCode_UnderscoreComponent(t *testing.T) {
	code := GenerateCode(ComponentFileService)

	if !strings.HasPrefix(code, "FILE_SERVICE-") {
		t.Errorf("expected FILE_SERVICE- prefix, got %q", code)
	}
	if !testCodePattern.MatchString(code) {
		t.Errorf("code %q does not match expected format", code)
	}
}

func TestGenerateCode_Distinct(t *testing.T) {
	a := GenerateCode(ComponentSystem)
	b := GenerateCode(ComponentSystem)

	if a == b {
		t.Errorf("expected distinct codes, got %q twice", a)
	}
}

func TestWithCode_Override(t *testing.T) {
	e := New("boom", WithCode("SYSTEM-DEADBEEF"))

	if e.Code != "SYSTEM-DEADBEEF" {
		t.Errorf("expected code override, got %q", e.Code)
	}
}

func TestError_Format(t *testing.T) {
	e := New("disk full",
		WithComponent(ComponentFile),
		WithCode("FILE-AABBCCDD"),
	)

	want := "[FILE-AABBCCDD] FILE: disk full"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestUnwrap(t *testing.T) {
	if New("no cause").Unwrap() != nil {
		t.Error("expected nil cause by default")
	}

	cause := errors.New("inner")
	if New("outer", WithCause(cause)).Unwrap() != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestAttachContext(t *testing.T) {
	e := New("request failed")
	ctx := &Context{RequestID: "req-42", UserID: "user-7"}

	returned := e.AttachContext(ctx)

	if returned != e {
		t.Error("expected AttachContext to return the same error")
	}
	if e.Context.RequestID != "req-42" || e.Context.UserID != "user-7" {
		t.Errorf("context not attached: %+v", e.Context)
	}
}

func TestContext_WithData(t *testing.T) {
	ctx := &Context{}
	ctx.WithData("template", "invoice").WithData("attempt", 3)

	if ctx.AdditionalData["template"] != "invoice" {
		t.Errorf("unexpected data: %v", ctx.AdditionalData)
	}
	if ctx.AdditionalData["attempt"] != 3 {
		t.Errorf("unexpected data: %v", ctx.AdditionalData)
	}
}

func TestDefaultUserMessage(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryFileNotFound, "File not found. Please check the file path."},
		{CategoryLaTeXCompilationFailed, "Document compilation failed. Please check the template."},
		{CategoryValidationFailed, "Data validation failed. Please check your input."},
		{CategoryDatabaseConnection, "Database connection error. Please try again."},
		{CategoryNotImplemented, "An error occurred. Please try again or contact support."},
		{Category("made_up_category"), "An error occurred. Please try again or contact support."},
	}

	for _, tt := range tests {
		if got := DefaultUserMessage(tt.category); got != tt.want {
			t.Errorf("DefaultUserMessage(%q) = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestSeverity_IncludesStackTrace(t *testing.T) {
	tests := []struct {
		severity Severity
		want     bool
	}{
		{SeverityCritical, true},
		{SeverityError, true},
		{SeverityWarning, false},
		{SeverityInfo, false},
	}

	for _, tt := range tests {
		if got := tt.severity.IncludesStackTrace(); got != tt.want {
			t.Errorf("%s.IncludesStackTrace() = %v, want %v", tt.severity, got, tt.want)
		}
	}
}
