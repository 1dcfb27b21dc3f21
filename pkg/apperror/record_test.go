package apperror

import (
	"fmt"
	"sync"
	"testing"
)

func TestRecord_StackTraceRedaction(t *testing.T) {
	tests := []struct {
		severity  Severity
		wantTrace bool
	}{
		{SeverityCritical, true},
		{SeverityError, true},
		{SeverityWarning, false},
		{SeverityInfo, false},
	}

	for _, tt := range tests {
		e := New("boom", WithSeverity(tt.severity))
		record := e.Record()

		if tt.wantTrace && record.StackTrace == nil {
			t.Errorf("severity %s: expected stack trace in record", tt.severity)
		}
		if !tt.wantTrace && record.StackTrace != nil {
			t.Errorf("severity %s: expected stack trace to be redacted", tt.severity)
		}
	}
}

func TestRecord_Fields(t *testing.T) {
	e := New("query timed out",
		WithSeverity(SeverityWarning),
		WithComponent(ComponentDatabase),
		WithCategory(CategoryDatabaseQueryFailed),
		WithSuggestedFix("add an index"),
	)
	record := e.Record()

	if record.Code != e.Code {
		t.Errorf("code mismatch: %q vs %q", record.Code, e.Code)
	}
	if record.Severity != "warning" || record.Component != "database" {
		t.Errorf("unexpected record taxonomy: %+v", record)
	}
	if record.SuggestedFix == nil || *record.SuggestedFix != "add an index" {
		t.Errorf("suggested fix not carried: %v", record.SuggestedFix)
	}
	if record.Variant != "" || record.Detail != nil {
		t.Errorf("generic errors must not carry variant payload: %+v", record)
	}
}

func TestRecord_VariantPayload(t *testing.T) {
	e := NewLaTeXCompilationError("pdflatex failed", []string{"Undefined control sequence"})
	record := e.Record()

	if record.Variant != string(VariantLaTeXCompilation) {
		t.Errorf("expected latex variant, got %q", record.Variant)
	}
	if record.Detail == nil || len(record.Detail.LaTeXErrors) != 1 {
		t.Fatalf("expected latex errors in detail, got %+v", record.Detail)
	}
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	e := NewFileProcessingError("cannot read upload", "/tmp/upload.pdf",
		WithSeverity(SeverityError),
	)
	e.Context.RequestID = "req-9"

	record := e.Record()
	data, err := record.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	parsed, err := RecordFromJSON(data)
	if err != nil {
		t.Fatalf("RecordFromJSON failed: %v", err)
	}

	if parsed.Code != record.Code {
		t.Errorf("code mismatch after round trip: %q vs %q", parsed.Code, record.Code)
	}
	if parsed.Message != "cannot read upload" {
		t.Errorf("unexpected message: %q", parsed.Message)
	}
	if parsed.Context == nil || parsed.Context.RequestID != "req-9" {
		t.Errorf("context lost in round trip: %+v", parsed.Context)
	}
	if parsed.Detail == nil || parsed.Detail.FilePath != "/tmp/upload.pdf" {
		t.Errorf("detail lost in round trip: %+v", parsed.Detail)
	}
	if !parsed.Timestamp.Equal(record.Timestamp) {
		t.Errorf("timestamp mismatch: %v vs %v", parsed.Timestamp, record.Timestamp)
	}
}

func TestRecord_Validate(t *testing.T) {
	record := New("valid").Record()
	if err := record.Validate(); err != nil {
		t.Errorf("expected valid record, got %v", err)
	}

	bad := record
	bad.Code = "lowercase-code"
	if err := bad.Validate(); err == nil {
		t.Error("expected validation failure for malformed code")
	}

	bad = record
	bad.Severity = "fatal"
	if err := bad.Validate(); err == nil {
		t.Error("expected validation failure for unknown severity")
	}

	bad = record
	bad.Message = "   "
	if err := bad.Validate(); err == nil {
		t.Error("expected validation failure for blank message")
	}
}

func TestRecord_Validate_SharedValidatorKeepsRegistrations(t *testing.T) {
	// Repeated and concurrent calls exercise the shared validator; the
	// custom validations must hold for every call, not just the first.
	record := New("still valid").Record()
	bad := record
	bad.Component = "Not-A-Component"

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				errs[i] = record.Validate()
			} else {
				if bad.Validate() == nil {
					errs[i] = fmt.Errorf("malformed component accepted")
				}
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("call %d: %v", i, err)
		}
	}
}
