package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestSpellbookError_Error(t *testing.T) {
	err := &SpellbookError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "spell not found",
	}

	expected := "NOT_FOUND: spell not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("input is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "input is required" {
		t.Errorf("Message = %q, want %q", err.Message, "input is required")
	}
}

func TestNewUnknownCategory(t *testing.T) {
	err := NewUnknownCategory("Warlock")

	if err.Code != ErrUnknownCategory {
		t.Errorf("Code = %q, want %q", err.Code, ErrUnknownCategory)
	}
	if err.Details["category"] != "Warlock" {
		t.Errorf("Details[category] = %v, want %q", err.Details["category"], "Warlock")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("Fireball")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "Fireball" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "Fireball")
	}
}

func TestNewFileNotFound(t *testing.T) {
	err := NewFileNotFound("/tmp/spells.csv")

	if err.Code != ErrFileNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrFileNotFound)
	}
	if err.Details["path"] != "/tmp/spells.csv" {
		t.Errorf("Details[path] = %v, want %q", err.Details["path"], "/tmp/spells.csv")
	}
}

func TestNewMalformedRecord(t *testing.T) {
	tests := []struct {
		name    string
		line    int
		wantMsg string
	}{
		{name: "with line", line: 7, wantMsg: "line 7: record has 3 fields, need at least 45"},
		{name: "without line", line: 0, wantMsg: "record has 3 fields, need at least 45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMalformedRecord(tt.line, 3, 45)
			if err.Code != ErrMalformedRecord {
				t.Errorf("Code = %q, want %q", err.Code, ErrMalformedRecord)
			}
			if err.Status != 422 {
				t.Errorf("Status = %d, want 422", err.Status)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Details["fields"] != 3 || err.Details["required"] != 45 {
				t.Errorf("Details = %v", err.Details)
			}
		})
	}
}

func TestNewLocked(t *testing.T) {
	err := NewLocked("/tmp/book.epub")

	if err.Code != ErrLocked || err.Status != 409 {
		t.Errorf("got %s/%d, want %s/409", err.Code, err.Status, ErrLocked)
	}
	if err.Details["path"] != "/tmp/book.epub" {
		t.Errorf("Details[path] = %v", err.Details["path"])
	}
}

func TestNewInvalidPackage(t *testing.T) {
	tests := []struct {
		name     string
		problems []string
		want     string
	}{
		{name: "none", problems: nil, want: "invalid package"},
		{name: "one", problems: []string{"mimetype is not first"}, want: "invalid package: mimetype is not first"},
		{name: "many", problems: []string{"a", "b", "c"}, want: "invalid package: a (and 2 more)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewInvalidPackage(tt.problems)
			if err.Code != ErrInvalidPackage || err.Status != 422 {
				t.Errorf("got %s/%d, want %s/422", err.Code, err.Status, ErrInvalidPackage)
			}
			if err.Message != tt.want {
				t.Errorf("Message = %q, want %q", err.Message, tt.want)
			}
		})
	}
}

func TestNewCancelled(t *testing.T) {
	err := NewCancelled("build")

	if err.Code != ErrCancelled {
		t.Errorf("Code = %q, want %q", err.Code, ErrCancelled)
	}
	if err.Message != "build cancelled" {
		t.Errorf("Message = %q, want %q", err.Message, "build cancelled")
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		err := NewInternal(fmt.Errorf("disk full"))
		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Message != "disk full" {
			t.Errorf("Message = %q, want %q", err.Message, "disk full")
		}
	})

	t.Run("nil error", func(t *testing.T) {
		err := NewInternal(nil)
		if err.Message != "internal error" {
			t.Errorf("Message = %q, want %q", err.Message, "internal error")
		}
	})
}

func TestIs(t *testing.T) {
	base := NewMalformedRecord(2, 1, 45)
	wrapped := fmt.Errorf("load: %w", base)

	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{name: "direct match", err: base, code: ErrMalformedRecord, want: true},
		{name: "wrapped match", err: wrapped, code: ErrMalformedRecord, want: true},
		{name: "code mismatch", err: base, code: ErrNotFound, want: false},
		{name: "plain error", err: stderrors.New("boom"), code: ErrInternal, want: false},
		{name: "nil", err: nil, code: ErrInternal, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs(t *testing.T) {
	nf := NewNotFound("Aid")
	if got := As(fmt.Errorf("fetch: %w", nf)); got != nf {
		t.Errorf("As() = %v, want the wrapped error", got)
	}

	got := As(stderrors.New("boom"))
	if got.Code != ErrInternal || got.Message != "boom" {
		t.Errorf("As(plain) = %+v, want INTERNAL boom", got)
	}
}
