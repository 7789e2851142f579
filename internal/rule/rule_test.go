package rule

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNew_RejectsEmptyParts(t *testing.T) {
	if _, err := New("", "a"); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
	if _, err := New("custom-header", ""); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}
	if _, err := New("custom-header", "a"); err != nil {
		t.Errorf("expected well-formed rule to construct, got %v", err)
	}
}

func TestInject_Idempotent(t *testing.T) {
	r, err := New("custom-header", "a")
	if err != nil {
		t.Fatal(err)
	}

	h := http.Header{}
	r.Inject(h)
	r.Inject(h)

	if got := h.Values("Custom-Header"); len(got) != 1 {
		t.Fatalf("expected exactly one header entry, got %d: %v", len(got), got)
	}
	if h.Get("custom-header") != "a" {
		t.Errorf("expected value a, got %q", h.Get("custom-header"))
	}
}

func TestInject_OverwritesExisting(t *testing.T) {
	r, _ := New("custom-header", "a")

	h := http.Header{}
	h.Set("custom-header", "stale")
	r.Inject(h)

	if got := h.Get("custom-header"); got != "a" {
		t.Errorf("expected overwritten value a, got %q", got)
	}
	if got := h.Values("Custom-Header"); len(got) != 1 {
		t.Errorf("expected single entry after overwrite, got %v", got)
	}
}

func TestCheck_ExactValueMatch(t *testing.T) {
	r, _ := New("custom-header", "a")

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"exact match", "a", true},
		{"wrong value", "b", false},
		{"case differs", "A", false},
		{"untrimmed", " a", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			h.Set("custom-header", tt.value)
			if got := r.Check(h); got != tt.want {
				t.Errorf("Check(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestCheck_AbsentHeader(t *testing.T) {
	r, _ := New("custom-header", "a")
	if r.Check(http.Header{}) {
		t.Error("expected absent header to fail the check")
	}
}

func TestCheck_NameLookupCaseInsensitive(t *testing.T) {
	// Header name lookup rides on http.Header canonicalization; only the
	// value comparison is exact.
	r, _ := New("CUSTOM-HEADER", "a")
	h := http.Header{}
	h.Set("custom-header", "a")
	if !r.Check(h) {
		t.Error("expected canonicalized name lookup to match")
	}
}

func TestDenial_NamesHeaderAndValue(t *testing.T) {
	r, _ := New("custom-header", "a")
	body := r.Denial()
	if !strings.Contains(body, "custom-header") || !strings.Contains(body, "'a'") {
		t.Errorf("denial body should mention header name and value, got %q", body)
	}
}
