package validation

import (
	"slices"
	"testing"

	apperrors "go-plant-inspector/internal/errors"
)

// sourceSchemes is the scheme list a repository with every source enabled passes in
var sourceSchemes = []string{"azblob", "file", "http", "https"}

func assertValidationMessage(t *testing.T, ref string, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %q to be rejected", ref)
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("Expected AppError for %q, got %T", ref, err)
	}
	if appErr.Type != apperrors.ErrorTypeValidation {
		t.Errorf("Expected validation error for %q, got %s", ref, appErr.Type)
	}
	if appErr.Message != want {
		t.Errorf("Expected %q for %q, got %q", want, ref, appErr.Message)
	}
}

func TestURLValidator_DefaultAcceptsWebPhotosOnly(t *testing.T) {
	v := NewURLValidator()

	if got := v.AllowedSchemes(); !slices.Equal(got, []string{"http", "https"}) {
		t.Fatalf("Expected http and https by default, got %v", got)
	}

	tests := []struct {
		ref     string
		wantMsg string // empty means accepted
	}{
		{"https://plants.example.com/monstera/leaf-01.jpg", ""},
		{"http://greenhouse.local:8080/cam/bench-3.png", ""},
		{"https://10.0.0.12/snapshots/fern.gif?t=1700000000", ""},
		{"azblob://plant-photos/pothos.jpg", "URL scheme not allowed"},
		{"file:///srv/photos/fern.jpg", "URL scheme not allowed"},
		{"data:image/png;base64,iVBORw0KGgo=", "URL scheme not allowed"},
		{"https:///leaf.jpg", "URL must have a valid host"},
		{"leaf.jpg", "URL scheme not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			err := v.ValidateImageURL(tt.ref)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Expected %q to be accepted, got %v", tt.ref, err)
				}
				return
			}
			assertValidationMessage(t, tt.ref, err, tt.wantMsg)
		})
	}
}

func TestURLValidator_BlankReferences(t *testing.T) {
	v := NewURLValidatorWithOptions(sourceSchemes, nil)

	for _, ref := range []string{"", "  ", "\n\t"} {
		assertValidationMessage(t, ref, v.ValidateImageURL(ref), "URL cannot be empty")
	}
}

func TestURLValidator_MalformedReference(t *testing.T) {
	v := NewURLValidatorWithOptions(sourceSchemes, nil)

	assertValidationMessage(t, "https://plants.example.com/%zz", v.ValidateImageURL("https://plants.example.com/%zz"), "Invalid URL format")
}

func TestURLValidator_AllSources(t *testing.T) {
	v := NewURLValidatorWithOptions(sourceSchemes, nil)

	tests := []struct {
		name    string
		ref     string
		wantMsg string
	}{
		{"blob with container", "azblob://plant-photos/2024/calathea.jpg", ""},
		{"blob without container", "azblob:///calathea.jpg", "URL must have a valid host"},
		{"local absolute path", "file:///ferns/boston.png", ""},
		{"local relative path", "file://ferns/boston.png", ""},
		{"local without path", "file://", "URL must have a path"},
		{"local opaque path", "file:ferns/boston.png", ""},
		{"web photo", "https://plants.example.com/aloe.jpg", ""},
		{"unregistered scheme", "s3://bucket/aloe.jpg", "URL scheme not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateImageURL(tt.ref)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Expected %q to be accepted, got %v", tt.ref, err)
				}
				return
			}
			assertValidationMessage(t, tt.ref, err, tt.wantMsg)
		})
	}
}

func TestURLValidator_SchemeListFollowsRegisteredSources(t *testing.T) {
	// A repository without blob credentials only registers web and local sources
	v := NewURLValidatorWithOptions([]string{"file", "http", "https"}, nil)

	if err := v.ValidateImageURL("file:///ferns/boston.png"); err != nil {
		t.Errorf("Expected local photo to be accepted, got %v", err)
	}
	assertValidationMessage(t, "azblob://plant-photos/pothos.jpg",
		v.ValidateImageURL("azblob://plant-photos/pothos.jpg"), "URL scheme not allowed")
}

func TestURLValidator_HostAllowList(t *testing.T) {
	v := NewURLValidatorWithOptions([]string{"https", "file"}, []string{"plants.example.com"})

	if err := v.ValidateImageURL("https://plants.example.com/ivy.jpg"); err != nil {
		t.Errorf("Expected allow-listed host to pass, got %v", err)
	}
	assertValidationMessage(t, "https://cdn.example.net/ivy.jpg",
		v.ValidateImageURL("https://cdn.example.net/ivy.jpg"), "URL host not allowed")

	// Hostless sources are not subject to the host list
	if err := v.ValidateImageURL("file:///ivy.jpg"); err != nil {
		t.Errorf("Expected local photo to bypass the host list, got %v", err)
	}
}

func TestAllowedSchemes_ReturnsCopy(t *testing.T) {
	v := NewURLValidatorWithOptions(sourceSchemes, nil)
	schemes := v.AllowedSchemes()
	schemes[0] = "gopher"

	if err := v.ValidateImageURL("azblob://plant-photos/pothos.jpg"); err != nil {
		t.Errorf("Expected mutation of returned slice not to affect validator, got %v", err)
	}
}
