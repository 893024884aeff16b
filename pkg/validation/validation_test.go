package validation

import "testing"

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"summer-exhibition-2025", true},
		{"about", true},
		{"a1", true},
		{"", false},
		{"Trailing-", false},
		{"-leading", false},
		{"double--hyphen", false},
		{"Upper-Case", false},
		{"space here", false},
		{"umlaut-ü", false},
	}
	for _, tt := range tests {
		if got := ValidateSlug(tt.slug); got != tt.want {
			t.Errorf("ValidateSlug(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Summer Exhibition 2025", "summer-exhibition-2025"},
		{"  Hello,   World!  ", "hello-world"},
		{"Äther & Licht", "ther-licht"},
		{"already-a-slug", "already-a-slug"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSlugifyProducesValidSlugs(t *testing.T) {
	for _, title := range []string{"Summer Exhibition 2025", "a", "Projekt: Nordlicht (2024)"} {
		slug := Slugify(title)
		if slug != "" && !ValidateSlug(slug) {
			t.Errorf("Slugify(%q) produced invalid slug %q", title, slug)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("info@atelierhaus.de") {
		t.Error("expected valid email to pass")
	}
	if ValidateEmail("not-an-email") {
		t.Error("expected invalid email to fail")
	}
}

func TestValidatePassword(t *testing.T) {
	if !ValidatePassword("Str0ng!pass") {
		t.Error("expected strong password to pass")
	}
	if ValidatePassword("weak") {
		t.Error("expected short password to fail")
	}
	if ValidatePassword("alllowercase1!") {
		t.Error("expected password without upper case to fail")
	}
}
