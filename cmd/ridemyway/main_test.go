package main

import "testing"

func TestOriginMatcher(t *testing.T) {
	allowed, err := originMatcher("https://ridemyway.app", `^https://ridemyway-[a-z0-9-]+\.vercel\.app$`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://ridemyway.app", true},
		{"http://localhost:5173", true},
		{"https://ridemyway-pr-12.vercel.app", true},
		{"", true},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		if got, _ := allowed(tt.origin); got != tt.want {
			t.Errorf("origin %q: expected %v, got %v", tt.origin, tt.want, got)
		}
	}

	if _, err := originMatcher("", "("); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
