package tui

import (
	"errors"
	"testing"
)

func TestIsInteractive(t *testing.T) {
	// Depends on how the tests are run; only check it does not panic.
	_ = IsInteractive()
}

func TestShouldPrompt(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"GitHub Actions", "GITHUB_ACTIONS", "true"},
		{"GitLab CI", "GITLAB_CI", "true"},
		{"Jenkins", "JENKINS_URL", "http://jenkins.local"},
		{"Generic CI", "CI", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			if ShouldPrompt() {
				t.Errorf("ShouldPrompt() = true with %s set", tt.env)
			}
		})
	}
}

func TestPromptForSelectWithoutOptions(t *testing.T) {
	_, err := PromptForSelect("Choose:", nil)
	if !errors.Is(err, ErrNoOptions) {
		t.Errorf("expected ErrNoOptions, got %v", err)
	}
}

func TestRequired(t *testing.T) {
	check := required("Email:")
	if err := check("  "); err == nil || err.Error() != "email is required" {
		t.Errorf("unexpected error for blank input: %v", err)
	}
	if err := check("a@b.test"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
