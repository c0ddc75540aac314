package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPackageGuardAllowsPlainNames(t *testing.T) {
	guard, err := NewPackageGuard("")
	if err != nil {
		t.Fatalf("NewPackageGuard error: %v", err)
	}

	for _, name := range []string{"requests", "PyYAML", "opencv-python", "scikit_learn", "zope.interface", "a"} {
		if verdict := guard.Evaluate(name); !verdict.Allowed {
			t.Errorf("expected %q to be allowed, got %+v", name, verdict)
		}
	}
}

func TestPackageGuardBlocksUnsafeNames(t *testing.T) {
	guard, err := NewPackageGuard("")
	if err != nil {
		t.Fatalf("NewPackageGuard error: %v", err)
	}

	tests := []struct {
		name string
		rule string
	}{
		{"git+https://github.com/x/y", "vcs_reference"},
		{"https://evil.example/pkg.tar.gz", "url"},
		{"../local", "local_path"},
		{"--index-url", "option"},
		{"pkg-1.0-py3-none-any.whl", "archive"},
		{"bad name", "pep508_name"},
		{"trailing-", "pep508_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := guard.Evaluate(tt.name)
			if verdict.Allowed {
				t.Fatalf("expected %q to be blocked", tt.name)
			}
			if verdict.Rule != tt.rule {
				t.Errorf("got rule %s, want %s", verdict.Rule, tt.rule)
			}
			if verdict.Reason == "" {
				t.Error("expected a reason")
			}
		})
	}
}

func TestPackageGuardCustomRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := "rules:\n  - name: no_tensorflow\n    pattern: '^tensorflow'\n    reason: too large\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	guard, err := NewPackageGuard(path)
	if err != nil {
		t.Fatalf("NewPackageGuard error: %v", err)
	}
	if guard.RuleCount() != 1 {
		t.Fatalf("expected 1 rule, got %d", guard.RuleCount())
	}
	if verdict := guard.Evaluate("tensorflow-gpu"); verdict.Allowed || verdict.Reason != "too large" {
		t.Fatalf("unexpected verdict %+v", verdict)
	}
	if verdict := guard.Evaluate("numpy"); !verdict.Allowed {
		t.Fatalf("numpy should be allowed, got %+v", verdict)
	}
}

func TestPackageGuardInvalidPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("rules:\n  - name: broken\n    pattern: '('\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewPackageGuard(path); err == nil {
		t.Fatal("expected compile error")
	}
}
