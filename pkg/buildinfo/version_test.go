package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	for _, want := range []string{"version: dev", "commit: none", "built: unknown"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestTemplate(t *testing.T) {
	if !strings.HasPrefix(Template(), "{{.Name}} version dev") {
		t.Errorf("Template() = %q", Template())
	}
}

func TestUserAgent(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "v1.2.3"
	if got := UserAgent(); got != "popgraph/v1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
}
