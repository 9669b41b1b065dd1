package version

import (
	"strings"
	"testing"
)

func TestShort(t *testing.T) {
	tests := map[string]struct {
		info     Info
		expected string
	}{
		"ldflags set": {
			info:     Info{GitCommit: "abc1234", GitBranch: "main", BuildTime: "2026-03-14T09:26:53Z"},
			expected: "abc1234 (main, built 2026-03-14T09:26:53Z)",
		},
		"long commit truncated": {
			info:     Info{GitCommit: "0123456789abcdef0123", GitBranch: "main", BuildTime: "t"},
			expected: "0123456789ab",
		},
		"nothing known": {
			info:     Info{},
			expected: "unknown",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := tt.info.Short()
			if !strings.Contains(got, tt.expected) {
				t.Errorf("Short() = %q, expected it to contain %q", got, tt.expected)
			}
		})
	}
}
