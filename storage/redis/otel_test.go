package redis

import (
	"strings"
	"testing"
)

func TestFirstKeyExtraction(t *testing.T) {
	tests := []struct {
		name string
		args []interface{}
		want string
	}{
		{"plain get", []interface{}{"get", "onduty:run:token:late:2026-03-02"}, "onduty:run:token:late:2026-03-02"},
		{"command only", []interface{}{"ping"}, ""},
		{"non-string key", []interface{}{"get", 42}, ""},
		{"oversized key capped", []interface{}{"get", strings.Repeat("k", 150)}, strings.Repeat("k", 100) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstKey(tt.args); got != tt.want {
				t.Errorf("firstKey = %q, want %q", got, tt.want)
			}
		})
	}
}
