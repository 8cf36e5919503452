package push

import (
	"context"
	"testing"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		size      int
		wantParts []int
	}{
		{"empty population", 0, 500, nil},
		{"under one batch", 3, 500, []int{3}},
		{"exact batch", 500, 500, []int{500}},
		{"one over", 501, 500, []int{500, 1}},
		{"several batches", 1250, 500, []int{500, 500, 250}},
		{"zero size falls back", 501, 0, []int{500, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := make([]Message, tt.total)
			parts := chunk(msgs, tt.size)

			if len(parts) != len(tt.wantParts) {
				t.Fatalf("chunk produced %d parts, want %d", len(parts), len(tt.wantParts))
			}
			for i, p := range parts {
				if len(p) != tt.wantParts[i] {
					t.Errorf("part %d has %d messages, want %d", i, len(p), tt.wantParts[i])
				}
			}
		})
	}
}

func TestMockClientBatchCounts(t *testing.T) {
	m := NewMockClient()
	m.FailTokens["bad-token"] = true

	msgs := []Message{
		{Token: "t1", Title: "a"},
		{Token: "bad-token", Title: "b"},
		{Token: "t3", Title: "c"},
	}

	result, err := m.SendBatch(context.Background(), msgs)
	if err != nil {
		t.Fatalf("SendBatch returned error: %v", err)
	}

	if result.SuccessCount != 2 || result.FailureCount != 1 {
		t.Errorf("got success=%d failure=%d, want success=2 failure=1",
			result.SuccessCount, result.FailureCount)
	}
	if len(m.Calls) != 3 {
		t.Errorf("all messages should be attempted, got %d calls", len(m.Calls))
	}
}
