package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		expected string
	}{
		{
			name:     "endpoint only",
			key:      Key{Endpoint: "/artist/info.json"},
			expected: "crawl:artist/info.json",
		},
		{
			name: "with query params sorted",
			key: Key{
				Endpoint: "/artist/songPaging.json",
				QueryParams: url.Values{
					"startIndex": {"1"},
					"artistId":   {"261143"},
					"pageSize":   {"1000"},
				},
			},
			expected: "crawl:artist/songPaging.json:artistId=261143:pageSize=1000:startIndex=1",
		},
		{
			name:     "empty endpoint",
			key:      Key{},
			expected: "crawl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestKey_StringDeterministic(t *testing.T) {
	key := Key{
		Endpoint: "/comments/list.json",
		QueryParams: url.Values{
			"albumId":    {"a1"},
			"artistId":   {"261143"},
			"startIndex": {"11"},
			"pageSize":   {"10"},
			"orderBy":    {"ISSUE_DATE"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q vs %q", got, first)
		}
	}
}
