package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key represents a unique identifier for a cached upstream response.
type Key struct {
	// Endpoint is the upstream endpoint path (e.g., "/artist/songPaging.htm")
	Endpoint string

	// QueryParams are the query parameters (e.g., {"artistId": "123", "startIndex": "1"})
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: crawl:endpoint:query1=val1:query2=val2
//
// Example:
//
//	crawl:artist/songPaging.htm:artistId=10001:pageSize=2000:startIndex=1
func (k Key) String() string {
	parts := []string{"crawl"}

	// Add endpoint (normalize path)
	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Add query params (sorted for determinism)
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
