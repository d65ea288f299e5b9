package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "endpoint only",
			key:  Key{Endpoint: "/api/v2/studies"},
			want: "ctgov:api/v2/studies",
		},
		{
			name: "empty key",
			key:  Key{},
			want: "ctgov",
		},
		{
			name: "query params sorted",
			key: Key{
				Endpoint: "/api/v2/studies",
				QueryParams: url.Values{
					"query.cond": {"melanoma"},
					"pageSize":   {"100"},
					"countTotal": {"true"},
				},
			},
			want: "ctgov:api/v2/studies:countTotal=true:pageSize=100:query.cond=melanoma",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_String_Deterministic(t *testing.T) {
	key := Key{
		Endpoint: "/api/v2/studies",
		QueryParams: url.Values{
			"b": {"2"}, "a": {"1"}, "c": {"3"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q != %q", got, first)
		}
	}
}

func TestKey_String_DistinguishesPageTokens(t *testing.T) {
	base := url.Values{"query.cond": {"melanoma"}}
	page2 := url.Values{"query.cond": {"melanoma"}, "pageToken": {"page-1"}}

	k1 := Key{Endpoint: "/api/v2/studies", QueryParams: base}.String()
	k2 := Key{Endpoint: "/api/v2/studies", QueryParams: page2}.String()

	if k1 == k2 {
		t.Error("different pages share the same cache key")
	}
}
