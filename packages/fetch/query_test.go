package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsEncode(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name:   "single pair",
			params: Params{{Key: "q", Value: "x"}},
			want:   "q=x",
		},
		{
			name: "order preserved",
			params: Params{
				{Key: "b", Value: "2"},
				{Key: "a", Value: "1"},
			},
			want: "b=2&a=1",
		},
		{
			name: "nil value skipped",
			params: Params{
				{Key: "q", Value: "x"},
				{Key: "skip", Value: nil},
				{Key: "tags", Value: []string{"a", "b"}},
			},
			want: "q=x&tags=a&tags=b",
		},
		{
			name:   "string slice fans out",
			params: Params{{Key: "tag", Value: []string{"go", "http"}}},
			want:   "tag=go&tag=http",
		},
		{
			name:   "int slice fans out",
			params: Params{{Key: "id", Value: []int{3, 1, 2}}},
			want:   "id=3&id=1&id=2",
		},
		{
			name:   "any slice skips nil elements",
			params: Params{{Key: "v", Value: []any{"a", nil, 7}}},
			want:   "v=a&v=7",
		},
		{
			name: "scalar kinds",
			params: Params{
				{Key: "n", Value: 42},
				{Key: "f", Value: 1.5},
				{Key: "ok", Value: true},
			},
			want: "n=42&f=1.5&ok=true",
		},
		{
			name: "reserved characters escaped",
			params: Params{
				{Key: "q", Value: "a&b=c"},
				{Key: "sp ace", Value: "x y"},
			},
			want: "q=a%26b%3Dc&sp+ace=x+y",
		},
		{
			name:   "empty list",
			params: Params{},
			want:   "",
		},
		{
			name:   "all entries skipped",
			params: Params{{Key: "a", Value: nil}, {Key: "b", Value: nil}},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Encode())
		})
	}
}

func TestParamsEncodeIdempotent(t *testing.T) {
	params := Params{
		{Key: "q", Value: "x"},
		{Key: "tags", Value: []string{"a", "b"}},
		{Key: "skip", Value: nil},
	}

	first := params.Encode()
	second := params.Encode()

	assert.Equal(t, "q=x&tags=a&tags=b", first)
	assert.Equal(t, first, second)
}

func TestParamsFromMap(t *testing.T) {
	params := ParamsFromMap(map[string]any{
		"b": 2,
		"a": 1,
		"c": nil,
	})

	assert.Equal(t, "a=1&b=2", params.Encode())
}

func TestParamsAdd(t *testing.T) {
	params := Params{}.Add("a", 1).Add("b", "x")

	assert.Equal(t, "a=1&b=x", params.Encode())
}

func TestP(t *testing.T) {
	assert.Equal(t, "q=x&n=2", P("q", "x", "n", 2).Encode())
	assert.Empty(t, P().Encode())
}

func TestAppendParams(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		params Params
		want   string
	}{
		{
			name:   "no existing query",
			url:    "https://api.example.com/search",
			params: Params{{Key: "q", Value: "x"}},
			want:   "https://api.example.com/search?q=x",
		},
		{
			name:   "existing query",
			url:    "https://api.example.com/search?page=2",
			params: Params{{Key: "q", Value: "x"}},
			want:   "https://api.example.com/search?page=2&q=x",
		},
		{
			name:   "nothing to attach",
			url:    "https://api.example.com/search",
			params: Params{{Key: "skip", Value: nil}},
			want:   "https://api.example.com/search",
		},
		{
			name:   "nil params",
			url:    "https://api.example.com/search",
			params: nil,
			want:   "https://api.example.com/search",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AppendParams(tt.url, tt.params))
		})
	}
}
