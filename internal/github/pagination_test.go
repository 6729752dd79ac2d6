package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLinkHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   PageLinks
	}{
		{
			name:   "empty header",
			header: "",
			want:   PageLinks{},
		},
		{
			name: "next and last",
			header: `<https://api.example/issues?page=2>; rel="next", ` +
				`<https://api.example/issues?page=5>; rel="last"`,
			want: PageLinks{"next": 2, "last": 5},
		},
		{
			name: "all four relations",
			header: `<https://api.example/issues?page=1>; rel="first", ` +
				`<https://api.example/issues?page=2>; rel="prev", ` +
				`<https://api.example/issues?page=4>; rel="next", ` +
				`<https://api.example/issues?page=9>; rel="last"`,
			want: PageLinks{"first": 1, "prev": 2, "next": 4, "last": 9},
		},
		{
			name:   "page among other query params",
			header: `<https://api.example/issues?state=open&page=3&per_page=30>; rel="next"`,
			want:   PageLinks{"next": 3},
		},
		{
			name:   "entry without rel is skipped",
			header: `<https://api.example/issues?page=2>`,
			want:   PageLinks{},
		},
		{
			name:   "entry without page number is skipped",
			header: `<https://api.example/issues>; rel="next"`,
			want:   PageLinks{},
		},
		{
			name:   "malformed entry does not poison the rest",
			header: `garbage, <https://api.example/issues?page=7>; rel="last"`,
			want:   PageLinks{"last": 7},
		},
		{
			name:   "non-numeric page is skipped",
			header: `<https://api.example/issues?page=two>; rel="next"`,
			want:   PageLinks{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLinkHeader(tt.header))
		})
	}
}
