package tabulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTerms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []term
	}{
		{
			name: "should split terms on commas",
			raw:  "foo, bar",
			want: []term{{text: "foo"}, {text: "bar"}},
		},
		{
			name: "should keep a quoted term whole and mark it exact",
			raw:  `"foo, bar",baz`,
			want: []term{{text: "foo, bar", exact: true}, {text: "baz"}},
		},
		{
			name: "should unescape doubled quotes inside a quoted term",
			raw:  `"say ""hi"""`,
			want: []term{{text: `say "hi"`, exact: true}},
		},
		{
			name: "should drop blank terms",
			raw:  " , foo ,, ",
			want: []term{{text: "foo"}},
		},
		{
			name: "should drop wildcard-only terms",
			raw:  "*,%%,foo*",
			want: []term{{text: "foo*"}},
		},
		{
			name: "should fall back to a plain split on unbalanced quotes",
			raw:  `"foo,bar`,
			want: []term{{text: `"foo`}, {text: "bar"}},
		},
		{
			name: "should produce nothing from an empty string",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTerms(tt.raw))
		})
	}
}

func TestWildcardPattern(t *testing.T) {
	assert.Equal(t, "%foo%", wildcardPattern("foo"))
	assert.Equal(t, "foo%", wildcardPattern("foo*"))
	assert.Equal(t, "%o%o%", wildcardPattern("*o*o*"))
	assert.Equal(t, "f%o", wildcardPattern("f%o"))
}

func TestLikePredicate(t *testing.T) {
	tests := []struct {
		name          string
		dialect       string
		term          term
		caseSensitive bool
		wantCond      string
		wantArg       interface{}
	}{
		{
			name:     "mysql insensitive wildcard relies on collation",
			dialect:  "mysql",
			term:     term{text: "foo"},
			wantCond: "`users`.`name` LIKE ?",
			wantArg:  "%foo%",
		},
		{
			name:          "mysql sensitive wildcard needs a BINARY cast",
			dialect:       "mysql",
			term:          term{text: "foo"},
			caseSensitive: true,
			wantCond:      "BINARY `users`.`name` LIKE ?",
			wantArg:       "%foo%",
		},
		{
			name:     "postgres insensitive wildcard uses ILIKE",
			dialect:  "postgres",
			term:     term{text: "foo"},
			wantCond: "`users`.`name` ILIKE ?",
			wantArg:  "%foo%",
		},
		{
			name:          "postgres sensitive wildcard uses plain LIKE",
			dialect:       "postgres",
			term:          term{text: "foo"},
			caseSensitive: true,
			wantCond:      "`users`.`name` LIKE ?",
			wantArg:       "%foo%",
		},
		{
			name:     "unknown dialects lower both sides",
			dialect:  "sqlite3",
			term:     term{text: "foo"},
			wantCond: "LOWER(`users`.`name`) LIKE LOWER(?)",
			wantArg:  "%foo%",
		},
		{
			name:     "mysql insensitive exact compares directly",
			dialect:  "mysql",
			term:     term{text: "foo", exact: true},
			wantCond: "`users`.`name` = ?",
			wantArg:  "foo",
		},
		{
			name:          "mysql sensitive exact needs a BINARY cast",
			dialect:       "mysql",
			term:          term{text: "foo", exact: true},
			caseSensitive: true,
			wantCond:      "BINARY `users`.`name` = ?",
			wantArg:       "foo",
		},
		{
			name:     "postgres insensitive exact lowers both sides",
			dialect:  "postgres",
			term:     term{text: "foo", exact: true},
			wantCond: "LOWER(`users`.`name`) = LOWER(?)",
			wantArg:  "foo",
		},
		{
			name:          "postgres sensitive exact compares directly",
			dialect:       "postgres",
			term:          term{text: "foo", exact: true},
			caseSensitive: true,
			wantCond:      "`users`.`name` = ?",
			wantArg:       "foo",
		},
		{
			name:     "exact terms keep their wildcards literal",
			dialect:  "mysql",
			term:     term{text: "50%", exact: true},
			wantCond: "`users`.`name` = ?",
			wantArg:  "50%",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cond, arg := likePredicate(tt.dialect, "`users`.`name`", tt.term, tt.caseSensitive)
			assert.Equal(t, tt.wantCond, cond)
			assert.Equal(t, tt.wantArg, arg)
		})
	}
}
