package parser_test

import (
	"testing"

	"domaincheck/internal/parser"
	"domaincheck/pkg/domain"

	"github.com/stretchr/testify/require"
)

func newTable(suffixes ...string) []domain.TLD {
	out := make([]domain.TLD, 0, len(suffixes))
	for _, s := range suffixes {
		out = append(out, domain.TLD{Suffix: s, IsRecognized: true, IsAPIRegisterable: true})
	}

	return out
}

func TestMatcher_Match_singleLabelSuffix(t *testing.T) {
	m := parser.NewMatcher(newTable("com", "co.uk"), false)

	match, err := m.Match("http://blog.example.com/post/1")
	require.NoError(t, err)
	require.Equal(t, "com", match.Suffix)
	require.Equal(t, "example.com", match.Registrable)
	require.Equal(t, "blog.example.com", match.FullHost)
}

func TestMatcher_Match_twoLabelSuffixWins(t *testing.T) {
	m := parser.NewMatcher(newTable("uk", "co.uk"), false)

	match, err := m.Match("http://www.Example.CO.UK/page")
	require.NoError(t, err)
	require.Equal(t, "co.uk", match.Suffix)
	require.Equal(t, "example.co.uk", match.Registrable)
	require.Equal(t, "www.example.co.uk", match.FullHost)
}

func TestMatcher_Match_registrableIsOneLabelMoreThanSuffix(t *testing.T) {
	m := parser.NewMatcher(newTable("co.uk", "org.uk", "ac.uk"), false)

	for _, host := range []string{"a.b.c.example.co.uk", "example.org.uk", "x.example.ac.uk"} {
		match, err := m.Match(host)
		require.NoError(t, err)

		suffixLabels := len(splitDots(match.Suffix))
		require.Len(t, splitDots(match.Registrable), suffixLabels+1, "host %s", host)
	}
}

func TestMatcher_Match_noScheme(t *testing.T) {
	m := parser.NewMatcher(newTable("com"), false)

	match, err := m.Match("example.com")
	require.NoError(t, err)
	require.Equal(t, "example.com", match.Registrable)
}

func TestMatcher_Match_stripsPort(t *testing.T) {
	m := parser.NewMatcher(newTable("com"), false)

	match, err := m.Match("http://example.com:8080/path")
	require.NoError(t, err)
	require.Equal(t, "example.com", match.Registrable)
	require.Equal(t, "example.com", match.FullHost)
}

func TestMatcher_Match_noRecognizedSuffix(t *testing.T) {
	m := parser.NewMatcher(newTable("com", "net"), false)

	_, err := m.Match("http://example.unknown/")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no recognized suffix")
}

func TestMatcher_Match_exceptionKeepsUnreducedTail(t *testing.T) {
	m := parser.NewMatcher([]domain.TLD{
		{Suffix: "ck", IsRecognized: true},
		{Suffix: "!www.ck", IsRecognized: true},
	}, false)

	match, err := m.Match("http://www.ck/")
	require.NoError(t, err)
	require.Equal(t, "www.ck", match.Suffix)
	require.Equal(t, "www.ck", match.Registrable)
}

func TestMatcher_Match_wildcardDisabledByDefault(t *testing.T) {
	tlds := []domain.TLD{{Suffix: "*.kawasaki.jp", IsRecognized: true}}

	m := parser.NewMatcher(tlds, false)
	_, err := m.Match("http://city.kawasaki.jp/")
	require.Error(t, err)

	m = parser.NewMatcher(tlds, true)
	match, err := m.Match("http://sub.city.kawasaki.jp/")
	require.NoError(t, err)
	require.Equal(t, "city.kawasaki.jp", match.Suffix)
	require.Equal(t, "sub.city.kawasaki.jp", match.Registrable)
}

func splitDots(s string) []string {
	var out []string
	start := 0
	for i := range len(s) {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}

	return append(out, s[start:])
}
