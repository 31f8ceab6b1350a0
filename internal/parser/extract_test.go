package parser_test

import (
	"strings"
	"testing"

	"domaincheck/internal/parser"
	"domaincheck/pkg/domain"

	"github.com/stretchr/testify/require"
)

func newClassifier(t *testing.T, tlds []domain.TLD, exclusions, preservations []string) *parser.Classifier {
	t.Helper()

	return parser.NewClassifier(tlds, exclusions, preservations, false)
}

func TestClassifier_ExtractDomains_basic(t *testing.T) {
	c := newClassifier(t, newTable("com", "co.uk"), nil, nil)

	result := c.ExtractDomains("http://www.Example.CO.UK/page\nhttp://foo.com/\n")
	require.Empty(t, result.Failures)
	require.Empty(t, result.Preclassified)
	require.Len(t, result.Checkable, 2)
	require.Equal(t, "example.co.uk", result.Checkable[0].Domain)
	require.Equal(t, "http://www.Example.CO.UK/page", result.Checkable[0].OriginalLink)
	require.Equal(t, "foo.com", result.Checkable[1].Domain)
}

func TestClassifier_ExtractDomains_skipsBlankAndCommentLines(t *testing.T) {
	c := newClassifier(t, newTable("com"), nil, nil)

	result := c.ExtractDomains("\n   \n// a comment\n/another\nexample.com\n")
	require.Empty(t, result.Failures)
	require.Len(t, result.Checkable, 1)
}

func TestClassifier_ExtractDomains_javascriptHook(t *testing.T) {
	c := newClassifier(t, newTable("com"), nil, nil)

	result := c.ExtractDomains("javascript:alert(1)")
	require.Empty(t, result.Checkable)
	require.Len(t, result.Failures, 1)
	require.Equal(t, "Javascript hook", result.Failures[0].Reason)
}

func TestClassifier_ExtractDomains_bareIP(t *testing.T) {
	c := newClassifier(t, newTable("com"), nil, nil)

	for _, line := range []string{"127.0.0.1", "http://10.1.2.3:8080/x"} {
		result := c.ExtractDomains(line)
		require.Empty(t, result.Checkable, line)
		require.Len(t, result.Failures, 1, line)
		require.Equal(t, "IP only - no domain to extract", result.Failures[0].Reason)
	}
}

func TestClassifier_ExtractDomains_unknownSuffix(t *testing.T) {
	c := newClassifier(t, newTable("com"), nil, nil)

	result := c.ExtractDomains("http://example.com/\nhttp://example.invalid/")
	require.Len(t, result.Checkable, 1)
	require.Len(t, result.Failures, 1)
	require.Contains(t, result.Failures[0].Reason, "no recognized suffix")
}

func TestClassifier_ExtractDomains_unrecognizedTLDPreclassified(t *testing.T) {
	tlds := []domain.TLD{
		{Suffix: "com", IsRecognized: true, IsAPIRegisterable: true},
		{Suffix: "museum", IsRecognized: true, IsAPIRegisterable: false},
		{Suffix: "test", IsRecognized: false},
	}
	c := newClassifier(t, tlds, nil, nil)

	result := c.ExtractDomains("a.museum\nb.test")
	require.Empty(t, result.Checkable)
	require.Len(t, result.Preclassified, 2)

	for _, pre := range result.Preclassified {
		require.Equal(t, domain.DomainStateUnregisterable, pre.State)
	}
	require.Contains(t, result.Preclassified[0].Reason, "cannot be registered")
	require.Contains(t, result.Preclassified[1].Reason, "not recognized")
}

func TestClassifier_ExtractDomains_exclusion(t *testing.T) {
	c := newClassifier(t, newTable("com"), []string{"google.com"}, nil)

	result := c.ExtractDomains("http://www.google.com/search")
	require.Empty(t, result.Checkable)
	require.Len(t, result.Preclassified, 1)
	require.Equal(t, domain.DomainStateUnregisterable, result.Preclassified[0].State)
	require.Equal(t, "google.com", result.Preclassified[0].Domain)
}

func TestClassifier_ExtractDomains_preservationKeepsFullHost(t *testing.T) {
	c := newClassifier(t, newTable("com"), nil, []string{"blogspot.com"})

	result := c.ExtractDomains("http://myblog.blogspot.com/post")
	require.Empty(t, result.Checkable)
	require.Len(t, result.Preclassified, 1)
	require.Equal(t, domain.DomainStateSpecial, result.Preclassified[0].State)
	require.Equal(t, "myblog.blogspot.com", result.Preclassified[0].Domain)
}

func TestClassifier_ExtractDomains_dedupesRepeatedLines(t *testing.T) {
	c := newClassifier(t, newTable("com"), []string{"google.com"}, nil)

	result := c.ExtractDomains(strings.Repeat("example.com\nwww.google.com\n", 3))
	require.Len(t, result.Checkable, 1)
	require.Len(t, result.Preclassified, 1)
}

// every non-blank, non-comment line lands in exactly one output list
func TestClassifier_ExtractDomains_partitionsInput(t *testing.T) {
	c := newClassifier(t, newTable("com"), []string{"skip.com"}, nil)

	lines := []string{
		"example.com",
		"other.com",
		"www.skip.com",
		"javascript:void(0)",
		"10.0.0.1",
		"no-suffix.zz",
	}
	result := c.ExtractDomains(strings.Join(lines, "\n"))
	require.Equal(t, len(lines),
		len(result.Checkable)+len(result.Preclassified)+len(result.Failures))
}
