package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"Simple", "SOC 2 Audit Timeline", "soc-2-audit-timeline"},
		{"Punctuation", "How Long Does a SOC 2 Audit Take?", "how-long-does-a-soc-2-audit-take"},
		{"CollapsesRuns", "GDPR -- vs. CCPA!!", "gdpr-vs-ccpa"},
		{"TrimsEdges", "  ...Compliance 101...  ", "compliance-101"},
		{"Empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Slugify(tc.title))
		})
	}
}

func TestSlugifyTruncatesOnWordBoundary(t *testing.T) {
	title := strings.Repeat("compliance ", 20)
	slug := Slugify(title)
	require.LessOrEqual(t, len(slug), 80)
	require.True(t, strings.HasSuffix(slug, "compliance"), "slug should not cut mid-word: %q", slug)
	require.False(t, strings.HasPrefix(slug, "-"))
}
