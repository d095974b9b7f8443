package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	// Valid identifier, with and without punctuation.
	doc, err := ParseDocument("529.982.247-25")
	require.NoError(t, err)
	assert.Equal(t, "52998224725", doc)

	doc, err = ParseDocument("52998224725")
	require.NoError(t, err)
	assert.Equal(t, "52998224725", doc)
}

func TestParseDocumentInvalid(t *testing.T) {
	cases := []string{
		"",
		"123",
		"5299822472",      // 10 digits
		"529982247255",    // 12 digits
		"52998224724",     // wrong check digit
		"11111111111",     // repeated digits
		"00000000000",     // repeated digits
		"abcdefghijk",     // no digits at all
		"529a982b2475",    // digits embedded but wrong count after stripping
	}

	for _, c := range cases {
		_, err := ParseDocument(c)
		assert.Error(t, err, "input %q", c)
	}
}
