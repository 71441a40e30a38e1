package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractReply(t *testing.T) {
	tests := []struct {
		name      string
		fullReply string
		expected  string
	}{
		{
			"first quoted substring wins",
			`I said "price is 900" because of market trends.`,
			"price is 900",
		},
		{
			"first quote wins over later quotes",
			`They countered "no way" and then "fine, 950".`,
			"no way",
		},
		{
			"empty quotes still win",
			`The reply was "" apparently.`,
			"",
		},
		{
			"shortest relevant sentence",
			"That works. I can offer a 900 price point. Thanks!",
			"I can offer a 900 price point.",
		},
		{
			"keyword match is case-insensitive",
			"Understood completely. The DEAL stands firm here.",
			"The DEAL stands firm here.",
		},
		{
			"dollar sign counts as relevant",
			"Hello there friend. $950 works.",
			"$950 works.",
		},
		{
			"tie keeps the earlier sentence",
			"Our price. Our offer. Nothing else works!",
			"Our price.",
		},
		{
			"no match returns full reply",
			"Sounds reasonable overall.",
			"Sounds reasonable overall.",
		},
		{
			"single sentence without terminator",
			"best and final offer is 925",
			"best and final offer is 925",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, ExtractReply(test.fullReply))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"basic", "One. Two! Three?", []string{"One.", "Two!", "Three?"}},
		{"multi punctuation", "Really?! Yes.", []string{"Really?!", "Yes."}},
		{"no terminator", "just words", []string{"just words"}},
		{"trailing space", "Done. ", []string{"Done."}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, splitSentences(test.text))
		})
	}
}
