package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokens splits text on whitespace. Tokens without a letter or digit are
// dropped since the index tokenizer would discard them anyway.
func Tokens(text string) []string {
	var out []string
	for _, f := range strings.Fields(text) {
		if strings.IndexFunc(f, isWordRune) >= 0 {
			out = append(out, f)
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// PrefixExpr builds the MATCH expression for the prefix phase. Every token
// is quoted as an FTS5 string so query punctuation is never parsed as syntax.
// The last token becomes a prefix query when it has at least two characters,
// or when the user typed the trailing '*' themselves.
func PrefixExpr(tokens []string) string {
	parts := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if i < len(tokens)-1 {
			parts = append(parts, quote(tok))
			continue
		}
		bare := strings.TrimRight(tok, "*")
		switch {
		case bare != tok:
			parts = append(parts, quote(bare)+"*")
		case utf8.RuneCountInString(tok) >= 2:
			parts = append(parts, quote(tok)+"*")
		default:
			parts = append(parts, quote(tok))
		}
	}
	return strings.Join(parts, " ")
}

// anyOf ORs quoted terms together.
func anyOf(terms []string) string {
	if len(terms) == 1 {
		return quote(terms[0])
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = quote(t)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
