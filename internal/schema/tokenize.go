package schema

import (
	"strings"
	"unicode"
)

// splitClauses splits a description into clauses at top-level commas.
//
// The description is first cut at every comma. A fragment whose parentheses
// are still open (or whose quote is unterminated) is then joined with the
// next fragment, repeatedly, until it balances. A clause that never balances
// is returned as an error.
func splitClauses(table, desc string) ([]string, error) {
	fragments := strings.Split(desc, ",")
	clauses := make([]string, 0, len(fragments))

	for i := 0; i < len(fragments); i++ {
		clause := fragments[i]
		b := balanceOf(clause)
		for b.open() && i+1 < len(fragments) {
			i++
			clause += "," + fragments[i]
			b = balanceOf(clause)
		}

		trimmed := strings.TrimSpace(clause)
		switch {
		case b.underflow:
			return nil, schemaErr(table, trimmed, "closing parenthesis without matching opening parenthesis")
		case b.depth > 0:
			return nil, schemaErr(table, trimmed, "unbalanced parentheses")
		case b.quote != 0:
			return nil, schemaErr(table, trimmed, "unterminated quote")
		}
		clauses = append(clauses, trimmed)
	}

	return clauses, nil
}

// balance is the parenthesis/quote state at the end of a fragment.
type balance struct {
	depth     int
	quote     rune // 0 when outside a quoted string
	underflow bool
}

func (b balance) open() bool {
	return !b.underflow && (b.depth > 0 || b.quote != 0)
}

func balanceOf(s string) balance {
	var b balance
	for _, r := range s {
		if b.quote != 0 {
			if r == b.quote {
				b.quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"', '`':
			b.quote = r
		case '(':
			b.depth++
		case ')':
			b.depth--
			if b.depth < 0 {
				b.underflow = true
				return b
			}
		}
	}
	return b
}

// leadingToken returns the lowercased first word of a clause, stopping at
// whitespace or an opening parenthesis ("unique(a)" yields "unique").
func leadingToken(clause string) string {
	end := strings.IndexFunc(clause, func(r rune) bool {
		return unicode.IsSpace(r) || r == '('
	})
	if end < 0 {
		end = len(clause)
	}
	return strings.ToLower(clause[:end])
}

// splitList splits a parenthesized column list ("albumid, i_index") into
// column names. Ordering modifiers such as "desc" or "collate nocase" are
// dropped.
func splitList(list string) []string {
	parts := strings.Split(list, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		fields := strings.Fields(p)
		if len(fields) == 0 {
			continue
		}
		cols = append(cols, fields[0])
	}
	return cols
}
