// Package moderation screens community content for threats against others and
// for signs that the author may be at risk.
package moderation

import (
	"strings"
	"unicode"
)

type Category string

const (
	CategoryNone     Category = ""
	CategoryThreat   Category = "threat"
	CategorySelfHarm Category = "self_harm"
)

// Verdict is the outcome of screening one piece of text.
type Verdict struct {
	Threat   bool
	SelfHarm bool
	Matched  []string
}

// Category returns the most severe category found. Threats win over self-harm
// because threatening content is rejected outright.
func (v Verdict) Category() Category {
	switch {
	case v.Threat:
		return CategoryThreat
	case v.SelfHarm:
		return CategorySelfHarm
	default:
		return CategoryNone
	}
}

// Terms are folded with Normalize before matching.
var threatTerms = []string{
	"rape",
	"murder",
	"kill you",
	"shoot you",
	"stab you",
	"strangle",
	"slaughter",
	"massacre",
	"hurt you",
	"beat you",
	"revenge",
	"watch your back",
}

var selfHarmTerms = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"take my life",
	"end it all",
	"self harm",
	"cut myself",
	"hurt myself",
	"harm myself",
	"want to die",
	"wish i was dead",
	"not worth living",
	"better off dead",
	"end myself",
	"unalive",
}

var substitutions = strings.NewReplacer(
	"@", "a",
	"4", "a",
	"3", "e",
	"!", "i",
	"1", "i",
	"0", "o",
	"$", "s",
	"5", "s",
	"7", "t",
	"+", "t",
	"а", "a", // Cyrillic
	"е", "e",
	"і", "i",
	"о", "o",
	"р", "p",
)

// Normalize lowercases text, folds look-alike characters, turns everything that
// is not a letter into a single space and collapses repeated letters
// ("kiiilll" -> "kil").
func Normalize(text string) string {
	folded := substitutions.Replace(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(folded))
	var last rune
	lastWasSpace := true
	for _, r := range folded {
		if !unicode.IsLetter(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
			last = 0
			continue
		}
		if r == last {
			continue
		}
		b.WriteRune(r)
		last = r
		lastWasSpace = false
	}
	return strings.TrimSpace(b.String())
}

// collapse applies the repeat folding to a dictionary term so both sides of a
// comparison share the same canonical form.
func collapse(term string) string {
	return Normalize(term)
}

func matchTerms(normalized string, terms []string) []string {
	if normalized == "" {
		return nil
	}
	words := strings.Fields(normalized)
	padded := " " + normalized + " "

	var matched []string
	for _, term := range terms {
		canonical := collapse(term)
		if strings.Contains(canonical, " ") {
			if strings.Contains(padded, " "+canonical+" ") {
				matched = append(matched, term)
			}
			continue
		}
		// Single words must match a whole word: "skill" is not "kill".
		for _, w := range words {
			if w == canonical {
				matched = append(matched, term)
				break
			}
		}
	}
	return matched
}

// Check screens text against both dictionaries.
func Check(text string) Verdict {
	normalized := Normalize(text)

	var v Verdict
	if m := matchTerms(normalized, threatTerms); len(m) > 0 {
		v.Threat = true
		v.Matched = append(v.Matched, m...)
	}
	if m := matchTerms(normalized, selfHarmTerms); len(m) > 0 {
		v.SelfHarm = true
		v.Matched = append(v.Matched, m...)
	}
	return v
}
