// Package simplify condenses the XML validation dumps returned when an
// encounter is rejected into short clauses an operator can act on.
//
// The recognized grammar is deliberately small; all other markup is ignored:
//
//	doc       := entity* lines* encounterErr*
//	entity    := <ReferringProvider|RenderingProvider|ServiceLocation ...> ... err ... </...>
//	lines     := <ServiceLines> line* err? </ServiceLines>
//	line      := <ServiceLine> <ProcedureCode>code</ProcedureCode>
//	             (<DiagnosisCodeK>value err</DiagnosisCodeK>
//	             | <ProcedureModifierK>value err</ProcedureModifierK>
//	             | err)* </ServiceLine>
//	err       := <err id="N">message</err>
//
// Each clause keeps only the part of the message before its first comma.
package simplify

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// MaxRawLength bounds the text returned when nothing can be parsed.
const MaxRawLength = 250

// UnparsedEncounter is returned for encounter markup that carries no
// recognizable error element.
const UnparsedEncounter = "Encounter creation failed (unparsed XML error)."

var (
	errTag     = regexp.MustCompile(`<err\s+id="(\d+)"[^>]*>([^<]*)</err>`)
	errorElem  = regexp.MustCompile(`<Error>([^<]*)</Error>`)
	linesBlock = regexp.MustCompile(`(?s)<ServiceLines(?:\s[^>]*)?>(.*?)</ServiceLines>`)
	lineBlock  = regexp.MustCompile(`(?s)<ServiceLine(?:\s[^>]*)?>(.*?)</ServiceLine>`)
	procCode   = regexp.MustCompile(`<ProcedureCode(?:\s[^>]*)?>([^<]*)`)
	diagErr    = regexp.MustCompile(`<DiagnosisCode(\d)(?:\s[^>]*)?>([^<]*)<err\s+id="\d+"[^>]*>([^<]*)</err>`)
	modErr     = regexp.MustCompile(`<ProcedureModifier(\d)(?:\s[^>]*)?>([^<]*)<err\s+id="\d+"[^>]*>([^<]*)</err>`)
)

// entityBlocks are the encounter children whose errors are reported by name.
var entityBlocks = []struct {
	name string
	re   *regexp.Regexp
}{
	{"ReferringProvider", blockPattern("ReferringProvider")},
	{"RenderingProvider", blockPattern("RenderingProvider")},
	{"ServiceLocation", blockPattern("ServiceLocation")},
}

func blockPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)<` + name + `(?:\s[^>]*)?>(.*?)</` + name + `>`)
}

// EncounterError converts a raw encounter error into "; "-joined clauses such
// as "L1(Proc 99213): Diag1 ('Z00') - Invalid code.". Text without any
// recognizable structure is returned trimmed and truncated.
func EncounterError(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimSpace(strings.TrimPrefix(text, "API Error:"))
	if !looksStructured(text) {
		return truncate(text)
	}

	var clauses []string
	rest := text

	for _, b := range entityBlocks {
		for _, m := range b.re.FindAllStringSubmatch(rest, -1) {
			for _, e := range errTag.FindAllStringSubmatch(m[1], -1) {
				clauses = append(clauses, fmt.Sprintf("%s Err(ID:%s): %s.", b.name, e[1], firstClause(e[2])))
			}
		}
		rest = b.re.ReplaceAllString(rest, "")
	}

	for i, m := range lineBlock.FindAllStringSubmatch(rest, -1) {
		clauses = append(clauses, lineClauses(i+1, m[1])...)
	}
	for _, m := range linesBlock.FindAllStringSubmatch(rest, -1) {
		outer := lineBlock.ReplaceAllString(m[1], "")
		for _, e := range errTag.FindAllStringSubmatch(outer, -1) {
			clauses = append(clauses, fmt.Sprintf("ServiceLines Overall Err(ID:%s): %s.", e[1], firstClause(e[2])))
		}
	}
	rest = linesBlock.ReplaceAllString(rest, "")
	rest = lineBlock.ReplaceAllString(rest, "")

	for _, e := range errTag.FindAllStringSubmatch(rest, -1) {
		clauses = append(clauses, fmt.Sprintf("Encounter Level Err(ID:%s): %s.", e[1], firstClause(e[2])))
	}
	for _, e := range errorElem.FindAllStringSubmatch(rest, -1) {
		clauses = append(clauses, fmt.Sprintf("Encounter Level Err: %s.", firstClause(e[1])))
	}

	clauses = dedupe(clauses)
	if len(clauses) == 0 {
		if strings.Contains(text, "<Encounter") {
			return UnparsedEncounter
		}
		return truncate(text)
	}
	return strings.Join(clauses, "; ")
}

func lineClauses(n int, body string) []string {
	proc := "N/A"
	if m := procCode.FindStringSubmatch(body); m != nil && strings.TrimSpace(m[1]) != "" {
		proc = strings.TrimSpace(m[1])
	}
	label := fmt.Sprintf("L%d(Proc %s)", n, proc)

	var out []string
	for _, m := range diagErr.FindAllStringSubmatch(body, -1) {
		out = append(out, fmt.Sprintf("%s: Diag%s ('%s') - %s.", label, m[1], strings.TrimSpace(m[2]), firstClause(m[3])))
	}
	for _, m := range modErr.FindAllStringSubmatch(body, -1) {
		msg := firstClause(m[3])
		if strings.Contains(m[2], ".0") {
			msg += " (No .0)"
		}
		out = append(out, fmt.Sprintf("%s: Mod%s ('%s') - %s.", label, m[1], strings.TrimSpace(m[2]), msg))
	}
	if len(out) > 0 {
		return out
	}
	for _, e := range errTag.FindAllStringSubmatch(body, -1) {
		out = append(out, fmt.Sprintf("%s: %s.", label, firstClause(e[2])))
	}
	return out
}

func looksStructured(s string) bool {
	return strings.Contains(s, "<err ") || strings.Contains(s, "<Error>") || strings.Contains(s, "<Encounter")
}

func firstClause(msg string) string {
	msg = html.UnescapeString(msg)
	if i := strings.Index(msg, ","); i >= 0 {
		msg = msg[:i]
	}
	msg = strings.TrimRight(strings.TrimSpace(msg), ".")
	if msg == "" {
		return "unspecified error"
	}
	return msg
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxRawLength {
		return s
	}
	return string(r[:MaxRawLength]) + "..."
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
