package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	postalCodeRe = regexp.MustCompile(`CP:\s*(\S+)`)
	clientNameRe = regexp.MustCompile(`^(.*?)\s*\(`)
	domicilioRe  = regexp.MustCompile(`(?i)domicilio:`)
)

// maxCityLength guards against capturing a whole street line as the city.
const maxCityLength = 30

// Address is what a client-info block yields. State and City stay empty when no
// state name is found.
type Address struct {
	ClientName string
	PostalCode string
	State      string
	City       string
}

// ClientInfo extracts postal code, client name, state and city.
func ClientInfo(raw string, opts Options) Address {
	text := collapse(norm.NFC.String(raw))
	var a Address

	if m := postalCodeRe.FindStringSubmatch(text); m != nil {
		a.PostalCode = strings.ReplaceAll(m[1], ",", "")
	}
	if m := clientNameRe.FindStringSubmatch(text); m != nil {
		a.ClientName = strings.TrimSpace(m[1])
	}

	segment := text
	if loc := domicilioRe.FindStringIndex(text); loc != nil {
		segment = text[loc[1]:]
	}

	state, ok := detectState(segment, opts.states())
	if !ok {
		return a
	}
	a.State = state.name
	a.City = cityBefore(segment, state)
	if a.City == "" || utf8.RuneCountInString(a.City) > maxCityLength ||
		strings.Contains(strings.ToLower(a.City), "domicilio") {
		a.City = a.State
	}
	return a
}

type stateMatch struct {
	name   string
	starts []int // rune offsets of every occurrence, ascending
}

func (s stateMatch) last() int { return s.starts[len(s.starts)-1] }

// detectState finds every whole-word, case and accent insensitive occurrence
// of each dictionary name and keeps the state whose occurrence starts
// right-most. Equal starts prefer the longer name ("Baja California Sur").
func detectState(segment string, states []string) (stateMatch, bool) {
	hay := foldRunes(segment)
	var best stateMatch
	var found bool
	for _, name := range states {
		needle := foldRunes(name)
		starts := wordOccurrences(hay, needle)
		if len(starts) == 0 {
			continue
		}
		cand := stateMatch{name: name, starts: starts}
		if !found || cand.last() > best.last() ||
			(cand.last() == best.last() && len(needle) > len([]rune(best.name))) {
			best, found = cand, true
		}
	}
	return best, found
}

// cityBefore returns the text between the previous comma and the ", <state>"
// of the right-most state occurrence that directly follows a comma.
func cityBefore(segment string, state stateMatch) string {
	runes := []rune(segment)
	for i := len(state.starts) - 1; i >= 0; i-- {
		j := state.starts[i] - 1
		for j >= 0 && unicode.IsSpace(runes[j]) {
			j--
		}
		if j < 0 || runes[j] != ',' {
			continue
		}
		k := j - 1
		for k >= 0 && runes[k] != ',' {
			k--
		}
		return strings.TrimSpace(string(runes[k+1 : j]))
	}
	return ""
}

func wordOccurrences(hay, needle []rune) []int {
	if len(needle) == 0 || len(needle) > len(hay) {
		return nil
	}
	var out []int
	for i := 0; i+len(needle) <= len(hay); i++ {
		if !equalRunes(hay[i:i+len(needle)], needle) {
			continue
		}
		if i > 0 && isWordRune(hay[i-1]) {
			continue
		}
		if end := i + len(needle); end < len(hay) && isWordRune(hay[end]) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// foldRunes lower-cases and strips accents rune by rune so that offsets line
// up with []rune(s) of the NFC input.
func foldRunes(s string) []rune {
	in := []rune(s)
	out := make([]rune, len(in))
	for i, r := range in {
		if r >= utf8.RuneSelf {
			if d := []rune(norm.NFD.String(string(r))); len(d) > 0 {
				r = d[0]
			}
		}
		out[i] = unicode.ToLower(r)
	}
	return out
}
