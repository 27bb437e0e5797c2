package checklist

import "strings"

// MatchFunc decides whether a requirement label is satisfied by a set of
// evidence display names
type MatchFunc func(label string, evidenceNames []string) bool

// MatchKey reduces a requirement label to its lower-cased first word.
// "Death Certificate" becomes "death"; a blank label yields "".
func MatchKey(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// Match returns the first evidence name whose lower-cased form contains the
// label's match key.
//
// The rule is coarse: any file containing "post" satisfies "Post Mortem",
// and "Bank Passbook" is met by any name containing "bank".
func Match(label string, evidenceNames []string) (string, bool) {
	key := MatchKey(label)
	if key == "" {
		return "", false
	}
	for _, name := range evidenceNames {
		if strings.Contains(strings.ToLower(name), key) {
			return name, true
		}
	}
	return "", false
}

// IsSatisfied reports whether any evidence name matches the label
func IsSatisfied(label string, evidenceNames []string) bool {
	_, ok := Match(label, evidenceNames)
	return ok
}
