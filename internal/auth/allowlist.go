package auth

import "strings"

// AllowList restricts sign-in to known emails. An empty list allows
// everyone.
type AllowList struct {
	emails map[string]struct{}
}

func NewAllowList(emails []string) AllowList {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			set[e] = struct{}{}
		}
	}
	return AllowList{emails: set}
}

func (a AllowList) Allowed(email string) bool {
	if len(a.emails) == 0 {
		return true
	}
	_, ok := a.emails[normalizeEmail(email)]
	return ok
}

func (a AllowList) Len() int { return len(a.emails) }

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
