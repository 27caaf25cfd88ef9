package roles

import "regexp"

// placeholderRe matches @{role_token:attribute:format} where role_token ends
// in "_service". Attribute and format are preserved verbatim; only the role
// token is rewritten.
var placeholderRe = regexp.MustCompile(`@\{(\w+_service):([^:}]+):([^}]+)\}`)

// Substitute rewrites role-token placeholders in text using the mapping.
// Tokens without a mapping entry are left untouched, as is any other @{...}
// sequence. Substitution is idempotent: concrete service names are not valid
// role tokens, so a second pass is a no-op.
func Substitute(text string, m Mapping) string {
	if len(m) == 0 {
		return text
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		parts := placeholderRe.FindStringSubmatch(match)
		service, ok := m[parts[1]]
		if !ok {
			return match
		}
		return "@{" + service + ":" + parts[2] + ":" + parts[3] + "}"
	})
}

// SubstituteAll applies Substitute to every string value of a parameter map,
// returning a copy. The input map is never modified.
func SubstituteAll(values map[string]string, m Mapping) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = Substitute(v, m)
	}
	return out
}
