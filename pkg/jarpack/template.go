// SPDX-License-Identifier: MPL-2.0

package jarpack

import (
	"regexp"
	"sort"
	"strings"

	"miner-cli/pkg/jarsfile"
)

var (
	// reMarker matches any remaining {placeholder} in a template.
	reMarker = regexp.MustCompile(`\{[^{}]+\}`)
	// reQualifiedHost matches a qualified host placeholder {host:qualifier}.
	reQualifiedHost = regexp.MustCompile(`\{host:[\w\-]+\}`)
)

// expandTemplate iteratively substitutes the four recognized variables
// (build, host, name, version) into a raw template. The loop re-scans
// after every pass: a qualified {host:qualifier} placeholder is rewritten
// to a bare {host} once the qualifier resolves, and a substituted value
// may itself introduce placeholders (display names commonly embed
// {version} and {build}).
//
// Termination holds because every pass either binds a new variable or
// rewrites a qualified placeholder into a bare one; a pass that makes no
// progress means an unknown placeholder remains, which is an error.
func (r *Resolver) expandTemplate(raw string, jar jarsfile.JarFile) (string, error) {
	params := map[string]string{}
	cur := raw

	for reMarker.MatchString(cur) {
		prev := cur

		if _, bound := params["build"]; !bound && hasBare(cur, "build") {
			if jar.Build == "" {
				return "", &TemplateVariableError{Variable: "build", Jar: jar.Name}
			}
			params["build"] = jar.Build
		}

		if _, bound := params["host"]; !bound && hasBare(cur, "host") {
			host, ok := r.lookupSpecial("hosts", jar.Name, jar.Name)
			if !ok {
				return "", &TemplateVariableError{Variable: "host", Jar: jar.Name}
			}
			params["host"] = host
		}

		if _, bound := params["host"]; !bound {
			if q, ok := hostQualifier(cur); ok {
				host, ok := r.lookupSpecial("hosts", q, q)
				if !ok {
					return "", &TemplateVariableError{Variable: q, Jar: jar.Name}
				}
				params["host"] = host
				cur = rewriteQualifiedHost(cur)
			}
		}

		if _, bound := params["name"]; !bound && hasBare(cur, "name") {
			name, ok := r.lookupSpecial("names", jar.Name, jar.Name)
			if !ok {
				return "", &TemplateVariableError{Variable: "name", Jar: jar.Name}
			}
			params["name"] = name
		}

		if _, bound := params["version"]; !bound && hasBare(cur, "version") {
			version := jar.Version
			if !version.IsSet() {
				version = r.gameVersion
			}
			if !version.IsSet() {
				return "", &TemplateVariableError{Variable: "version", Jar: jar.Name}
			}
			params["version"] = version.String()
		}

		for k, v := range params {
			cur = strings.ReplaceAll(cur, "{"+k+"}", v)
		}

		if cur == prev {
			unknown := strings.Trim(reMarker.FindString(cur), "{}")
			return "", &TemplateVariableError{Variable: unknown, Jar: jar.Name}
		}
	}

	return cur, nil
}

// lookupSpecial resolves jars.uri.special.<ns>.<key> and picks a single
// string value, preferring the entry keyed by prefer.
func (r *Resolver) lookupSpecial(ns, key, prefer string) (string, bool) {
	res, err := r.tree.ResolveKeyDefault("jars.uri.special."+ns, key, map[string]any{})
	if err != nil || len(res.Values) == 0 {
		return "", false
	}
	return pickString(res.Values, prefer)
}

// pickString selects a single string from a lookup mapping: the exact key
// when present, otherwise the entry with the smallest key so repeated
// resolutions stay deterministic. Nested candidate tables are flattened
// one level first, which also serves hosts keyed further by qualifier.
func pickString(values map[string]any, prefer string) (string, bool) {
	flat := stringValues(values)
	if v, ok := flat[prefer]; ok {
		return v, true
	}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return flat[keys[0]], true
}

func hasBare(s, name string) bool {
	return strings.Contains(s, "{"+name+"}")
}

// hostQualifier extracts the qualifier from the first {host:qualifier}
// placeholder, if any.
func hostQualifier(s string) (string, bool) {
	m := reQualifiedHost.FindString(s)
	if m == "" {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(m, "{host:"), "}"), true
}

// rewriteQualifiedHost replaces the first qualified host placeholder with
// the bare {host} form so the next pass substitutes it.
func rewriteQualifiedHost(s string) string {
	loc := reQualifiedHost.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + "{host}" + s[loc[1]:]
}
