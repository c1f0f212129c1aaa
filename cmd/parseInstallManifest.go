package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// The scanner reads CMake-generated cmake_install.cmake files, never the
// human-authored CMakeLists.txt, so every variable except the install prefix
// is already expanded. The grammar accepted here is deliberately narrow:
//
//	file(INSTALL DESTINATION "<dir>" TYPE <KIND> ... FILES "<src>" ["<src>" ...])
//
// plus the prefix assignment emitted at the top of each manifest:
//
//	set(CMAKE_INSTALL_PREFIX "<dir>")
//
// Anything else is ignored; a directive that fails this grammar is skipped
// with a warning and never aborts the scan. Treat new CMake releases as a
// contract change and re-validate this grammar against their output.

const defaultInstallPrefix = "/usr/local"

var installPrefixRe = regexp.MustCompile(`set\(CMAKE_INSTALL_PREFIX\s+"([^"]*)"\)`)

// manifestKinds maps the TYPE token of an install directive to installKind.
var manifestKinds = map[string]installKind{
	"FILE":           kindFile,
	"DIRECTORY":      kindDirectory,
	"SHARED_LIBRARY": kindLibrary,
	"STATIC_LIBRARY": kindLibrary,
	"MODULE":         kindLibrary,
	"EXECUTABLE":     kindExecutable,
	"PROGRAM":        kindExecutable,
}

// manifestKeywords are bare tokens that may appear inside a directive and end
// a FILES list without contributing sources.
var manifestKeywords = map[string]bool{
	"DESTINATION": true, "TYPE": true, "FILES": true, "OPTIONAL": true,
	"RENAME": true, "PERMISSIONS": true, "FILE_PERMISSIONS": true,
	"DIR_PERMISSIONS": true, "USE_SOURCE_PERMISSIONS": true,
	"FILES_MATCHING": true, "MESSAGE_NEVER": true, "MESSAGE_LAZY": true,
}

// parseInstallManifest parses one generated manifest file into install items.
// A read failure is an error; malformed directives inside the file are not.
func parseInstallManifest(path string) ([]installItem, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	content := string(b)

	prefix := defaultInstallPrefix
	if m := installPrefixRe.FindStringSubmatch(content); m != nil && m[1] != "" {
		prefix = m[1]
	}

	var items []installItem
	for _, directive := range extractInstallDirectives(content) {
		it, ok := parseDirective(directive, prefix)
		if !ok {
			log.WithField("manifest", path).Warnf("skipping malformed install directive: %.80s", directive)
			continue
		}
		items = append(items, it...)
	}
	return items, nil
}

// extractInstallDirectives returns the argument text of every
// file(INSTALL ...) call in content, handling nested parentheses and quoted
// strings that may contain parens.
func extractInstallDirectives(content string) []string {
	const open = "file(INSTALL"
	var out []string
	for i := 0; ; {
		j := strings.Index(content[i:], open)
		if j < 0 {
			break
		}
		start := i + j + len("file(")
		depth := 1
		inQuote := false
		end := -1
		for k := start; k < len(content); k++ {
			c := content[k]
			switch {
			case c == '"':
				inQuote = !inQuote
			case inQuote:
			case c == '(':
				depth++
			case c == ')':
				depth--
				if depth == 0 {
					end = k
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			break
		}
		out = append(out, content[start:end])
		i = end + 1
	}
	return out
}

// manifestToken is one argument of an install directive; quoted tokens are
// paths, bare tokens are keywords.
type manifestToken struct {
	text   string
	quoted bool
}

func tokenizeDirective(s string) []manifestToken {
	var toks []manifestToken
	for i := 0; i < len(s); {
		switch {
		case s[i] == '"':
			j := strings.IndexByte(s[i+1:], '"')
			if j < 0 {
				return toks
			}
			toks = append(toks, manifestToken{text: s[i+1 : i+1+j], quoted: true})
			i += j + 2
		case s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r':
			i++
		default:
			j := strings.IndexAny(s[i:], " \t\n\r\"")
			if j < 0 {
				j = len(s) - i
			}
			toks = append(toks, manifestToken{text: s[i : i+j]})
			i += j
		}
	}
	return toks
}

// parseDirective interprets the tokens of one INSTALL directive. It returns
// ok=false when the directive lacks a destination, a usable type, or sources.
func parseDirective(directive, prefix string) ([]installItem, bool) {
	toks := tokenizeDirective(directive)

	var dest string
	kind := installKind(-1)
	var sources []string
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.quoted {
			continue
		}
		switch t.text {
		case "DESTINATION":
			if i+1 < len(toks) && toks[i+1].quoted {
				dest = toks[i+1].text
				i++
			}
		case "TYPE":
			if i+1 < len(toks) {
				k, ok := manifestKinds[toks[i+1].text]
				if !ok {
					return nil, false
				}
				kind = k
				i++
			}
		case "FILES":
			for i+1 < len(toks) && toks[i+1].quoted {
				sources = append(sources, toks[i+1].text)
				i++
			}
		default:
			if !manifestKeywords[t.text] && t.text != "INSTALL" {
				// Unknown bare token: tolerate and continue; the grammar only
				// cares about the three clauses above.
				continue
			}
		}
	}

	if dest == "" || kind < 0 || len(sources) == 0 {
		return nil, false
	}
	dest = expandInstallPrefix(dest, prefix)

	items := make([]installItem, 0, len(sources))
	for _, src := range sources {
		items = append(items, newInstallItem(kind, strings.TrimSuffix(src, "/"), dest))
	}
	return items, true
}

// expandInstallPrefix resolves ${CMAKE_INSTALL_PREFIX} and the DESTDIR
// wrapper in a destination, and anchors relative destinations at the prefix
// the way cmake --install does.
func expandInstallPrefix(dest, prefix string) string {
	dest = strings.ReplaceAll(dest, "$ENV{DESTDIR}", "")
	dest = strings.ReplaceAll(dest, "${CMAKE_INSTALL_PREFIX}", prefix)
	if !strings.HasPrefix(dest, "/") {
		dest = prefix + "/" + dest
	}
	return strings.TrimSuffix(dest, "/")
}
