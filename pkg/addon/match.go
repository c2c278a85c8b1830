// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"regexp"
	"strings"
)

type (
	platformPattern struct {
		platform Platform
		patterns []*regexp.Regexp
	}

	archPattern struct {
		arch     Arch
		patterns []*regexp.Regexp
	}
)

// Scan order matters: when several entries of the same axis match, the one
// listed last wins.
var (
	platformPatterns = []platformPattern{
		{PlatformDarwin, []*regexp.Regexp{regexp.MustCompile(`darwin`), regexp.MustCompile(`^osx$`)}},
		{PlatformLinux, []*regexp.Regexp{regexp.MustCompile(`linux`)}},
		{PlatformWin32, []*regexp.Regexp{regexp.MustCompile(`win32`), regexp.MustCompile(`^win$`), regexp.MustCompile(`windows`)}},
	}

	archPatterns = []archPattern{
		{ArchX64, []*regexp.Regexp{regexp.MustCompile(`x64`)}},
		{ArchArm64, []*regexp.Regexp{regexp.MustCompile(`arm64`)}},
		{ArchX86, []*regexp.Regexp{regexp.MustCompile(`x86`)}},
	}

	tokenSeparators = regexp.MustCompile(`[-_]`)
)

// Match infers a target from a file or directory name such as
// "Logseq-darwin-arm64-0.9.4.dmg". The name is split on '-' and '_', each
// token is lowercased, and every token is tested on its own against the
// patterns of each platform and each architecture.
//
// The two axes are resolved independently. Within an axis the vocabulary is
// scanned in a fixed order and the last entry with any matching token wins,
// which is deterministic but is not "first occurrence in the name".
// Match returns false unless both axes matched.
func Match(name string) (Target, bool) {
	tokens := tokenSeparators.Split(name, -1)
	for i, tok := range tokens {
		tokens[i] = strings.ToLower(tok)
	}

	var result Target
	for _, p := range platformPatterns {
		if anyTokenMatches(tokens, p.patterns) {
			result.Platform = p.platform
		}
	}
	for _, a := range archPatterns {
		if anyTokenMatches(tokens, a.patterns) {
			result.Arch = a.arch
		}
	}

	if result.Platform == "" || result.Arch == "" {
		return Target{}, false
	}
	return result, true
}

func anyTokenMatches(tokens []string, patterns []*regexp.Regexp) bool {
	for _, tok := range tokens {
		for _, re := range patterns {
			if re.MatchString(tok) {
				return true
			}
		}
	}
	return false
}
