// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"crypto/md5" //nolint:gosec // naming hash, not a security boundary; must match existing cache layouts
	"encoding/hex"
	"maps"
	"slices"
	"strings"
)

// DependencyHashLen is the number of hex characters kept from the digest.
const DependencyHashLen = 10

// DependencyHash digests a declared dependency set independently of map
// order: names are sorted, rendered as "name@range", joined with ",", hashed
// with MD5 and truncated to DependencyHashLen hex characters.
func DependencyHash(deps map[string]string) string {
	names := slices.Sorted(maps.Keys(deps))
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"@"+deps[name])
	}
	sum := md5.Sum([]byte(strings.Join(parts, ","))) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])[:DependencyHashLen]
}
