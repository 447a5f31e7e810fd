package resource

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const resourcesPrefix = "resources://"

// NormalizeKey maps every spelling of an asset key to one cache slot:
// NFC form, optional resources:// prefix removed, no surrounding slashes,
// cleaned path segments. Keys carry no extension.
func NormalizeKey(key string) string {
	k := norm.NFC.String(strings.TrimSpace(key))
	k = strings.TrimPrefix(k, resourcesPrefix)
	k = strings.Trim(k, "/")
	if k == "" {
		return ""
	}
	k = path.Clean(k)
	if k == "." {
		return ""
	}
	return k
}
