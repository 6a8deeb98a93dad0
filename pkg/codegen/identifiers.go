package codegen

import (
	"fmt"
	"strings"

	"github.com/withgalaxy/nexp/pkg/config"
)

// reserved names are declared by the template or by top-level fragments.
var reserved = []string{
	"express",
	"app",
	"createServer",
	"appSettings",
	"setting",
	"topLevelMiddlewares",
	"tailMiddlewares",
	"req",
	"res",
}

// names hands out identifiers that are unique within one generated file.
type names struct {
	used map[string]bool
}

func newNames() *names {
	n := &names{used: make(map[string]bool)}
	for _, r := range reserved {
		n.used[r] = true
	}
	return n
}

// take returns base, or base with the lowest free numeric suffix.
func (n *names) take(base string) string {
	if !n.used[base] {
		n.used[base] = true
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !n.used[candidate] {
			n.used[candidate] = true
			return candidate
		}
	}
}

// routeIdentifier turns a directory name into the stem of a JavaScript
// identifier. Virtual groups cannot name a router.
func routeIdentifier(name string) (string, error) {
	name = strings.TrimSpace(name)
	if config.IsVirtualGroup(name) {
		return "", fmt.Errorf("virtual group %s should not be used as a route name", name)
	}
	name = strings.ReplaceAll(name, "-", "_")
	return sanitize(name), nil
}

// handlerAliasPrefix derives the import alias stem of a route directory from
// its relative path.
func handlerAliasPrefix(relativePath string) string {
	r := strings.NewReplacer("/", "_", ".", "_", "-", "_", "(", "", ")", "")
	return sanitize(r.Replace(relativePath))
}

func sanitize(s string) string {
	var sb strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || r == '$',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}
