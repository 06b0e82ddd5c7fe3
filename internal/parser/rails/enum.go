package rails

import (
	"regexp"
	"strings"

	"schemaport/internal/core"
)

var (
	reEnum     = regexp.MustCompile(`(?s)create_enum\s+"(\w+)",\s*\[(.*?)\]`)
	reEnumDecl = regexp.MustCompile(`create_enum\s+"\w+"`)
)

// ExtractEnum returns the first create_enum declaration in src, or nil when
// there is none. The second value is the number of create_enum declarations
// in the whole document; only the first one is converted.
//
// Values are unquoted and trimmed. Duplicate or empty value lists are passed
// through unchanged.
func ExtractEnum(src string) (*core.EnumType, int) {
	total := len(reEnumDecl.FindAllStringIndex(src, -1))

	m := reEnum.FindStringSubmatch(src)
	if m == nil {
		return nil, total
	}

	return &core.EnumType{Name: m[1], Values: splitList(m[2])}, total
}

// splitList splits a comma-separated, possibly quoted list. An empty list
// yields no values.
func splitList(raw string) []string {
	raw = strings.NewReplacer(`"`, "", `'`, "").Replace(raw)
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
