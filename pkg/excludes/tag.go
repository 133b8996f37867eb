package excludes

import "strings"

// Tag is a rule label such as "@include". Tags compare case-insensitively
// but keep their original spelling for display.
type Tag struct {
	original   string
	normalized string
}

func NewTag(name string) Tag {
	return Tag{
		original:   name,
		normalized: strings.ToLower(name),
	}
}

var (
	TagInclude    = NewTag("@include")
	TagDisclaimer = NewTag("@disclaimer")
)

func (t Tag) Equals(other Tag) bool {
	return t.normalized == other.normalized
}

func (t Tag) String() string {
	return t.original
}

// excludes reports whether the tag removes a path from processing.
func (t Tag) excludes() bool {
	return !t.Equals(TagInclude) && !t.Equals(TagDisclaimer)
}
