package editor

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	unsafeFileChar = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// SanitizeFileName keeps only [A-Za-z0-9_.-], turning whitespace into underscores.
func SanitizeFileName(name string) string {
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "_")
	name = unsafeFileChar.ReplaceAllString(name, "")
	name = strings.Trim(name, ".")
	if name == "" {
		return "photo"
	}
	return name
}

// ObjectPath namespaces an upload under its owner. The batch index keeps
// same-named files uploaded in the same millisecond apart.
func ObjectPath(owner uuid.UUID, at time.Time, index int, name string) string {
	return fmt.Sprintf("trash_photos/user-%s/%d_%d_%s", owner, at.UnixMilli(), index, SanitizeFileName(name))
}
