package services

import (
	"regexp"
	"strings"
)

var (
	unsafePathChars    = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	repeatedUnderscore = regexp.MustCompile(`_+`)
)

// SanitizePathSegment replaces every character outside [a-zA-Z0-9_-] with "_"
// and collapses runs of underscores.
func SanitizePathSegment(value string) string {
	value = unsafePathChars.ReplaceAllString(value, "_")
	return repeatedUnderscore.ReplaceAllString(value, "_")
}

// DocumentObjectPath lays out uploads as client/task/original-file-name. Two
// uploads with the same name under the same task share a path, so the later
// one replaces the stored object.
func DocumentObjectPath(clientName string, taskTitle string, fileName string) string {
	name := strings.TrimSpace(fileName)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return SanitizePathSegment(clientName) + "/" + SanitizePathSegment(taskTitle) + "/" + name
}
