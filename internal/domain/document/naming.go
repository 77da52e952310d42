package document

import (
	"path/filepath"
	"strings"

	"filesend-bot/internal/domain/settings"
	"filesend-bot/internal/domain/storage"
	"filesend-bot/internal/domain/user"
)

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// RenderFileName substitutes the placeholders in template and appends the
// extension of originalName, dot included.
func RenderFileName(template, fullName string, t FileType, originalName string) string {
	name := strings.ReplaceAll(template, settings.PlaceholderSurname, user.Surname(fullName))
	name = strings.ReplaceAll(name, settings.PlaceholderType, t.Label())
	return pathSeparators.Replace(name) + Extension(originalName)
}

// Extension returns the extension of name including the dot. A leading dot
// alone does not start an extension.
func Extension(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return ext
}

// UserFolder is the remote directory holding a user's documents.
func UserFolder(root, fullName string) string {
	return storage.Join(root, pathSeparators.Replace(strings.TrimSpace(fullName)))
}

// NewTarget computes the remote location of an upload.
func NewTarget(root, template, fullName string, t FileType, originalName string) Target {
	folder := UserFolder(root, fullName)
	name := RenderFileName(template, fullName, t, originalName)
	return Target{
		Folder: folder,
		Name:   name,
		Path:   storage.Join(folder, name),
	}
}
