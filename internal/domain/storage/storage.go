// Package storage describes the remote folder tree documents are delivered to.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrAlreadyExists is returned by Mkdir for an existing directory and by
// Upload when the target exists and overwrite is false.
var ErrAlreadyExists = errors.New("remote path already exists")

// Backend is a hierarchical remote store. Paths are absolute and slash separated.
type Backend interface {
	Name() string
	Exists(ctx context.Context, remotePath string) (bool, error)
	Mkdir(ctx context.Context, remotePath string) error
	Upload(ctx context.Context, localPath, remotePath string, overwrite bool) error
}

// Clean normalizes a remote path to an absolute slash separated form.
func Clean(remotePath string) string {
	cleaned := path.Clean("/" + strings.TrimSpace(remotePath))
	return cleaned
}

// Join joins path elements under an absolute root.
func Join(elem ...string) string {
	return Clean(path.Join(elem...))
}

// Ancestors returns every directory from the top level down to dir, root
// first. Ancestors("/a/b/c") is ["/a", "/a/b", "/a/b/c"].
func Ancestors(dir string) []string {
	dir = Clean(dir)
	if dir == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(dir, "/"), "/")
	result := make([]string, 0, len(parts))
	current := ""
	for _, part := range parts {
		current += "/" + part
		result = append(result, current)
	}
	return result
}
