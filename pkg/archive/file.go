package archive

import (
	"fmt"
	"io/fs"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/aretw0/provview/pkg/domain"
)

// File is the content of one file of the result.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadFile reads a file relative to the UUID directory.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	name = strings.TrimPrefix(name, "/")
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: invalid path %q", domain.ErrResultNotFound, name)
	}
	data, err := fs.ReadFile(a.root, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrResultNotFound, name, err)
	}
	return data, nil
}

// File reads a file and detects its content type. Text formats are resolved
// by extension first since content sniffing cannot tell css from plain text.
func (a *Archive) File(name string) (File, error) {
	data, err := a.ReadFile(name)
	if err != nil {
		return File{}, err
	}
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	return File{Name: name, ContentType: contentType, Data: data}, nil
}

// Entry describes one file of the result.
type Entry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Entries lists the files of the result with their sizes.
func (a *Archive) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(a.files))
	for _, name := range a.files {
		info, err := fs.Stat(a.root, name)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		entries = append(entries, Entry{Name: name, Size: info.Size()})
	}
	return entries, nil
}
