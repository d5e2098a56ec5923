package service

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// LocalFile is a contract file opened from disk for the terminal front-ends.
type LocalFile struct {
	UploadedFile
	file *os.File
}

func (f *LocalFile) Close() error {
	return f.file.Close()
}

// OpenLocalFile opens path as an upload. The content type comes from the
// file extension, or from the first bytes when the extension is unknown.
func OpenLocalFile(path string) (*LocalFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(file, head)
		contentType = http.DetectContentType(head[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &LocalFile{
		UploadedFile: UploadedFile{
			Filename:    filepath.Base(path),
			ContentType: contentType,
			Size:        info.Size(),
			Content:     file,
		},
		file: file,
	}, nil
}
