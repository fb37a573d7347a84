package infra

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"

	"github.com/google/uuid"
)

// MaxUploadBytes caps a single uploaded image.
const MaxUploadBytes = 5 << 20

var uploadFolders = map[string]bool{"products": true, "news": true, "ads": true}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Storage keeps uploaded images on local disk under root and serves them
// from baseURL/uploads.
type Storage struct {
	root    string
	baseURL string
}

func NewStorage(root, baseURL string) *Storage {
	return &Storage{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Storage) Root() string { return s.root }

// Save stores an image read from r into folder and returns its public URL.
// The content type is sniffed from the first 512 bytes; the client-declared
// type is ignored.
func (s *Storage) Save(folder string, r io.Reader) (string, error) {
	if !uploadFolders[folder] {
		return "", apierror.Validation("folder must be one of products, news, ads")
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", apierror.Server("read upload", err)
	}
	head = head[:n]
	ext, ok := imageExt[http.DetectContentType(head)]
	if !ok {
		return "", apierror.Validation("only jpeg, png, webp or gif images are accepted")
	}

	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apierror.Server("create upload dir", err)
	}
	name := uuid.NewString() + ext
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", apierror.Server("create upload file", err)
	}
	defer f.Close()

	body := io.MultiReader(strings.NewReader(string(head)), r)
	written, err := io.Copy(f, io.LimitReader(body, MaxUploadBytes+1))
	if err != nil {
		os.Remove(f.Name())
		return "", apierror.Server("write upload", err)
	}
	if written > MaxUploadBytes {
		os.Remove(f.Name())
		return "", apierror.Validation(fmt.Sprintf("file exceeds %d MB", MaxUploadBytes>>20))
	}
	return s.baseURL + "/uploads/" + folder + "/" + name, nil
}
