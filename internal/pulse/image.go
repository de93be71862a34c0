package pulse

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

// MaxImageBytes bounds attachments read from disk.
const MaxImageBytes = 20 << 20

// Image is an inline photo sent with an incident report or chat message.
type Image struct {
	MIMEType string
	Data     []byte
}

// LoadImage reads a photo from disk and sniffs its content type.
func LoadImage(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.Size() > MaxImageBytes {
		return nil, fmt.Errorf("image %s is %d bytes, limit is %d", path, info.Size(), MaxImageBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return NewImage(data)
}

// NewImage wraps raw bytes, rejecting anything that is not an image.
func NewImage(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image is empty")
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("unsupported attachment type %q", mime)
	}
	return &Image{MIMEType: mime, Data: data}, nil
}
