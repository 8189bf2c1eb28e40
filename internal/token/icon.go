package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxIconBytes caps the icon payload accepted by WithIcon.
const MaxIconBytes = 2 << 20

var (
	ErrEmptyIcon    = errors.New("token: icon is empty")
	ErrIconTooLarge = fmt.Errorf("token: icon exceeds %d bytes", MaxIconBytes)
)

// WithIcon attaches an image payload and derives its data-URL preview.
// On error c is returned unchanged, so a failed read never leaves a preview
// without an icon or vice versa.
func (c Config) WithIcon(data []byte) (Config, error) {
	if len(data) == 0 {
		return c, ErrEmptyIcon
	}
	if len(data) > MaxIconBytes {
		return c, ErrIconTooLarge
	}
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if !strings.HasPrefix(mime, "image/") {
		return c, fmt.Errorf("token: icon is %s, want an image", mime)
	}
	c.Icon = append([]byte(nil), data...)
	c.IconPreview = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	return c, nil
}

// ClearIcon drops both the icon and its preview.
func (c Config) ClearIcon() Config {
	c.Icon = nil
	c.IconPreview = ""
	return c
}
