package decoder

import (
	"context"

	"golang.org/x/image/webp"

	"github.com/Skryldev/image-loader/core"
	apperrors "github.com/Skryldev/image-loader/errors"
	"github.com/Skryldev/image-loader/utils"
)

// WebP decodes WebP images via golang.org/x/image.
type WebP struct{}

// NewWebP returns an initialised WebP decoder.
func NewWebP() *WebP { return &WebP{} }

func (w *WebP) CanDecode(format core.Format) bool {
	return format == core.FormatWebP
}

func (w *WebP) Decode(ctx context.Context, data []byte, _ core.SizeHint) (*core.Codec, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "webp.decode", err)
	}

	img, err := webp.Decode(utils.BytesReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "webp.decode", err)
	}
	return codecFor(img, core.FormatWebP), nil
}
