// Package decoder provides format-specific image decoders.
package decoder

import (
	"context"
	"image"
	"image/jpeg"

	"github.com/Skryldev/image-loader/core"
	apperrors "github.com/Skryldev/image-loader/errors"
	"github.com/Skryldev/image-loader/utils"
)

// JPEG decodes JPEG images using the standard library.  The size hint is
// ignored; decoding happens at intrinsic size.
type JPEG struct{}

// NewJPEG returns an initialised JPEG decoder.
func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) CanDecode(format core.Format) bool {
	return format == core.FormatJPEG
}

func (j *JPEG) Decode(ctx context.Context, data []byte, _ core.SizeHint) (*core.Codec, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "jpeg.decode", err)
	}

	img, err := jpeg.Decode(utils.BytesReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "jpeg.decode", err)
	}
	return codecFor(img, core.FormatJPEG), nil
}

// codecFor wraps a decoded image.Image in the shared Codec shape.
func codecFor(img image.Image, format core.Format) *core.Codec {
	bounds := img.Bounds()
	return &core.Codec{
		Image:  img,
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
}
