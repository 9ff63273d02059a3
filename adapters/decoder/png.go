package decoder

import (
	"context"
	"image/png"

	"github.com/Skryldev/image-loader/core"
	apperrors "github.com/Skryldev/image-loader/errors"
	"github.com/Skryldev/image-loader/utils"
)

// PNG decodes PNG images using the standard library.
type PNG struct{}

// NewPNG returns an initialised PNG decoder.
func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanDecode(format core.Format) bool {
	return format == core.FormatPNG
}

func (p *PNG) Decode(ctx context.Context, data []byte, _ core.SizeHint) (*core.Codec, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "png.decode", err)
	}

	img, err := png.Decode(utils.BytesReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "png.decode", err)
	}
	return codecFor(img, core.FormatPNG), nil
}
