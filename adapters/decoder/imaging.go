package decoder

import (
	"context"
	"image"

	"github.com/disintegration/imaging"

	"github.com/Skryldev/image-loader/core"
	apperrors "github.com/Skryldev/image-loader/errors"
	"github.com/Skryldev/image-loader/utils"
)

// Imaging is the universal fallback decoder backed by
// github.com/disintegration/imaging.  It handles any format that library can
// read (JPEG, PNG, GIF, TIFF, BMP) and is the one bundled decoder that
// honors the size hint, downscaling to fit the requested bounds.
type Imaging struct{}

// NewImaging returns an initialised fallback decoder.
func NewImaging() *Imaging { return &Imaging{} }

func (*Imaging) CanDecode(core.Format) bool { return true }

func (*Imaging) Decode(ctx context.Context, data []byte, hint core.SizeHint) (*core.Codec, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "imaging.decode", err)
	}

	img, err := imaging.Decode(utils.BytesReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecode, "imaging.decode", err)
	}
	if !hint.IsZero() {
		img = fitToHint(img, hint)
	}
	format := core.Format(utils.DetectFormat(data))
	return codecFor(img, format), nil
}

// fitToHint downscales img to fit inside the hinted bounds, never upscaling.
func fitToHint(img image.Image, hint core.SizeHint) image.Image {
	bounds := img.Bounds()
	w, h := utils.ScaleDimensions(bounds.Dx(), bounds.Dy(), hint.Width, hint.Height)
	if w >= bounds.Dx() || h >= bounds.Dy() {
		return img
	}
	return imaging.Fit(img, w, h, imaging.Lanczos)
}
