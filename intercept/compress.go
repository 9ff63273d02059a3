package intercept

import (
	"context"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/Skryldev/image-loader/core"
	apperrors "github.com/Skryldev/image-loader/errors"
	"github.com/Skryldev/image-loader/utils"
)

// Decompress returns an interceptor that unwraps zstd- or gzip-compressed
// payloads before decode.  Servers that deliver pre-compressed image blobs
// (or disk stores that compress at rest) become transparent to the decoder.
// Uncompressed payloads pass through untouched.
func Decompress() core.Interceptor {
	return Func(func(ctx context.Context, data []byte, hint core.SizeHint, decode core.DecodeFunc) (*core.Codec, error) {
		switch {
		case isZstd(data):
			plain, err := unzstd(data)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.KindDecode, "intercept.zstd", err)
			}
			return decode(ctx, plain, hint)
		case isGzip(data):
			plain, err := ungzip(data)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.KindDecode, "intercept.gzip", err)
			}
			return decode(ctx, plain, hint)
		}
		return decode(ctx, data, hint)
	})
}

// zstd magic: 28 B5 2F FD; gzip magic: 1F 8B.
func isZstd(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x28 && data[1] == 0xB5 && data[2] == 0x2F && data[3] == 0xFD
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B
}

func unzstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func ungzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(utils.BytesReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
