package intercept

import (
	"bytes"
	"context"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/Skryldev/image-loader/core"
)

func captureDecode(t *testing.T) (core.DecodeFunc, *[]byte) {
	t.Helper()
	var seen []byte
	fn := func(ctx context.Context, data []byte, hint core.SizeHint) (*core.Codec, error) {
		seen = append([]byte(nil), data...)
		return &core.Codec{Format: core.FormatPNG}, nil
	}
	return fn, &seen
}

func TestDecompress_Zstd(t *testing.T) {
	plain := []byte("pretend image payload")
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	compressed := enc.EncodeAll(plain, nil)
	enc.Close()

	decode, seen := captureDecode(t)
	if _, err := Decompress().Intercept(context.Background(), compressed, core.SizeHint{}, decode); err != nil {
		t.Fatalf("intercept: %v", err)
	}
	if !bytes.Equal(*seen, plain) {
		t.Fatal("decoder must receive the decompressed payload")
	}
}

func TestDecompress_Gzip(t *testing.T) {
	plain := []byte("pretend image payload")
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(plain)
	zw.Close()

	decode, seen := captureDecode(t)
	if _, err := Decompress().Intercept(context.Background(), buf.Bytes(), core.SizeHint{}, decode); err != nil {
		t.Fatalf("intercept: %v", err)
	}
	if !bytes.Equal(*seen, plain) {
		t.Fatal("decoder must receive the decompressed payload")
	}
}

func TestDecompress_Passthrough(t *testing.T) {
	plain := []byte{0x89, 0x50, 0x4E, 0x47, 1, 2, 3}
	decode, seen := captureDecode(t)
	if _, err := Decompress().Intercept(context.Background(), plain, core.SizeHint{}, decode); err != nil {
		t.Fatalf("intercept: %v", err)
	}
	if !bytes.Equal(*seen, plain) {
		t.Fatal("uncompressed payloads must pass through untouched")
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mk := func(name string) core.Interceptor {
		return Func(func(ctx context.Context, data []byte, hint core.SizeHint, decode core.DecodeFunc) (*core.Codec, error) {
			order = append(order, name)
			return decode(ctx, data, hint)
		})
	}
	decode, _ := captureDecode(t)

	chained := Chain(mk("first"), mk("second"))
	if _, err := chained.Intercept(context.Background(), []byte("x"), core.SizeHint{}, decode); err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("order = %v", order)
	}
}

func TestChain_SubstitutionShortCircuits(t *testing.T) {
	substituted := &core.Codec{Format: core.FormatWebP}
	first := Func(func(ctx context.Context, data []byte, hint core.SizeHint, decode core.DecodeFunc) (*core.Codec, error) {
		return substituted, nil
	})
	second := Func(func(ctx context.Context, data []byte, hint core.SizeHint, decode core.DecodeFunc) (*core.Codec, error) {
		t.Fatal("second interceptor must not run")
		return nil, nil
	})
	decode, _ := captureDecode(t)

	codec, err := Chain(first, second).Intercept(context.Background(), []byte("x"), core.SizeHint{}, decode)
	if err != nil {
		t.Fatal(err)
	}
	if codec != substituted {
		t.Fatal("substituted codec must be returned")
	}
}
