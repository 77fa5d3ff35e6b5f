package scopedio

import (
	"context"
	"io"
)

// One-shot conveniences composed from [WithFile]. Each opens the file in a
// private region, so the handle is closed (and flushed) before returning.

// ReadFile returns the entire contents of path as raw bytes.
func ReadFile(ctx context.Context, path string) ([]byte, error) {
	return WithFile(ctx, path, func(_ context.Context, _ *Region, h Handle[ReadOnly]) ([]byte, error) {
		data, err := io.ReadAll(logicalReader{h: h.h})
		if err != nil {
			return nil, opErr(h.h.path, "read", err)
		}

		return data, nil
	})
}

// ReadTextFile returns the entire contents of path as text, with the
// default encoding and newline translation applied.
func ReadTextFile(ctx context.Context, path string) (string, error) {
	return WithFile(ctx, path, func(_ context.Context, _ *Region, h Handle[ReadOnly]) (string, error) {
		return GetContents(h)
	})
}

// WriteFile replaces path's contents with data. The write mode creates the
// file if missing; opts can adjust permissions.
func WriteFile(ctx context.Context, path string, data []byte, opts ...Option) error {
	_, err := WithFile(ctx, path, func(_ context.Context, _ *Region, h Handle[WriteOnly]) (struct{}, error) {
		if err := h.h.writeBytes(data); err != nil {
			return struct{}{}, opErr(h.h.path, "write", err)
		}

		return struct{}{}, nil
	}, opts...)

	return err
}

// AppendFile appends data to path, creating the file if missing.
func AppendFile(ctx context.Context, path string, data []byte, opts ...Option) error {
	_, err := WithFile(ctx, path, func(_ context.Context, _ *Region, h Handle[AppendOnly]) (struct{}, error) {
		if err := h.h.writeBytes(data); err != nil {
			return struct{}{}, opErr(h.h.path, "write", err)
		}

		return struct{}{}, nil
	}, opts...)

	return err
}
