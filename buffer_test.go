package scopedio_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/scopedio"
)

func Test_WriteBuf_And_ReadBuf_Round_Trip_Binary_Data(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blob.bin")
	payload := []byte{0x00, 0x0d, 0x0a, 0xff, 0x7f}

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		w, err := scopedio.OpenBinary[scopedio.WriteOnly](r, path)
		if err != nil {
			return err
		}

		out := scopedio.AllocBuffer(r, len(payload))
		copy(out.Bytes(), payload)

		if err := scopedio.WriteBuf(w, out, out.Len()); err != nil {
			return err
		}

		if err := w.Close(); err != nil {
			return err
		}

		rd, err := scopedio.OpenBinary[scopedio.ReadOnly](r, path)
		if err != nil {
			return err
		}

		in := scopedio.AllocBuffer(r, 64)

		n, err := scopedio.ReadBuf(rd, in, in.Len())
		if err != nil {
			return err
		}

		// Short count means end of stream, not an error.
		if n != len(payload) {
			t.Fatalf("read %d bytes, want %d", n, len(payload))
		}

		if !bytes.Equal(in.Bytes()[:n], payload) {
			t.Fatalf("read back %x, want %x", in.Bytes()[:n], payload)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_ReadBuf_At_EOF_Returns_Zero_Without_Error(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "empty.bin", nil)

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.OpenBinary[scopedio.ReadOnly](r, path)
		if err != nil {
			return err
		}

		buf := scopedio.AllocBuffer(r, 8)

		n, err := scopedio.ReadBuf(h, buf, buf.Len())
		if err != nil {
			return err
		}

		if n != 0 {
			t.Fatalf("read %d bytes from empty file", n)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_ReadBufSome_Returns_After_Single_Read(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "some.bin", []byte("abcdef"))

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.OpenBinary[scopedio.ReadOnly](r, path)
		if err != nil {
			return err
		}

		buf := scopedio.AllocBuffer(r, 4)

		n, err := scopedio.ReadBufSome(h, buf, 4)
		if err != nil {
			return err
		}

		if n != 4 {
			t.Fatalf("read %d bytes, want 4", n)
		}

		if got := string(buf.Bytes()); got != "abcd" {
			t.Fatalf("read %q, want %q", got, "abcd")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_Buffer_Is_Released_With_Its_Region(t *testing.T) {
	t.Parallel()

	var escaped *scopedio.Buffer

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		escaped = scopedio.AllocBuffer(r, 16)

		if escaped.Len() != 16 {
			t.Fatalf("live buffer length = %d, want 16", escaped.Len())
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if escaped.Bytes() != nil || escaped.Len() != 0 {
		t.Fatal("buffer storage survived region completion")
	}
}

func Test_IO_On_Released_Buffer_Fails(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "late.bin", []byte("x"))

	err := scopedio.Run(t.Context(), func(ctx context.Context, outer *scopedio.Region) error {
		h, err := scopedio.OpenBinary[scopedio.ReadOnly](outer, path)
		if err != nil {
			return err
		}

		var stale *scopedio.Buffer

		_, err = scopedio.RunSub(ctx, outer, func(_ context.Context, inner *scopedio.Region) (struct{}, error) {
			stale = scopedio.AllocBuffer(inner, 8)

			return struct{}{}, nil
		})
		if err != nil {
			return err
		}

		_, err = scopedio.ReadBuf(h, stale, 1)
		if !errors.Is(err, scopedio.ErrBufferFreed) {
			t.Fatalf("want ErrBufferFreed, got %v", err)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_ReadBuf_Clamps_Count_To_Buffer_Size(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "clamp.bin", []byte("abcdefgh"))

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.OpenBinary[scopedio.ReadOnly](r, path)
		if err != nil {
			return err
		}

		buf := scopedio.AllocBuffer(r, 4)

		n, err := scopedio.ReadBuf(h, buf, 100)
		if err != nil {
			return err
		}

		if n != 4 {
			t.Fatalf("read %d bytes, want buffer size 4", n)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
