package scopedio_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/scopedio"
)

func Test_GetLine_Strips_Terminator_And_Reports_EOF_Only_When_Empty(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "lines.txt", []byte("one\ntwo\nlast"))

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.Open[scopedio.ReadOnly](r, path)
		if err != nil {
			return err
		}

		for _, want := range []string{"one", "two", "last"} {
			line, err := scopedio.GetLine(h)
			if err != nil {
				return err
			}

			if line != want {
				t.Fatalf("line = %q, want %q", line, want)
			}
		}

		_, err = scopedio.GetLine(h)
		if !errors.Is(err, io.EOF) {
			t.Fatalf("want io.EOF after last line, got %v", err)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_CRLF_Input_Mode_Folds_Line_Endings(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "crlf.txt", []byte("alpha\r\nbeta\r\n"))

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.Open[scopedio.ReadOnly](r, path, scopedio.WithNewlineMode(scopedio.UniversalNewlineMode()))
		if err != nil {
			return err
		}

		line, err := scopedio.GetLine(h)
		if err != nil {
			return err
		}

		if line != "alpha" {
			t.Fatalf("line = %q, want %q", line, "alpha")
		}

		ch, err := scopedio.GetChar(h)
		if err != nil {
			return err
		}

		if ch != 'b' {
			t.Fatalf("char = %q, want 'b'", ch)
		}

		rest, err := scopedio.GetContents(h)
		if err != nil {
			return err
		}

		if rest != "eta\n" {
			t.Fatalf("contents = %q, want %q", rest, "eta\n")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_CRLF_Output_Mode_Expands_Newlines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "crlf-out.txt")

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		mode := scopedio.NewlineMode{Input: scopedio.LF, Output: scopedio.CRLF}

		h, err := scopedio.Open[scopedio.WriteOnly](r, path, scopedio.WithNewlineMode(mode))
		if err != nil {
			return err
		}

		return scopedio.PutLine(h, "row")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := readFile(t, path); got != "row\r\n" {
		t.Fatalf("file contents = %q, want %q", got, "row\r\n")
	}
}

func Test_GetChar_Decodes_Multibyte_Runes(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "utf8.txt", []byte("héllo"))

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.Open[scopedio.ReadOnly](r, path)
		if err != nil {
			return err
		}

		for _, want := range []rune{'h', 'é', 'l'} {
			got, err := scopedio.GetChar(h)
			if err != nil {
				return err
			}

			if got != want {
				t.Fatalf("char = %q, want %q", got, want)
			}
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_LookAhead_Does_Not_Consume(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "peek.txt", []byte("xyz"))

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.Open[scopedio.ReadOnly](r, path)
		if err != nil {
			return err
		}

		for range 3 {
			peeked, err := scopedio.LookAhead(h)
			if err != nil {
				return err
			}

			if peeked != 'x' {
				t.Fatalf("peek = %q, want 'x'", peeked)
			}
		}

		got, err := scopedio.GetContents(h)
		if err != nil {
			return err
		}

		if got != "xyz" {
			t.Fatalf("contents after peeks = %q, want %q", got, "xyz")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_IsEOF_On_Empty_And_Exhausted_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.txt", nil)
	full := writeFile(t, dir, "full.txt", []byte("a"))

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		he, err := scopedio.Open[scopedio.ReadOnly](r, empty)
		if err != nil {
			return err
		}

		atEnd, err := scopedio.IsEOF(he)
		if err != nil {
			return err
		}

		if !atEnd {
			t.Fatal("empty file not at EOF")
		}

		hf, err := scopedio.Open[scopedio.ReadOnly](r, full)
		if err != nil {
			return err
		}

		atEnd, err = scopedio.IsEOF(hf)
		if err != nil {
			return err
		}

		if atEnd {
			t.Fatal("unread file reported EOF")
		}

		// The EOF probe must not consume input.
		ch, err := scopedio.GetChar(hf)
		if err != nil {
			return err
		}

		if ch != 'a' {
			t.Fatalf("char after EOF probe = %q, want 'a'", ch)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_Latin1_Encoding_Round_Trips_High_Bytes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "latin1.txt")

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		hw, err := scopedio.Open[scopedio.WriteOnly](r, path, scopedio.WithEncoding(scopedio.Latin1))
		if err != nil {
			return err
		}

		// U+00E9 is one byte (0xE9) in Latin-1, two in UTF-8.
		if err := scopedio.PutString(hw, "café"); err != nil {
			return err
		}

		if err := hw.Close(); err != nil {
			return err
		}

		raw := readFile(t, path)
		if len(raw) != 4 {
			t.Fatalf("latin1 byte length = %d, want 4", len(raw))
		}

		hr, err := scopedio.Open[scopedio.ReadOnly](r, path, scopedio.WithEncoding(scopedio.Latin1))
		if err != nil {
			return err
		}

		got, err := scopedio.GetContents(hr)
		if err != nil {
			return err
		}

		if got != "café" {
			t.Fatalf("decoded = %q, want %q", got, "café")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_PutString_Rejects_Runes_Outside_Encoding(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ascii.txt")

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.Open[scopedio.WriteOnly](r, path, scopedio.WithEncoding(scopedio.ASCII))
		if err != nil {
			return err
		}

		err = scopedio.PutString(h, "snowman ☃")
		if !errors.Is(err, scopedio.ErrBadEncoding) {
			t.Fatalf("want ErrBadEncoding, got %v", err)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func Test_Print_Writes_Value_As_Line(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "print.txt")

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.Open[scopedio.WriteOnly](r, path)
		if err != nil {
			return err
		}

		return scopedio.Print(h, 1234)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := readFile(t, path); got != "1234\n" {
		t.Fatalf("file contents = %q, want %q", got, "1234\n")
	}
}
