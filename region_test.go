package scopedio_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/calvinalkan/scopedio"
)

func Test_Run_Releases_In_Reverse_Registration_Order(t *testing.T) {
	t.Parallel()

	var order []int

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		for i := range 3 {
			r.Defer(func() error {
				order = append(order, i)

				return nil
			})
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{2, 1, 0}
	for i, v := range want {
		if order[i] != v {
			t.Fatalf("release order = %v, want %v", order, want)
		}
	}
}

func Test_Run_Releases_Exactly_Once_On_Body_Error(t *testing.T) {
	t.Parallel()

	bodyErr := errors.New("body failed")
	released := 0

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		r.Defer(func() error {
			released++

			return nil
		})

		return bodyErr
	})

	if !errors.Is(err, bodyErr) {
		t.Fatalf("want body error, got %v", err)
	}

	if released != 1 {
		t.Fatalf("release ran %d times, want 1", released)
	}
}

func Test_Run_Releases_On_Panic_And_Repanics(t *testing.T) {
	t.Parallel()

	released := false

	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("expected panic to propagate")
		}

		if !released {
			t.Fatal("release did not run before panic propagated")
		}
	}()

	_ = scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		r.Defer(func() error {
			released = true

			return nil
		})

		panic("boom")
	})
}

func Test_Run_Does_Not_Start_Body_When_Context_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	ran := false

	err := scopedio.Run(ctx, func(_ context.Context, _ *scopedio.Region) error {
		ran = true

		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}

	if ran {
		t.Fatal("body ran despite cancelled context")
	}
}

func Test_Failing_Release_Does_Not_Stop_Sibling_Releases(t *testing.T) {
	t.Parallel()

	relErr := errors.New("release failed")

	var ran []string

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		r.Defer(func() error {
			ran = append(ran, "first")

			return nil
		})
		r.Defer(func() error {
			ran = append(ran, "failing")

			return relErr
		})
		r.Defer(func() error {
			ran = append(ran, "last")

			return nil
		})

		return nil
	})

	if !errors.Is(err, relErr) {
		t.Fatalf("release failure not surfaced: %v", err)
	}

	if len(ran) != 3 {
		t.Fatalf("expected all 3 releases to run, got %v", ran)
	}
}

func Test_Release_Errors_Combine_With_Body_Error(t *testing.T) {
	t.Parallel()

	bodyErr := errors.New("body failed")
	relErr := errors.New("release failed")

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		r.Defer(func() error { return relErr })

		return bodyErr
	})

	if !errors.Is(err, bodyErr) {
		t.Fatalf("body error masked: %v", err)
	}

	if !errors.Is(err, relErr) {
		t.Fatalf("release error dropped: %v", err)
	}
}

func Test_Early_Release_Is_At_Most_Once(t *testing.T) {
	t.Parallel()

	count := 0

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		token := r.Defer(func() error {
			count++

			return nil
		})

		if err := token.Release(); err != nil {
			return err
		}

		// Second early release is a no-op; scope exit must not run it again.
		return token.Release()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count != 1 {
		t.Fatalf("release ran %d times, want 1", count)
	}
}

func Test_Nested_Region_Completion_Does_Not_Release_Ancestor_Resources(t *testing.T) {
	t.Parallel()

	outerReleased := false
	innerReleased := false

	err := scopedio.Run(t.Context(), func(ctx context.Context, outer *scopedio.Region) error {
		outer.Defer(func() error {
			outerReleased = true

			return nil
		})

		_, err := scopedio.RunSub(ctx, outer, func(_ context.Context, inner *scopedio.Region) (struct{}, error) {
			inner.Defer(func() error {
				innerReleased = true

				return nil
			})

			return struct{}{}, nil
		})
		if err != nil {
			return err
		}

		if !innerReleased {
			return errors.New("inner resource not released at subregion exit")
		}

		if outerReleased {
			return errors.New("outer resource released by subregion exit")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !outerReleased {
		t.Fatal("outer resource never released")
	}
}

func Test_Defer_On_Completed_Region_Panics(t *testing.T) {
	t.Parallel()

	var escaped *scopedio.Region

	err := scopedio.Run(t.Context(), func(_ context.Context, r *scopedio.Region) error {
		escaped = r

		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected Defer on completed region to panic")
		}
	}()

	escaped.Defer(func() error { return nil })
}

func Test_RunScope_Returns_Body_Result_After_Unwind(t *testing.T) {
	t.Parallel()

	releasedBeforeReturn := false

	got, err := scopedio.RunScope(t.Context(), func(_ context.Context, r *scopedio.Region) (string, error) {
		r.Defer(func() error {
			releasedBeforeReturn = true

			return nil
		})

		return fmt.Sprintf("%d", 42), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "42" {
		t.Fatalf("result = %q, want %q", got, "42")
	}

	if !releasedBeforeReturn {
		t.Fatal("region not unwound before RunScope returned")
	}
}
