// Does not compile: ReadOnly does not satisfy the Writable constraint.
//
//	scopedio.ReadOnly does not satisfy scopedio.Writable
package main

import (
	"context"

	"github.com/calvinalkan/scopedio"
)

func main() {
	_ = scopedio.Run(context.Background(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.Open[scopedio.ReadOnly](r, "in.txt")
		if err != nil {
			return err
		}

		return scopedio.PutString(h, "nope")
	})
}
