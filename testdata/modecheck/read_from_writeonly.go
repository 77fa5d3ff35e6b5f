// Does not compile: WriteOnly does not satisfy the Readable constraint.
//
//	scopedio.WriteOnly does not satisfy scopedio.Readable
package main

import (
	"context"

	"github.com/calvinalkan/scopedio"
)

func main() {
	_ = scopedio.Run(context.Background(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.Open[scopedio.WriteOnly](r, "out.txt")
		if err != nil {
			return err
		}

		_, err = scopedio.GetLine(h)

		return err
	})
}
