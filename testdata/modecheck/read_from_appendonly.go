// Does not compile: AppendOnly does not satisfy the Readable constraint.
//
//	scopedio.AppendOnly does not satisfy scopedio.Readable
package main

import (
	"context"

	"github.com/calvinalkan/scopedio"
)

func main() {
	_ = scopedio.Run(context.Background(), func(_ context.Context, r *scopedio.Region) error {
		h, err := scopedio.Open[scopedio.AppendOnly](r, "log.txt")
		if err != nil {
			return err
		}

		_, err = scopedio.GetChar(h)

		return err
	})
}
