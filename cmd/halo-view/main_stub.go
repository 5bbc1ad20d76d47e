//go:build !ebiten

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "halo-view needs the ebiten build tag.")
	fmt.Fprintln(os.Stderr, "Use `go run -tags ebiten ./cmd/halo-view`, or ./cmd/halo for headless runs.")
	os.Exit(2)
}
