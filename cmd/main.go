// Package main is the entry point of the tunelib command.
//
// tunelib manages a local music library, its cover-art cache and podcast
// subscriptions. Every command prints its result as indented JSON.
//
// Build:
//
//	go build -o build/tunelib ./cmd
//
// Run:
//
//	./build/tunelib tracks add ~/Music/*.mp3
//	./build/tunelib podcasts add https://example.com/feed.xml
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

func main() {
	if err := execute(context.Background(), afero.NewOsFs(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
