// Command dumpstore pretty-prints the persisted library records from a file
// storage directory, for debugging persisted state.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"cinescope/internal/storage"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dumpstore <data-dir>")
		os.Exit(1)
	}

	store, err := storage.NewFileStore(afero.NewOsFs(), flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	keys := []string{storage.KeyUser, storage.KeyFavorites, storage.KeyPlaylists, storage.KeyRatings}
	for _, key := range keys {
		data, err := store.Get(key)
		if errors.Is(err, storage.ErrKeyNotFound) {
			fmt.Printf("%s: <absent>\n", key)
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			fmt.Printf("%s: <corrupt: %v>\n", key, err)
			continue
		}
		fmt.Printf("%s:\n", key)
		if err := enc.Encode(value); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
