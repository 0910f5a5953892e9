// inspect dumps raw records from a burrow database for debugging.
package main

import (
	"flag"
	"fmt"
	"os"

	"burrow/pkg/store"
)

func main() {
	var dbPath, prefix string
	var keysOnly bool
	flag.StringVar(&dbPath, "db", "./.database", "Pebble DB path")
	flag.StringVar(&prefix, "prefix", "", "key prefix to scan (e.g. post:, chat:, notif:alice:)")
	flag.BoolVar(&keysOnly, "keys", false, "print keys only")
	flag.Parse()

	if prefix == "" {
		fmt.Fprintln(os.Stderr, "--prefix required")
		os.Exit(2)
	}
	if err := store.Open(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	recs, err := store.ScanPrefix(prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan %s: %v\n", prefix, err)
		os.Exit(1)
	}
	for _, r := range recs {
		if keysOnly {
			fmt.Println(r.Key)
			continue
		}
		fmt.Printf("%s\t%s\n", r.Key, r.Value)
	}
	fmt.Fprintf(os.Stderr, "%d records\n", len(recs))
}
