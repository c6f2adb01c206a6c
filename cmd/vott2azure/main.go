// Command vott2azure rewrites VoTT-exported YOLO text annotations into the
// combined anno.json format the dataset generator emits.
//
// Usage: vott2azure -in <dir> [-out <file>]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"fruitgen/internal/vott"
)

var (
	flagIn  = flag.String("in", "", "directory containing .txt annotation files")
	flagOut = flag.String("out", "", "output JSON path (default <in>/anno.json)")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("vott2azure: ")
	flag.Parse()

	if *flagIn == "" {
		fmt.Fprintln(os.Stderr, "vott2azure: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	out := *flagOut
	if out == "" {
		out = filepath.Join(*flagIn, "anno.json")
	}

	annos, err := vott.Convert(*flagIn)
	if err != nil {
		log.Fatal(err)
	}
	if err := vott.WriteAnno(out, annos); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d annotation entries to %s", len(annos), out)
}
