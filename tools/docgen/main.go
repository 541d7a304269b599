// Package main generates CLI reference documentation from the
// winning-products command tree, as markdown or man pages.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/winning-products/cmd/winning-products/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated docs")
	format := flag.String("format", "markdown", "output format (markdown, man)")
	flag.Parse()

	if err := generate(cmd.Root(), *output, *format); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("CLI docs (%s) generated in %s/\n", *format, *output)
}

func generate(root *cobra.Command, dir, format string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	root.DisableAutoGenTag = true

	var err error
	switch format {
	case "markdown":
		err = doc.GenMarkdownTree(root, dir)
	case "man":
		err = doc.GenManTree(root, &doc.GenManHeader{
			Title:   "WINNING-PRODUCTS",
			Section: "1",
			Source:  "winning-products " + cmd.Version,
		}, dir)
	default:
		return fmt.Errorf("unknown format %q (want markdown or man)", format)
	}
	if err != nil {
		return fmt.Errorf("generating docs: %w", err)
	}
	return nil
}
