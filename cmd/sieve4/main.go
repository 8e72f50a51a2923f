// Command sieve4 is the minimal external harness named in spec §6: it
// sieves a single candidate r4 against every enumerated error
// configuration and writes one CSV row per (config-index,
// unknown-block, solvable) triple.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/sieve4/r4sieve/internal/artifact"
	"github.com/sieve4/r4sieve/internal/corelog"
	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/sieve"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "sieve4:", err)
		os.Exit(exitCode(err))
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("sieve4", flag.ContinueOnError)
	manifestPath := fs.String("manifest", "", "path to the YAML run manifest (artifact paths, worker count, cache mode)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if *manifestPath == "" || len(rest) != 2 {
		return fmt.Errorf("usage: sieve4 -manifest <manifest.yaml> <r4> <output-csv>")
	}

	r4, err := strconv.ParseUint(rest[0], 10, 16)
	if err != nil {
		return coreerr.Invalid("main", "r4 must be a uint16 in [0, 65536): %v", err)
	}
	outPath := rest[1]

	manifest, err := sieve.LoadRunManifest(*manifestPath)
	if err != nil {
		return err
	}

	log := corelog.New("sieve4: ")
	bundle, err := artifact.Load(manifest.Artifacts.Paths(), manifest.UseMmap)
	if err != nil {
		return err
	}

	ctx, err := sieve.NewCoreContext(bundle, log)
	if err != nil {
		return err
	}
	defer ctx.Release()
	if manifest.CacheMode == sieve.CacheModeEager {
		ctx.WarmCtHt()
	}

	results := sieve.EvaluateAll(ctx, uint16(r4))
	return writeCSV(outPath, results)
}

func writeCSV(path string, results []sieve.ConfigResult) error {
	f, err := os.Create(path)
	if err != nil {
		return coreerr.IO("writeCSV", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"config_index", "unknown_block", "solvable"}); err != nil {
		return coreerr.IO("writeCSV", err)
	}
	for _, r := range results {
		solvable := "0"
		if r.Solvable {
			solvable = "1"
		}
		row := []string{strconv.Itoa(r.ConfigIndex), strconv.Itoa(r.Unknown), solvable}
		if err := w.Write(row); err != nil {
			return coreerr.IO("writeCSV", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return coreerr.IO("writeCSV", err)
	}
	return nil
}

func exitCode(err error) int {
	if coreerr.Is(err, coreerr.InvalidInput) || coreerr.Is(err, coreerr.FileIO) {
		return 2
	}
	return 1
}
