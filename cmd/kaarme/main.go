// Command kaarme counts canonical k-mers in a DNA text file in parallel.
// See SPEC_FULL.md for the full external interface.
package main

import (
	"os"

	flag "github.com/spf13/pflag"

	"github.com/denopia/kaarme-go/internal/config"
	"github.com/denopia/kaarme-go/internal/orchestrator"
	"github.com/denopia/kaarme-go/pkg/fs"
)

func main() {
	flags := flag.NewFlagSet("kaarme", flag.ContinueOnError)

	input := flags.StringP("input", "i", "", "input file (required)")
	output := flags.StringP("output", "o", "", "output file (required)")
	k := flags.Int("k", 21, "k-mer length")
	chunkSize := flags.Int("chunk-size", 1<<20, "target chunk size in bytes")
	activeChunks := flags.Int("active-chunks", 8, "size of the chunk buffer ring")
	threads := flags.Int("threads", 4, "number of worker threads")
	minSlots := flags.Uint64("min-slots", 1<<20, "lower bound on hash table size")
	minAbundance := flags.Uint64("min-abundance", 1, "minimum count for write-out; 0 disables output")
	gzipped := flags.Bool("gzip", false, "treat input as gzip-compressed")
	tableVariant := flags.String("table-variant", config.TableVariantState, "hash table locking variant: flag or state")

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	cfg := config.Config{
		InputFile:    *input,
		OutputFile:   *output,
		K:            *k,
		ChunkSize:    *chunkSize,
		ActiveChunks: *activeChunks,
		NThreads:     *threads,
		MinSlots:     *minSlots,
		MinAbundance: *minAbundance,
		Gzip:         *gzipped,
		TableVariant: *tableVariant,
	}

	os.Exit(orchestrator.Run(os.Stderr, cfg, fs.NewReal()))
}
