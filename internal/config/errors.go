package config

import "errors"

var (
	errInputFileRequired   = errors.New("config: input_file is required")
	errOutputFileRequired  = errors.New("config: output_file is required")
	errKOutOfRange         = errors.New("config: k out of range")
	errChunkSizeTooSmall   = errors.New("config: chunk_size too small")
	errActiveChunksZero    = errors.New("config: active_chunks must be > 0")
	errNThreadsZero        = errors.New("config: n_threads must be > 0")
	errMinSlotsZero        = errors.New("config: min_slots must be > 0")
	errUnknownTableVariant = errors.New("config: unknown table_variant")
)
