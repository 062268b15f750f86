// Package main implements a NAND flash dump randomizer
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/nandrandomizer/internal/cli"
	"github.com/retroenv/nandrandomizer/internal/config"
	"github.com/retroenv/nandrandomizer/internal/fileprocessor"
	"github.com/retroenv/nandrandomizer/internal/options"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	if opts.Info {
		if err := fileprocessor.PrintChipInfo(logger, opts); err != nil {
			logger.Fatal(err.Error())
		}
		return
	}

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Fatal(err.Error())
	}

	for _, file := range files {
		opts.Input = file
		if len(files) > 1 || opts.Batch != "" {
			opts.Output = fileprocessor.GenerateOutputFilename(file, options.Mode(opts.Mode))
		}

		if err := fileprocessor.ProcessFile(ctx, logger, opts); err != nil {
			// Handle context cancellation (Ctrl+C) gracefully
			if errors.Is(err, context.Canceled) {
				logger.Info("Operation cancelled")
				return
			}
			logger.Error("Processing failed", log.String("file", file), log.Err(err))
		}
	}
}
