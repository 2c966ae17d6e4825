package main

import (
	"log/slog"
	"os"

	"rasterkit/edit"
	"rasterkit/parallel"
	"rasterkit/pixbuf"

	"github.com/alecthomas/kong"
)

type cli struct {
	LogLevel slog.Level `help:"Log level (debug, info, warn, error)" default:"info"`
	Workers  int        `help:"Parallel workers for batch commands, 0 for one per CPU" default:"0"`

	Blit   edit.BlitCmd   `cmd:"" help:"Composite a transformed patch over an image"`
	Fill   edit.FillCmd   `cmd:"" help:"Flood fill a region of similar color"`
	Resize edit.ResizeCmd `cmd:"" help:"Change the canvas size, moving content between two anchor points"`
	Mask   edit.MaskCmd   `cmd:"" help:"Slice, crop or paint the area covered by a mask"`
	Filter edit.FilterCmd `cmd:"" help:"Scale, adjust and quantize every image of a folder"`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("rasterkit"),
		kong.Description("Raster buffer editing tools"),
		kong.UsageOnError(),
	)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
	slog.SetDefault(logger)
	pixbuf.SetLogger(logger)

	pool := parallel.Start(c.Workers)
	err := kctx.Run(pool.Do, pool.Wait)
	pool.Wait(true)
	kctx.FatalIfErrorf(err)
}
