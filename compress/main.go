package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/larsko/huffbit"
)

func main() {
	flags := pflag.NewFlagSet("compress", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to YAML pipeline config")
	key := flags.Int("key", huffbit.DefaultKey, "obfuscation key (0-255)")
	dir := flags.String("dir", ".", "directory holding the input and output streams")
	keep := flags.Bool("keep-artifacts", false, "keep intermediate stage outputs")
	legacy := flags.Bool("legacy-framing", false, "write the reference bundle layout without sentinel lines")
	verbose := flags.Bool("verbose", false, "log per-stage progress")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] input output\n", os.Args[0])
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[1:])
	if flags.NArg() != 2 {
		flags.Usage()
		os.Exit(1)
	}

	cfg := huffbit.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = huffbit.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	if flags.Changed("key") {
		cfg.Key = byte(*key)
	}
	if flags.Changed("keep-artifacts") {
		cfg.KeepArtifacts = *keep
	}
	if flags.Changed("legacy-framing") {
		cfg.Sentinel = !*legacy
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store := huffbit.DirStore{Dir: *dir}
	if err := huffbit.Compress(store, flags.Arg(0), flags.Arg(1), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
