package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/xtding233/gacha-sim/internal/banner"
	"github.com/xtding233/gacha-sim/internal/config"
	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/tui"
)

func main() {
	dir := flag.String("config", "./config", "config directory containing banners/")
	name := flag.String("banner", banner.DefaultName, "banner to pull on")
	rawSeed := flag.String("seed", "", "rng seed (uint64); unset uses crypto randomness")
	flag.Parse()

	seed, err := config.ParseSeed(*rawSeed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid -seed: %v\n", err)
		os.Exit(2)
	}
	var rng gacha.RandomSource
	if seed != nil {
		rng = gacha.NewSeededRNG(*seed)
	}
	b, err := banner.NewLoader(*dir).Load(*name, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	tui.New(screen, b).Run()
}
