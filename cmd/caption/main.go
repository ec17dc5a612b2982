package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chaos-io/cutout/caption"
	"github.com/chaos-io/cutout/config"
	"github.com/chaos-io/cutout/util"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults and CUTOUT_* env vars apply)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config config.yaml] <image path or url>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := util.InitLogger("release"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer util.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		util.Logger.Fatal("failed to load config", zap.Error(err))
	}

	bundle, err := caption.Load(&cfg.Caption)
	if err != nil {
		util.Logger.Fatal("failed to load caption model", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	img, err := util.ReadImage(ctx, flag.Arg(0))
	if err != nil {
		util.Logger.Fatal("failed to read image", zap.String("image", flag.Arg(0)), zap.Error(err))
	}

	text, err := caption.Generate(ctx, bundle, img)
	if err != nil {
		util.Logger.Fatal("failed to generate caption", zap.Error(err))
	}

	fmt.Println(text)
}
