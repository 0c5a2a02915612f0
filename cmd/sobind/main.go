package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/refaktor/sobind"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := sobind.Main(ctx, os.Args[1:], nil, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
