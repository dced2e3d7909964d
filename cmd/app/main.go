package main

import (
	"github.com/ashchv/grubswipe/internal/app"
	"github.com/ashchv/grubswipe/internal/config"
)

func main() {
	app.Go(config.Load())
}
