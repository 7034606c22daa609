package main

import (
	"github.com/humanbelnik/restaurantpicker/internal/app"
	"github.com/humanbelnik/restaurantpicker/internal/config"
)

func main() {
	app.Go(config.Load())
}
