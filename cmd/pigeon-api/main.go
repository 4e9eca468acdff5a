package main

import (
	"context"
	"errors"
	"os"
)

func main() {
	app := mustBootstrapPigeonAPI(os.Args[1:])
	err := app.Run()
	app.Close()

	if err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
