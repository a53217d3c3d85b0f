package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophidentity/internal/cli"
)

func main() {

	app := cli.NewApp(os.Stdin, os.Stdout)

	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

}
