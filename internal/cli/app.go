// Package cli implements the identity admin command line: hashing a password
// in the storage format and checking a password against a stored hash.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophidentity/internal/server/hasher"
	"github.com/dmitrijs2005/gophidentity/internal/shared"
)

var ErrUsage = errors.New("usage: cli <hash [-i iterations] | verify>")

var errPasswordsDiffer = errors.New("passwords do not match")

type App struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(in io.Reader, out io.Writer) *App {
	return &App{reader: bufio.NewReader(in), out: out}
}

// Run dispatches args[0] to a subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	switch args[0] {
	case "hash":
		return a.hash(args[1:])
	case "verify":
		return a.verify()
	default:
		return ErrUsage
	}
}

func (a *App) hash(args []string) error {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(a.out)
	iterations := fs.Int("i", hasher.DefaultIterations, "PBKDF2 iteration count")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(pw)

	again, err := GetPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(again)

	if !bytes.Equal(pw, again) {
		return errPasswordsDiffer
	}

	hashed, err := hasher.New(hasher.Config{Iterations: *iterations}).HashPassword(string(pw))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, hashed)
	return err
}

func (a *App) verify() error {
	stored, err := GetSimpleText(a.reader, "Stored hash", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(pw)

	result := hasher.Verify(stored, string(pw))
	_, err = fmt.Fprintln(a.out, result.String())
	return err
}
