// Package main is the operator CLI for bootstrapping canteen accounts
// directly in the database. The first ADMIN has to be created this way
// since account creation over HTTP already requires one.
//
// Usage:
//
//	canteenctl -d <dsn> -user <username> -name <display name> [-level USER|WORKER|ADMIN]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atinyakov/canteen/internal/db"
	"github.com/atinyakov/canteen/internal/models"
	"github.com/atinyakov/canteen/internal/password"
	"github.com/atinyakov/canteen/internal/repository"
	"github.com/atinyakov/canteen/internal/service"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type options struct {
	dsn      string
	username string
	name     string
	level    models.PermissionLevel
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	pw, err := promptPassword(os.Stderr, int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	conn, err := db.InitPostgres(opts.dsn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer conn.Close()

	hasher, err := password.NewArgon2(password.DefaultConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	accounts := service.NewAccountService(repository.NewPostgresAccountRepository(conn), hasher)

	account, err := createAccount(context.Background(), accounts, opts, pw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("created %s (%s) with id %s\n", account.Username, account.PermissionLevel, account.ID)
}

func parseArgs(args []string, getenv func(string) string) (options, error) {
	fs := flag.NewFlagSet("canteenctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		opts  options
		level string
	)
	fs.StringVar(&opts.dsn, "d", getenv("DATABASE_DSN"), "db address")
	fs.StringVar(&opts.username, "user", "", "username of the new account")
	fs.StringVar(&opts.name, "name", "", "display name of the new account")
	fs.StringVar(&level, "level", "ADMIN", "permission level: USER, WORKER or ADMIN")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.dsn == "" {
		return options{}, errors.New("database DSN is required (-d or DATABASE_DSN)")
	}
	if opts.username == "" || opts.name == "" {
		return options{}, errors.New("-user and -name are required")
	}
	lvl, err := models.ParsePermissionLevel(strings.ToUpper(level))
	if err != nil {
		return options{}, err
	}
	opts.level = lvl
	return opts, nil
}

// promptPassword reads the password twice from the terminal fd without echo.
func promptPassword(w io.Writer, fd int) (string, error) {
	fmt.Fprint(w, "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if err := password.CheckPolicy(string(first)); err != nil {
		return "", err
	}
	return string(first), nil
}

type accountCreator interface {
	Create(ctx context.Context, req models.NewAccount) (models.Account, error)
}

func createAccount(ctx context.Context, accounts accountCreator, opts options, pw string) (models.Account, error) {
	account, err := accounts.Create(ctx, models.NewAccount{
		Username:        opts.username,
		Name:            opts.name,
		Password:        pw,
		PermissionLevel: opts.level,
	})
	if err != nil {
		return models.Account{}, fmt.Errorf("create account %q: %w", opts.username, err)
	}
	return account, nil
}
