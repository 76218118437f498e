// Command daoism runs DAO operations against the tables described by the
// YAML files of an ORM directory.
//
//	daoism [-config daoism.yaml] <command> [flags] [args]
//
// Settings come from the configuration file and DAOISM_* environment
// variables. Command flags precede positional arguments:
//
//	daoism create
//	daoism insert users '{email: ann@example.com, posts: [{title: Hello}]}'
//	daoism find -expand posts users 1
//	daoism list -filter '{contains: {email: example}}' -sort email users
//	daoism status
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/daoism/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the exit code: 2 for usage errors,
// 1 for failed commands. Command flags are parsed before the data source is
// opened.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("daoism", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", os.Getenv("DAOISM_CONFIG"), "path of the YAML configuration file")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: daoism [-config file] <command> [flags] [args]")
		fmt.Fprintln(stderr, "\ncommands:")
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(stderr, "  %-8s %s\n", name, commands[name].summary)
		}
		fmt.Fprintln(stderr, "\nflags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "daoism: unknown command %q\n", name)
		fs.Usage()
		return 2
	}

	cmdFlags := flag.NewFlagSet(name, flag.ContinueOnError)
	cmdFlags.SetOutput(stderr)
	exec := cmd.setup(cmdFlags)
	cmdFlags.Usage = func() {
		fmt.Fprintf(stderr, "usage: daoism %s %s\n", name, cmd.usage)
		cmdFlags.PrintDefaults()
	}
	if err := cmdFlags.Parse(fs.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "daoism: %v\n", err)
		return 1
	}
	e, err := open(cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "daoism: %v\n", err)
		return 1
	}
	defer e.close()

	if err := exec(ctx, e, cmdFlags.Args()); err != nil {
		fmt.Fprintf(stderr, "daoism %s: %v\n", name, err)
		return 1
	}
	return 0
}
