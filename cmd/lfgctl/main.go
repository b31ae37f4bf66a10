// lfgctl : client en ligne de commande du board EasyLFG.
// Les tokens de suppression sont gardés dans un fichier JSON local (-store).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/localstore"
	"github.com/jdw0903/EasyLFG/internal/client"
)

const usage = `usage: lfgctl [-api URL] [-store FILE] <command> [flags]

commands:
  list      list active posts (-game -platform -region -mine -now -sort -page -match)
  create    create a post and remember its delete token
  delete    delete one of your posts: delete <id>
  report    report a post: report [-reason text] <id>
  feedback  send feedback to the team
  suggest   suggest a game: suggest <text>
`

func main() {
	_ = godotenv.Load()

	var apiURL, storePath string
	flag.StringVar(&apiURL, "api", envOr("EASYLFG_API", "http://localhost:4000"), "EasyLFG API base URL")
	flag.StringVar(&storePath, "store", defaultStorePath(), "local token store (JSON)")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	store, err := localstore.OpenFileStore(storePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lfgctl:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApp(client.New(apiURL), store, os.Stdout)
	if err := app.run(ctx, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "lfgctl:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".easylfg.json"
	}
	return filepath.Join(home, ".easylfg.json")
}
