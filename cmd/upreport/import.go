package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"upreport/internal/aggregate"
	"upreport/internal/log"
	"upreport/internal/source"
	"upreport/internal/source/jsonl"
	"upreport/internal/storage"

	"github.com/google/subcommands"
)

type importCmd struct {
	file string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a JSONL transaction export into the SQLite snapshot" }
func (*importCmd) Usage() string {
	return `upreport import [-file transactions.jsonl]

  Adds the transactions of a JSONL export to the SQLite snapshot. Stored
  transactions are never changed; records already present are skipped.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "JSONL export to import (defaults to TRANSACTIONS_FILE)")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *importCmd) run(ctx context.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	path := c.file
	if path == "" {
		path = a.cfg.TransactionsFile
	}
	if path == "" {
		return fmt.Errorf("no export given: use -file or TRANSACTIONS_FILE")
	}

	pager, err := jsonl.Open(path, a.cfg.PageSize)
	if err != nil {
		return err
	}
	defer pager.Close()
	raws, err := source.Collect(ctx, pager)
	if err != nil {
		return err
	}

	txs, malformed := aggregate.Normalize(raws, a.cfg.ReportCurrency)
	for _, m := range malformed {
		a.logger.Warn("Skipping malformed record", log.FieldOperation, log.OpImport, log.FieldError, m.Error())
	}

	repo, err := storage.NewSQLiteRepository(a.cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	res, err := repo.Import(ctx, txs)
	if err != nil {
		return err
	}
	stats, err := repo.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d, skipped %d existing, rejected %d malformed; snapshot holds %d transactions\n",
		res.Inserted, res.Skipped, len(malformed), stats.Transactions)
	return nil
}
