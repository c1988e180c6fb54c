package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/devreg/devreg/internal/app"
	"github.com/devreg/devreg/internal/config"
	"github.com/devreg/devreg/pkg/logger"
	"github.com/spf13/cobra"
)

// Opener builds the application for a command. Tests swap it out.
type Opener func(ctx context.Context, cfg *config.Config, memory bool) (*app.App, error)

type options struct {
	uri        string
	database   string
	collection string
	timeout    time.Duration
	memory     bool
	verbose    bool
	output     string

	open Opener
	cfg  *config.Config
	app  *app.App
}

// Execute runs the devreg command tree with args (os.Args when nil), writing
// results to out. Connections the command opened are closed whether or not
// it succeeded. open may be nil to use app.Open.
func Execute(ctx context.Context, out io.Writer, open Opener, args []string) error {
	root, o := newRootCommand(out, open)
	if args != nil {
		root.SetArgs(args)
	}
	err := root.ExecuteContext(ctx)
	if cerr := o.close(); cerr != nil {
		if err == nil {
			return cerr
		}
		logger.Warnf("close: %v", cerr)
	}
	return err
}

func newRootCommand(out io.Writer, open Opener) (*cobra.Command, *options) {
	if open == nil {
		open = app.Open
	}
	o := &options{open: open}
	demo := &demoOptions{}

	root := &cobra.Command{
		Use:   "devreg",
		Short: "Inspect and update the device registry collection",
		Long: `devreg talks to the device registry collection in MongoDB.

Run without a subcommand to walk through the demo sequence: read one record,
count, optionally insert the sample record, update serial 23 and list serial 24.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, o, demo)
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&o.uri, "uri", "", "MongoDB connection URI (default from MONGODB_URI)")
	pf.StringVar(&o.database, "database", "", "database name (default from MONGODB_DATABASE)")
	pf.StringVar(&o.collection, "collection", "", "collection name (default from MONGODB_COLLECTION)")
	pf.DurationVar(&o.timeout, "timeout", 0, "connect timeout (default from MONGODB_TIMEOUT)")
	pf.BoolVar(&o.memory, "memory", false, "use an empty in-memory collection instead of MongoDB")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	pf.StringVarP(&o.output, "output", "o", "text", "output format: text, json or yaml (demo is text only)")
	demo.bind(root)

	root.AddCommand(
		newDemoCommand(o),
		newFindOneCommand(o),
		newCountCommand(o),
		newInsertCommand(o),
		newUpdateCommand(o),
		newFindCommand(o),
		newExportCommand(o),
		newImportCommand(o),
	)
	return root, o
}

func (o *options) setup(cmd *cobra.Command) error {
	switch o.output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", o.output)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	logger.Init(cfg.LogLevel)

	if o.uri != "" {
		cfg.MongoDB.URI = o.uri
	}
	if o.database != "" {
		cfg.MongoDB.Database = o.database
	}
	if o.collection != "" {
		cfg.MongoDB.Collection = o.collection
	}
	if o.timeout > 0 {
		cfg.MongoDB.Timeout = o.timeout
	}
	o.cfg = cfg
	logger.Debugf("config: uri=%s db=%s collection=%s memory=%v", cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.Collection, o.memory)
	return nil
}

// close releases the application if a command opened it.
func (o *options) close() error {
	if o.app == nil {
		return nil
	}
	a := o.app
	o.app = nil
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.Close(ctx)
}

// connect opens the application on first use.
func (o *options) connect(ctx context.Context) (*app.App, error) {
	if o.app != nil {
		return o.app, nil
	}
	a, err := o.open(ctx, o.cfg, o.memory)
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}
