package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/npavlov/go-luhn-service/internal/catalog"
	"github.com/npavlov/go-luhn-service/internal/client"
	"github.com/npavlov/go-luhn-service/internal/logger"
	"github.com/npavlov/go-luhn-service/internal/luhn"
	"github.com/npavlov/go-luhn-service/internal/menu"
)

var errLocalOnlyFlags = errors.New("--seed and --catalog only apply without --server")

type options struct {
	server      string
	catalogPath string
	seed        uint64
	logLevel    string
}

// app is what every subcommand works against once flags are parsed.
type app struct {
	log     *zerolog.Logger
	service menu.Service
	catalog *catalog.Catalog
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}
	state := &app{}

	cmd := &cobra.Command{
		Use:   "luhn",
		Short: "Validate and generate Luhn-valid identifiers.",
		Long: `luhn validates and generates numbers satisfying the Luhn checksum, such as
payment card numbers, IMEI and ICCID. It runs locally, or against a luhnd
server when --server is given.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return state.init(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return menu.NewMenu(in, out, state.catalog, state.service).Run(cmd.Context())
		},
	}

	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(out)

	cmd.PersistentFlags().StringVar(&opts.server, "server", os.Getenv("LUHN_SERVER"),
		"luhnd address; runs locally when empty")
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "path to a YAML category catalog")
	cmd.PersistentFlags().Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible output, 0 for random")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	cmd.AddCommand(
		newMenuCmd(in, out, state),
		newValidateCmd(state),
		newGenerateCmd(state),
		newCategoriesCmd(state),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command, opts *options) error {
	a.log = logger.NewLoggerTo(cmd.ErrOrStderr()).SetLogLevelName(opts.logLevel).Get()

	if opts.server != "" {
		// The server owns its catalog and random source.
		if cmd.Flags().Changed("seed") || cmd.Flags().Changed("catalog") {
			return errLocalOnlyFlags
		}

		remote := client.NewClient(opts.server, a.log)

		categories, err := remote.Categories(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "failed to fetch categories")
		}

		cat, err := catalog.New(categories)
		if err != nil {
			return err
		}

		a.catalog = cat
		a.service = remote
		a.log.Debug().Str("server", opts.server).Msg("Using remote server")

		return nil
	}

	cat, err := catalog.LoadOrDefault(opts.catalogPath)
	if err != nil {
		return err
	}

	src := luhn.DefaultSource()
	if opts.seed != 0 {
		src = luhn.NewSource(opts.seed)
	}

	a.catalog = cat
	a.service = menu.NewLocalService(luhn.NewEngine(src))

	return nil
}

func newMenuCmd(in io.Reader, out io.Writer, state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return menu.NewMenu(in, out, state.catalog, state.service).Run(cmd.Context())
		},
	}
}
