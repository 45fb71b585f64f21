package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/contact-finder/internal/batch"
	"github.com/sells-group/contact-finder/internal/model"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <company name>",
	Short: "Resolve the contact email for one company and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		city, _ := cmd.Flags().GetString("city")
		state, _ := cmd.Flags().GetString("state")
		country, _ := cmd.Flags().GetString("country")

		rec, err := newRecord(args[0], model.Location{City: city, State: state, Country: country}, nil)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx, strategy)
		if err != nil {
			return eris.Wrap(err, "init pipeline")
		}

		return resolveOne(ctx, env.Resolver, rec, os.Stdout)
	},
}

// resolveOne resolves a single record and writes the result to w.
func resolveOne(ctx context.Context, resolver batch.Resolver, rec model.CompanyRecord, w io.Writer) error {
	res := resolver.Resolve(ctx, rec)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func init() {
	resolveCmd.Flags().String("city", "", "company city, used for domain suggestions")
	resolveCmd.Flags().String("state", "", "company state or region")
	resolveCmd.Flags().String("country", "", "company country")
	rootCmd.AddCommand(resolveCmd)
}
