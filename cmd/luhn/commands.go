package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/npavlov/go-luhn-service/internal/catalog"
)

const defaultLength = 16

var errInvalidNumbers = errors.New("some numbers failed the Luhn check")

func newValidateCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate NUMBER...",
		Short: "Check numbers against the Luhn checksum",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, number := range args {
				valid, err := state.service.Validate(cmd.Context(), number)
				if err != nil {
					return err
				}

				verdict := "VALID"
				if !valid {
					verdict = "INVALID"
					failed++
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", number, verdict)
			}

			if failed > 0 {
				return errors.Wrapf(errInvalidNumbers, "%d of %d", failed, len(args))
			}

			return nil
		},
	}
}

func newGenerateCmd(state *app) *cobra.Command {
	var (
		categoryRef string
		length      int
		count       int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Luhn-valid numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if categoryRef != "" && cmd.Flags().Changed("length") {
				return errors.New("use either --category or --length")
			}

			if categoryRef != "" {
				category, err := state.catalog.Resolve(categoryRef)
				if err != nil {
					return err
				}
				length = category.Length
			}

			if length < 1 || length > catalog.MaxLength {
				return errors.Errorf("length must be between 1 and %d", catalog.MaxLength)
			}

			if count < 1 {
				return errors.New("count must be positive")
			}

			numbers, err := state.service.Generate(cmd.Context(), length, count)
			if err != nil {
				return err
			}

			for _, number := range numbers {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), number)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryRef, "category", "c", "", "category selector or name")
	cmd.Flags().IntVarP(&length, "length", "l", defaultLength, "number of digits")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "how many numbers to generate")

	return cmd
}

func newCategoriesCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the identifier categories",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, group := range state.catalog.Groups() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), group)
				for _, category := range state.catalog.InGroup(group) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %s (%d digits)\n",
						category.Selector, category.Name, category.Length)
				}
			}
		},
	}
}
