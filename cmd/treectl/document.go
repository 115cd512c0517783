package main

import (
	"fmt"
	"io"
	"os"

	"github.com/stoat/Mewton-family-tree/domain/tree"

	"github.com/spf13/cobra"
)

func (c *cli) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the tree as formatted JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.view(cmd.Context())
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return s.Export(cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := s.Export(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "family-tree.json", `Output file, "-" for stdout`)
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the tree with a JSON document",
		Long: `Replace the whole tree with the document in <file> ("-" reads stdin).
The document is checked locally first; nothing is sent when it is rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			if err := tree.ValidateShape(raw).Err(); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := c.api.PutTree(cmd.Context(), raw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tree replaced.")
			return nil
		},
	}
}
