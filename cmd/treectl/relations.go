package main

import (
	"fmt"

	"github.com/stoat/Mewton-family-tree/application/session"
	"github.com/stoat/Mewton-family-tree/domain/tree"

	"github.com/spf13/cobra"
)

func (c *cli) relateCmd() *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "relate <from> <to>",
		Short: "Link two people",
		Long: `Link two people. For parentChild, <from> is the parent and <to> the
child. Partner links have no direction.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var added tree.Relationship
			err := c.edit(cmd.Context(), func(s *session.Session) error {
				r, err := s.AddRelationship(tree.RelationType(typ), args[0], args[1])
				added = r
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), added.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", string(tree.ParentChild), "parentChild or partner")
	return cmd
}

func (c *cli) unrelateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unrelate <relationship-id>",
		Short: "Remove one relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), func(s *session.Session) error {
				return s.RemoveRelationship(args[0])
			})
		},
	}
}
