package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stoat/Mewton-family-tree/domain/tree"

	"github.com/spf13/cobra"
)

func (c *cli) showCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a person with their relatives and timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.view(cmd.Context())
			if err != nil {
				return err
			}
			rel, err := s.Relatives(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rel)
			}
			printRelatives(out, rel)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func printRelatives(w io.Writer, rel tree.Relatives) {
	p := rel.Person
	fmt.Fprintf(w, "%s (%s)\n", p.DisplayName, p.ID)
	if p.Birth != "" || p.Death != "" {
		fmt.Fprintf(w, "  %s - %s\n", p.Birth, p.Death)
	}
	if p.Notes != "" {
		fmt.Fprintf(w, "  %s\n", p.Notes)
	}

	section := func(title string, people []tree.Person) {
		if len(people) == 0 {
			return
		}
		names := make([]string, len(people))
		for i, q := range people {
			names[i] = q.DisplayName
		}
		fmt.Fprintf(w, "%s: %s\n", title, strings.Join(names, ", "))
	}
	section("Parents", rel.Parents)
	section("Children", rel.Children)
	section("Partners", rel.Partners)

	if len(rel.Timeline) > 0 {
		fmt.Fprintln(w, "Timeline:")
		for _, e := range rel.Timeline {
			fmt.Fprintf(w, "  %d  %s\n", e.Year, e.Label)
		}
	}
}

func (c *cli) searchCmd() *cobra.Command {
	var exclude string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find people by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.view(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for p := range s.Search(args[0], exclude) {
				fmt.Fprintf(out, "%s\t%s\n", p.ID, p.DisplayName)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&exclude, "exclude", "", "Leave out this person id")
	return cmd
}
