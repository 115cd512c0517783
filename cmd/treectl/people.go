package main

import (
	"fmt"
	"strconv"

	"github.com/stoat/Mewton-family-tree/application/session"
	"github.com/stoat/Mewton-family-tree/domain/tree"

	"github.com/spf13/cobra"
)

// personFlags holds the editable fields of a person.
type personFlags struct {
	name, birth, death, notes string
}

func (f *personFlags) register(cmd *cobra.Command, withName bool) {
	if withName {
		cmd.Flags().StringVar(&f.name, "name", "", "Display name")
	}
	cmd.Flags().StringVar(&f.birth, "birth", "", "Birth year or date")
	cmd.Flags().StringVar(&f.death, "death", "", "Death year or date")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-form notes")
}

// edit returns the fields whose flags were set on the command line, so an
// explicit empty value clears a field.
func (f *personFlags) edit(cmd *cobra.Command) tree.PersonEdit {
	var e tree.PersonEdit
	set := func(flag string, v *string) *string {
		if cmd.Flags().Changed(flag) {
			return v
		}
		return nil
	}
	e.DisplayName = set("name", &f.name)
	e.Birth = set("birth", &f.birth)
	e.Death = set("death", &f.death)
	e.Notes = set("notes", &f.notes)
	return e
}

func (c *cli) addPersonCmd() *cobra.Command {
	var f personFlags

	cmd := &cobra.Command{
		Use:   "add-person <name>",
		Short: "Add a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var added tree.Person
			err := c.edit(cmd.Context(), func(s *session.Session) error {
				p, err := s.AddPerson(args[0])
				if err != nil {
					return err
				}
				added = p
				if edit := f.edit(cmd); edit != (tree.PersonEdit{}) {
					return s.EditPerson(p.ID, edit)
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), added.ID)
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func (c *cli) editPersonCmd() *cobra.Command {
	var f personFlags

	cmd := &cobra.Command{
		Use:   "edit-person <id>",
		Short: "Change a person's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edit := f.edit(cmd)
			if edit == (tree.PersonEdit{}) {
				return fmt.Errorf("nothing to change")
			}
			return c.edit(cmd.Context(), func(s *session.Session) error {
				return s.EditPerson(args[0], edit)
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func (c *cli) removePersonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-person <id>",
		Short: "Remove a person",
		Long:  `Remove a person. Relationships that mention them are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), func(s *session.Session) error {
				return s.RemovePerson(args[0])
			})
		},
	}
}

func (c *cli) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <x> <y>",
		Short: "Set a person's canvas position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("x: %w", err)
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("y: %w", err)
			}
			return c.edit(cmd.Context(), func(s *session.Session) error {
				return s.Move(args[0], x, y)
			})
		},
	}
}

func (c *cli) titleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "title <title>",
		Short: "Rename the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.edit(cmd.Context(), func(s *session.Session) error {
				return s.SetTitle(args[0])
			})
		},
	}
}
