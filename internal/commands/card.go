package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards and their nicknames",
	}
	cmd.AddCommand(newCardListCommand(), newCardSetCommand(), newCardRemoveCommand())
	return cmd
}

func newCardListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known cards with nicknames and categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			cards, err := app.store.ListCards(ctx)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Println("No cards found.")
				return nil
			}
			for _, c := range cards {
				categories, err := app.store.CardCategories(ctx, c.Card)
				if err != nil {
					return err
				}
				line := c.Display()
				if len(categories) > 0 {
					line += "  [" + strings.Join(categories, ", ") + "]"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newCardSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set CARD [NICKNAME]",
		Short: "Create a card or set its nickname",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			nickname := ""
			if len(args) > 1 {
				nickname = args[1]
			}
			if err := app.store.SetCard(cmd.Context(), args[0], nickname); err != nil {
				return err
			}
			fmt.Printf("Card %s saved\n", args[0])
			return nil
		},
	}
}

func newCardRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove CARD",
		Short: "Remove a card and its category memberships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.store.DeleteCard(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Card %s removed\n", args[0])
			return nil
		},
	}
}
