package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCategoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage spending categories and card memberships",
	}
	cmd.AddCommand(
		newCategoryListCommand(),
		newCategoryCreateCommand(),
		newCategoryDeleteCommand(),
		newCategoryAssignCommand(),
		newCategoryUnassignCommand(),
		newCategorySetCardsCommand(),
	)
	return cmd
}

func newCategoryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories and their member cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			categories, err := app.store.ListCategories(ctx)
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				fmt.Println("No categories found.")
				return nil
			}
			for _, c := range categories {
				cards, err := app.store.CardsInCategory(ctx, c.Name)
				if err != nil {
					return err
				}
				labels := make([]string, len(cards))
				for i, card := range cards {
					labels[i] = card.Display()
				}
				fmt.Printf("%s: %s\n", c.Name, strings.Join(labels, ", "))
			}
			return nil
		},
	}
}

func newCategoryCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.store.CreateCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Category %s created\n", args[0])
			return nil
		},
	}
}

func newCategoryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a category and its card memberships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.store.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Category %s deleted\n", args[0])
			return nil
		},
	}
}

func newCategoryAssignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assign CARD CATEGORY",
		Short: "Add a card to a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.store.AddCardToCategory(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Card %s added to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newCategoryUnassignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign CARD CATEGORY",
		Short: "Remove a card from a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.store.RemoveCardFromCategory(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Card %s removed from %s\n", args[0], args[1])
			return nil
		},
	}
}

func newCategorySetCardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-cards CATEGORY [CARD...]",
		Short: "Replace a category's member cards with the given set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			category, cards := args[0], args[1:]
			if err := app.store.ReplaceCategoryCards(cmd.Context(), category, cards); err != nil {
				return err
			}
			fmt.Printf("Category %s now has %d card(s)\n", category, len(cards))
			return nil
		},
	}
}
