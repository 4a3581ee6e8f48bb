package main

import (
	"fmt"
	"io"
	"strings"

	"gentherapist/internal/services"
	"gentherapist/pkg"

	"github.com/spf13/cobra"
)

var techniquesCmd = &cobra.Command{
	Use:   "techniques [intent]",
	Short: "Show CBT techniques",
	Long: `Without arguments, list the intents that have their own technique set.
With an intent, print its techniques; unknown intents show the general set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := loadKnowledge(appConfig)
		if err != nil {
			return err
		}
		catalog := services.NewTechniqueService(k)

		if len(args) == 0 {
			for _, intent := range catalog.Intents() {
				fmt.Fprintln(cmd.OutOrStdout(), intent)
			}
			return nil
		}

		printTechniqueSet(cmd.OutOrStdout(), catalog.GetTechniquesByIntent(strings.ToLower(args[0])))
		return nil
	},
}

func printTechniqueSet(w io.Writer, set pkg.TechniqueSet) {
	fmt.Fprintln(w, set.Title)
	for _, ex := range set.Exercises {
		fmt.Fprintf(w, "\n%s %s - %s\n", ex.Icon, ex.Name, ex.Description)
		for _, line := range strings.Split(ex.Instructions, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}
