package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/aretw0/tally/pkg/tags"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Work with accounting tags",
}

var tagValidateCmd = &cobra.Command{
	Use:   "validate <tag>...",
	Short: "Check accounting tags against the 记账_<type>_<amount> grammar",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		failed := false
		for _, t := range args {
			v := tags.Validate(t)
			if v.OK {
				fmt.Printf("ok       %s\n", t)
				continue
			}
			failed = true
			fmt.Printf("invalid  %s: %s\n", t, v.Error)
		}
		if failed {
			os.Exit(1)
		}
	},
}

var tagCreateCmd = &cobra.Command{
	Use:     "create <type> <amount>",
	Short:   "Build an accounting tag",
	Example: "  tally tag create 支出 25.50   # 记账_支出_25.5",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			fatal("Invalid amount", err)
		}
		tag := tags.Create(args[0], amount)
		if v := tags.Validate(tag); !v.OK {
			fatal("Invalid tag", fmt.Errorf("%s", v.Error))
		}
		fmt.Println(tag)
	},
}

var tagTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the common accounting types",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range tags.CommonTypes() {
			fmt.Println(t)
		}
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagValidateCmd, tagCreateCmd, tagTypesCmd)
}
