package main

import (
	"github.com/spf13/cobra"
)

var (
	queryParams []string
	queryRead   bool
)

var queryCmd = &cobra.Command{
	Use:   "query <cypher>",
	Short: "Run a Cypher statement",
	Long: `Run a Cypher statement against the graph and print the records.

This is an operator escape hatch: the statement is sent as written. Pass
caller data with --param so it is bound rather than spliced into the text.`,
	Example: `  fraudgraph query 'MATCH (c:Client) WHERE c.riskScore >= $min RETURN c LIMIT 5' --param min=0.8 --read`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseAssignments(queryParams)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close(ctx)

		run := rt.exec.Execute
		if queryRead {
			run = rt.exec.ExecuteRead
		}
		records, err := run(ctx, args[0], params)
		if err != nil {
			return err
		}
		return printRows(cmd, records)
	},
}

func init() {
	queryCmd.Flags().StringArrayVarP(&queryParams, "param", "p", nil, "Query parameter key=value (repeatable, values parsed as JSON when possible)")
	queryCmd.Flags().BoolVar(&queryRead, "read", false, "Run in a read transaction")
}
