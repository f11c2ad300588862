package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/fraudgraph/cmd/fraudgraph/internal"
	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/repository"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

var (
	nodeKind   string
	nodeLimit  int
	nodeWhere  []string
	nodeProps  string
	nodeLabels []string
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Read and write graph nodes of one kind",
	Long: `Generic repository access for one entity kind.

Kinds: clients, accounts, devices, locations, transactions (singular forms
are accepted too).`,
}

var nodeGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a node by id",
	Args:  cobra.ExactArgs(1),
	RunE: withRepository(func(cmd *cobra.Command, repo *repository.Repository, args []string) error {
		node, found, err := repo.FindNodeByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !found {
			return notFound(repo, args[0])
		}
		return formatter(cmd).PrintJSON(node)
	}),
}

var nodeFindCmd = &cobra.Command{
	Use:   "find",
	Short: "List nodes matching exact property values",
	Example: `  fraudgraph node find --kind clients --where riskScore=0.9
  fraudgraph node find --kind accounts --where accountType='"savings"' --limit 20`,
	Args: cobra.NoArgs,
	RunE: withRepository(func(cmd *cobra.Command, repo *repository.Repository, args []string) error {
		filter, err := parseAssignments(nodeWhere)
		if err != nil {
			return err
		}
		nodes, err := repo.FindNodes(cmd.Context(), filter, nodeLimit)
		if err != nil {
			return err
		}
		return printRows(cmd, nodes)
	}),
}

var nodeCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create a node",
	Example: `  fraudgraph node create --kind clients --props '{"name":"Ana","riskScore":0.2}' --label Flagged`,
	Args:    cobra.NoArgs,
	RunE: withRepository(func(cmd *cobra.Command, repo *repository.Repository, args []string) error {
		props, err := parseProperties(nodeProps)
		if err != nil {
			return err
		}
		labels, err := schema.ParseLabels(nodeLabels)
		if err != nil {
			return err
		}
		node, err := repo.CreateNode(cmd.Context(), props, labels...)
		if err != nil {
			return err
		}
		return formatter(cmd).PrintJSON(node)
	}),
}

var nodeUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Merge properties into a node",
	Args:  cobra.ExactArgs(1),
	RunE: withRepository(func(cmd *cobra.Command, repo *repository.Repository, args []string) error {
		props, err := parseProperties(nodeProps)
		if err != nil {
			return err
		}
		node, found, err := repo.UpdateNode(cmd.Context(), args[0], props)
		if err != nil {
			return err
		}
		if !found {
			return notFound(repo, args[0])
		}
		return formatter(cmd).PrintJSON(node)
	}),
}

var nodeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a node and its relationships",
	Args:  cobra.ExactArgs(1),
	RunE: withRepository(func(cmd *cobra.Command, repo *repository.Repository, args []string) error {
		deleted, err := repo.DeleteNode(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return notFound(repo, args[0])
		}
		return formatter(cmd).PrintSuccess(fmt.Sprintf("%s %s deleted", repo.Label(), args[0]))
	}),
}

func init() {
	nodeCmd.PersistentFlags().StringVarP(&nodeKind, "kind", "k", "", "Entity kind (clients|accounts|devices|locations|transactions)")
	_ = nodeCmd.MarkPersistentFlagRequired("kind")

	nodeFindCmd.Flags().IntVar(&nodeLimit, "limit", 0, fmt.Sprintf("Maximum nodes to return (default %d)", repository.DefaultLimit))
	nodeFindCmd.Flags().StringArrayVar(&nodeWhere, "where", nil, "Property filter key=value (repeatable)")

	for _, c := range []*cobra.Command{nodeCreateCmd, nodeUpdateCmd} {
		c.Flags().StringVar(&nodeProps, "props", "", "Properties as a JSON object")
		_ = c.MarkFlagRequired("props")
	}
	nodeCreateCmd.Flags().StringSliceVar(&nodeLabels, "label", nil, "Additional label (Flagged|UnderReview|Verified)")

	nodeCmd.AddCommand(nodeGetCmd, nodeFindCmd, nodeCreateCmd, nodeUpdateCmd, nodeDeleteCmd)
}

// kindLabel maps a CLI kind to its primary label.
func kindLabel(kind string) (schema.Label, error) {
	k := strings.ToLower(strings.TrimSpace(kind))
	for _, l := range schema.EntityLabels() {
		name := strings.ToLower(string(l))
		if k == name || k == name+"s" {
			return l, nil
		}
	}
	return "", graph.NewValidationError(fmt.Sprintf("unknown kind %q", kind))
}

type repoFunc func(cmd *cobra.Command, repo *repository.Repository, args []string) error

// withRepository connects to the graph and hands fn a repository for --kind.
func withRepository(fn repoFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		label, err := kindLabel(nodeKind)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close(ctx)

		repo := repository.New(rt.exec, label, repository.WithLogger(rt.logger))
		return fn(cmd, repo, args)
	}
}

func notFound(repo *repository.Repository, id string) error {
	return internal.NewCLIError(internal.ExitError, fmt.Sprintf("no %s found with id %s", repo.Label(), id))
}
