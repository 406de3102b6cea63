package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shopifyapi/pkg/shopify/api"
	"shopifyapi/pkg/shopify/model"
)

func (a *app) newMetafieldsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metafields",
		Short: "Read and write the metafields of a product, variant, order or custom collection",
	}
	cmd.AddCommand(
		a.newMetafieldsListCommand(),
		a.newMetafieldsSetCommand(),
		a.newMetafieldsDeleteCommand(),
	)
	return cmd
}

func (a *app) newMetafieldsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind> <id>",
		Short: "Print the metafields of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := a.metafields(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			mfs, err := set.List(cmd.Context(), nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dataOf(mfs))
		},
	}
}

func (a *app) newMetafieldsSetCommand() *cobra.Command {
	var valueType string
	cmd := &cobra.Command{
		Use:   "set <kind> <id> <namespace> <key> <value>",
		Short: "Create or update a metafield; an empty value deletes it",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseMetafieldValue(args[4], valueType)
			if err != nil {
				return err
			}
			set, err := a.metafields(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			mf, changed, err := set.UpsertOrDelete(cmd.Context(), args[3], args[2], map[string]any{"value": value})
			if err != nil {
				return err
			}
			if mf == nil {
				if changed {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "deleted")
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), mf.Data())
		},
	}
	cmd.Flags().StringVar(&valueType, "type", "string", "how to read value: string, integer or json")
	return cmd
}

func (a *app) newMetafieldsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id> <namespace> <key>",
		Short: "Delete a metafield",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := a.metafields(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			return set.Delete(cmd.Context(), args[3], args[2])
		},
	}
}

func (a *app) metafields(cmd *cobra.Command, kind, id string) (model.MetafieldSet, error) {
	m, err := a.manager(cmd.Context())
	if err != nil {
		return model.MetafieldSet{}, err
	}
	return model.MetafieldsOf(m.Registry(), kind, api.ID(id))
}

func parseMetafieldValue(s, valueType string) (any, error) {
	switch valueType {
	case "", "string":
		return s, nil
	case "integer":
		if s == "" {
			return s, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not an integer", s)
		}
		return n, nil
	case "json":
		if s == "" {
			return s, nil
		}
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("value is not valid json: %w", err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown value type %q", valueType)
}
