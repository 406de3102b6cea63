package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"shopifyapi/pkg/shopify/api"
	"shopifyapi/pkg/shopify/model"
)

func (a *app) newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Print one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager(cmd.Context())
			if err != nil {
				return err
			}
			r, err := m.Get(cmd.Context(), args[0], api.ID(args[1]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r.Data())
		},
	}
}

func (a *app) newListCommand() *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "Print every record of a kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseParams(params)
			if err != nil {
				return err
			}
			m, err := a.manager(cmd.Context())
			if err != nil {
				return err
			}
			rs, err := m.List(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dataOf(rs))
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	return cmd
}

func (a *app) newCountCommand() *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "count <kind>",
		Short: "Print how many records of a kind exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseParams(params)
			if err != nil {
				return err
			}
			m, err := a.manager(cmd.Context())
			if err != nil {
				return err
			}
			n, err := m.Count(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	return cmd
}

func (a *app) newFieldCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "field <kind> <id> <field>",
		Short: "Fetch a single field of a record from the api",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager(cmd.Context())
			if err != nil {
				return err
			}
			r, err := model.Records(args[0]).From(m.Registry(), map[string]any{"id": args[1]})
			if err != nil {
				return err
			}
			v, err := r.Fetch(cmd.Context(), args[2])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

func (a *app) newShopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shop",
		Short: "Print the shop the credentials belong to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager(cmd.Context())
			if err != nil {
				return err
			}
			s, err := m.Shop(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s.Data())
		},
	}
}

func parseParams(kvs []string) (url.Values, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid param %q, want key=value", kv)
		}
		q.Add(k, v)
	}
	return q, nil
}

func dataOf[T model.Model](rs []T) []map[string]any {
	out := make([]map[string]any, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Base().Data())
	}
	return out
}
