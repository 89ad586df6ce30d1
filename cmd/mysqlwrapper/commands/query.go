package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Patrick-Hull/MySQLWrapper/pkg/mysqlwrapper"
)

type targetFlags struct {
	database string
	table    string
	set      []string
	where    []string
}

func (f *targetFlags) register(cmd *cobra.Command, withSet, withWhere bool) {
	cmd.Flags().StringVar(&f.database, "database", "", "Database (schema) name, defaults to database.database from the config")
	cmd.Flags().StringVar(&f.table, "table", "", "Table name")
	_ = cmd.MarkFlagRequired("table")
	if withSet {
		cmd.Flags().StringArrayVar(&f.set, "set", nil, "Column to write as column=value (repeatable, order is kept)")
	}
	if withWhere {
		cmd.Flags().StringArrayVar(&f.where, "where", nil, "Criteria as column=value (repeatable, order is kept)")
	}
}

// withClient opens a client for one command and closes it afterwards.
func withClient(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, c *mysqlwrapper.Client) (mysqlwrapper.Record, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := opts.client(ctx)
	if err != nil {
		return printRecord(cmd, mysqlwrapper.ErrorRecord(err))
	}
	defer client.Close()

	rec, err := fn(ctx, client)
	if err != nil {
		return printRecord(cmd, mysqlwrapper.ErrorRecord(err))
	}
	return printRecord(cmd, rec)
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func newSelectCommand(opts *globalOptions) *cobra.Command {
	var (
		target     targetFlags
		columns    []string
		order      string
		limit      int
		match      string
		matchAny   bool
		cache      bool
		clearCache bool
		cacheTTL   time.Duration
		datatable  bool
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select rows keyed by primary key",
		Example: `  mysqlwrapper select --table users --where name=Alice
  mysqlwrapper select --table users --where name=Ali --match trailing --cache --cache-ttl 5m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseFields(target.where)
			if err != nil {
				return err
			}
			mode, err := mysqlwrapper.ParseMatch(match)
			if err != nil {
				return err
			}

			return withClient(cmd, opts, func(ctx context.Context, c *mysqlwrapper.Client) (mysqlwrapper.Record, error) {
				q := c.Select()
				q.Database = pick(target.database, q.Database)
				q.Table = target.table
				q.Columns = columns
				q.Criteria = criteria
				q.Match = mode
				q.MatchAny = matchAny
				q.OrderBy = parseOrder(order)
				q.Limit = limit
				q.Cache = cache
				q.ClearCache = clearCache
				q.Datatable = datatable
				if cacheTTL > 0 {
					q.CacheDuration = cacheTTL
				}

				res, err := q.Execute(ctx)
				if err != nil {
					return mysqlwrapper.Record{}, err
				}
				return mysqlwrapper.SelectRecord(res), nil
			})
		},
	}

	target.register(cmd, false, true)
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to select (default *)")
	cmd.Flags().StringVar(&order, "order", "", "Order by column, optionally column:asc or column:desc")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of rows (0 for no limit)")
	cmd.Flags().StringVar(&match, "match", "exact", "Criteria comparison: exact, like, leading, trailing or both")
	cmd.Flags().BoolVar(&matchAny, "any", false, "Join criteria with OR instead of AND")
	cmd.Flags().BoolVar(&cache, "cache", false, "Serve from and populate the result cache")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Drop the cached result before the lookup")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 0, "TTL of a cached result (default cache.default_ttl)")
	cmd.Flags().BoolVar(&datatable, "datatable", false, "Key rows by position instead of primary key")
	return cmd
}

func newInsertCommand(opts *globalOptions) *cobra.Command {
	var target targetFlags

	cmd := &cobra.Command{
		Use:     "insert",
		Short:   "Insert one row",
		Example: `  mysqlwrapper insert --table users --set name=Alice --set age=30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseFields(target.set)
			if err != nil {
				return err
			}

			return withClient(cmd, opts, func(ctx context.Context, c *mysqlwrapper.Client) (mysqlwrapper.Record, error) {
				q := c.Insert()
				q.Database = pick(target.database, q.Database)
				q.Table = target.table
				q.Data = data

				res, err := q.Execute(ctx)
				if err != nil {
					return mysqlwrapper.Record{}, err
				}
				return mysqlwrapper.InsertRecord(res), nil
			})
		},
	}

	target.register(cmd, true, false)
	return cmd
}

func newUpdateCommand(opts *globalOptions) *cobra.Command {
	var target targetFlags

	cmd := &cobra.Command{
		Use:     "update",
		Short:   "Update the rows matching every --where pair",
		Example: `  mysqlwrapper update --table users --set name=Bob --where id=5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseFields(target.set)
			if err != nil {
				return err
			}
			criteria, err := parseFields(target.where)
			if err != nil {
				return err
			}

			return withClient(cmd, opts, func(ctx context.Context, c *mysqlwrapper.Client) (mysqlwrapper.Record, error) {
				q := c.Update()
				q.Database = pick(target.database, q.Database)
				q.Table = target.table
				q.Data = data
				q.Criteria = criteria

				res, err := q.Execute(ctx)
				if err != nil {
					return mysqlwrapper.Record{}, err
				}
				return mysqlwrapper.UpdateRecord(res), nil
			})
		},
	}

	target.register(cmd, true, true)
	return cmd
}

func newDeleteCommand(opts *globalOptions) *cobra.Command {
	var target targetFlags

	cmd := &cobra.Command{
		Use:     "delete",
		Short:   "Delete the rows matching every --where pair",
		Example: `  mysqlwrapper delete --table users --where id=5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseFields(target.where)
			if err != nil {
				return err
			}

			return withClient(cmd, opts, func(ctx context.Context, c *mysqlwrapper.Client) (mysqlwrapper.Record, error) {
				q := c.Delete()
				q.Database = pick(target.database, q.Database)
				q.Table = target.table
				q.Criteria = criteria

				res, err := q.Execute(ctx)
				if err != nil {
					return mysqlwrapper.Record{}, err
				}
				return mysqlwrapper.DeleteRecord(res), nil
			})
		},
	}

	target.register(cmd, false, true)
	return cmd
}
