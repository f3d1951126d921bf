package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/blakestevenson/vodboard/internal/audit"
	"github.com/blakestevenson/vodboard/internal/catalog"
	"github.com/blakestevenson/vodboard/internal/export"
	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverID   string
	asJSON     bool
	movieQuery struct {
		text, category, from, sortBy, order string
	}
	exportIDs    []int64
	exportOutput string
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List and check stored panels",
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored panels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := state.servers.List(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), list)
		}
		return writeServers(cmd.OutOrStdout(), list)
	},
}

var serversCheckCmd = &cobra.Command{
	Use:   "check [id]",
	Short: "Re-check one panel, or every active panel when no id is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			srv, err := state.checker.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeServers(cmd.OutOrStdout(), []*servers.Server{srv})
		}

		checked, err := state.checker.CheckAll(cmd.Context())
		if werr := writeServers(cmd.OutOrStdout(), checked); werr != nil {
			return werr
		}
		return err
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List VOD categories of a panel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, client, err := openServer(cmd)
		if err != nil {
			return err
		}

		categories, err := client.GetCategories(cmd.Context())
		if err != nil {
			audit.Record(cmd.Context(), state.backend.Audit, state.logger, audit.Failure(audit.ActionFetchCategories, srv.ID, err))
			return err
		}
		audit.Record(cmd.Context(), state.backend.Audit, state.logger, audit.Success(audit.ActionFetchCategories, srv.ID,
			fmt.Sprintf("Successfully fetched %d categories from server %s", len(categories), srv.Name)))

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), categories)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME")
		for _, c := range categories {
			fmt.Fprintf(tw, "%s\t%s\n", c.CategoryID, c.CategoryName)
		}
		return tw.Flush()
	},
}

var moviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "Search, filter and sort a panel's VOD catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := catalog.ParseQuery(movieQuery.text, movieQuery.category,
			movieQuery.from, movieQuery.sortBy, movieQuery.order)
		if err != nil {
			return err
		}

		srv, client, err := openServer(cmd)
		if err != nil {
			return err
		}

		movies, err := client.GetMovies(cmd.Context(), query.Category)
		if err != nil {
			audit.Record(cmd.Context(), state.backend.Audit, state.logger, audit.Failure(audit.ActionFetchMovies, srv.ID, err))
			return err
		}
		movies = state.pipeline.Apply(movies, query)
		audit.Record(cmd.Context(), state.backend.Audit, state.logger, audit.Success(audit.ActionFetchMovies, srv.ID,
			fmt.Sprintf("Successfully fetched %d movies from server %s", len(movies), srv.Name)))

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), movies)
		}
		return writeMovies(cmd.OutOrStdout(), movies)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write aria2c commands for the given movie ids",
	Long: `Resolves every id against the panel and writes one aria2c command per movie.
Ids that cannot be resolved are reported on stderr and left out of the file.
Use -o - to print the commands instead of writing a file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := export.ValidateIDs(exportIDs); err != nil {
			return err
		}

		srv, client, err := openServer(cmd)
		if err != nil {
			return err
		}

		result := export.Build(client, export.Resolve(cmd.Context(), client, exportIDs, state.cfg.ExportConcurrency))
		for _, r := range result.Results {
			if !r.OK {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d: %s\n", r.MovieID, r.Error)
			}
		}

		audit.Record(cmd.Context(), state.backend.Audit, state.logger, audit.Success(audit.ActionExportMovies, srv.ID,
			fmt.Sprintf("Successfully generated export data for %d of %d movies from server %s",
				result.Exported, result.Requested, srv.Name)))
		if err := state.backend.Audit.SaveExport(cmd.Context(), audit.ExportRecord{
			Title:    fmt.Sprintf("Export from %s", srv.Name),
			Links:    result.Commands,
			ServerID: srv.ID,
		}); err != nil {
			state.logger.Warn("failed to store export record", zap.Error(err))
		}

		if exportOutput == "-" {
			if err := export.WriteCommands(cmd.OutOrStdout(), result.Commands); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		}

		path := exportOutput
		if path == "" {
			path = export.Filename(result)
		}
		if err := writeFile(path, result.Commands); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d of %d commands to %s\n", result.Exported, result.Requested, path)
		return nil
	},
}

func init() {
	serversCmd.AddCommand(serversListCmd, serversCheckCmd)
	serversCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON")

	for _, c := range []*cobra.Command{categoriesCmd, moviesCmd, exportCmd} {
		c.Flags().StringVarP(&serverID, "server", "s", "", "stored server id")
		_ = c.MarkFlagRequired("server")
	}
	categoriesCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	moviesCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	moviesCmd.Flags().StringVarP(&movieQuery.text, "query", "q", "", "fuzzy search text")
	moviesCmd.Flags().StringVarP(&movieQuery.category, "category", "c", "", "category id")
	moviesCmd.Flags().StringVar(&movieQuery.from, "from", "", "only movies added on or after this date (YYYY-MM-DD or RFC 3339)")
	moviesCmd.Flags().StringVar(&movieQuery.sortBy, "sort-by", "", "name, added or rating")
	moviesCmd.Flags().StringVar(&movieQuery.order, "order", "", "asc or desc")

	exportCmd.Flags().Int64SliceVar(&exportIDs, "ids", nil, "comma separated movie ids")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, - for stdout (default derived from the selection)")
	_ = exportCmd.MarkFlagRequired("ids")
}

func openServer(cmd *cobra.Command) (*servers.Server, *xtream.Client, error) {
	srv, err := state.servers.Get(cmd.Context(), serverID)
	if err != nil {
		if errors.Is(err, servers.ErrNotFound) {
			return nil, nil, fmt.Errorf("server %s not found", serverID)
		}
		return nil, nil, err
	}
	return srv, state.newClient(srv.Credentials()), nil
}

func writeServers(w io.Writer, list []*servers.Server) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tACTIVE\tLAST CHECKED\tURL")
	for _, s := range list {
		checked := "-"
		if s.LastChecked != nil {
			checked = s.LastChecked.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n", s.ID, s.Name, s.Status, s.Active, checked, s.URL)
	}
	return tw.Flush()
}

func writeMovies(w io.Writer, movies []xtream.Movie) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tADDED\tRATING\tEXT")
	for _, m := range movies {
		added := string(m.Added)
		if t, ok := catalog.ParseAdded(added); ok {
			added = t.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			m.StreamID, m.DisplayName(), m.CategoryID, added, m.Rating, m.ContainerExtension)
	}
	fmt.Fprintf(tw, "\n%d movies\n", len(movies))
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFile(path string, commands []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteCommands(f, commands); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
