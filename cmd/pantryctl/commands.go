package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pantry/internal/app"
	"pantry/internal/config"
	"pantry/internal/expiry"
	"pantry/internal/model"
	"pantry/internal/notify"
	"pantry/internal/repository"
	"pantry/internal/service"
)

const dateLayout = "2006-01-02"

// session is what every subcommand runs against. It is opened in the root
// PersistentPreRunE; the caller of newRootCmd closes it once Execute returns,
// whether or not the command failed.
type session struct {
	svc      service.ItemService
	notifier notify.Notifier
	loc      *time.Location
	log      zerolog.Logger
	close    func()
}

// Close releases the store. It is safe to call more than once, or when no
// command ran.
func (s *session) Close() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}

func newRootCmd(cfg *config.AppConfig, log zerolog.Logger) (*cobra.Command, *session) {
	s := &session{loc: cfg.Location(), log: log}

	root := &cobra.Command{
		Use:           "pantryctl",
		Short:         "Track pantry items and their expiry dates",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			blobs, closeFn, err := app.OpenStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			s.close = closeFn
			s.notifier = notify.NewLog(log.With().Str("component", "notifier").Logger())
			s.svc = service.NewItemService(
				repository.NewItemStore(blobs, log),
				app.NewExtractor(ctx, cfg.Extraction, log),
				s.notifier,
				service.WithClock(func() time.Time { return time.Now().In(s.loc) }),
				service.WithLogger(log),
				service.WithWarningDays(cfg.Notify.WarningDays),
			)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfg.Store.Driver, "store", cfg.Store.Driver, "store driver: sqlite, postgres or minio")
	root.PersistentFlags().StringVar(&cfg.Store.SQLitePath, "db", cfg.Store.SQLitePath, "sqlite database path")

	root.AddCommand(
		newListCmd(s),
		newAddCmd(s),
		newImportCmd(s),
		newConsumeCmd(s),
		newDeleteCmd(s),
		newDashboardCmd(s),
		newCheckCmd(s),
	)
	return root, s
}

func newListCmd(s *session) *cobra.Command {
	var q service.ListQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			views, err := s.svc.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tQTY\tEXPIRES\tSTATUS")
			for _, v := range views {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					v.ID, v.Name, v.Category, quantity(v.Item), v.ExpiryDate.In(s.loc).Format(dateLayout), v.Label)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&q.Category, "category", "", "only show this category")
	cmd.Flags().StringVar(&q.Sort, "sort", service.SortExpiry, "sort by expiry or name")
	return cmd
}

func newAddCmd(s *session) *cobra.Command {
	var (
		in       service.ItemInput
		category string
		expires  string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exp, err := time.ParseInLocation(dateLayout, expires, s.loc)
			if err != nil {
				return fmt.Errorf("--expires must be YYYY-MM-DD: %w", err)
			}
			cat, ok := model.ParseCategory(category)
			if !ok {
				return fmt.Errorf("%w: %q", service.ErrInvalidCategory, category)
			}
			in.Category = cat
			in.ExpiryDate = exp

			it, err := s.svc.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", it.Name, it.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "item name")
	f.StringVar(&category, "category", string(model.CategoryOther), "item category")
	f.IntVar(&in.Quantity, "quantity", 1, "quantity, at least 1")
	f.StringVar(&in.Unit, "unit", "", "unit, e.g. kg")
	f.StringVar(&in.Notes, "notes", "", "free-form notes")
	f.StringVar(&expires, "expires", "", "expiry date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("expires")
	return cmd
}

func newImportCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import <text>",
		Short: "Add items described in free text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := s.svc.Import(cmd.Context(), strings.Join(args, " "))
			if errors.Is(err, service.ErrExtractionFailed) || errors.Is(err, service.ErrNothingExtracted) {
				return errors.New("failed to parse; try manual entry")
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, it := range added {
				fmt.Fprintf(out, "added %s (%s)\n", it.Name, it.ID)
			}
			return nil
		},
	}
}

func newConsumeCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "consume <id>",
		Short: "Mark an item consumed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			it, err := s.svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if _, err := s.svc.Consume(ctx, *it); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "consumed %s\n", it.Name)
			return nil
		},
	}
}

func newDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			it, err := s.svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if _, err := s.svc.Delete(ctx, it.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", it.Name)
			return nil
		},
	}
}

func newDashboardCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show inventory totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := s.svc.Dashboard(cmd.Context())
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Total items\t%d\n", st.Total)
			fmt.Fprintf(w, "Expiring soon\t%d\n", st.ExpiringSoon)
			fmt.Fprintf(w, "Expired\t%d\n", st.Buckets.Expired)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "CATEGORY\tQUANTITY")
			for _, c := range st.Categories {
				fmt.Fprintf(w, "%s\t%d\n", c.Category, c.Quantity)
			}
			return w.Flush()
		},
	}
}

func newCheckCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one expiry notification check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			notify.EnsurePermission(ctx, s.notifier, s.log)
			res := s.svc.StartSession(ctx)
			printNotified(cmd.OutOrStdout(), res.Notified, s.loc)
			return nil
		},
	}
}

func printNotified(w io.Writer, it *model.Item, loc *time.Location) {
	if it == nil {
		fmt.Fprintln(w, "nothing expiring soon")
		return
	}
	days := expiry.DaysRemaining(it.ExpiryDate, time.Now().In(loc))
	fmt.Fprintf(w, "notified: %s expires in %d days\n", it.Name, days)
}

func quantity(it model.Item) string {
	if it.Unit == "" {
		return fmt.Sprint(it.Quantity)
	}
	return fmt.Sprintf("%d %s", it.Quantity, it.Unit)
}
