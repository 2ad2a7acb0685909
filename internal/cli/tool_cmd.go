package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/soyeahso/toolforge/internal/config"
	"github.com/soyeahso/toolforge/internal/domain"
	"github.com/soyeahso/toolforge/internal/funcstore"
	"github.com/soyeahso/toolforge/internal/store"
)

func newToolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool",
		Short: "Manage tool function definitions",
	}

	cmd.AddCommand(newToolListCmd())
	cmd.AddCommand(newToolShowCmd())
	cmd.AddCommand(newToolAddCmd())
	cmd.AddCommand(newToolUpdateCmd())
	cmd.AddCommand(newToolRmCmd())
	cmd.AddCommand(newToolHistoryCmd())

	return cmd
}

// openToolStore opens the function store at the standard tools path.
func openToolStore() (*funcstore.Store, error) {
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}
	return funcstore.New(paths.ToolsFile, log)
}

// openHistory opens the revision store when history is enabled. The
// returned store is nil when history is off; close is always safe to call.
func openHistory() (*store.RevisionStore, func(), error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, func() {}, err
	}
	if !cfg.HistoryEnabled() {
		return nil, func() {}, nil
	}
	db, err := store.Open(filepath.Join(paths.Data, "toolforge.db"), log)
	if err != nil {
		return nil, func() {}, err
	}
	return store.NewRevisionStore(db), func() { db.Close() }, nil
}

// readDefinition reads function source from a file argument or stdin.
func readDefinition(args []string) (string, error) {
	if len(args) > 1 {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func newToolListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored tool functions in file order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, err := openToolStore()
			if err != nil {
				return err
			}
			names, err := tools.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newToolShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a tool function definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, err := openToolStore()
			if err != nil {
				return err
			}
			fn, err := tools.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Println(fn.Code)
			return nil
		},
	}
}

func newToolAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> [file]",
		Short: "Add a tool function from a file or stdin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readDefinition(args)
			if err != nil {
				return err
			}
			tools, err := openToolStore()
			if err != nil {
				return err
			}

			fn, err := tools.Create(args[0], code)
			if err != nil {
				return err
			}

			if rs, closeDB, err := openHistory(); err == nil {
				if rs != nil {
					rs.Record(fn.Name, domain.RevisionCreate, fn.Code)
				}
				closeDB()
			}

			fmt.Printf("Added %s\n", fn.Name)
			return nil
		},
	}
}

func newToolUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <name> [file]",
		Short: "Replace a tool function from a file or stdin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readDefinition(args)
			if err != nil {
				return err
			}
			tools, err := openToolStore()
			if err != nil {
				return err
			}

			fn, err := tools.Update(args[0], code)
			if err != nil {
				return err
			}

			if rs, closeDB, err := openHistory(); err == nil {
				if rs != nil {
					rs.Record(fn.Name, domain.RevisionUpdate, fn.Code)
				}
				closeDB()
			}

			fmt.Printf("Updated %s\n", fn.Name)
			return nil
		},
	}
}

func newToolRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a tool function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, err := openToolStore()
			if err != nil {
				return err
			}
			if err := tools.Delete(args[0]); err != nil {
				return err
			}

			if rs, closeDB, err := openHistory(); err == nil {
				if rs != nil {
					rs.Record(args[0], domain.RevisionDelete, "")
				}
				closeDB()
			}

			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func newToolHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <name>",
		Short: "Show the revision history of a tool function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, closeDB, err := openHistory()
			if err != nil {
				return err
			}
			defer closeDB()
			if rs == nil {
				return fmt.Errorf("revision history is disabled")
			}

			revs, err := rs.ListByName(args[0], limit)
			if err != nil {
				return err
			}
			if len(revs) == 0 {
				fmt.Printf("No revisions for %s\n", args[0])
				return nil
			}
			for _, rev := range revs {
				fmt.Printf("%s  %-6s  %s\n", rev.CreatedAt.Format("2006-01-02 15:04:05"), rev.Op, rev.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum revisions to show")
	return cmd
}
