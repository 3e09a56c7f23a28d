package cli

import (
	"context"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
	"github.com/spf13/cobra"
)

// newCatalogCmd exposes a read-only reference resource as "<name> list".
func newCatalogCmd[T any](app *App, name, short string, columns []table.Column[T],
	fetch func(context.Context, table.Query) (*domain.Page[T], error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
	}
	cmd.AddCommand(listCommand(app, "list", short, name, columns, fetch))
	return cmd
}
