package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"streamverse-backend/pkg/database"
	"streamverse-backend/pkg/models"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		search string
		group  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeFn, err := openController(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer closeFn()

			out := newFormatter(rootOpts, cmd.OutOrStdout())
			sites := ctrl.Search(search)
			if group {
				return out.Groups(models.GroupByCategory(sites), true)
			}
			return out.Sites(sites)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name or description")
	cmd.Flags().BoolVarP(&group, "group", "g", false, "group sites by category")
	return cmd
}

// siteFlags binds the editable site fields to a command.
type siteFlags struct {
	name, url, description, category, image string
}

func (sf *siteFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sf.name, "name", "", "site name")
	cmd.Flags().StringVar(&sf.url, "url", "", "site URL (http:// or https://)")
	cmd.Flags().StringVar(&sf.description, "description", "", "short description")
	cmd.Flags().StringVar(&sf.category, "category", "", fmt.Sprintf("one of %v", models.CategoryNames()))
	cmd.Flags().StringVar(&sf.image, "image", "", "optional image URL")
}

func (sf *siteFlags) input() models.SiteInput {
	return models.SiteInput{
		Name:        sf.name,
		URL:         sf.url,
		Description: sf.description,
		Category:    models.Category(sf.category),
		ImageURL:    sf.image,
	}
}

// merge overlays the flags that were set on top of an existing site.
func (sf *siteFlags) merge(cmd *cobra.Command, site models.Site) models.SiteInput {
	in := site.Input()
	if cmd.Flags().Changed("name") {
		in.Name = sf.name
	}
	if cmd.Flags().Changed("url") {
		in.URL = sf.url
	}
	if cmd.Flags().Changed("description") {
		in.Description = sf.description
	}
	if cmd.Flags().Changed("category") {
		in.Category = models.Category(sf.category)
	}
	if cmd.Flags().Changed("image") {
		in.ImageURL = sf.image
	}
	return in
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	sf := &siteFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := sf.input()
			if err := in.Validate(); err != nil {
				return err
			}

			ctrl, closeFn, err := openController(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer closeFn()

			site, err := ctrl.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			return newFormatter(rootOpts, cmd.OutOrStdout()).Site("Added", site)
		},
	}

	sf.bind(cmd)
	return cmd
}

// NewUpdateCommand creates the update command. Only the flags given change.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	sf := &siteFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			ctrl, closeFn, err := openController(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer closeFn()

			current, err := ctrl.Find(cmd.Context(), id)
			if err != nil {
				return err
			}

			site, err := ctrl.Update(cmd.Context(), id, sf.merge(cmd, *current))
			if err != nil {
				return err
			}
			return newFormatter(rootOpts, cmd.OutOrStdout()).Site("Updated", site)
		},
	}

	sf.bind(cmd)
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			ctrl, closeFn, err := openController(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer closeFn()

			deleted, err := ctrl.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("site %s: %w", id, database.ErrSiteNotFound)
			}
			return newFormatter(rootOpts, cmd.OutOrStdout()).Deleted(id)
		},
	}
}

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show categories with site counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeFn, err := openController(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer closeFn()

			return newFormatter(rootOpts, cmd.OutOrStdout()).Groups(ctrl.Groups(), false)
		},
	}
}
