package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/dbtdoc/internal/cli/config"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default .dbtdoc configuration file",
		Long: `Write a .dbtdoc file holding the default settings, ready to edit.

dbtdoc reads .dbtdoc from the working directory. Use --example to also
create a small dbt project with documented models and macros.`,
		Example: `  # Write .dbtdoc in the current directory
  dbtdoc init

  # Create an example project and generate its docs
  dbtdoc init demo --example && cd demo && dbtdoc .

  # Overwrite an existing .dbtdoc
  dbtdoc init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			template := "default"
			if example {
				template = "example"
			}
			return runInit(NewCommandContext(cmd), dir, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Also create an example dbt project")

	return cmd
}

func runInit(cc *CommandContext, dir, template string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.DefaultConfigFile)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	if err := copyTemplate(template, dir, force); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	r := cc.Renderer
	files, _ := listTemplateFiles(template)
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("dbtdoc initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Add doc comments to your .sql files")
	r.Println("  2. Run 'dbtdoc list' to preview the documented resources")
	r.Println("  3. Run 'dbtdoc generate' to write dbt_schema.yml and docs.md")
	return nil
}
