package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ath/internal/config"
	"ath/internal/discovery"
	"ath/internal/registry"
	"ath/internal/storage"
	"ath/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	registry  *registry.Registry
	filter    *discovery.Filter
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	reg *registry.Registry,
	filter *discovery.Filter,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		registry:  reg,
		filter:    filter,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	tests := lc.registry.All()
	tests = lc.filter.FilterByGroups(tests, lc.config.SelectedGroups(), lc.config.ExcludedGroups())
	tests = lc.filter.FilterByName(tests, lc.config.Flags.NameFilter)

	if len(tests) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	// A missing results file just means there is no previous run to mark.
	var failed map[string]struct{}
	if last, err := lc.storage.Load(); err == nil {
		failed = last.FailedNames()
	}

	lc.formatter.PrintTestList(tests, failed)
	return nil
}
