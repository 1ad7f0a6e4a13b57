package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/insightloop/insightloop/internal/schemas"
	"github.com/insightloop/insightloop/pkg/domain"
	"github.com/insightloop/insightloop/pkg/engine"
	"github.com/insightloop/insightloop/pkg/validation"

	"github.com/spf13/cobra"
)

func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <workflow.json>",
		Short: "Validate a workflow file without a running server",
		Long: `Validate runs the structural and node config checks against a workflow
JSON file. Dependency checks need live project data and are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}

	return cmd
}

// offlineLookup answers yes to everything so the dependency pass contributes
// no findings in file-based validation.
type offlineLookup struct{}

func (offlineLookup) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	return true, nil
}

func (offlineLookup) PersonasExist(ctx context.Context, personaIDs []string, projectID string) (map[string]struct{}, error) {
	found := map[string]struct{}{}
	for _, personaID := range personaIDs {
		found[personaID] = struct{}{}
	}

	return found, nil
}

func runValidate(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading workflow file: %w", err)
	}

	var workflow domain.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return fmt.Errorf("parsing workflow file: %w", err)
	}

	schemaRegistry, err := schemas.NewRegistry()
	if err != nil {
		return fmt.Errorf("building schema registry: %w", err)
	}

	validator := validation.NewWorkflowValidator(validation.WorkflowValidatorDeps{
		SchemaRegistry:  schemaRegistry,
		Lookup:          offlineLookup{},
		OutOfScopeTypes: engine.StubbedNodeTypes(engine.ExecutorSelectorDeps{}),
	})

	result, err := validator.ValidateExecutionReadiness(cmd.Context(), workflow, workflow.ProjectID)
	if err != nil {
		return fmt.Errorf("validating workflow: %w", err)
	}

	out := cmd.OutOrStdout()

	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}

	for _, errMsg := range result.Errors {
		fmt.Fprintf(out, "error: %s\n", errMsg)
	}

	if !result.IsValid() {
		return fmt.Errorf("workflow has %d validation error(s)", len(result.Errors))
	}

	fmt.Fprintln(out, "workflow is valid")

	return nil
}
