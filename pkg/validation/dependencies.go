package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/insightloop/insightloop/pkg/domain"
)

// personaIDsConfigKey is where discussion-style nodes list their explicit
// participants.
const personaIDsConfigKey = "persona_ids"

// DependencyChecker confirms externally owned entities referenced by node
// configs exist. A missing or inactive project is fatal to the pass: persona
// checks are meaningless without one, so they are skipped.
type DependencyChecker struct {
	lookup domain.DependencyLookup
}

func NewDependencyChecker(lookup domain.DependencyLookup) *DependencyChecker {
	return &DependencyChecker{
		lookup: lookup,
	}
}

// Check accumulates dependency findings into a ValidationResult. The returned
// error is reserved for lookup infrastructure failures, never for findings.
func (c *DependencyChecker) Check(ctx context.Context, workflow domain.Workflow, projectID string) (*domain.ValidationResult, error) {
	result := domain.NewValidationResult()

	exists, err := c.lookup.ProjectExists(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("checking project %s: %w", projectID, err)
	}

	if !exists {
		result.AddError(fmt.Sprintf("project %q does not exist or is inactive", projectID))
		return result, nil
	}

	for _, node := range workflow.Nodes {
		personaIDs, ok := node.ConfigStringSlice(personaIDsConfigKey)
		if !ok || len(personaIDs) == 0 {
			continue
		}

		found, err := c.lookup.PersonasExist(ctx, personaIDs, projectID)
		if err != nil {
			return nil, fmt.Errorf("resolving personas for node %s: %w", node.ID, err)
		}

		missing := []string{}
		for _, personaID := range personaIDs {
			if _, ok := found[personaID]; !ok {
				missing = append(missing, personaID)
			}
		}

		if len(missing) > 0 {
			result.AddError(fmt.Sprintf("node %q (%s) references personas that do not belong to project %q: %s", node.DisplayName(), node.ID, projectID, strings.Join(missing, ", ")))
		}
	}

	return result, nil
}
