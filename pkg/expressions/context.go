package expressions

import "sort"

// BuildConditionContext derives the closed variable set for a condition from
// the accumulated results of prior nodes. Only well-known result shapes
// contribute variables; unknown shapes contribute nothing and are not errors.
// Nodes are inspected in sorted id order so overlapping keys resolve the same
// way on every run.
func BuildConditionContext(resultsByNodeID map[string]map[string]any) map[string]any {
	variables := map[string]any{}

	nodeIDs := make([]string, 0, len(resultsByNodeID))
	for nodeID := range resultsByNodeID {
		nodeIDs = append(nodeIDs, nodeID)
	}

	sort.Strings(nodeIDs)

	for _, nodeID := range nodeIDs {
		result := resultsByNodeID[nodeID]

		if ids, ok := stringSlice(result["generated_persona_ids"]); ok {
			variables["generated_persona_ids"] = ids
			variables["persona_count"] = float64(len(ids))
		}

		if status, ok := result["status"].(string); ok {
			variables["status"] = status
		}

		if count, ok := toNumber(result["response_count"]); ok && result["response_count"] != nil {
			variables["response_count"] = count
		}

		if discussionID, ok := result["discussion_id"].(string); ok {
			variables["discussion_id"] = discussionID
		}
	}

	return variables
}

func stringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		ids := make([]string, 0, len(v))

		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}

			ids = append(ids, s)
		}

		return ids, true
	default:
		return nil, false
	}
}
