package domain

import (
	"errors"
	"time"
)

type NodeType string

const (
	NodeTypeStart             NodeType = "start"
	NodeTypeEnd               NodeType = "end"
	NodeTypeDecision          NodeType = "decision"
	NodeTypePersonaGeneration NodeType = "persona_generation"
	NodeTypeFocusGroup        NodeType = "focus_group"
	NodeTypeSurveyCreation    NodeType = "survey_creation"
	NodeTypePDFExport         NodeType = "pdf_export"
	NodeTypeResultsAnalysis   NodeType = "results_analysis"
)

var (
	ErrWorkflowNotFound  = errors.New("workflow not found")
	ErrExecutionNotFound = errors.New("execution not found")
	ErrProjectNotFound   = errors.New("project not found")
)

type Workflow struct {
	ID            string    `json:"id" bson:"id"`
	ProjectID     string    `json:"project_id" bson:"project_id"`
	Name          string    `json:"name" bson:"name"`
	Slug          string    `json:"slug" bson:"slug"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	Nodes         []Node    `json:"nodes" bson:"nodes"`
	Edges         []Edge    `json:"edges" bson:"edges"`
	LastUpdatedAt time.Time `json:"last_updated_at" bson:"last_updated_at"`
}

func (w Workflow) GetNodeByID(nodeID string) (Node, bool) {
	for _, node := range w.Nodes {
		if node.ID == nodeID {
			return node, true
		}
	}

	return Node{}, false
}

// NodesOfType returns matching nodes in insertion order. Insertion order is
// the tie-break order for every graph algorithm operating on the workflow.
func (w Workflow) NodesOfType(nodeType NodeType) []Node {
	nodes := []Node{}

	for _, node := range w.Nodes {
		if node.Type == nodeType {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

type Node struct {
	ID     string         `json:"id" bson:"id"`
	Type   NodeType       `json:"type" bson:"type"`
	Label  string         `json:"label,omitempty" bson:"label,omitempty"`
	Config map[string]any `json:"config,omitempty" bson:"config,omitempty"`
}

// DisplayName is the label users see in error messages, falling back to the
// node id when no label was set.
func (n Node) DisplayName() string {
	if n.Label != "" {
		return n.Label
	}

	return n.ID
}

func (n Node) ConfigString(key string) (string, bool) {
	value, exists := n.Config[key]
	if !exists {
		return "", false
	}

	s, ok := value.(string)

	return s, ok
}

func (n Node) ConfigStringSlice(key string) ([]string, bool) {
	value, exists := n.Config[key]
	if !exists {
		return nil, false
	}

	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		items := make([]string, 0, len(v))

		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}

			items = append(items, s)
		}

		return items, true
	default:
		return nil, false
	}
}

type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
}
