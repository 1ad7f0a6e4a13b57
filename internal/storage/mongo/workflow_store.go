// Package mongo holds the MongoDB-backed persistence for workflows and
// execution records.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/insightloop/insightloop/pkg/domain"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workflowsCollection = "workflows"

type WorkflowStore struct {
	database *mongo.Database
}

func NewWorkflowStore(database *mongo.Database) *WorkflowStore {
	store := &WorkflowStore{
		database: database,
	}
	store.ensureIndexes()

	return store
}

func (s *WorkflowStore) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := s.database.Collection(workflowsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "last_updated_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "slug", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes for workflows")
	}
}

func (s *WorkflowStore) GetWorkflow(ctx context.Context, workflowID string) (domain.Workflow, error) {
	collection := s.database.Collection(workflowsCollection)

	var workflow domain.Workflow

	err := collection.FindOne(ctx, bson.M{"id": workflowID}).Decode(&workflow)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Workflow{}, domain.ErrWorkflowNotFound
		}

		return domain.Workflow{}, fmt.Errorf("failed to get workflow %s: %w", workflowID, err)
	}

	return workflow, nil
}

func (s *WorkflowStore) CreateWorkflow(ctx context.Context, workflow domain.Workflow) error {
	if workflow.ID == "" {
		return fmt.Errorf("workflow id is required")
	}

	workflow.LastUpdatedAt = time.Now()

	collection := s.database.Collection(workflowsCollection)

	_, err := collection.InsertOne(ctx, workflow)
	if err != nil {
		return fmt.Errorf("failed to create workflow %s: %w", workflow.ID, err)
	}

	return nil
}
