package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	projectsCollection = "projects"
	personasCollection = "personas"
)

// ProjectStore answers the existence questions the dependency checker asks.
// It never loads full documents, only counts.
type ProjectStore struct {
	database *mongo.Database
}

func NewProjectStore(database *mongo.Database) *ProjectStore {
	return &ProjectStore{
		database: database,
	}
}

func (s *ProjectStore) ProjectExists(ctx context.Context, projectID string) (bool, error) {
	collection := s.database.Collection(projectsCollection)

	count, err := collection.CountDocuments(ctx, bson.M{
		"id":     projectID,
		"status": bson.M{"$ne": "archived"},
	})
	if err != nil {
		return false, fmt.Errorf("failed to check project %s: %w", projectID, err)
	}

	return count > 0, nil
}

// PersonasExist returns the subset of personaIDs that belong to the project,
// as a set. Callers diff against their requested ids to find the missing ones.
func (s *ProjectStore) PersonasExist(ctx context.Context, personaIDs []string, projectID string) (map[string]struct{}, error) {
	found := map[string]struct{}{}

	if len(personaIDs) == 0 {
		return found, nil
	}

	collection := s.database.Collection(personasCollection)

	cursor, err := collection.Find(ctx, bson.M{
		"project_id": projectID,
		"id":         bson.M{"$in": personaIDs},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check personas for project %s: %w", projectID, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var persona struct {
			ID string `bson:"id"`
		}

		if err := cursor.Decode(&persona); err != nil {
			return nil, fmt.Errorf("failed to decode persona: %w", err)
		}

		found[persona.ID] = struct{}{}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personas for project %s: %w", projectID, err)
	}

	return found, nil
}
