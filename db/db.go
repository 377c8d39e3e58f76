package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DebatesCollection            = "debates"
	FormatTemplatesCollection    = "format_templates"
	PersonasCollection           = "personas"
	TaxonomyCategoriesCollection = "taxonomy_categories"
	TaxonomyTermsCollection      = "taxonomy_terms"
	ModesCollection              = "debate_modes"
	PromptLogsCollection         = "ai_prompt_logs"
	AdminsCollection             = "admins"
	AdminActionLogsCollection    = "admin_action_logs"
)

// extractDBName parses the database name from the URI, defaulting to "voxarena"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "voxarena"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "voxarena"
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI
func ConnectMongoDB(uri string, log logrus.FieldLogger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	log.WithField("database", dbName).Info("Connected to MongoDB")

	return client, client.Database(dbName), nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		FormatTemplatesCollection: {{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique}},
		PersonasCollection:        {{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique}},
		ModesCollection:           {{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique}},
		TaxonomyCategoriesCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		TaxonomyTermsCollection: {
			{Keys: bson.D{{Key: "categoryId", Value: 1}, {Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		AdminsCollection: {{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		DebatesCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "participants.personaId", Value: 1}}},
		},
		PromptLogsCollection: {
			{Keys: bson.D{{Key: "entityId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
