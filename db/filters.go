package db

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/models"
)

// searchClause matches any of fields case-insensitively against the literal
// search text.
func searchClause(search string, fields ...string) bson.A {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(search)), Options: "i"}
	or := bson.A{}
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return or
}

func debateFilter(f models.DebateFilter) bson.M {
	filter := bson.M{}
	if strings.TrimSpace(f.Search) != "" {
		filter["$or"] = searchClause(f.Search, "title", "topic", "description")
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Mode != "" {
		filter["mode"] = f.Mode
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return filter
}

func templateFilter(f models.TemplateFilter) bson.M {
	filter := bson.M{}
	if strings.TrimSpace(f.Search) != "" {
		filter["$or"] = searchClause(f.Search, "name", "description")
	}
	if f.Mode != "" {
		filter["mode"] = f.Mode
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return filter
}

func personaFilter(f models.PersonaFilter) bson.M {
	filter := bson.M{}
	if strings.TrimSpace(f.Search) != "" {
		filter["$or"] = searchClause(f.Search, "name", "description")
	}
	return filter
}

func promptLogFilter(f models.PromptLogFilter) bson.M {
	filter := bson.M{}
	if f.Provider != "" {
		filter["provider"] = f.Provider
	}
	if f.Purpose != "" {
		filter["purpose"] = f.Purpose
	}
	if f.EntityType != "" {
		filter["entityType"] = f.EntityType
	}
	if f.Success != nil {
		filter["success"] = *f.Success
	}
	return filter
}
