package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaxonomyCategory is a controlled-vocabulary dimension, e.g. "Political Leaning".
type TaxonomyCategory struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Slug          string             `bson:"slug" json:"slug"`
	Description   string             `bson:"description" json:"description"`
	AllowMultiple bool               `bson:"allowMultiple" json:"allowMultiple"`
	SortOrder     int                `bson:"sortOrder" json:"sortOrder"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TaxonomyTerm is a selectable value of a category.
type TaxonomyTerm struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CategoryID  primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	PromptHint  string             `bson:"promptHint,omitempty" json:"promptHint,omitempty"`
	SortOrder   int                `bson:"sortOrder" json:"sortOrder"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
