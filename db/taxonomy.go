package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"voxarena/models"
)

// TaxonomyRepository stores categories and their terms.
type TaxonomyRepository struct {
	categories collection[models.TaxonomyCategory]
	terms      collection[models.TaxonomyTerm]
}

func NewTaxonomyRepository(database *mongo.Database) *TaxonomyRepository {
	return &TaxonomyRepository{
		categories: collection[models.TaxonomyCategory]{database.Collection(TaxonomyCategoriesCollection)},
		terms:      collection[models.TaxonomyTerm]{database.Collection(TaxonomyTermsCollection)},
	}
}

var taxonomySort = bson.D{{Key: "sortOrder", Value: 1}, {Key: "name", Value: 1}}

func (r *TaxonomyRepository) ListCategories(ctx context.Context) ([]models.TaxonomyCategory, error) {
	return r.categories.findAll(ctx, bson.M{}, taxonomySort)
}

func (r *TaxonomyRepository) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.TaxonomyCategory, error) {
	return r.categories.findByID(ctx, id)
}

func (r *TaxonomyRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.TaxonomyCategory, error) {
	return r.categories.findOne(ctx, bson.M{"slug": slug})
}

func (r *TaxonomyRepository) CreateCategory(ctx context.Context, c *models.TaxonomyCategory) error {
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	id, err := r.categories.insert(ctx, c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *TaxonomyRepository) UpdateCategory(ctx context.Context, c *models.TaxonomyCategory) error {
	c.UpdatedAt = time.Now()
	return r.categories.updateByID(ctx, c.ID, bson.M{"$set": bson.M{
		"name":          c.Name,
		"slug":          c.Slug,
		"description":   c.Description,
		"allowMultiple": c.AllowMultiple,
		"sortOrder":     c.SortOrder,
		"updatedAt":     c.UpdatedAt,
	}})
}

// DeleteCategory removes the category and all of its terms.
func (r *TaxonomyRepository) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	if err := r.categories.deleteByID(ctx, id); err != nil {
		return err
	}
	_, err := r.terms.coll.DeleteMany(ctx, bson.M{"categoryId": id})
	return err
}

// ListTerms returns terms, optionally limited to one category.
func (r *TaxonomyRepository) ListTerms(ctx context.Context, categoryID *primitive.ObjectID) ([]models.TaxonomyTerm, error) {
	filter := bson.M{}
	if categoryID != nil {
		filter["categoryId"] = *categoryID
	}
	return r.terms.findAll(ctx, filter, taxonomySort)
}

func (r *TaxonomyRepository) GetTerm(ctx context.Context, id primitive.ObjectID) (*models.TaxonomyTerm, error) {
	return r.terms.findByID(ctx, id)
}

func (r *TaxonomyRepository) CreateTerm(ctx context.Context, t *models.TaxonomyTerm) error {
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	id, err := r.terms.insert(ctx, t)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *TaxonomyRepository) UpdateTerm(ctx context.Context, t *models.TaxonomyTerm) error {
	t.UpdatedAt = time.Now()
	return r.terms.updateByID(ctx, t.ID, bson.M{"$set": bson.M{
		"categoryId":  t.CategoryID,
		"name":        t.Name,
		"slug":        t.Slug,
		"description": t.Description,
		"promptHint":  t.PromptHint,
		"sortOrder":   t.SortOrder,
		"updatedAt":   t.UpdatedAt,
	}})
}

func (r *TaxonomyRepository) DeleteTerm(ctx context.Context, id primitive.ObjectID) error {
	return r.terms.deleteByID(ctx, id)
}

// UpsertCategory is used for seeding; it returns the stored category id.
func (r *TaxonomyRepository) UpsertCategory(ctx context.Context, c *models.TaxonomyCategory) (primitive.ObjectID, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out models.TaxonomyCategory
	err := r.categories.coll.FindOneAndUpdate(ctx, bson.M{"slug": c.Slug}, bson.M{
		"$set": bson.M{
			"name":          c.Name,
			"description":   c.Description,
			"allowMultiple": c.AllowMultiple,
			"sortOrder":     c.SortOrder,
			"updatedAt":     now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}, opts).Decode(&out)
	return out.ID, err
}

// UpsertTerm is used for seeding.
func (r *TaxonomyRepository) UpsertTerm(ctx context.Context, t *models.TaxonomyTerm) error {
	now := time.Now()
	_, err := r.terms.coll.UpdateOne(ctx, bson.M{"categoryId": t.CategoryID, "slug": t.Slug}, bson.M{
		"$set": bson.M{
			"name":        t.Name,
			"description": t.Description,
			"promptHint":  t.PromptHint,
			"sortOrder":   t.SortOrder,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}, options.Update().SetUpsert(true))
	return err
}
