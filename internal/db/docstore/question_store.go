package docstore

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const questionsCollection = "questions"

// QuestionDocument is one question stored in MongoDB.
type QuestionDocument struct {
	QuestionID string `bson:"questionId"`
	Category   string `bson:"category"`
	TechName   string `bson:"techName"`
	Question   string `bson:"question"`
	Hint       string `bson:"hint"`
	Answer     string `bson:"answer"`
	Priority   *int   `bson:"priority,omitempty"`
	Counter    int    `bson:"counter"`
}

// QuestionStore reads and writes questions in a Mongo collection.
type QuestionStore struct {
	collection *mongo.Collection
}

func NewQuestionStore(client *mongo.Client, database string) *QuestionStore {
	return &QuestionStore{
		collection: client.Database(database).Collection(questionsCollection),
	}
}

// EnsureIndexes creates the unique (category, techName, questionId) index.
func (s *QuestionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}, {Key: "techName", Value: 1}, {Key: "questionId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindByTech returns every question filed under category/techName.
func (s *QuestionStore) FindByTech(ctx context.Context, category, techName string) ([]QuestionDocument, error) {
	cursor, err := s.collection.Find(ctx,
		bson.M{"category": category, "techName": techName},
		options.Find().SetSort(bson.D{{Key: "questionId", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []QuestionDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// TechNames lists distinct technologies within a category.
func (s *QuestionStore) TechNames(ctx context.Context, category string) ([]string, error) {
	return s.distinct(ctx, "techName", bson.M{"category": category})
}

// Catalog groups technology names by category.
func (s *QuestionStore) Catalog(ctx context.Context) (map[string][]string, error) {
	categories, err := s.distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, err
	}
	catalog := make(map[string][]string, len(categories))
	for _, category := range categories {
		techs, err := s.TechNames(ctx, category)
		if err != nil {
			return nil, err
		}
		catalog[category] = techs
	}
	return catalog, nil
}

// Upsert replaces the document with the same key, inserting when absent.
func (s *QuestionStore) Upsert(ctx context.Context, doc QuestionDocument) error {
	filter := bson.M{"category": doc.Category, "techName": doc.TechName, "questionId": doc.QuestionID}
	_, err := s.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *QuestionStore) distinct(ctx context.Context, field string, filter bson.M) ([]string, error) {
	values, err := s.collection.Distinct(ctx, field, filter)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("distinct %s: unexpected %T", field, v)
		}
		out = append(out, str)
	}
	sort.Strings(out)
	return out, nil
}
