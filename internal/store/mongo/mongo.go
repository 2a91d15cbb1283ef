// Package mongo is the document store backend. Categories and expenses live
// in their own collections; month closes are archived alongside them.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"presupuesto/internal/core"
	"presupuesto/internal/store"
)

const (
	categoriesCollection = "categories"
	expensesCollection   = "expenses"
	archivesCollection   = "monthly_archives"
)

type categoryDoc struct {
	ID     string `bson:"_id"`
	Name   string `bson:"name"`
	Budget int64  `bson:"budget"`
	Color  string `bson:"color"`
	Icon   string `bson:"icon"`
}

type expenseDoc struct {
	ID          string    `bson:"_id"`
	CategoryID  string    `bson:"categoryId"`
	Amount      int64     `bson:"amount"`
	Date        time.Time `bson:"date"`
	Description string    `bson:"description"`
	UserID      string    `bson:"userId"`
	UserName    string    `bson:"userName"`
}

type categoryTotalDoc struct {
	CategoryID string `bson:"categoryId"`
	Name       string `bson:"name"`
	Budget     int64  `bson:"budget"`
	Spent      int64  `bson:"spent"`
}

type archiveDoc struct {
	ID          string             `bson:"_id"` // "2024-03"
	Year        int                `bson:"year"`
	Month       int                `bson:"month"`
	TotalBudget int64              `bson:"totalBudget"`
	TotalSpent  int64              `bson:"totalSpent"`
	Expenses    int                `bson:"expenses"`
	ByCategory  []categoryTotalDoc `bson:"byCategory"`
	ArchivedAt  time.Time          `bson:"archivedAt"`
}

// Store wraps the MongoDB collections.
type Store struct {
	client     *mongo.Client
	categories *mongo.Collection
	expenses   *mongo.Collection
	archives   *mongo.Collection
	logger     *slog.Logger
}

var (
	_ store.Repository    = (*Store)(nil)
	_ store.ChangeWatcher = (*Store)(nil)
	_ store.ArchiveWriter = (*Store)(nil)
)

// Open connects to uri and uses database dbName.
func Open(ctx context.Context, uri, dbName string, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	db := client.Database(dbName)
	s := &Store{
		client:     client,
		categories: db.Collection(categoriesCollection),
		expenses:   db.Collection(expensesCollection),
		archives:   db.Collection(archivesCollection),
		logger:     logger.With("component", "mongo_store"),
	}
	_, err = s.expenses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: -1}},
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to ensure expense date index", "error", err)
	}
	s.logger.InfoContext(ctx, "Connected to MongoDB", "database", dbName)
	return s, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.categories.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	out := make([]core.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, core.Category{
			ID: d.ID, Name: d.Name, Budget: core.Pesos(d.Budget), Color: d.Color, Icon: d.Icon,
		})
	}
	return out, nil
}

// PutCategory writes the whole document, creating it when missing.
func (s *Store) PutCategory(ctx context.Context, c core.Category) error {
	doc := categoryDoc{ID: c.ID, Name: c.Name, Budget: int64(c.Budget), Color: c.Color, Icon: c.Icon}
	_, err := s.categories.ReplaceOne(ctx, bson.M{"_id": c.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace category: %w", err)
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.categories.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.expenses.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []expenseDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	out := make([]core.Expense, 0, len(docs))
	for _, d := range docs {
		out = append(out, core.Expense{
			ID:          d.ID,
			CategoryID:  d.CategoryID,
			Amount:      core.Pesos(d.Amount),
			Date:        d.Date,
			Description: d.Description,
			UserID:      d.UserID,
			UserName:    d.UserName,
		})
	}
	return out, nil
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.ID = uuid.NewString()
	doc := expenseDoc{
		ID:          e.ID,
		CategoryID:  e.CategoryID,
		Amount:      int64(e.Amount),
		Date:        e.Date,
		Description: e.Description,
		UserID:      e.UserID,
		UserName:    e.UserName,
	}
	if _, err := s.expenses.InsertOne(ctx, doc); err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.expenses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SaveMonthSummary upserts the archive document for the summary's month,
// so re-running a close overwrites the previous result.
func (s *Store) SaveMonthSummary(ctx context.Context, sum core.MonthSummary) error {
	doc := archiveDoc{
		ID:          fmt.Sprintf("%04d-%02d", sum.Year, sum.Month),
		Year:        sum.Year,
		Month:       sum.Month,
		TotalBudget: int64(sum.TotalBudget),
		TotalSpent:  int64(sum.TotalSpent),
		Expenses:    sum.Expenses,
		ArchivedAt:  time.Now().UTC(),
	}
	for _, c := range sum.ByCategory {
		doc.ByCategory = append(doc.ByCategory, categoryTotalDoc{
			CategoryID: c.CategoryID, Name: c.Name, Budget: int64(c.Budget), Spent: int64(c.Spent),
		})
	}
	_, err := s.archives.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save monthly archive: %w", err)
	}
	return nil
}

// Watch opens change streams on both collections and calls onChange for
// every event. Change streams need a replica set; on a standalone server the
// error is returned and the caller keeps working without external updates.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	errc := make(chan error, 2)
	for _, coll := range []*mongo.Collection{s.categories, s.expenses} {
		go func(coll *mongo.Collection) {
			errc <- s.watchCollection(ctx, coll, onChange)
		}(coll)
	}
	var first error
	for i := 0; i < 2; i++ {
		if err := <-errc; err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *Store) watchCollection(ctx context.Context, coll *mongo.Collection, onChange func()) error {
	cs, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("watch %s: %w", coll.Name(), err)
	}
	defer cs.Close(context.Background())

	s.logger.InfoContext(ctx, "Watching collection", "collection", coll.Name())
	for cs.Next(ctx) {
		onChange()
	}
	if err := cs.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("change stream %s: %w", coll.Name(), err)
	}
	return nil
}
