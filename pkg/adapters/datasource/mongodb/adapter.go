// Package mongodb implements the MongoDB backend adapter. Query text is a
// bare collection name; the adapter runs a capped find, never arbitrary
// pipeline text.
package mongodb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/openbase-hq/openbase-engine/pkg/adapters/datasource"
	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
	"github.com/openbase-hq/openbase-engine/pkg/models"
)

// Adapter holds a per-call MongoDB client scoped to one database.
type Adapter struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewAdapter connects a dedicated client for one operation.
func NewAdapter(ctx context.Context, cfg *Config) (*Adapter, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &Adapter{
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	names, err := a.database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (a *Adapter) GetRows(ctx context.Context, table string, limit int) (*datasource.TableRows, error) {
	collection := strings.TrimSpace(table)
	if collection == "" {
		return nil, apperrors.BadRequest("collection name is required")
	}

	if err := a.checkCollectionExists(ctx, collection); err != nil {
		return nil, err
	}

	result, err := a.findCapped(ctx, collection, limit)
	if err != nil {
		return nil, err
	}
	return &datasource.TableRows{
		Table:    table,
		Columns:  result.Columns,
		Rows:     result.Rows,
		RowCount: result.RowCount,
	}, nil
}

// RunQuery treats the query text as a collection name. Named parameters have
// no meaning here and are ignored; the shared dispatcher merges variable
// defaults for every backend, so their presence is not an error.
func (a *Adapter) RunQuery(ctx context.Context, queryText string, _ map[string]any, limit int) (*models.QueryExecutionResult, error) {
	collection := strings.TrimSpace(queryText)
	if collection == "" {
		return nil, apperrors.BadRequest("collection name is required")
	}
	if err := a.checkCollectionExists(ctx, collection); err != nil {
		return nil, err
	}
	return a.findCapped(ctx, collection, limit)
}

func (a *Adapter) TestConnection(ctx context.Context) (*datasource.ConnectionTestResult, error) {
	if err := a.client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	tables, err := a.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	return &datasource.ConnectionTestResult{OK: true, Tables: tables}, nil
}

func (a *Adapter) Close() error {
	return a.client.Disconnect(context.Background())
}

func (a *Adapter) checkCollectionExists(ctx context.Context, name string) error {
	names, err := a.database.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	if len(names) == 0 {
		return apperrors.NotFoundf("collection not found: %s", name)
	}
	return nil
}

func (a *Adapter) findCapped(ctx context.Context, collection string, limit int) (*models.QueryExecutionResult, error) {
	limit = datasource.ClampLimit(limit)

	cursor, err := a.database.Collection(collection).Find(ctx, bson.D{},
		options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer cursor.Close(ctx)

	// bson.D keeps each document's key order; bson.M would scramble it.
	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return collectDocuments(docs), nil
}

// collectDocuments flattens ordered documents into tabular form. Documents
// are schemaless; the column list is the union of keys in first-seen order.
func collectDocuments(docs []bson.D) *models.QueryExecutionResult {
	var (
		rows       = make([]map[string]any, 0, len(docs))
		columnSeen = make(map[string]bool)
		columns    []string
	)
	for _, doc := range docs {
		row := make(map[string]any, len(doc))
		for _, elem := range doc {
			row[elem.Key] = normalizeValue(elem.Value)
			if !columnSeen[elem.Key] {
				columnSeen[elem.Key] = true
				columns = append(columns, elem.Key)
			}
		}
		rows = append(rows, row)
	}

	return &models.QueryExecutionResult{
		Columns:  columns,
		Rows:     rows,
		RowCount: len(rows),
	}
}

// normalizeValue maps driver-specific types to JSON-friendly ones.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time()
	case primitive.A:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(v))
		for _, elem := range v {
			out[elem.Key] = normalizeValue(elem.Value)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}

var _ datasource.Adapter = (*Adapter)(nil)
