package store

import (
	"context"
	"errors"
	"time"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/refdata"
	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names
const (
	CollectionHistory         = "calculation_history"
	CollectionCases           = "feasibility_cases"
	CollectionLocations       = "location_defaults"
	CollectionPanelVendors    = "panel_vendors"
	CollectionTargetAudiences = "target_audiences"
	CollectionTemplates       = "project_templates"
	CollectionAppConfig       = "app_config"
)

// Documents of the app_config collection
const (
	ConfigTiming    = "timing"
	ConfigQuotaSkew = "quota_skew"
)

// DefaultMongoDatabase is used when no database name is configured
const DefaultMongoDatabase = "fieldwork"

// MongoStore stores history and reference data in MongoDB
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	limit  int
}

// NewMongoStore connects to MongoDB and checks the connection
func NewMongoStore(ctx context.Context, uri, database string, limit int) (*MongoStore, error) {
	if uri == "" {
		return nil, eris.New("mongo: missing connection uri")
	}

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, eris.Wrap(err, "mongo: connect")
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, eris.Wrap(err, "mongo: ping")
	}

	return newMongoStore(client, database, limit), nil
}

func newMongoStore(client *mongo.Client, database string, limit int) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}
	return &MongoStore{
		client: client,
		db:     client.Database(database),
		limit:  limit,
	}
}

func (s *MongoStore) SaveCalculation(ctx context.Context, record *model.HistoryRecord) (string, error) {
	if _, err := s.db.Collection(CollectionHistory).InsertOne(ctx, record); err != nil {
		return "", eris.Wrapf(err, "mongo: insert history %s", record.ID)
	}

	s.prune(ctx)

	return record.ID, nil
}

// prune keeps the newest records up to the retention limit
func (s *MongoStore) prune(ctx context.Context) {
	collection := s.db.Collection(CollectionHistory)

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(s.limit)).
		SetProjection(bson.M{"_id": 1})

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		zap.L().Warn("mongo: could not prune history", zap.Error(err))
		return
	}
	defer cursor.Close(ctx)

	var stale []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &stale); err != nil {
		zap.L().Warn("mongo: could not prune history", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	ids := make([]string, 0, len(stale))
	for _, doc := range stale {
		ids = append(ids, doc.ID)
	}

	result, err := collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		zap.L().Warn("mongo: could not prune history", zap.Error(err))
		return
	}

	zap.L().Debug("mongo: pruned history", zap.Int64("deleted", result.DeletedCount))
}

func (s *MongoStore) RecentHistory(ctx context.Context, limit int) ([]*model.HistoryRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(recentLimit(limit)))

	cursor, err := s.db.Collection(CollectionHistory).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, eris.Wrap(err, "mongo: list history")
	}
	defer cursor.Close(ctx)

	records := []*model.HistoryRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, eris.Wrap(err, "mongo: decode history")
	}

	return records, nil
}

func (s *MongoStore) DeleteHistory(ctx context.Context, id string) error {
	result, err := s.db.Collection(CollectionHistory).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return eris.Wrapf(err, "mongo: delete history %s", id)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ClearHistory(ctx context.Context) error {
	_, err := s.db.Collection(CollectionHistory).DeleteMany(ctx, bson.M{})
	return eris.Wrap(err, "mongo: clear history")
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return eris.Wrap(s.client.Disconnect(ctx), "mongo: disconnect")
}

func findOrdered[T any](ctx context.Context, db *mongo.Database, collection string) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})

	cursor, err := db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, eris.Wrapf(err, "mongo: find %s", collection)
	}
	defer cursor.Close(ctx)

	var items []T
	if err := cursor.All(ctx, &items); err != nil {
		return nil, eris.Wrapf(err, "mongo: decode %s", collection)
	}

	return items, nil
}

func (s *MongoStore) LoadCases(ctx context.Context) ([]model.Case, error) {
	return findOrdered[model.Case](ctx, s.db, CollectionCases)
}

func (s *MongoStore) LoadLocations(ctx context.Context) ([]model.Location, error) {
	return findOrdered[model.Location](ctx, s.db, CollectionLocations)
}

func (s *MongoStore) LoadPanelVendors(ctx context.Context) ([]model.PanelVendor, error) {
	return findOrdered[model.PanelVendor](ctx, s.db, CollectionPanelVendors)
}

func (s *MongoStore) LoadTargetAudiences(ctx context.Context) ([]model.TargetAudience, error) {
	return findOrdered[model.TargetAudience](ctx, s.db, CollectionTargetAudiences)
}

func (s *MongoStore) LoadTemplates(ctx context.Context) ([]model.Template, error) {
	return findOrdered[model.Template](ctx, s.db, CollectionTemplates)
}

type quotaSkewDocument struct {
	ID      string                  `bson:"_id"`
	Options []model.QuotaSkewOption `bson:"options"`
}

type timingDocument struct {
	ID                 string `bson:"_id"`
	model.TimingConfig `bson:",inline"`
}

func (s *MongoStore) LoadQuotaSkewConfig(ctx context.Context) ([]model.QuotaSkewOption, error) {
	var doc quotaSkewDocument
	err := s.db.Collection(CollectionAppConfig).FindOne(ctx, bson.M{"_id": ConfigQuotaSkew}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "mongo: load quota skew config")
	}
	return doc.Options, nil
}

// LoadTimingConfig returns nil when no timing document exists
func (s *MongoStore) LoadTimingConfig(ctx context.Context) (*model.TimingConfig, error) {
	var doc timingDocument
	err := s.db.Collection(CollectionAppConfig).FindOne(ctx, bson.M{"_id": ConfigTiming}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "mongo: load timing config")
	}
	return &doc.TimingConfig, nil
}

// SeedReference upserts every reference table
func (s *MongoStore) SeedReference(ctx context.Context, ref *model.ReferenceData) error {
	upsert := options.Replace().SetUpsert(true)

	replace := func(collection string, id any, doc any) error {
		_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, upsert)
		return eris.Wrapf(err, "mongo: seed %s/%v", collection, id)
	}

	for _, c := range ref.Cases {
		if err := replace(CollectionCases, c.ID, c); err != nil {
			return err
		}
	}
	for _, l := range ref.Locations {
		if err := replace(CollectionLocations, l.ID, l); err != nil {
			return err
		}
	}
	for _, v := range ref.PanelVendors {
		if err := replace(CollectionPanelVendors, v.ID, v); err != nil {
			return err
		}
	}
	for _, a := range ref.TargetAudiences {
		if err := replace(CollectionTargetAudiences, a.ID, a); err != nil {
			return err
		}
	}
	for _, t := range ref.Templates {
		if err := replace(CollectionTemplates, t.ID, t); err != nil {
			return err
		}
	}

	if err := replace(CollectionAppConfig, ConfigQuotaSkew, quotaSkewDocument{ID: ConfigQuotaSkew, Options: ref.QuotaSkew}); err != nil {
		return err
	}

	return replace(CollectionAppConfig, ConfigTiming, timingDocument{ID: ConfigTiming, TimingConfig: ref.Timing})
}

var (
	_ HistoryStore     = (*MongoStore)(nil)
	_ refdata.Provider = (*MongoStore)(nil)
)
