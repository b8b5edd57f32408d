package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockMongo(t *testing.T) *mtest.T {
	t.Helper()
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func newMockMongoStore(mt *mtest.T, limit int) *MongoStore {
	return newMongoStore(mt.Client, mt.DB.Name(), limit)
}

func namespace(mt *mtest.T, collection string) string {
	return mt.DB.Name() + "." + collection
}

// toDocument converts a value to the document a mocked server would return
func toDocument(t *testing.T, v any) bson.D {
	t.Helper()
	data, err := bson.Marshal(v)
	require.NoError(t, err)

	var doc bson.D
	require.NoError(t, bson.Unmarshal(data, &doc))
	return doc
}

func startedCommands(mt *mtest.T, name string) []*event.CommandStartedEvent {
	var events []*event.CommandStartedEvent
	for _, evt := range mt.GetAllStartedEvents() {
		if evt.CommandName == name {
			events = append(events, evt)
		}
	}
	return events
}

func TestMongoStore_SaveCalculation_Prunes(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("deletes records beyond the limit", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 2)
		record := newTestRecord("saved", time.Now().UTC())

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, namespace(mt, CollectionHistory), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "old-1"}},
				bson.D{{Key: "_id", Value: "old-2"}},
			),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
		)

		id, err := s.SaveCalculation(context.Background(), record)
		require.NoError(mt, err)
		assert.Equal(mt, record.ID, id)

		finds := startedCommands(mt, "find")
		require.Len(mt, finds, 1)
		assert.Equal(mt, int64(2), finds[0].Command.Lookup("skip").Int64())
		assert.Equal(mt, int32(-1), finds[0].Command.Lookup("sort", "createdAt").Int32())

		deletes := startedCommands(mt, "delete")
		require.Len(mt, deletes, 1)
		assert.Contains(mt, deletes[0].Command.String(), "old-1")
		assert.Contains(mt, deletes[0].Command.String(), "old-2")
	})

	mt.Run("nothing to prune", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 50)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, namespace(mt, CollectionHistory), mtest.FirstBatch),
		)

		_, err := s.SaveCalculation(context.Background(), newTestRecord("saved", time.Now().UTC()))
		require.NoError(mt, err)
		assert.Empty(mt, startedCommands(mt, "delete"))
	})

	mt.Run("prune error is ignored", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 2)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 50, Name: "MaxTimeMSExpired", Message: "operation exceeded time limit"}),
		)

		_, err := s.SaveCalculation(context.Background(), newTestRecord("saved", time.Now().UTC()))
		require.NoError(mt, err)
	})
}

func TestMongoStore_SaveCalculation_Error(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("insert fails", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 2)

		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := s.SaveCalculation(context.Background(), newTestRecord("saved", time.Now().UTC()))
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "insert history")
	})
}

func TestMongoStore_RecentHistory(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("newest first with limit", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 50)
		base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
		newer := newTestRecord("newer", base.Add(time.Hour))
		older := newTestRecord("older", base)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, CollectionHistory), mtest.FirstBatch,
			toDocument(mt.T, newer),
			toDocument(mt.T, older),
		))

		records, err := s.RecentHistory(context.Background(), 5)
		require.NoError(mt, err)
		require.Len(mt, records, 2)
		assert.Equal(mt, newer.ID, records[0].ID)
		assert.Equal(mt, "newer", records[0].ProjectName)
		assert.Equal(mt, 5, records[0].ExpertConclusion.Days)
		assert.Equal(mt, 4, records[0].SystemResult.FWDaysMax)
		assert.Equal(mt, "older", records[1].ProjectName)

		finds := startedCommands(mt, "find")
		require.Len(mt, finds, 1)
		assert.Equal(mt, int64(5), finds[0].Command.Lookup("limit").Int64())
		assert.Equal(mt, int32(-1), finds[0].Command.Lookup("sort", "createdAt").Int32())
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 50)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, CollectionHistory), mtest.FirstBatch))

		records, err := s.RecentHistory(context.Background(), 0)
		require.NoError(mt, err)
		assert.NotNil(mt, records)
		assert.Empty(mt, records)
	})
}

func TestMongoStore_DeleteHistory(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("deleted", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 50)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, s.DeleteHistory(context.Background(), "abc"))
	})

	mt.Run("not found", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 50)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := s.DeleteHistory(context.Background(), "missing")
		assert.True(mt, errors.Is(err, ErrNotFound))
	})
}

func TestMongoStore_LoadPanelVendors(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("sorted by order", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 50)
		first := model.PanelVendor{ID: "ifm", Name: "Panel IFM", Order: 1, ResponseFactor: 0.7, DefaultQCReject: 0.05}
		second := model.PanelVendor{ID: "purespectrum", Name: "Purespectrum", Order: 2, ResponseFactor: 1.4, DefaultQCReject: 0.45}

		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, CollectionPanelVendors), mtest.FirstBatch,
			toDocument(mt.T, first),
			toDocument(mt.T, second),
		))

		vendors, err := s.LoadPanelVendors(context.Background())
		require.NoError(mt, err)
		require.Len(mt, vendors, 2)
		assert.Equal(mt, "ifm", vendors[0].ID)
		assert.InDelta(mt, 1.4, vendors[1].ResponseFactor, 1e-9)

		finds := startedCommands(mt, "find")
		require.Len(mt, finds, 1)
		assert.Equal(mt, CollectionPanelVendors, finds[0].Command.Lookup("find").StringValue())
		assert.Equal(mt, int32(1), finds[0].Command.Lookup("sort", "order").Int32())
	})

	mt.Run("find error", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 50)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}))

		_, err := s.LoadCases(context.Background())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), CollectionCases)
	})
}

func TestMongoStore_LoadConfigDocuments(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("quota skew", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 50)
		doc := quotaSkewDocument{ID: ConfigQuotaSkew, Options: model.DefaultQuotaSkewOptions()}

		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, CollectionAppConfig), mtest.FirstBatch,
			toDocument(mt.T, doc),
		))

		options, err := s.LoadQuotaSkewConfig(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, model.DefaultQuotaSkewOptions(), options)
	})

	mt.Run("missing timing document", func(mt *mtest.T) {
		s := newMockMongoStore(mt, 50)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, CollectionAppConfig), mtest.FirstBatch))

		timing, err := s.LoadTimingConfig(context.Background())
		require.NoError(mt, err)
		assert.Nil(mt, timing)
	})
}
