package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"styleprint/internal/models"
	"styleprint/internal/textutil"
)

const (
	databaseName           = "styleprint"
	itemsCollection        = "items"
	shinglesCollection     = "shingles"
	signaturesCollection   = "signatures"
	similaritiesCollection = "similarities"
)

// Mongo is the document-store-backed Store implementation:
// delete-then-insert for shingles/signatures, plain append for
// similarities.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongo connects to endpoint without blocking on reachability;
// callers must call WaitUntilReady before relying on the store.
func NewMongo(ctx context.Context, endpoint string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	return &Mongo{client: client, db: client.Database(databaseName)}, nil
}

func (m *Mongo) WaitUntilReady(ctx context.Context) error {
	ticker := time.NewTicker(ReadyPollInterval)
	defer ticker.Stop()
	for {
		if err := m.client.Ping(ctx, nil); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Mongo) InsertItems(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, len(items))
	for i, it := range items {
		it.Handle = textutil.CaseFold(it.Handle)
		docs[i] = it
	}
	_, err := m.db.Collection(itemsCollection).InsertMany(ctx, docs)
	return err
}

func (m *Mongo) LatestItem(ctx context.Context, handle string) (models.Item, bool, error) {
	filter := bson.D{{Key: "handle", Value: textutil.CaseFold(handle)}}
	opts := options.FindOne().SetSort(bson.D{{Key: "item_id", Value: -1}})

	var item models.Item
	err := m.db.Collection(itemsCollection).FindOne(ctx, filter, opts).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Item{}, false, nil
	}
	if err != nil {
		return models.Item{}, false, err
	}
	return item, true, nil
}

func (m *Mongo) ItemsOf(ctx context.Context, handle string) ([]models.Item, error) {
	filter := bson.D{{Key: "handle", Value: textutil.CaseFold(handle)}}
	cur, err := m.db.Collection(itemsCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.Item
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (m *Mongo) ReplaceShingles(ctx context.Context, handle string, shingles []models.Shingle) error {
	handle = textutil.CaseFold(handle)
	coll := m.db.Collection(shinglesCollection)

	if _, err := coll.DeleteMany(ctx, bson.D{{Key: "handle", Value: handle}}); err != nil {
		return fmt.Errorf("store: delete shingles for %s: %w", handle, err)
	}

	for start := 0; start < len(shingles); start += ShingleInsertChunkSize {
		end := start + ShingleInsertChunkSize
		if end > len(shingles) {
			end = len(shingles)
		}
		chunk := shingles[start:end]
		docs := make([]interface{}, len(chunk))
		for i, s := range chunk {
			s.Handle = handle
			docs[i] = s
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("store: insert shingles for %s: %w", handle, err)
		}
	}
	return nil
}

func (m *Mongo) ShinglesOf(ctx context.Context, handle string, minLen, maxLen, limit int) ([]models.Shingle, error) {
	filter := bson.D{
		{Key: "handle", Value: textutil.CaseFold(handle)},
		{Key: "length", Value: bson.D{{Key: "$gte", Value: minLen}, {Key: "$lte", Value: maxLen}}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "count", Value: -1}, {Key: "text", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := m.db.Collection(shinglesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var shingles []models.Shingle
	if err := cur.All(ctx, &shingles); err != nil {
		return nil, err
	}
	return shingles, nil
}

func (m *Mongo) ReplaceSignature(ctx context.Context, sig models.Signature) error {
	handle := textutil.CaseFold(sig.Handle)
	sig.Handle = handle
	coll := m.db.Collection(signaturesCollection)

	if _, err := coll.DeleteOne(ctx, bson.D{{Key: "handle", Value: handle}}); err != nil {
		return fmt.Errorf("store: delete signature for %s: %w", handle, err)
	}
	if _, err := coll.InsertOne(ctx, sig); err != nil {
		return fmt.Errorf("store: insert signature for %s: %w", handle, err)
	}
	return nil
}

func (m *Mongo) SignatureOf(ctx context.Context, handle string) (models.Signature, bool, error) {
	filter := bson.D{{Key: "handle", Value: textutil.CaseFold(handle)}}
	var sig models.Signature
	err := m.db.Collection(signaturesCollection).FindOne(ctx, filter).Decode(&sig)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Signature{}, false, nil
	}
	if err != nil {
		return models.Signature{}, false, err
	}
	return sig, true, nil
}

func (m *Mongo) AllSignatures(ctx context.Context) ([]models.Signature, error) {
	cur, err := m.db.Collection(signaturesCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sigs []models.Signature
	if err := cur.All(ctx, &sigs); err != nil {
		return nil, err
	}
	return sigs, nil
}

func (m *Mongo) InsertSimilarities(ctx context.Context, rows []models.Similarity) error {
	if len(rows) == 0 {
		return nil
	}
	docs := make([]interface{}, len(rows))
	for i, r := range rows {
		docs[i] = r
	}
	_, err := m.db.Collection(similaritiesCollection).InsertMany(ctx, docs)
	return err
}

func (m *Mongo) AllSimilarities(ctx context.Context) ([]models.Similarity, error) {
	cur, err := m.db.Collection(similaritiesCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Similarity
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *Mongo) SimilaritiesOf(ctx context.Context, handle string) ([]models.Similarity, error) {
	handle = textutil.CaseFold(handle)
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "source_handle", Value: handle}},
		bson.D{{Key: "target_handle", Value: handle}},
	}}}
	cur, err := m.db.Collection(similaritiesCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Similarity
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
