package mongo

import (
	"chat-presence/domain"
	"chat-presence/errors"
	"chat-presence/repositories"
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCounterID = "messages"

// MessageRepository orders messages with a "seq" field taken from a counters document,
// the usual MongoDB auto-increment pattern.
type MessageRepository struct {
	DB *mongo.Database
}

func NewMessageRepository(ctx context.Context, db *mongo.Database) (*MessageRepository, error) {
	_, err := db.Collection(messageCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "seq", Value: 1}}},
		{Keys: bson.D{{Key: "to", Value: 1}, {Key: "seq", Value: 1}}},
		{Keys: bson.D{{Key: "from", Value: 1}, {Key: "seq", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("create message indexes: %w", err)
	}
	return &MessageRepository{DB: db}, nil
}

func (r *MessageRepository) StoreMessage(ctx context.Context, message domain.Message) (domain.Message, error) {
	last, err := r.reserve(ctx, 1)
	if err != nil {
		return domain.Message{}, err
	}
	message.ID = uuid.NewString()
	message.Seq = last
	if _, err := r.collection().InsertOne(ctx, message); err != nil {
		return domain.Message{}, storeError("store message", err)
	}
	return message, nil
}

// StoreMessages reserves one contiguous seq range for the whole batch.
func (r *MessageRepository) StoreMessages(ctx context.Context, messages []domain.Message) ([]domain.Message, error) {
	if len(messages) == 0 {
		return nil, nil
	}
	last, err := r.reserve(ctx, int64(len(messages)))
	if err != nil {
		return nil, err
	}
	first := last - int64(len(messages)) + 1
	stored := lo.Map(messages, func(m domain.Message, i int) domain.Message {
		m.ID = uuid.NewString()
		m.Seq = first + int64(i)
		return m
	})
	docs := lo.Map(stored, func(m domain.Message, _ int) interface{} { return m })
	if _, err := r.collection().InsertMany(ctx, docs); err != nil {
		return nil, storeError("store messages", err)
	}
	return stored, nil
}

func (r *MessageRepository) FindMessages(ctx context.Context, filter repositories.MessageFilter) ([]domain.Message, error) {
	cursor, err := r.collection().Find(ctx, messageFilter(filter),
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, storeError("find messages", err)
	}
	defer cursor.Close(ctx)

	messages := make([]domain.Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, storeError("find messages", err)
	}
	return messages, nil
}

func (r *MessageRepository) GetMessage(ctx context.Context, id string) (domain.Message, error) {
	var message domain.Message
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return message, fmt.Errorf("message %q: %w", id, errors.ErrNotFound)
	}
	return message, storeError("get message", err)
}

func (r *MessageRepository) UpdateMessage(ctx context.Context, id string, patch repositories.MessagePatch) (domain.Message, error) {
	var updated domain.Message
	err := r.collection().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": patchDocument(patch)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return updated, fmt.Errorf("message %q: %w", id, errors.ErrNotFound)
	}
	return updated, storeError("update message", err)
}

func (r *MessageRepository) DeleteMessage(ctx context.Context, id string) error {
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeError("delete message", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("message %q: %w", id, errors.ErrNotFound)
	}
	return nil
}

// reserve bumps the message counter by n and returns the last reserved seq.
func (r *MessageRepository) reserve(ctx context.Context, n int64) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.DB.Collection(counterCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": messageCounterID},
		bson.M{"$inc": bson.M{"seq": n}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, storeError("reserve message sequence", err)
	}
	return counter.Seq, nil
}

func (r *MessageRepository) collection() *mongo.Collection {
	return r.DB.Collection(messageCollection)
}

func messageFilter(filter repositories.MessageFilter) bson.M {
	doc := bson.M{}
	if filter.To != nil {
		doc["to"] = *filter.To
	}
	if filter.From != nil {
		doc["from"] = *filter.From
	}
	return doc
}

func patchDocument(patch repositories.MessagePatch) bson.M {
	return bson.M{
		"from": patch.From,
		"to":   patch.To,
		"text": patch.Text,
		"type": patch.Kind,
		"time": patch.Time,
	}
}
