package mongo

import (
	"chat-presence/domain"
	"chat-presence/errors"
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ParticipantRepository relies on a unique index on name for registration uniqueness.
type ParticipantRepository struct {
	DB *mongo.Database
}

// NewParticipantRepository ensures the unique name index exists.
func NewParticipantRepository(ctx context.Context, db *mongo.Database) (*ParticipantRepository, error) {
	_, err := db.Collection(participantCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("participants_name_unique"),
	})
	if err != nil {
		return nil, fmt.Errorf("create participant index: %w", err)
	}
	return &ParticipantRepository{DB: db}, nil
}

func (r *ParticipantRepository) CreateParticipant(ctx context.Context, participant domain.Participant) error {
	participant.LastSeenAt = domain.TruncateSeen(participant.LastSeenAt)
	_, err := r.collection().InsertOne(ctx, participant)
	if mongo.IsDuplicateKeyError(err) {
		return errors.ErrConflict
	}
	return storeError("create participant", err)
}

func (r *ParticipantRepository) GetParticipant(ctx context.Context, name string) (domain.Participant, error) {
	var participant domain.Participant
	err := r.collection().FindOne(ctx, bson.M{"name": name}).Decode(&participant)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return participant, fmt.Errorf("participant %q: %w", name, errors.ErrNotFound)
	}
	return participant, storeError("get participant", err)
}

func (r *ParticipantRepository) TouchParticipant(ctx context.Context, name string, at time.Time) error {
	res, err := r.collection().UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$set": bson.M{"lastStatus": domain.TruncateSeen(at)}},
	)
	if err != nil {
		return storeError("touch participant", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("participant %q: %w", name, errors.ErrNotFound)
	}
	return nil
}

func (r *ParticipantRepository) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	return r.find(ctx, bson.M{})
}

func (r *ParticipantRepository) ListInactive(ctx context.Context, cutoff time.Time) ([]domain.Participant, error) {
	return r.find(ctx, inactiveFilter(cutoff))
}

// DeleteInactive applies the cutoff again server-side so a participant refreshed
// after ListInactive survives.
func (r *ParticipantRepository) DeleteInactive(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.collection().DeleteMany(ctx, inactiveFilter(cutoff))
	if err != nil {
		return 0, storeError("delete inactive participants", err)
	}
	return int(res.DeletedCount), nil
}

func (r *ParticipantRepository) find(ctx context.Context, filter bson.M) ([]domain.Participant, error) {
	cursor, err := r.collection().Find(ctx, filter)
	if err != nil {
		return nil, storeError("list participants", err)
	}
	defer cursor.Close(ctx)

	participants := make([]domain.Participant, 0)
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, storeError("list participants", err)
	}
	return participants, nil
}

func (r *ParticipantRepository) collection() *mongo.Collection {
	return r.DB.Collection(participantCollection)
}

func inactiveFilter(cutoff time.Time) bson.M {
	cutoff = domain.TruncateSeen(cutoff)
	return bson.M{"lastStatus": bson.M{"$lte": cutoff}}
}
