package mongodb

import (
	"context"
	"errors"
	"time"

	"classifieds/internal/domain/posting"
	"classifieds/internal/domain/user"
	"classifieds/internal/repository"
	"classifieds/internal/search"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	postings *mongo.Collection
	users    *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		postings: db.Collection(postingsCollection),
		users:    db.Collection(usersCollection),
	}
}

var withoutApplications = bson.M{"applications": 0}

func (s *Store) Insert(ctx context.Context, p posting.Posting) error {
	d := toPostingDoc(p)
	d.Applications = nil
	d.ApplicationCount = 0
	_, err := s.postings.InsertOne(ctx, d)
	return err
}

func (s *Store) FindByID(ctx context.Context, kind posting.Kind, id uuid.UUID) (posting.Posting, error) {
	var d postingDoc
	err := s.postings.FindOne(ctx, byID(kind, id), options.FindOne().SetProjection(withoutApplications)).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return posting.Posting{}, repository.ErrPostingNotFound
		}
		return posting.Posting{}, err
	}
	return d.toDomain()
}

func (s *Store) Find(ctx context.Context, q search.Query) ([]posting.Posting, int64, error) {
	filter, err := scoped(q.Kind, q.Filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.postings.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []posting.Posting{}, 0, nil
	}

	flags, sort, err := sortStages(q.Sort)
	if err != nil {
		return nil, 0, err
	}
	project := bson.M{"applications": 0}
	for _, f := range flags {
		project[f.Key] = 0
	}
	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	if len(flags) > 0 {
		pipeline = append(pipeline,
			bson.D{{Key: "$addFields", Value: flags}},
			bson.D{{Key: "$sort", Value: sort}},
		)
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$skip", Value: int64(q.Page.Offset())}},
		bson.D{{Key: "$limit", Value: int64(q.Page.Limit)}},
		bson.D{{Key: "$project", Value: project}},
	)

	cur, err := s.postings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := make([]posting.Posting, 0, q.Page.Limit)
	for cur.Next(ctx) {
		var d postingDoc
		if err := cur.Decode(&d); err != nil {
			return nil, 0, err
		}
		p, err := d.toDomain()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) Count(ctx context.Context, kind posting.Kind, filter search.And) (int64, error) {
	f, err := scoped(kind, filter)
	if err != nil {
		return 0, err
	}
	return s.postings.CountDocuments(ctx, f)
}

func (s *Store) UpdateContent(ctx context.Context, kind posting.Kind, id uuid.UUID, expectedVersion int64, upd repository.ContentUpdate) error {
	set := bson.M{
		"content":   toContentDoc(upd.Content),
		"updatedAt": upd.UpdatedAt.UTC(),
	}
	if upd.ModerationStatus != nil {
		set["moderationStatus"] = string(*upd.ModerationStatus)
	}

	filter := byID(kind, id)
	filter["version"] = expectedVersion
	res, err := s.postings.UpdateOne(ctx, filter, bson.M{"$set": set, "$inc": bson.M{"version": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return s.missOr(ctx, kind, id, repository.ErrVersionConflict)
}

func (s *Store) SetModeration(ctx context.Context, kind posting.Kind, ids []uuid.UUID, d posting.Decision) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}

	set := bson.M{
		"moderationStatus": string(d.Status),
		"moderatedBy":      d.By.String(),
		"moderatedAt":      d.At.UTC(),
		"updatedAt":        d.At.UTC(),
	}
	if d.Notes != nil {
		set["moderationNotes"] = *d.Notes
	}
	if d.CoupledStatus != nil {
		set["status"] = string(*d.CoupledStatus)
	}

	res, err := s.postings.UpdateMany(ctx,
		bson.M{"kind": string(kind), "_id": bson.M{"$in": strs}},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (s *Store) SetStatus(ctx context.Context, kind posting.Kind, id uuid.UUID, status posting.Status, at time.Time) error {
	res, err := s.postings.UpdateOne(ctx, byID(kind, id), bson.M{
		"$set": bson.M{"status": string(status), "updatedAt": at.UTC()},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrPostingNotFound
	}
	return nil
}

func (s *Store) IncrementViews(ctx context.Context, kind posting.Kind, id uuid.UUID) error {
	res, err := s.postings.UpdateOne(ctx, byID(kind, id), bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrPostingNotFound
	}
	return nil
}

func (s *Store) AddReport(ctx context.Context, kind posting.Kind, id uuid.UUID, r posting.Report) error {
	filter := byID(kind, id)
	filter["reports.reportedBy"] = bson.M{"$ne": r.ReportedBy.String()}
	res, err := s.postings.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"reports": toReportDoc(r)}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return s.missOr(ctx, kind, id, repository.ErrDuplicateReport)
}

func (s *Store) Delete(ctx context.Context, kind posting.Kind, id uuid.UUID) error {
	res, err := s.postings.DeleteOne(ctx, byID(kind, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrPostingNotFound
	}
	return nil
}

// missOr distinguishes a missing posting from a failed condition on an existing one.
func (s *Store) missOr(ctx context.Context, kind posting.Kind, id uuid.UUID, conditionErr error) error {
	n, err := s.postings.CountDocuments(ctx, byID(kind, id), options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrPostingNotFound
	}
	return conditionErr
}

func byID(kind posting.Kind, id uuid.UUID) bson.M {
	return bson.M{"_id": id.String(), "kind": string(kind)}
}

func scoped(kind posting.Kind, filter search.And) (bson.M, error) {
	f, err := toFilter(filter)
	if err != nil {
		return nil, err
	}
	if len(f) == 0 {
		return bson.M{"kind": string(kind)}, nil
	}
	return bson.M{"$and": bson.A{bson.M{"kind": string(kind)}, f}}, nil
}

// Applications returns the ApplicationRepository view of the store.
func (s *Store) Applications() repository.ApplicationRepository {
	return applicationStore{postings: s.postings}
}

type applicationStore struct {
	postings *mongo.Collection
}

func (a applicationStore) Append(ctx context.Context, app posting.Application) error {
	filter := byID(posting.KindJob, app.PostingID)
	filter["applications.applicantId"] = bson.M{"$ne": app.ApplicantID.String()}
	res, err := a.postings.UpdateOne(ctx, filter, bson.M{
		"$push": bson.M{"applications": toApplicationDoc(app)},
		"$inc":  bson.M{"applicationCount": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return (&Store{postings: a.postings}).missOr(ctx, posting.KindJob, app.PostingID, repository.ErrDuplicateApplication)
}

func (a applicationStore) ListByPosting(ctx context.Context, jobID uuid.UUID) ([]posting.Application, error) {
	var d struct {
		Applications []applicationDoc `bson:"applications"`
	}
	err := a.postings.FindOne(ctx, byID(posting.KindJob, jobID),
		options.FindOne().SetProjection(bson.M{"applications": 1}),
	).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []posting.Application{}, nil
		}
		return nil, err
	}
	return applicationsToDomain(d.Applications)
}

func (a applicationStore) ListByApplicant(ctx context.Context, applicant uuid.UUID) ([]posting.Application, error) {
	match := bson.D{{Key: "$match", Value: bson.M{"applications.applicantId": applicant.String()}}}
	cur, err := a.postings.Aggregate(ctx, mongo.Pipeline{
		match,
		{{Key: "$unwind", Value: "$applications"}},
		match,
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$applications"}}},
		{{Key: "$sort", Value: bson.D{{Key: "appliedAt", Value: -1}, {Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []applicationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return applicationsToDomain(docs)
}

func (a applicationStore) UpdateStatus(ctx context.Context, jobID, applicationID uuid.UUID, status posting.ApplicationStatus, notes *string, at time.Time) (posting.Application, error) {
	set := bson.M{
		"applications.$.status":    string(status),
		"applications.$.updatedAt": at.UTC(),
	}
	if notes != nil {
		set["applications.$.notes"] = *notes
	}

	filter := byID(posting.KindJob, jobID)
	filter["applications._id"] = applicationID.String()

	var d struct {
		Applications []applicationDoc `bson:"applications"`
	}
	err := a.postings.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"applications": bson.M{"$elemMatch": bson.M{"_id": applicationID.String()}}}),
	).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return posting.Application{}, repository.ErrApplicationNotFound
		}
		return posting.Application{}, err
	}
	if len(d.Applications) == 0 {
		return posting.Application{}, repository.ErrApplicationNotFound
	}
	return d.Applications[0].toDomain()
}

func applicationsToDomain(docs []applicationDoc) ([]posting.Application, error) {
	out := make([]posting.Application, 0, len(docs))
	for _, d := range docs {
		app, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, nil
}

// Users returns the user.Repository view of the store.
func (s *Store) Users() user.Repository {
	return userStore{users: s.users}
}

type userStore struct {
	users *mongo.Collection
}

func (u userStore) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var d userDoc
	if err := u.users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return d.toDomain()
}

func (u userStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.User, error) {
	out := make(map[uuid.UUID]user.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}

	cur, err := u.users.Find(ctx, bson.M{"_id": bson.M{"$in": strs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var d userDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		usr, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out[usr.ID] = usr
	}
	return out, cur.Err()
}

func (u userStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := u.users.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}
