package requeststore

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/ykhdr/rainbow-table/internal/messages/request"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	RequestCollection = "requests"
)

var NotFoundErr = errors.New("not found")

type RequestStore interface {
	Get(ctx context.Context, id request.Id) (*request.Info, error)
	List(ctx context.Context) ([]*request.Info, error)
	Save(ctx context.Context, req *request.Info) error
	Delete(ctx context.Context, id request.Id) error
}

// requestStore caches requests in memory and, when database is set, writes
// them through to MongoDB.
type requestStore struct {
	data     map[request.Id]*request.Info
	database *mongo.Database
	m        sync.RWMutex
}

// NewRequestStore returns a store backed by database, or a memory-only store
// when database is nil.
func NewRequestStore(database *mongo.Database) RequestStore {
	return &requestStore{
		data:     make(map[request.Id]*request.Info),
		database: database,
	}
}

func (s *requestStore) collection() *mongo.Collection {
	return s.database.Collection(RequestCollection)
}

func (s *requestStore) Get(ctx context.Context, id request.Id) (*request.Info, error) {
	s.m.RLock()
	req, exists := s.data[id]
	s.m.RUnlock()
	if exists {
		return req.Copy(), nil
	}
	if s.database == nil {
		return nil, NotFoundErr
	}

	var r request.Info
	if err := s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NotFoundErr
		}
		return nil, errors.Wrap(err, "error loading request")
	}
	s.m.Lock()
	s.data[id] = &r
	s.m.Unlock()
	return r.Copy(), nil
}

func (s *requestStore) Save(ctx context.Context, req *request.Info) error {
	s.m.Lock()
	s.data[req.ID] = req.Copy()
	s.m.Unlock()
	if s.database == nil {
		return nil
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection().ReplaceOne(ctx, bson.M{"_id": req.ID}, req, opts); err != nil {
		return errors.Wrap(err, "error saving request")
	}
	return nil
}

func (s *requestStore) Delete(ctx context.Context, id request.Id) error {
	s.m.Lock()
	delete(s.data, id)
	s.m.Unlock()
	if s.database == nil {
		return nil
	}
	if _, err := s.collection().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "error deleting request")
	}
	return nil
}

// List returns all requests, oldest first.
func (s *requestStore) List(ctx context.Context) ([]*request.Info, error) {
	if s.database == nil {
		s.m.RLock()
		result := make([]*request.Info, 0, len(s.data))
		for _, req := range s.data {
			result = append(result, req.Copy())
		}
		s.m.RUnlock()
		sortByCreation(result)
		return result, nil
	}

	cursor, err := s.collection().Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error listing requests")
	}
	defer func() { _ = cursor.Close(ctx) }()
	var result []*request.Info
	s.m.Lock()
	defer s.m.Unlock()
	for cursor.Next(ctx) {
		var req request.Info
		if err := cursor.Decode(&req); err != nil {
			return nil, errors.Wrap(err, "error listing requests")
		}
		result = append(result, &req)
		s.data[req.ID] = req.Copy()
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "error listing requests")
	}
	sortByCreation(result)
	return result, nil
}

func sortByCreation(reqs []*request.Info) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
	})
}
