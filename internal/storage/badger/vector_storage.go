package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/stackscout/internal/interfaces"
	"github.com/ternarybob/stackscout/internal/models"
)

// VectorStorage keeps embedded documents in badgerhold and answers
// nearest-neighbour queries by scanning one collection.
type VectorStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewVectorStorage creates a new VectorStorage instance
func NewVectorStorage(db *BadgerDB, logger arbor.ILogger) *VectorStorage {
	return &VectorStorage{
		db:     db,
		logger: logger,
	}
}

// ReplaceCollection swaps the collection contents in one transaction
func (s *VectorStorage) ReplaceCollection(ctx context.Context, collection *models.Collection, docs []*models.VectorDocument) error {
	if collection == nil || collection.Name == "" {
		return fmt.Errorf("collection name is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	store := s.db.Store()
	err := store.Badger().Update(func(tx *badgerdb.Txn) error {
		if err := store.TxDeleteMatching(tx, &models.VectorDocument{}, badgerhold.Where("Collection").Eq(collection.Name)); err != nil {
			return fmt.Errorf("failed to clear collection: %w", err)
		}
		for _, doc := range docs {
			if doc.ID == "" {
				return fmt.Errorf("document ID is required")
			}
			doc.Collection = collection.Name
			if err := store.TxUpsert(tx, doc.ID, doc); err != nil {
				return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
			}
		}
		collection.DocumentCount = len(docs)
		return store.TxUpsert(tx, collection.Name, collection)
	})
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("collection", collection.Name).
		Int("documents", len(docs)).
		Msg("Collection replaced")
	return nil
}

func (s *VectorStorage) ListCollections(ctx context.Context) ([]*models.Collection, error) {
	var collections []models.Collection
	if err := s.db.Store().Find(&collections, nil); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	result := make([]*models.Collection, len(collections))
	for i := range collections {
		result[i] = &collections[i]
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *VectorStorage) GetCollection(ctx context.Context, name string) (*models.Collection, error) {
	var collection models.Collection
	if err := s.db.Store().Get(name, &collection); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrCollectionNotFound, name)
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &collection, nil
}

func (s *VectorStorage) DeleteCollection(ctx context.Context, name string) error {
	store := s.db.Store()
	return store.Badger().Update(func(tx *badgerdb.Txn) error {
		if err := store.TxDeleteMatching(tx, &models.VectorDocument{}, badgerhold.Where("Collection").Eq(name)); err != nil {
			return fmt.Errorf("failed to delete documents: %w", err)
		}
		if err := store.TxDelete(tx, name, &models.Collection{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
		return nil
	})
}

// SimilaritySearch ranks the collection's documents by squared L2 distance
// to query. Documents whose embedding length differs from the query are skipped.
func (s *VectorStorage) SimilaritySearch(ctx context.Context, collection string, query []float32, k int) ([]models.ScoredDocument, error) {
	if _, err := s.GetCollection(ctx, collection); err != nil {
		return nil, err
	}
	if k <= 0 || len(query) == 0 {
		return []models.ScoredDocument{}, nil
	}

	var docs []models.VectorDocument
	if err := s.db.Store().Find(&docs, badgerhold.Where("Collection").Eq(collection)); err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	scored := make([]models.ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) != len(query) {
			continue
		}
		scored = append(scored, models.ScoredDocument{
			Document: doc,
			Score:    SquaredL2(query, doc.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score == scored[j].Score {
			return scored[i].Document.ID < scored[j].Document.ID
		}
		return scored[i].Score < scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (s *VectorStorage) ListDocuments(ctx context.Context, collection string, limit int) ([]*models.VectorDocument, error) {
	query := badgerhold.Where("Collection").Eq(collection).SortBy("ID")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var docs []models.VectorDocument
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	result := make([]*models.VectorDocument, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

// SquaredL2 returns the squared Euclidean distance of two equal-length vectors
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

var _ interfaces.VectorStorage = (*VectorStorage)(nil)
