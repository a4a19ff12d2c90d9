package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/datagateway"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// Make sure to implement the datagateway interfaces
var (
	_ datagateway.TicDataGateway         = (*Repository)(nil)
	_ datagateway.IndexerInfoDataGateway = (*Repository)(nil)
)

// Repository is the in-memory comment store. A single logical writer applies
// block batches between Begin and Commit while readers observe the
// last-committed state; an undo journal restores it on Rollback.
//
// State is scoped to one instance with explicit lifecycle, so independent
// indexer instances can coexist in one process.
type Repository struct {
	mu sync.RWMutex

	comments         map[common.Hash]*entity.CommentRecord
	commentsByTopic  map[string][]common.Hash
	commentsByAuthor map[common.Address][]common.Hash
	markers          map[common.Hash]*entity.DeletionMarker
	blocks           map[int64]*entity.IndexedBlock
	latestHeight     int64

	state *entity.IndexerState

	inTx bool
	undo []func()
}

func NewRepository() *Repository {
	return &Repository{
		comments:         make(map[common.Hash]*entity.CommentRecord),
		commentsByTopic:  make(map[string][]common.Hash),
		commentsByAuthor: make(map[common.Address][]common.Hash),
		markers:          make(map[common.Hash]*entity.DeletionMarker),
		blocks:           make(map[int64]*entity.IndexedBlock),
		latestHeight:     -1,
	}
}

func (r *Repository) Begin(_ context.Context) error {
	r.mu.Lock()
	r.inTx = true
	r.undo = r.undo[:0]
	return nil
}

func (r *Repository) Commit(_ context.Context) error {
	if !r.inTx {
		return errors.Wrap(errs.InternalError, "commit without transaction")
	}
	r.undo = r.undo[:0]
	r.inTx = false
	r.mu.Unlock()
	return nil
}

// Rollback reverts all writes since Begin. Calling it after Commit is a
// no-op, so it can be deferred unconditionally.
func (r *Repository) Rollback(_ context.Context) error {
	if !r.inTx {
		return nil
	}
	for i := len(r.undo) - 1; i >= 0; i-- {
		r.undo[i]()
	}
	r.undo = r.undo[:0]
	r.inTx = false
	r.mu.Unlock()
	return nil
}

// lockWrite takes the write lock for a standalone write when no transaction
// is open. Within a transaction the lock is already held.
func (r *Repository) lockWrite() (unlock func()) {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *Repository) journal(fn func()) {
	if r.inTx {
		r.undo = append(r.undo, fn)
	}
}

func (r *Repository) CreateCommentRecords(_ context.Context, records []*entity.CommentRecord) error {
	defer r.lockWrite()()

	for _, record := range records {
		if _, ok := r.comments[record.Id]; ok {
			// idempotent replay
			continue
		}
		stored := *record
		stored.Deleted = false
		if _, ok := r.markers[record.Id]; ok {
			// a buffered marker was waiting for this record
			stored.Deleted = true
		}

		topicKey := stored.TopicKey()
		r.comments[record.Id] = &stored
		if stored.Valid {
			r.commentsByTopic[topicKey] = append(r.commentsByTopic[topicKey], record.Id)
			r.commentsByAuthor[stored.Author] = append(r.commentsByAuthor[stored.Author], record.Id)
		}

		id := record.Id
		valid := stored.Valid
		author := stored.Author
		r.journal(func() {
			delete(r.comments, id)
			if valid {
				r.commentsByTopic[topicKey] = deleteId(r.commentsByTopic[topicKey], id)
				r.commentsByAuthor[author] = deleteId(r.commentsByAuthor[author], id)
			}
		})
	}
	return nil
}

func (r *Repository) CreateDeletionMarkers(_ context.Context, markers []*entity.DeletionMarker) error {
	defer r.lockWrite()()

	for _, marker := range markers {
		if _, ok := r.markers[marker.EthscriptionId]; ok {
			// repeated burns of the same id are no-ops
			continue
		}
		stored := *marker
		r.markers[marker.EthscriptionId] = &stored

		wasDeleted := false
		if record, ok := r.comments[marker.EthscriptionId]; ok {
			wasDeleted = record.Deleted
			record.Deleted = true
		}

		id := marker.EthscriptionId
		r.journal(func() {
			delete(r.markers, id)
			if record, ok := r.comments[id]; ok {
				record.Deleted = wasDeleted
			}
		})
	}
	return nil
}

func (r *Repository) CreateIndexedBlock(_ context.Context, block *entity.IndexedBlock) error {
	defer r.lockWrite()()

	stored := *block
	r.blocks[block.Height] = &stored
	prevLatest := r.latestHeight
	if block.Height > r.latestHeight {
		r.latestHeight = block.Height
	}

	height := block.Height
	r.journal(func() {
		delete(r.blocks, height)
		r.latestHeight = prevLatest
	})
	return nil
}

func (r *Repository) DeleteCommentRecordsSinceHeight(_ context.Context, height int64) error {
	defer r.lockWrite()()

	for id, record := range r.comments {
		if record.Sequence.BlockHeight < height {
			continue
		}
		removed := record
		topicKey := removed.TopicKey()
		delete(r.comments, id)
		if removed.Valid {
			r.commentsByTopic[topicKey] = deleteId(r.commentsByTopic[topicKey], id)
			r.commentsByAuthor[removed.Author] = deleteId(r.commentsByAuthor[removed.Author], id)
		}

		r.journal(func() {
			r.comments[removed.Id] = removed
			if removed.Valid {
				r.commentsByTopic[topicKey] = append(r.commentsByTopic[topicKey], removed.Id)
				r.commentsByAuthor[removed.Author] = append(r.commentsByAuthor[removed.Author], removed.Id)
			}
		})
	}
	return nil
}

func (r *Repository) DeleteDeletionMarkersSinceHeight(_ context.Context, height int64) error {
	defer r.lockWrite()()

	for id, marker := range r.markers {
		if marker.Sequence.BlockHeight < height {
			continue
		}
		removed := marker
		delete(r.markers, id)
		if record, ok := r.comments[id]; ok {
			record.Deleted = false
		}

		r.journal(func() {
			r.markers[removed.EthscriptionId] = removed
			if record, ok := r.comments[removed.EthscriptionId]; ok {
				record.Deleted = true
			}
		})
	}
	return nil
}

func (r *Repository) DeleteIndexedBlocksSinceHeight(_ context.Context, height int64) error {
	defer r.lockWrite()()

	prevLatest := r.latestHeight
	removed := make([]*entity.IndexedBlock, 0)
	for h, block := range r.blocks {
		if h >= height {
			removed = append(removed, block)
			delete(r.blocks, h)
		}
	}
	if r.latestHeight >= height {
		r.latestHeight = height - 1
		for h := range r.blocks {
			if h > r.latestHeight {
				r.latestHeight = h
			}
		}
	}

	r.journal(func() {
		for _, block := range removed {
			r.blocks[block.Height] = block
		}
		r.latestHeight = prevLatest
	})
	return nil
}

func (r *Repository) GetLatestIndexedBlock(_ context.Context) (*entity.IndexedBlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	block, ok := r.blocks[r.latestHeight]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	copied := *block
	return &copied, nil
}

func (r *Repository) GetIndexedBlockByHeight(_ context.Context, height int64) (*entity.IndexedBlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	block, ok := r.blocks[height]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	copied := *block
	return &copied, nil
}

func (r *Repository) GetCommentRecord(_ context.Context, id common.Hash) (*entity.CommentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.comments[id]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return copyRecord(record), nil
}

func (r *Repository) GetCommentRecordsByIds(_ context.Context, ids []common.Hash) (map[common.Hash]*entity.CommentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[common.Hash]*entity.CommentRecord)
	for _, id := range ids {
		if record, ok := r.comments[id]; ok {
			result[id] = copyRecord(record)
		}
	}
	return result, nil
}

func (r *Repository) GetCommentRecordsByTopic(_ context.Context, topicKey string, limit, offset int32) ([]*entity.CommentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := lo.Map(r.commentsByTopic[topicKey], func(id common.Hash, _ int) *entity.CommentRecord {
		return copyRecord(r.comments[id])
	})
	return paginate(sortBySequence(records), limit, offset), nil
}

func (r *Repository) GetCommentRecordsByAuthor(_ context.Context, author common.Address, limit, offset int32) ([]*entity.CommentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := lo.Map(r.commentsByAuthor[author], func(id common.Hash, _ int) *entity.CommentRecord {
		return copyRecord(r.comments[id])
	})
	return paginate(sortBySequence(records), limit, offset), nil
}

func (r *Repository) CountCommentRecords(_ context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := uint64(0)
	for _, record := range r.comments {
		if record.Valid {
			count++
		}
	}
	return count, nil
}

func (r *Repository) GetLatestIndexerState(_ context.Context) (entity.IndexerState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.state == nil {
		return entity.IndexerState{}, errors.WithStack(errs.NotFound)
	}
	return *r.state, nil
}

func (r *Repository) SetIndexerState(_ context.Context, state entity.IndexerState) error {
	defer r.lockWrite()()

	r.state = &state
	return nil
}

func copyRecord(record *entity.CommentRecord) *entity.CommentRecord {
	copied := *record
	copied.TopicParts = slices.Clone(record.TopicParts)
	return &copied
}

func sortBySequence(records []*entity.CommentRecord) []*entity.CommentRecord {
	slices.SortFunc(records, func(a, b *entity.CommentRecord) int {
		return a.Sequence.Cmp(b.Sequence)
	})
	return records
}

func paginate(records []*entity.CommentRecord, limit, offset int32) []*entity.CommentRecord {
	if offset > 0 {
		if int(offset) >= len(records) {
			return []*entity.CommentRecord{}
		}
		records = records[offset:]
	}
	if limit >= 0 && int(limit) < len(records) {
		records = records[:limit]
	}
	return records
}

func deleteId(ids []common.Hash, id common.Hash) []common.Hash {
	return slices.DeleteFunc(ids, func(candidate common.Hash) bool {
		return candidate == id
	})
}
