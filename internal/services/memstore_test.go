package services

import (
	"context"
	"math"
	"sort"

	"github.com/epeers/bankruptcy/internal/models"
	"github.com/epeers/bankruptcy/internal/repository"
	"github.com/jackc/pgx/v5"
)

// memState is one snapshot of the two tables
type memState struct {
	companies   []models.Company
	ratios      []models.FinancialRatio
	nextRatioID int64
}

func (s memState) clone() memState {
	return memState{
		companies:   append([]models.Company(nil), s.companies...),
		ratios:      append([]models.FinancialRatio(nil), s.ratios...),
		nextRatioID: s.nextRatioID,
	}
}

// memStore is an in-memory stand-in for the PostgreSQL repository with
// nested-transaction semantics: a savepoint's writes reach its parent only on
// Commit, and the outer transaction's writes reach the store only on Commit.
type memStore struct {
	committed memState

	insertCompaniesErr error
	insertRatiosErr    error

	locks   int
	commits int
	reads   int
}

func newMemStore() *memStore {
	return &memStore{committed: memState{nextRatioID: 1}}
}

type memTx struct {
	pgx.Tx
	store  *memStore
	parent *memTx
	state  memState
	closed bool
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) {
	if t.closed {
		return nil, pgx.ErrTxClosed
	}
	return &memTx{store: t.store, parent: t, state: t.state.clone()}, nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	if t.parent != nil {
		t.parent.state = t.state
		return nil
	}
	t.store.committed = t.state
	t.store.commits++
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	return nil
}

func (s *memStore) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return &memTx{store: s, state: s.committed.clone()}, nil
}

func (s *memStore) LockReload(ctx context.Context, tx pgx.Tx) error {
	s.locks++
	return nil
}

func (s *memStore) ResetSchema(ctx context.Context, tx pgx.Tx) error {
	tx.(*memTx).state = memState{nextRatioID: 1}
	return nil
}

func (s *memStore) InsertCompanies(ctx context.Context, tx pgx.Tx, companies []models.Company) (int64, error) {
	if s.insertCompaniesErr != nil {
		return 0, s.insertCompaniesErr
	}
	mt := tx.(*memTx)
	mt.state.companies = append(mt.state.companies, companies...)
	return int64(len(companies)), nil
}

func (s *memStore) InsertRatios(ctx context.Context, tx pgx.Tx, ratios []models.FinancialRatio) (int64, error) {
	if s.insertRatiosErr != nil {
		return 0, s.insertRatiosErr
	}
	mt := tx.(*memTx)
	for _, fr := range ratios {
		fr.RatioID = mt.state.nextRatioID
		mt.state.nextRatioID++
		mt.state.ratios = append(mt.state.ratios, fr)
	}
	return int64(len(ratios)), nil
}

func (s *memStore) filtered(status *models.BankruptcyStatus) []models.Company {
	var out []models.Company
	for _, c := range s.committed.companies {
		if status == nil || c.BankruptcyStatus == *status {
			out = append(out, c)
		}
	}
	return out
}

func (s *memStore) Count(ctx context.Context, status *models.BankruptcyStatus) (int64, error) {
	s.reads++
	return int64(len(s.filtered(status))), nil
}

func (s *memStore) List(ctx context.Context, opts repository.ListOptions) ([]models.Company, error) {
	s.reads++
	rows := s.filtered(opts.Status)
	key := func(c models.Company) int64 {
		if opts.SortColumn == "year" {
			return int64(c.Year)
		}
		return c.CompanyID
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := key(rows[i]), key(rows[j])
		if a != b {
			if opts.Descending {
				return a > b
			}
			return a < b
		}
		return rows[i].CompanyID < rows[j].CompanyID
	})

	if opts.Offset >= len(rows) {
		return []models.Company{}, nil
	}
	end := min(opts.Offset+opts.Limit, len(rows))
	return rows[opts.Offset:end], nil
}

func (s *memStore) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	s.reads++
	for _, c := range s.committed.companies {
		if c.CompanyID == id {
			return &c, nil
		}
	}
	return nil, repository.ErrCompanyNotFound
}

func (s *memStore) GetRatios(ctx context.Context, companyID int64) ([]models.FinancialRatio, error) {
	s.reads++
	var out []models.FinancialRatio
	for _, fr := range s.committed.ratios {
		if fr.CompanyID == companyID {
			out = append(out, fr)
		}
	}
	return out, nil
}

func (s *memStore) RatioGroupStats(ctx context.Context, ratioName string) (map[models.BankruptcyStatus]repository.RatioAggregate, error) {
	s.reads++
	status := make(map[int64]models.BankruptcyStatus, len(s.committed.companies))
	for _, c := range s.committed.companies {
		status[c.CompanyID] = c.BankruptcyStatus
	}

	values := map[models.BankruptcyStatus][]float64{}
	for _, fr := range s.committed.ratios {
		if fr.RatioName == ratioName {
			st := status[fr.CompanyID]
			values[st] = append(values[st], fr.RatioValue)
		}
	}

	out := make(map[models.BankruptcyStatus]repository.RatioAggregate, len(values))
	for st, vs := range values {
		var sum float64
		lo, hi := vs[0], vs[0]
		for _, v := range vs {
			sum += v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		mean := sum / float64(len(vs))
		agg := repository.RatioAggregate{Mean: &mean, Min: &lo, Max: &hi}
		if len(vs) > 1 {
			var ss float64
			for _, v := range vs {
				ss += (v - mean) * (v - mean)
			}
			std := math.Sqrt(ss / float64(len(vs)-1))
			agg.Std = &std
		}
		out[st] = agg
	}
	return out, nil
}

var (
	_ CompanyReader   = (*memStore)(nil)
	_ RatioAggregator = (*memStore)(nil)
	_ ReloadStore     = (*memStore)(nil)
)
