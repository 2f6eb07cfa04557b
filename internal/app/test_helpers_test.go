package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/ctxutil"
	"github.com/example/cadastre/internal/ports/secondary"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func asActor(id string, role actor.Role) context.Context {
	return ctxutil.WithActor(context.Background(), id, string(role))
}

// mockActorProvider resolves the actor from ctxutil values.
type mockActorProvider struct{}

func (mockActorProvider) CurrentActor(ctx context.Context) (actor.Actor, error) {
	id := ctxutil.ActorFromContext(ctx)
	if id == "" {
		return actor.Actor{}, errs.Authorization("no actor identity supplied")
	}
	return actor.Actor{ID: id, Role: actor.Role(ctxutil.RoleFromContext(ctx))}, nil
}

// mockTransactor runs fn directly. Mocks do not roll back.
type mockTransactor struct{}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// mockLogWriter records audit calls.
type mockLogWriter struct {
	creates     []string
	transitions []string
}

func (m *mockLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.creates = append(m.creates, entityType+":"+entityID)
	return nil
}

func (m *mockLogWriter) LogTransition(ctx context.Context, entityType, entityID, action, oldStatus, newStatus string) error {
	m.transitions = append(m.transitions, fmt.Sprintf("%s:%s:%s:%s->%s", entityType, entityID, action, oldStatus, newStatus))
	return nil
}

// mockSearchCache is an in-memory generation-keyed SearchCache. afterGet,
// when set, runs after every Get to interleave other work with a search.
type mockSearchCache struct {
	entries     map[string][]byte
	gen         int64
	invalidated int
	hits        int
	afterGet    func()
}

func newMockSearchCache() *mockSearchCache {
	return &mockSearchCache{entries: make(map[string][]byte)}
}

func (m *mockSearchCache) Generation(ctx context.Context) (int64, bool) {
	return m.gen, true
}

func (m *mockSearchCache) Get(ctx context.Context, gen int64, key string) ([]byte, bool) {
	b, ok := m.entries[fmt.Sprintf("%d:%s", gen, key)]
	if ok {
		m.hits++
	}
	if m.afterGet != nil {
		m.afterGet()
	}
	return b, ok
}

func (m *mockSearchCache) Put(ctx context.Context, gen int64, key string, payload []byte) {
	m.entries[fmt.Sprintf("%d:%s", gen, key)] = payload
}

func (m *mockSearchCache) Invalidate(ctx context.Context) {
	m.invalidated++
	m.gen++
}

// mockSurveyorRepository implements secondary.SurveyorRepository for testing.
type mockSurveyorRepository struct {
	surveyors map[string]*secondary.SurveyorRecord
	nextID    int
}

func newMockSurveyorRepository() *mockSurveyorRepository {
	return &mockSurveyorRepository{surveyors: make(map[string]*secondary.SurveyorRecord), nextID: 1}
}

func (m *mockSurveyorRepository) add(id, userID, status string) *secondary.SurveyorRecord {
	r := &secondary.SurveyorRecord{
		ID: id, UserID: userID, FullName: "Surveyor " + id,
		SurconNumber: "SC-" + id, NISNumber: "NIS-" + id, Status: status,
	}
	m.surveyors[id] = r
	return r
}

func (m *mockSurveyorRepository) Create(ctx context.Context, s *secondary.SurveyorRecord) error {
	cp := *s
	m.surveyors[s.ID] = &cp
	return nil
}

func (m *mockSurveyorRepository) GetByID(ctx context.Context, id string) (*secondary.SurveyorRecord, error) {
	r, ok := m.surveyors[id]
	if !ok {
		return nil, errs.NotFound("surveyor %s not found", id)
	}
	cp := *r
	return &cp, nil
}

func (m *mockSurveyorRepository) GetByUserID(ctx context.Context, userID string) (*secondary.SurveyorRecord, error) {
	for _, r := range m.surveyors {
		if r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockSurveyorRepository) List(ctx context.Context, filters secondary.SurveyorFilters) ([]*secondary.SurveyorRecord, error) {
	var out []*secondary.SurveyorRecord
	for _, r := range m.surveyors {
		if filters.Status == "" || r.Status == filters.Status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockSurveyorRepository) UpdateVerification(ctx context.Context, id, status string, verifiedAt *time.Time, reason string) error {
	r, ok := m.surveyors[id]
	if !ok {
		return errs.NotFound("surveyor %s not found", id)
	}
	r.Status = status
	if verifiedAt != nil {
		r.VerifiedAt = verifiedAt
	}
	r.RejectionReason = reason
	return nil
}

func (m *mockSurveyorRepository) FindByRegistration(ctx context.Context, surconNumber, nisNumber string) (string, string, error) {
	var surconOwner, nisOwner string
	for _, r := range m.surveyors {
		if r.SurconNumber == surconNumber {
			surconOwner = r.ID
		}
		if r.NISNumber == nisNumber {
			nisOwner = r.ID
		}
	}
	return surconOwner, nisOwner, nil
}

func (m *mockSurveyorRepository) GetNextID(ctx context.Context) (string, error) {
	id := fmt.Sprintf("SRV-%04d", m.nextID)
	m.nextID++
	return id, nil
}

// mockJobRepository implements secondary.JobRepository for testing.
type mockJobRepository struct {
	jobs   map[string]*secondary.JobRecord
	nextID int
}

func newMockJobRepository() *mockJobRepository {
	return &mockJobRepository{jobs: make(map[string]*secondary.JobRecord), nextID: 1}
}

func (m *mockJobRepository) Create(ctx context.Context, job *secondary.JobRecord) error {
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *mockJobRepository) GetByID(ctx context.Context, id string) (*secondary.JobRecord, error) {
	r, ok := m.jobs[id]
	if !ok {
		return nil, errs.NotFound("job %s not found", id)
	}
	cp := *r
	return &cp, nil
}

func (m *mockJobRepository) List(ctx context.Context, filters secondary.JobFilters) ([]*secondary.JobRecord, error) {
	var out []*secondary.JobRecord
	for _, r := range m.jobs {
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.SurveyorID != "" && r.SurveyorID != filters.SurveyorID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockJobRepository) Update(ctx context.Context, job *secondary.JobRecord) error {
	if _, ok := m.jobs[job.ID]; !ok {
		return errs.NotFound("job %s not found", job.ID)
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *mockJobRepository) GetNextID(ctx context.Context) (string, error) {
	id := fmt.Sprintf("JOB-%06d", m.nextID)
	m.nextID++
	return id, nil
}

// mockStepRepository implements secondary.StepRepository for testing.
type mockStepRepository struct {
	steps map[string][]*secondary.StepRecord
}

func newMockStepRepository() *mockStepRepository {
	return &mockStepRepository{steps: make(map[string][]*secondary.StepRecord)}
}

func (m *mockStepRepository) CreateAll(ctx context.Context, jobID string, steps []*secondary.StepRecord) error {
	m.steps[jobID] = append(m.steps[jobID], steps...)
	return nil
}

func (m *mockStepRepository) ListByJob(ctx context.Context, jobID string) ([]*secondary.StepRecord, error) {
	return m.steps[jobID], nil
}

func (m *mockStepRepository) Update(ctx context.Context, step *secondary.StepRecord) error {
	for _, s := range m.steps[step.JobID] {
		if s.Name == step.Name {
			s.Status = step.Status
			s.CompletedAt = step.CompletedAt
			s.Note = step.Note
			return nil
		}
	}
	return errs.NotFound("step %q of job %s not found", step.Name, step.JobID)
}

func (m *mockStepRepository) status(jobID, name string) string {
	for _, s := range m.steps[jobID] {
		if s.Name == name {
			return s.Status
		}
	}
	return ""
}

// mockPillarRepository implements secondary.PillarRepository for testing.
type mockPillarRepository struct {
	pillars []*secondary.PillarRecord
}

func (m *mockPillarRepository) CreateBatch(ctx context.Context, pillars []*secondary.PillarRecord) error {
	for _, p := range pillars {
		for _, e := range m.pillars {
			if e.PillarNumber == p.PillarNumber {
				return errs.Conflict("pillar number %s is already issued", p.PillarNumber)
			}
		}
	}
	m.pillars = append(m.pillars, pillars...)
	return nil
}

func (m *mockPillarRepository) GetByNumber(ctx context.Context, number string) (*secondary.PillarRecord, error) {
	for _, p := range m.pillars {
		if p.PillarNumber == number {
			return p, nil
		}
	}
	return nil, errs.NotFound("pillar %s not found", number)
}

func (m *mockPillarRepository) ListByJob(ctx context.Context, jobID string) ([]*secondary.PillarRecord, error) {
	var out []*secondary.PillarRecord
	for _, p := range m.pillars {
		if p.JobID == jobID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPillarRepository) ListAll(ctx context.Context) ([]*secondary.PillarRecord, error) {
	return m.pillars, nil
}

func (m *mockPillarRepository) CountByJob(ctx context.Context, jobID string) (int, error) {
	n := 0
	for _, p := range m.pillars {
		if p.JobID == jobID {
			n++
		}
	}
	return n, nil
}

func (m *mockPillarRepository) Existing(ctx context.Context, numbers []string) ([]string, error) {
	var out []string
	for _, n := range numbers {
		for _, p := range m.pillars {
			if p.PillarNumber == n {
				out = append(out, n)
			}
		}
	}
	return out, nil
}

// mockSequenceRepository implements secondary.SequenceRepository for testing.
type mockSequenceRepository struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newMockSequenceRepository() *mockSequenceRepository {
	return &mockSequenceRepository{counters: make(map[string]int64)}
}

func (m *mockSequenceRepository) Allocate(ctx context.Context, prefix string, count int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[prefix] += int64(count)
	return m.counters[prefix], nil
}

func (m *mockSequenceRepository) AdvanceTo(ctx context.Context, prefix string, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > m.counters[prefix] {
		m.counters[prefix] = n
	}
	return nil
}

func (m *mockSequenceRepository) Get(ctx context.Context, prefix string) (*secondary.SeriesRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	last, ok := m.counters[prefix]
	if !ok {
		return nil, nil
	}
	return &secondary.SeriesRecord{SeriesPrefix: prefix, LastIssuedNumber: last, UpdatedAt: fixedNow}, nil
}

// mockDocumentRepository implements secondary.DocumentRepository for testing.
type mockDocumentRepository struct {
	docs []*secondary.DocumentRecord
}

func (m *mockDocumentRepository) Create(ctx context.Context, doc *secondary.DocumentRecord) error {
	m.docs = append(m.docs, doc)
	return nil
}

func (m *mockDocumentRepository) ListByJob(ctx context.Context, jobID string) ([]*secondary.DocumentRecord, error) {
	var out []*secondary.DocumentRecord
	for _, d := range m.docs {
		if d.JobID == jobID {
			out = append(out, d)
		}
	}
	return out, nil
}

// Ensure mocks implement the interfaces
var (
	_ secondary.ActorProvider      = mockActorProvider{}
	_ secondary.Transactor         = (*mockTransactor)(nil)
	_ secondary.LogWriter          = (*mockLogWriter)(nil)
	_ secondary.SearchCache        = (*mockSearchCache)(nil)
	_ secondary.SurveyorRepository = (*mockSurveyorRepository)(nil)
	_ secondary.JobRepository      = (*mockJobRepository)(nil)
	_ secondary.StepRepository     = (*mockStepRepository)(nil)
	_ secondary.PillarRepository   = (*mockPillarRepository)(nil)
	_ secondary.SequenceRepository = (*mockSequenceRepository)(nil)
	_ secondary.DocumentRepository = (*mockDocumentRepository)(nil)
)
