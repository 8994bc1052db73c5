package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/guestgallery/internal/common"
	"github.com/dmitrijs2005/guestgallery/internal/dbx"
	"github.com/dmitrijs2005/guestgallery/internal/server/models"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/guests"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/photos"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/reactions"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type fakeRepoMgr struct {
	repomanager.RepositoryManager
	guests    guests.Repository
	photos    photos.Repository
	reactions reactions.Repository
}

func (m *fakeRepoMgr) Guests(dbx.DBTX) guests.Repository       { return m.guests }
func (m *fakeRepoMgr) Photos(dbx.DBTX) photos.Repository       { return m.photos }
func (m *fakeRepoMgr) Reactions(dbx.DBTX) reactions.Repository { return m.reactions }

// --- guests ---

type fakeGuestsRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*models.Guest
	getErr    error
	getCalls  int
	created   []*models.Guest
	createErr error
}

func newFakeGuests(gs ...*models.Guest) *fakeGuestsRepo {
	r := &fakeGuestsRepo{byEmail: map[string]*models.Guest{}}
	for _, g := range gs {
		r.byEmail[strings.ToLower(g.Email)] = g
	}
	return r
}

func (r *fakeGuestsRepo) GetByEmail(ctx context.Context, email string) (*models.Guest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	g, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return g, nil
}

func (r *fakeGuestsRepo) Create(ctx context.Context, g *models.Guest) (*models.Guest, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	g.ID = uuid.NewString()
	r.created = append(r.created, g)
	return g, nil
}

func (r *fakeGuestsRepo) List(ctx context.Context) ([]*models.Guest, error) {
	var out []*models.Guest
	for _, g := range r.byEmail {
		out = append(out, g)
	}
	return out, nil
}

// --- photos ---

// fakePhotosRepo keeps photos in memory and answers ListApproved with the
// same ordering as the SQL query.
type fakePhotosRepo struct {
	mu        sync.Mutex
	rows      []*models.GuestPhoto
	createErr error
	clock     func() time.Time
	lastLimit int
	lastOff   int
}

func newFakePhotos() *fakePhotosRepo {
	return &fakePhotosRepo{clock: time.Now}
}

func (r *fakePhotosRepo) Create(ctx context.Context, p *models.GuestPhoto) (*models.GuestPhoto, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	cp.ID = uuid.NewString()
	cp.IsApproved = false
	cp.CreatedAt = r.clock()
	r.rows = append(r.rows, &cp)
	out := cp
	return &out, nil
}

func (r *fakePhotosRepo) GetByID(ctx context.Context, id string) (*models.GuestPhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakePhotosRepo) ListApproved(ctx context.Context, limit, offset int) ([]*models.GuestPhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit, r.lastOff = limit, offset

	out := make([]*models.GuestPhoto, 0)
	for _, p := range r.rows {
		if p.IsApproved {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if offset >= len(out) {
		return []*models.GuestPhoto{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePhotosRepo) ListPending(ctx context.Context) ([]*models.GuestPhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GuestPhoto
	for _, p := range r.rows {
		if !p.IsApproved {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePhotosRepo) SetApproved(ctx context.Context, id string, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.ID == id {
			p.IsApproved = approved
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *fakePhotosRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// --- reactions ---

type fakeReactionsRepo struct {
	byGuestPhoto map[[2]string]models.Reaction
	upsertErr    error
	countsErr    error
}

func newFakeReactions() *fakeReactionsRepo {
	return &fakeReactionsRepo{byGuestPhoto: map[[2]string]models.Reaction{}}
}

func (r *fakeReactionsRepo) Upsert(ctx context.Context, gr *models.GalleryReaction) (*models.GalleryReaction, error) {
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	r.byGuestPhoto[[2]string{gr.GuestID, gr.PhotoID}] = gr.Reaction
	gr.ID = uuid.NewString()
	gr.CreatedAt = time.Now()
	return gr, nil
}

func (r *fakeReactionsRepo) Counts(ctx context.Context, photoID string) (map[models.Reaction]int64, error) {
	if r.countsErr != nil {
		return nil, r.countsErr
	}
	out := map[models.Reaction]int64{}
	for _, k := range models.Reactions {
		out[k] = 0
	}
	for key, v := range r.byGuestPhoto {
		if key[1] == photoID {
			out[v]++
		}
	}
	return out, nil
}

// --- object store ---

type fakeStore struct {
	mu          sync.Mutex
	objects     map[string][]byte
	putCalls    int
	deleteCalls []string
	putErr      error
	deleteErr   error
	onPut       func()
	blockPut    bool
	deleteCtx   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	s.mu.Lock()
	s.putCalls++
	s.mu.Unlock()

	if s.blockPut {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if _, exists := s.objects[key]; exists {
		s.mu.Unlock()
		return "", common.ErrorAlreadyExists
	}
	s.objects[key] = data
	s.mu.Unlock()

	if s.onPut != nil {
		s.onPut()
	}
	return s.URL(key), nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls = append(s.deleteCalls, key)
	s.deleteCtx = ctx.Err()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) URL(key string) string {
	return "http://storage.test/guest-photos/" + key
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// --- resolver / observer ---

type fakeResolver struct {
	guest *models.Guest
	err   error
	calls int
}

func (r *fakeResolver) Resolve(ctx context.Context, session *models.Session) (*models.Guest, error) {
	r.calls++
	if session == nil {
		return nil, common.ErrorUnauthorized
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.guest, nil
}

type fakeObserver struct {
	mu            sync.Mutex
	uploads       map[string]int
	stageErrors   map[string]int
	compensations int
	gate          map[bool]int
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{uploads: map[string]int{}, stageErrors: map[string]int{}, gate: map[bool]int{}}
}

func (o *fakeObserver) RecordUpload(outcome string, _ int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.uploads[outcome]++
}

func (o *fakeObserver) RecordStage(stage string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.stageErrors[stage]++
	}
}

func (o *fakeObserver) RecordCompensationFailure() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.compensations++
}

func (o *fakeObserver) RecordGateLogin(ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gate[ok]++
}

func (o *fakeObserver) RecordHTTPRequest(string, string, int, time.Duration) {}

var errBoom = errors.New("boom")
