package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcclean/trash-service/internal/config"
	"github.com/gcclean/trash-service/internal/editor"
	"github.com/gcclean/trash-service/internal/model"
	"github.com/gcclean/trash-service/internal/service"
)

type memoryTrash struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Row
	// extra rows returned verbatim by ListContributions
	extra []model.Row
}

func newMemoryTrash() *memoryTrash {
	return &memoryTrash{rows: map[uuid.UUID]model.Row{}}
}

func (m *memoryTrash) Insert(_ context.Context, row model.Row) (model.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	saved := model.Row{model.ColID: id, model.ColCreatedAt: time.Now()}
	for k, v := range row {
		saved[k] = v
	}
	m.rows[id] = saved
	return saved, nil
}

func (m *memoryTrash) Update(_ context.Context, id, ownerID uuid.UUID, row model.Row) (model.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.rows[id]
	if !ok || current[model.ColUserID] != ownerID {
		return nil, fmt.Errorf("%w: trash %s", model.ErrNotFound, id)
	}
	for k, v := range row {
		current[k] = v
	}
	return current, nil
}

func (m *memoryTrash) Get(_ context.Context, id, ownerID uuid.UUID) (model.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row[model.ColUserID] != ownerID {
		return nil, fmt.Errorf("%w: trash %s", model.ErrNotFound, id)
	}
	return row, nil
}

func (m *memoryTrash) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []model.Row
	for _, row := range m.rows {
		if row[model.ColUserID] == ownerID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (m *memoryTrash) ListContributions(context.Context) ([]model.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := append([]model.Row{}, m.extra...)
	for _, row := range m.rows {
		rows = append(rows, model.Row{
			model.ColUserID:   row[model.ColUserID],
			model.ColQuantity: row[model.ColQuantity],
		})
	}
	return rows, nil
}

func (m *memoryTrash) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row[model.ColUserID] != ownerID {
		return fmt.Errorf("%w: trash %s", model.ErrNotFound, id)
	}
	delete(m.rows, id)
	return nil
}

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (o *memoryObjects) Put(_ context.Context, path string, data []byte, _ bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[path] = data
	return nil
}

func (o *memoryObjects) PublicURL(path string) string {
	return "https://cdn.test/" + path
}

func (o *memoryObjects) Delete(_ context.Context, path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.objects, path)
	return nil
}

type memoryProfiles struct {
	rows []model.Row
}

func (p *memoryProfiles) ListProfiles(context.Context) ([]model.Row, error) {
	return p.rows, nil
}

func (p *memoryProfiles) GetProfile(_ context.Context, id uuid.UUID) (model.Row, error) {
	for _, row := range p.rows {
		if row[model.ColID] == id {
			return row, nil
		}
	}
	return nil, fmt.Errorf("%w: profile %s", model.ErrNotFound, id)
}

func (p *memoryProfiles) UpsertProfile(_ context.Context, profile model.Profile) (model.Row, error) {
	row := model.Row{
		model.ColID:         profile.ID,
		model.ColFirstName:  profile.FirstName,
		model.ColLastName:   profile.LastName,
		model.ColDepartment: profile.Department,
	}
	for i, existing := range p.rows {
		if existing[model.ColID] == profile.ID {
			p.rows[i] = row
			return row, nil
		}
	}
	p.rows = append(p.rows, row)
	return row, nil
}

type stubGenerator struct {
	content []byte
	board   model.Leaderboard
	err     error
}

func (g *stubGenerator) Generate(board model.Leaderboard, _ time.Time) ([]byte, error) {
	g.board = board
	return g.content, g.err
}

func testConfig() *config.Config {
	return &config.Config{
		Trash: config.TrashConfig{
			MaxPhotos:        10,
			CleanupOnFailure: true,
			Departments:      model.DefaultDepartments,
		},
	}
}

func profileRow(id uuid.UUID, first, last, dept string) model.Row {
	return model.Row{
		model.ColID:         id,
		model.ColFirstName:  first,
		model.ColLastName:   last,
		model.ColDepartment: dept,
	}
}

func draft() editor.Draft {
	return editor.Draft{
		Category:   model.CategoryPlastic,
		Quantity:   "4",
		Floor:      "2",
		Room:       "201",
		OccurredAt: "2024-03-01",
	}
}

func TestTrashSubmitCreateAndList(t *testing.T) {
	store := newMemoryTrash()
	objects := &memoryObjects{objects: map[string][]byte{}}
	svc := service.NewTrashService(store, objects, nil, testConfig(), zerolog.Nop())
	user := model.Principal{UserID: uuid.New()}

	rec, err := svc.Submit(context.Background(), service.SubmitInput{
		Principal: user,
		Draft:     draft(),
		Photos:    []editor.File{{Name: "a.jpg", Data: []byte("a")}},
	})
	require.NoError(t, err)
	assert.Equal(t, user.UserID, rec.OwnerID)
	assert.Equal(t, 4, rec.Quantity)
	require.Len(t, rec.PhotoURLs, 1)
	assert.Len(t, objects.objects, 1)

	records, err := svc.List(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)

	others, err := svc.List(context.Background(), model.Principal{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestTrashSubmitEditDropsUnretainedPhotos(t *testing.T) {
	store := newMemoryTrash()
	objects := &memoryObjects{objects: map[string][]byte{}}
	svc := service.NewTrashService(store, objects, nil, testConfig(), zerolog.Nop())
	user := model.Principal{UserID: uuid.New()}

	created, err := svc.Submit(context.Background(), service.SubmitInput{
		Principal: user,
		Draft:     draft(),
		Photos: []editor.File{
			{Name: "a.jpg", Data: []byte("a")},
			{Name: "b.jpg", Data: []byte("b")},
		},
	})
	require.NoError(t, err)
	require.Len(t, created.PhotoURLs, 2)

	edit := draft()
	edit.Quantity = "9"
	updated, err := svc.Submit(context.Background(), service.SubmitInput{
		Principal: user,
		RecordID:  &created.ID,
		Draft:     edit,
		Retained:  []string{created.PhotoURLs[1]},
		Photos:    []editor.File{{Name: "c.jpg", Data: []byte("c")}},
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 9, updated.Quantity)
	require.Len(t, updated.PhotoURLs, 2)
	assert.Equal(t, created.PhotoURLs[1], updated.PhotoURLs[0])
	assert.NotContains(t, updated.PhotoURLs, created.PhotoURLs[0])
}

func TestTrashSubmitEditNilRetainedKeepsAll(t *testing.T) {
	store := newMemoryTrash()
	objects := &memoryObjects{objects: map[string][]byte{}}
	svc := service.NewTrashService(store, objects, nil, testConfig(), zerolog.Nop())
	user := model.Principal{UserID: uuid.New()}

	created, err := svc.Submit(context.Background(), service.SubmitInput{
		Principal: user,
		Draft:     draft(),
		Photos:    []editor.File{{Name: "a.jpg", Data: []byte("a")}},
	})
	require.NoError(t, err)

	updated, err := svc.Submit(context.Background(), service.SubmitInput{
		Principal: user,
		RecordID:  &created.ID,
		Draft:     draft(),
	})
	require.NoError(t, err)
	assert.Equal(t, created.PhotoURLs, updated.PhotoURLs)
}

func TestTrashSubmitEditForeignRecord(t *testing.T) {
	store := newMemoryTrash()
	objects := &memoryObjects{objects: map[string][]byte{}}
	svc := service.NewTrashService(store, objects, nil, testConfig(), zerolog.Nop())
	owner := uuid.New()

	created, err := svc.Submit(context.Background(), service.SubmitInput{
		Principal: model.Principal{UserID: owner},
		Draft:     draft(),
	})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), service.SubmitInput{
		Principal: model.Principal{UserID: uuid.New()},
		RecordID:  &created.ID,
		Draft:     draft(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotFound))
	var persistErr *editor.PersistenceError
	assert.False(t, errors.As(err, &persistErr))
	require.Contains(t, store.rows, created.ID)
	assert.Equal(t, owner, store.rows[created.ID][model.ColUserID])
}

func TestTrashUnauthenticated(t *testing.T) {
	svc := service.NewTrashService(newMemoryTrash(), &memoryObjects{objects: map[string][]byte{}}, nil, testConfig(), zerolog.Nop())

	_, err := svc.Submit(context.Background(), service.SubmitInput{Draft: draft()})
	assert.ErrorIs(t, err, editor.ErrUnauthenticated)

	_, err = svc.List(context.Background(), model.Principal{})
	assert.ErrorIs(t, err, editor.ErrUnauthenticated)

	err = svc.Delete(context.Background(), model.Principal{}, uuid.New())
	assert.ErrorIs(t, err, editor.ErrUnauthenticated)
}

func TestTrashSubmitValidation(t *testing.T) {
	svc := service.NewTrashService(newMemoryTrash(), &memoryObjects{objects: map[string][]byte{}}, nil, testConfig(), zerolog.Nop())
	bad := draft()
	bad.Quantity = ""

	_, err := svc.Submit(context.Background(), service.SubmitInput{
		Principal: model.Principal{UserID: uuid.New()},
		Draft:     bad,
	})
	var verr *editor.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please fill in all required fields.", verr.Message)
}

func TestTrashDelete(t *testing.T) {
	store := newMemoryTrash()
	svc := service.NewTrashService(store, &memoryObjects{objects: map[string][]byte{}}, nil, testConfig(), zerolog.Nop())
	user := model.Principal{UserID: uuid.New()}

	created, err := svc.Submit(context.Background(), service.SubmitInput{Principal: user, Draft: draft()})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), model.Principal{UserID: uuid.New()}, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), user, created.ID))
	err = svc.Delete(context.Background(), user, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTrashListSkipsMalformedRows(t *testing.T) {
	store := newMemoryTrash()
	user := model.Principal{UserID: uuid.New()}
	store.rows[uuid.New()] = model.Row{model.ColUserID: user.UserID, model.ColQuantity: "lots"}
	svc := service.NewTrashService(store, &memoryObjects{objects: map[string][]byte{}}, nil, testConfig(), zerolog.Nop())

	_, err := svc.Submit(context.Background(), service.SubmitInput{Principal: user, Draft: draft()})
	require.NoError(t, err)

	records, err := svc.List(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLeaderboard(t *testing.T) {
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	trash := newMemoryTrash()
	trash.extra = []model.Row{
		{model.ColUserID: alice, model.ColQuantity: 5},
		{model.ColUserID: alice, model.ColQuantity: 3},
		{model.ColUserID: bob, model.ColQuantity: 10},
		{model.ColUserID: carol, model.ColQuantity: 2},
		{model.ColUserID: "not-a-uuid", model.ColQuantity: 4},
	}
	profiles := &memoryProfiles{rows: []model.Row{
		profileRow(alice, "Alice", "Reyes", "CCS"),
		profileRow(bob, "Bob", "Santos", "CBA"),
		profileRow(carol, "Carol", "Cruz", "CCS"),
		{model.ColID: uuid.New()},
	}}
	svc := service.NewLeaderboardService(trash, profiles, &stubGenerator{}, &stubGenerator{}, testConfig(), zerolog.Nop())

	board, err := svc.Leaderboard(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, model.AllDepartments, board.Department)
	require.Len(t, board.Rows, 3)
	assert.Equal(t, bob, board.Rows[0].UserID)
	assert.Equal(t, 8, board.Rows[1].Total)
	assert.Equal(t, 2, board.Skipped)

	board, err = svc.Leaderboard(context.Background(), "ccs")
	require.NoError(t, err)
	assert.Equal(t, "CCS", board.Department)
	require.Len(t, board.Rows, 2)
	assert.Equal(t, alice, board.Rows[0].UserID)
	assert.Equal(t, 1, board.Rows[0].Rank)
	assert.Equal(t, 2, board.Rows[1].Rank)

	_, err = svc.Leaderboard(context.Background(), "NOPE")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestLeaderboardExport(t *testing.T) {
	alice := uuid.New()
	trash := newMemoryTrash()
	trash.extra = []model.Row{{model.ColUserID: alice, model.ColQuantity: 5}}
	profiles := &memoryProfiles{rows: []model.Row{profileRow(alice, "Alice", "Reyes", "CCS")}}
	xlsx := &stubGenerator{content: []byte("xlsx")}
	pdf := &stubGenerator{content: []byte("pdf")}
	svc := service.NewLeaderboardService(trash, profiles, xlsx, pdf, testConfig(), zerolog.Nop())

	result, err := svc.Export(context.Background(), "CCS", service.ExportXLSX)
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), result.Content)
	assert.Regexp(t, `^leaderboard-ccs-\d{8}\.xlsx$`, result.FileName)
	assert.Len(t, xlsx.board.Rows, 1)

	result, err = svc.Export(context.Background(), "all", service.ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Regexp(t, `^leaderboard-all-\d{8}\.pdf$`, result.FileName)

	_, err = svc.Export(context.Background(), "all", service.ExportFormat("csv"))
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	pdf.err = errors.New("boom")
	_, err = svc.Export(context.Background(), "all", service.ExportPDF)
	assert.EqualError(t, err, "boom")
}

func TestProfileUpdateAndGet(t *testing.T) {
	store := &memoryProfiles{}
	svc := service.NewProfileService(store, testConfig())
	user := model.Principal{UserID: uuid.New()}

	_, err := svc.Get(context.Background(), user)
	assert.ErrorIs(t, err, service.ErrNotFound)

	saved, err := svc.Update(context.Background(), service.UpdateProfileInput{
		Principal:  user,
		FirstName:  "  Ana ",
		LastName:   "Lim",
		Department: "coe",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", saved.FirstName)
	assert.Equal(t, "COE", saved.Department)

	got, err := svc.Get(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, *saved, *got)
}

func TestProfileUpdateValidation(t *testing.T) {
	svc := service.NewProfileService(&memoryProfiles{}, testConfig())
	user := model.Principal{UserID: uuid.New()}

	_, err := svc.Update(context.Background(), service.UpdateProfileInput{Principal: user, LastName: "Lim", Department: "COE"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Update(context.Background(), service.UpdateProfileInput{Principal: user, FirstName: "Ana", LastName: "Lim", Department: "XYZ"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Update(context.Background(), service.UpdateProfileInput{FirstName: "Ana", LastName: "Lim", Department: "COE"})
	assert.ErrorIs(t, err, editor.ErrUnauthenticated)
}
