// Package editor collects, validates and persists a single trash record,
// either as a new submission or as an edit of an existing one.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gcclean/trash-service/internal/model"
)

// DefaultMaxPhotos caps the number of photos staged per submission.
const DefaultMaxPhotos = 10

const stagedRefPrefix = "staged://"

type Identity interface {
	CurrentUser(ctx context.Context) (uuid.UUID, bool)
}

// RecordStore persists trash rows. Update must only touch the row whose id
// and owner both match and must return an error wrapping model.ErrNotFound
// when none does.
type RecordStore interface {
	Insert(ctx context.Context, row model.Row) (model.Row, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, row model.Row) (model.Row, error)
}

type ObjectStore interface {
	Put(ctx context.Context, path string, data []byte, overwrite bool) error
	PublicURL(path string) string
	Delete(ctx context.Context, path string) error
}

// PhotoProcessor rewrites a staged photo before it is uploaded.
type PhotoProcessor interface {
	Process(name string, data []byte) ([]byte, error)
}

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Draft holds form input as entered.
type Draft struct {
	Category       model.Category
	CustomCategory string
	Quantity       string
	Floor          string
	Room           string
	OccurredAt     string
}

type File struct {
	Name string
	Data []byte
}

type stagedFile struct {
	ref  string
	file File
}

type Option func(*Editor)

func WithLogger(log zerolog.Logger) Option {
	return func(e *Editor) { e.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

func WithMaxPhotos(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.maxPhotos = n
		}
	}
}

func WithProcessor(p PhotoProcessor) Option {
	return func(e *Editor) { e.processor = p }
}

// WithCleanupOnFailure enables best-effort deletion of the photos uploaded by
// a submission that then failed.
func WithCleanupOnFailure(enabled bool) Option {
	return func(e *Editor) { e.cleanup = enabled }
}

// OnSaved registers the callback receiving every stored record.
func OnSaved(fn func(model.WasteRecord)) Option {
	return func(e *Editor) { e.onSaved = fn }
}

func OnClose(fn func()) Option {
	return func(e *Editor) { e.onClose = fn }
}

type Editor struct {
	identity  Identity
	store     RecordStore
	objects   ObjectStore
	processor PhotoProcessor
	log       zerolog.Logger
	now       func() time.Time
	maxPhotos int
	cleanup   bool
	onSaved   func(model.WasteRecord)
	onClose   func()

	mu       sync.Mutex
	open     bool
	mode     Mode
	recordID uuid.UUID
	draft    Draft
	existing []string
	staged   []stagedFile
	previews []string
	stageSeq int
	busy     bool
	lastErr  string
}

func New(identity Identity, store RecordStore, objects ObjectStore, opts ...Option) *Editor {
	e := &Editor{
		identity:  identity,
		store:     store,
		objects:   objects,
		log:       zerolog.Nop(),
		now:       time.Now,
		maxPhotos: DefaultMaxPhotos,
		cleanup:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open starts an empty create-mode session.
func (e *Editor) Open() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.open = true
}

// Edit starts an edit session initialised from a stored record.
func (e *Editor) Edit(rec model.WasteRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()

	e.open = true
	e.mode = ModeEdit
	e.recordID = rec.ID
	e.draft = Draft{
		Category:   rec.Category,
		Quantity:   strconv.Itoa(rec.Quantity),
		Floor:      rec.Floor,
		Room:       rec.Room,
		OccurredAt: rec.OccurredAt.UTC().Format(dateLayout),
	}
	if rec.Category == model.CategoryOther {
		e.draft.CustomCategory = rec.CustomCategory
	}
	e.existing = append([]string{}, rec.PhotoURLs...)
	e.refreshPreviewsLocked()
}

// Close discards the session without saving.
func (e *Editor) Close() {
	e.mu.Lock()
	e.resetLocked()
	onClose := e.onClose
	e.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

func (e *Editor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Editor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Err returns the message of the last failed submission.
func (e *Editor) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// SetDraft replaces the form input. Quantity keeps digits only.
func (e *Editor) SetDraft(d Draft) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d.Quantity = digitsOnly(d.Quantity)
	e.draft = d
}

func (e *Editor) SetQuantity(raw string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.Quantity = digitsOnly(raw)
}

// StagePhotos replaces the staged batch with the first maxPhotos files.
func (e *Editor) StagePhotos(files []File) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(files) > e.maxPhotos {
		files = files[:e.maxPhotos]
	}
	e.staged = make([]stagedFile, 0, len(files))
	for _, f := range files {
		e.stageSeq++
		e.staged = append(e.staged, stagedFile{
			ref:  fmt.Sprintf("%s%d/%s", stagedRefPrefix, e.stageSeq, SanitizeFileName(f.Name)),
			file: f,
		})
	}
	e.refreshPreviewsLocked()
}

// RemovePhoto drops a retained photo or a staged file by its preview
// reference. Objects already in storage are left untouched.
func (e *Editor) RemovePhoto(ref string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing := e.existing[:0]
	for _, url := range e.existing {
		if url != ref {
			existing = append(existing, url)
		}
	}
	e.existing = existing

	if strings.HasPrefix(ref, stagedRefPrefix) {
		staged := e.staged[:0]
		for _, s := range e.staged {
			if s.ref != ref {
				staged = append(staged, s)
			}
		}
		e.staged = staged
	}
	e.refreshPreviewsLocked()
}

func (e *Editor) Previews() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.previews...)
}

func (e *Editor) ExistingPhotos() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.existing...)
}

func (e *Editor) StagedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.staged)
}

type submission struct {
	mode     Mode
	recordID uuid.UUID
	draft    Draft
	existing []string
	staged   []File
}

// Submit validates the draft, uploads staged photos and saves the record.
// On success the stored record is handed to the OnSaved callback and the
// editor returns to an empty, closed create session.
func (e *Editor) Submit(ctx context.Context) (model.WasteRecord, error) {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return model.WasteRecord{}, ErrBusy
	}
	e.busy = true
	e.lastErr = ""
	sub := submission{
		mode:     e.mode,
		recordID: e.recordID,
		draft:    e.draft,
		existing: append([]string{}, e.existing...),
		staged:   make([]File, 0, len(e.staged)),
	}
	for _, s := range e.staged {
		sub.staged = append(sub.staged, s.file)
	}
	e.mu.Unlock()

	rec, err := e.submit(ctx, sub)

	e.mu.Lock()
	e.busy = false
	if err != nil {
		e.lastErr = err.Error()
		e.mu.Unlock()
		return model.WasteRecord{}, err
	}
	onSaved, onClose := e.onSaved, e.onClose
	e.resetLocked()
	e.mu.Unlock()

	if onSaved != nil {
		onSaved(rec)
	}
	if onClose != nil {
		onClose()
	}
	return rec, nil
}

func (e *Editor) submit(ctx context.Context, sub submission) (model.WasteRecord, error) {
	record, err := validate(sub.draft)
	if err != nil {
		return model.WasteRecord{}, err
	}
	if len(sub.existing)+len(sub.staged) > e.maxPhotos {
		return model.WasteRecord{}, invalid(fmt.Sprintf("You can attach at most %d photos.", e.maxPhotos))
	}

	owner, ok := e.identity.CurrentUser(ctx)
	if !ok || owner == uuid.Nil {
		return model.WasteRecord{}, ErrUnauthenticated
	}
	record.OwnerID = owner

	uploaded, urls, err := e.upload(ctx, owner, sub.staged)
	if err != nil {
		e.discard(ctx, uploaded)
		return model.WasteRecord{}, err
	}
	record.PhotoURLs = append(sub.existing, urls...)

	row := model.TrashRow(record)
	var (
		stored model.Row
		op     string
	)
	if sub.mode == ModeEdit {
		op = "update"
		stored, err = e.store.Update(ctx, sub.recordID, owner, row)
	} else {
		op = "insert"
		stored, err = e.store.Insert(ctx, row)
	}
	if err == nil && len(stored) == 0 {
		err = fmt.Errorf("%w: trash %s", model.ErrNotFound, sub.recordID)
	}
	if err != nil {
		e.discard(ctx, uploaded)
		return model.WasteRecord{}, &PersistenceError{Op: op, Err: err}
	}

	// The write is committed at this point; an unreadable echo falls back
	// to the record that was sent.
	saved, err := model.ParseWasteRecord(stored)
	if err != nil {
		e.log.Warn().Err(err).Str("mode", sub.mode.String()).Msg("stored trash row unreadable")
		saved = record
		saved.ID = sub.recordID
		if id, idErr := stored.RecordID(); idErr == nil {
			saved.ID = id
		}
	}
	e.log.Info().
		Str("mode", sub.mode.String()).
		Str("trash_id", saved.ID.String()).
		Int("photos", len(saved.PhotoURLs)).
		Msg("trash saved")
	return saved, nil
}

// upload stores files sequentially so the returned URLs follow input order.
// Paths stored before a failure are returned alongside the error.
func (e *Editor) upload(ctx context.Context, owner uuid.UUID, files []File) ([]string, []string, error) {
	paths := make([]string, 0, len(files))
	urls := make([]string, 0, len(files))
	at := e.now()

	for i, f := range files {
		data := f.Data
		if e.processor != nil {
			processed, err := e.processor.Process(f.Name, data)
			if err != nil {
				return paths, nil, &UploadError{File: f.Name, Err: err}
			}
			data = processed
		}

		path := ObjectPath(owner, at, i, f.Name)
		if err := e.objects.Put(ctx, path, data, true); err != nil {
			return paths, nil, &UploadError{File: f.Name, Err: err}
		}
		paths = append(paths, path)

		url := e.objects.PublicURL(path)
		if url == "" {
			return paths, nil, &UploadError{File: f.Name, Err: errors.New("failed to get photo URL")}
		}
		urls = append(urls, url)
	}
	return paths, urls, nil
}

func (e *Editor) discard(ctx context.Context, paths []string) {
	if !e.cleanup {
		return
	}
	for _, path := range paths {
		if err := e.objects.Delete(ctx, path); err != nil {
			e.log.Warn().Err(err).Str("path", path).Msg("failed to remove orphaned photo")
		}
	}
}

func (e *Editor) refreshPreviewsLocked() {
	previews := make([]string, 0, len(e.existing)+len(e.staged))
	previews = append(previews, e.existing...)
	for _, s := range e.staged {
		previews = append(previews, s.ref)
	}
	e.previews = previews
}

func (e *Editor) resetLocked() {
	e.open = false
	e.mode = ModeCreate
	e.recordID = uuid.Nil
	e.draft = Draft{}
	e.existing = nil
	e.staged = nil
	e.previews = nil
	e.lastErr = ""
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
