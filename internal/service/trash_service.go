package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gcclean/trash-service/internal/auth"
	"github.com/gcclean/trash-service/internal/config"
	"github.com/gcclean/trash-service/internal/editor"
	"github.com/gcclean/trash-service/internal/model"
)

type TrashStore interface {
	editor.RecordStore
	Get(ctx context.Context, id, ownerID uuid.UUID) (model.Row, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Row, error)
	ListContributions(ctx context.Context) ([]model.Row, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

type TrashService struct {
	store     TrashStore
	objects   editor.ObjectStore
	processor editor.PhotoProcessor
	cfg       config.TrashConfig
	log       zerolog.Logger
}

func NewTrashService(
	store TrashStore,
	objects editor.ObjectStore,
	processor editor.PhotoProcessor,
	cfg *config.Config,
	log zerolog.Logger,
) *TrashService {
	return &TrashService{
		store:     store,
		objects:   objects,
		processor: processor,
		cfg:       cfg.Trash,
		log:       log,
	}
}

// MaxPhotos is the photo cap applied to one record.
func (s *TrashService) MaxPhotos() int {
	return s.cfg.MaxPhotos
}

// NewEditor opens an editor bound to the principal's session.
func (s *TrashService) NewEditor(principal model.Principal, opts ...editor.Option) *editor.Editor {
	base := []editor.Option{
		editor.WithLogger(s.log.With().Str("user_id", principal.UserID.String()).Logger()),
		editor.WithMaxPhotos(s.cfg.MaxPhotos),
		editor.WithCleanupOnFailure(s.cfg.CleanupOnFailure),
	}
	if s.processor != nil {
		base = append(base, editor.WithProcessor(s.processor))
	}
	return editor.New(auth.NewSession(principal), s.store, s.objects, append(base, opts...)...)
}

type SubmitInput struct {
	Principal model.Principal
	// RecordID selects edit mode when set.
	RecordID *uuid.UUID
	Draft    editor.Draft
	// Retained lists the stored photo URLs to keep when editing; nil keeps all.
	Retained []string
	Photos   []editor.File
}

func (s *TrashService) Submit(ctx context.Context, input SubmitInput) (*model.WasteRecord, error) {
	ed := s.NewEditor(input.Principal)

	if input.RecordID == nil {
		ed.Open()
	} else {
		current, err := s.get(ctx, input.Principal, *input.RecordID)
		if err != nil {
			return nil, err
		}
		ed.Edit(*current)
		if input.Retained != nil {
			keep := make(map[string]struct{}, len(input.Retained))
			for _, url := range input.Retained {
				keep[url] = struct{}{}
			}
			for _, url := range current.PhotoURLs {
				if _, ok := keep[url]; !ok {
					ed.RemovePhoto(url)
				}
			}
		}
	}

	ed.SetDraft(input.Draft)
	if len(input.Photos) > 0 {
		ed.StagePhotos(input.Photos)
	}

	rec, err := ed.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *TrashService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.WasteRecord, error) {
	return s.get(ctx, principal, id)
}

func (s *TrashService) get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.WasteRecord, error) {
	if principal.IsZero() {
		return nil, editor.ErrUnauthenticated
	}
	row, err := s.store.Get(ctx, id, principal.UserID)
	if err != nil {
		return nil, err
	}
	rec, err := model.ParseWasteRecord(row)
	if err != nil {
		return nil, fmt.Errorf("trash %s: %w", id, err)
	}
	return &rec, nil
}

// List returns the principal's records, newest first. Rows that cannot be
// parsed are skipped.
func (s *TrashService) List(ctx context.Context, principal model.Principal) ([]model.WasteRecord, error) {
	if principal.IsZero() {
		return nil, editor.ErrUnauthenticated
	}
	rows, err := s.store.ListByOwner(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	records := make([]model.WasteRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := model.ParseWasteRecord(row)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", principal.UserID.String()).Msg("skipping malformed trash row")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *TrashService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if principal.IsZero() {
		return editor.ErrUnauthenticated
	}
	if err := s.store.Delete(ctx, id, principal.UserID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.log.Info().Str("user_id", principal.UserID.String()).Str("trash_id", id.String()).Msg("trash deleted")
	return nil
}
