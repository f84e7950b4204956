package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"adnote/api/internal/config"
	"adnote/api/internal/editor"
	"adnote/api/internal/export"
	"adnote/api/internal/logging"
	"adnote/api/internal/session"
	"adnote/api/internal/store"
	"adnote/api/internal/util"
)

// DefaultNoteTitle is the title of notes created from the editor.
const DefaultNoteTitle = "New Document"

const excerptLength = 140

const (
	SortCreated = "created"
	SortID      = "id"
)

type NoteView struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	HTML      *string         `json:"html,omitempty"`
}

type NoteSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdateNoteInput struct {
	Title   *string         `json:"title" validate:"required,max=1000"`
	Content json.RawMessage `json:"content" validate:"required"`
}

type ParseContentInput struct {
	HTML string `json:"html" validate:"max=1048576"`
}

type noteStore interface {
	CreateNote(context.Context, string, string, json.RawMessage) (store.Note, error)
	GetNote(context.Context, string, string) (store.Note, error)
	ListNotes(context.Context, string) ([]store.Note, error)
	UpdateNote(context.Context, string, string, string, json.RawMessage) (store.Note, error)
	DeleteNote(context.Context, string, string) (bool, error)
	Ping(context.Context) error
}

type sessionResolver interface {
	Resolve(*http.Request) (session.Identity, error)
	Logout(context.Context, session.Identity) (bool, error)
}

type pinger interface {
	Ping(context.Context) error
}

type Service struct {
	cfg      config.Config
	store    noteStore
	sessions sessionResolver
	cache    pinger
	logger   *slog.Logger
}

// New wires the service. revocations may be nil when Redis is not
// configured.
func New(cfg config.Config, dataStore *store.PostgresStore, sessions *session.Resolver, revocations *session.RedisRevocations, logger *slog.Logger) *Service {
	svc := &Service{
		cfg:      cfg,
		store:    dataStore,
		sessions: sessions,
		logger:   logger,
	}
	if revocations != nil {
		svc.cache = revocations
	}
	return svc
}

func (s *Service) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s *Service) Resolve(r *http.Request) (session.Identity, error) {
	return s.sessions.Resolve(r)
}

func (s *Service) Logout(ctx context.Context, identity session.Identity) (bool, error) {
	if identity.UserID == "" {
		return false, unauthenticated()
	}
	return s.sessions.Logout(ctx, identity)
}

func (s *Service) CreateNote(ctx context.Context, identity session.Identity) (store.Note, error) {
	if identity.UserID == "" {
		return store.Note{}, unauthenticated()
	}
	note, err := s.store.CreateNote(ctx, identity.UserID, DefaultNoteTitle, nil)
	if err != nil {
		return store.Note{}, err
	}
	s.log().InfoContext(ctx, "note created", slog.String("note_id", note.ID), slog.String("user_id", identity.UserID))
	return note, nil
}

func (s *Service) GetNote(ctx context.Context, identity session.Identity, rawID string, withHTML bool) (NoteView, error) {
	noteID, err := s.gate(identity, rawID)
	if err != nil {
		return NoteView{}, err
	}
	note, err := s.store.GetNote(ctx, noteID, identity.UserID)
	if err != nil {
		return NoteView{}, err
	}

	view := noteView(note)
	if withHTML {
		rendered, err := editor.RenderJSON(note.Content)
		if err != nil {
			// Content written outside the API may not be a document.
			s.log().WarnContext(ctx, "note content not renderable", slog.String("note_id", note.ID), logging.Err(err))
			rendered = ""
		}
		view.HTML = &rendered
	}
	return view, nil
}

// ListNotes returns the caller's notes, newest first by default or by id
// ascending.
func (s *Service) ListNotes(ctx context.Context, identity session.Identity, sortKey string) ([]NoteSummary, error) {
	if identity.UserID == "" {
		return nil, unauthenticated()
	}
	sortKey = strings.TrimSpace(sortKey)
	if sortKey == "" {
		sortKey = SortCreated
	}
	if sortKey != SortCreated && sortKey != SortID {
		return nil, invalidRequest("sort must be one of created, id", map[string]string{"sort": sortKey})
	}

	notes, err := s.store.ListNotes(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	switch sortKey {
	case SortID:
		sort.SliceStable(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	default:
		sort.SliceStable(notes, func(i, j int) bool {
			if notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
				return notes[i].ID > notes[j].ID
			}
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		})
	}

	items := make([]NoteSummary, 0, len(notes))
	for _, note := range notes {
		items = append(items, NoteSummary{
			ID:        note.ID,
			Title:     note.Title,
			Excerpt:   editor.ExcerptJSON(note.Content, excerptLength),
			CreatedAt: note.CreatedAt,
			UpdatedAt: note.UpdatedAt,
		})
	}
	return items, nil
}

func (s *Service) UpdateNote(ctx context.Context, identity session.Identity, rawID string, input UpdateNoteInput) (NoteView, error) {
	noteID, err := s.gate(identity, rawID)
	if err != nil {
		return NoteView{}, err
	}
	if err := validateStruct(input); err != nil {
		return NoteView{}, err
	}
	content, err := editor.ValidateDoc(input.Content)
	if err != nil {
		return NoteView{}, invalidRequest(err.Error(), nil)
	}

	note, err := s.store.UpdateNote(ctx, noteID, identity.UserID, *input.Title, content)
	if err != nil {
		return NoteView{}, err
	}
	return noteView(note), nil
}

func (s *Service) DeleteNote(ctx context.Context, identity session.Identity, rawID string) error {
	noteID, err := s.gate(identity, rawID)
	if err != nil {
		return err
	}
	removed, err := s.store.DeleteNote(ctx, noteID, identity.UserID)
	if err != nil {
		return err
	}
	if !removed {
		return notFound()
	}
	s.log().InfoContext(ctx, "note deleted", slog.String("note_id", noteID), slog.String("user_id", identity.UserID))
	return nil
}

func (s *Service) ExportNote(ctx context.Context, identity session.Identity, rawID string) (*export.Result, error) {
	noteID, err := s.gate(identity, rawID)
	if err != nil {
		return nil, err
	}
	note, err := s.store.GetNote(ctx, noteID, identity.UserID)
	if err != nil {
		return nil, err
	}
	return export.HTML(export.Note{Title: note.Title, Content: note.Content, UpdatedAt: note.UpdatedAt})
}

// ParseContent converts pasted markup into document JSON.
func (s *Service) ParseContent(identity session.Identity, input ParseContentInput) (json.RawMessage, error) {
	if identity.UserID == "" {
		return nil, unauthenticated()
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	doc, err := editor.FromHTML(input.HTML)
	if err != nil {
		return nil, invalidRequest("html could not be parsed", nil)
	}
	return editor.Encode(doc)
}

func (s *Service) LinkPreview(identity session.Identity, href string) (map[string]string, error) {
	if identity.UserID == "" {
		return nil, unauthenticated()
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, invalidRequest("href is required", nil)
	}
	return map[string]string{"href": href, "title": editor.LinkTitle(href)}, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// PingCache checks Redis. ok is false when no cache is configured.
func (s *Service) PingCache(ctx context.Context) (ok bool, err error) {
	if s.cache == nil {
		return false, nil
	}
	return true, s.cache.Ping(ctx)
}

// gate rejects calls without an identity or with a malformed note id
// before the repository is touched.
func (s *Service) gate(identity session.Identity, rawID string) (string, error) {
	if identity.UserID == "" {
		return "", unauthenticated()
	}
	if strings.TrimSpace(rawID) == "" {
		return "", invalidRequest("note id is required", nil)
	}
	noteID, ok := util.CanonicalUUID(rawID)
	if !ok {
		return "", invalidRequest("note id is malformed", map[string]string{"id": rawID})
	}
	return noteID, nil
}

func noteView(note store.Note) NoteView {
	return NoteView{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

// isStoreFailure reports errors that originate in the database rather
// than in the caller's request.
func isStoreFailure(err error) bool {
	var persistenceErr *store.PersistenceError
	return errors.As(err, &persistenceErr)
}
