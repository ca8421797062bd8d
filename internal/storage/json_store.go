package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
)

const jsonStoreVersion = 1

// document is the on-disk layout of the JSON store.
type document struct {
	Version     int                                          `json:"version"`
	Habits      map[string]models.Habit                      `json:"habits"`
	Completions map[string]map[string]models.CompletionEvent `json:"completions"` // habit id -> day -> event
}

// JSONStore keeps everything in a single JSON file and rewrites it on every
// mutation. It suits a single local user; use SQLite or PostgreSQL otherwise.
type JSONStore struct {
	path string

	mu  sync.RWMutex
	doc *document
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return apperrors.Persistence("create config directory", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = newDocument()
	return s.save()
}

func (s *JSONStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc != nil {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'daystreak init' first")
		}
		return apperrors.Persistence("read storage", err)
	}

	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return apperrors.Persistence("parse storage", err)
	}
	if doc.Version > jsonStoreVersion {
		return fmt.Errorf("storage version (%d) is newer than supported version (%d) - please upgrade the application", doc.Version, jsonStoreVersion)
	}
	if doc.Habits == nil {
		doc.Habits = make(map[string]models.Habit)
	}
	if doc.Completions == nil {
		doc.Completions = make(map[string]map[string]models.CompletionEvent)
	}
	s.doc = doc
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) LoadHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	var habits []models.Habit
	for _, h := range s.doc.Habits {
		if h.OwnerID == ownerID {
			habits = append(habits, h)
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		if !habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].CreatedAt.Before(habits[j].CreatedAt)
		}
		return habits[i].ID < habits[j].ID
	})
	return habits, nil
}

func (s *JSONStore) GetHabit(ctx context.Context, ownerID, id string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return models.Habit{}, err
	}

	h, ok := s.doc.Habits[id]
	if !ok || h.OwnerID != ownerID {
		return models.Habit{}, ErrNotFound
	}
	return h, nil
}

func (s *JSONStore) SaveHabit(ctx context.Context, habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	prev, existed := s.doc.Habits[habit.ID]
	if existed && prev.OwnerID != habit.OwnerID {
		return ErrNotFound
	}
	s.doc.Habits[habit.ID] = habit
	if err := s.save(); err != nil {
		if existed {
			s.doc.Habits[habit.ID] = prev
		} else {
			delete(s.doc.Habits, habit.ID)
		}
		return err
	}
	return nil
}

func (s *JSONStore) DeleteHabit(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}

	h, ok := s.doc.Habits[id]
	if !ok || h.OwnerID != ownerID {
		return ErrNotFound
	}
	completions := s.doc.Completions[id]

	delete(s.doc.Habits, id)
	delete(s.doc.Completions, id)
	if err := s.save(); err != nil {
		s.doc.Habits[id] = h
		if completions != nil {
			s.doc.Completions[id] = completions
		}
		return err
	}
	return nil
}

func (s *JSONStore) LoadCompletions(ctx context.Context, q models.CompletionQuery) ([]models.CompletionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	var events []models.CompletionEvent
	for habitID, byDay := range s.doc.Completions {
		if q.HabitID != "" && habitID != q.HabitID {
			continue
		}
		h, ok := s.doc.Habits[habitID]
		if !ok || h.OwnerID != q.OwnerID {
			continue
		}
		for day, e := range byDay {
			if q.Start != "" && day < q.Start {
				continue
			}
			if q.End != "" && day > q.End {
				continue
			}
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Day != events[j].Day {
			return events[i].Day < events[j].Day
		}
		return events[i].HabitID < events[j].HabitID
	})
	return events, nil
}

func (s *JSONStore) AppendCompletion(ctx context.Context, event models.CompletionEvent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return false, err
	}

	byDay := s.doc.Completions[event.HabitID]
	if byDay == nil {
		byDay = make(map[string]models.CompletionEvent)
		s.doc.Completions[event.HabitID] = byDay
	}
	if _, exists := byDay[event.Day]; exists {
		return false, nil
	}

	byDay[event.Day] = event
	if err := s.save(); err != nil {
		delete(byDay, event.Day)
		return false, err
	}
	return true, nil
}

func (s *JSONStore) RemoveCompletion(ctx context.Context, habitID, day string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return false, err
	}

	byDay := s.doc.Completions[habitID]
	event, exists := byDay[day]
	if !exists {
		return false, nil
	}

	delete(byDay, day)
	if err := s.save(); err != nil {
		byDay[day] = event
		return false, err
	}
	return true, nil
}

func (s *JSONStore) ready() error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

// save writes the document atomically. Callers hold s.mu.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return apperrors.Persistence("encode storage", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return apperrors.Persistence("write storage", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return apperrors.Persistence("replace storage", err)
	}
	return nil
}

func newDocument() *document {
	return &document{
		Version:     jsonStoreVersion,
		Habits:      make(map[string]models.Habit),
		Completions: make(map[string]map[string]models.CompletionEvent),
	}
}
