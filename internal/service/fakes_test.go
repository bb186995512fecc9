package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore with the same filter
// semantics as the SQL implementation, so listing behavior can be
// exercised without a database.
type fakeTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
	tags   map[int64]*domain.Tag
	links  map[int64]map[int64]bool
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{
		tasks: make(map[int64]*domain.Task),
		tags:  make(map[int64]*domain.Tag),
		links: make(map[int64]map[int64]bool),
	}
}

func (f *fakeTaskStore) addTag(tag *domain.Tag) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags[tag.ID] = tag
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

func (f *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	task.ID = f.nextID
	f.tasks[task.ID] = cloneTask(task)
	return nil
}

func (f *fakeTaskStore) withTags(task *domain.Task) *domain.Task {
	c := cloneTask(task)
	c.Tags = []*domain.Tag{}
	var ids []int64
	for tagID := range f.links[task.ID] {
		ids = append(ids, tagID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, tagID := range ids {
		if tag, ok := f.tags[tagID]; ok && tag.DeletedAt == nil {
			c.Tags = append(c.Tags, tag)
		}
	}
	return c
}

func (f *fakeTaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return f.withTags(task), nil
}

func (f *fakeTaskStore) GetDeletedByID(_ context.Context, id int64) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.DeletedAt == nil {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	f.tasks[task.ID] = cloneTask(task)
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.DeletedAt != nil {
		return store.ErrTaskNotFound
	}
	now := time.Now().UTC()
	task.DeletedAt = &now
	task.UpdatedAt = now
	return nil
}

func (f *fakeTaskStore) Restore(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.DeletedAt == nil {
		return store.ErrTaskNotFound
	}
	task.DeletedAt = nil
	task.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeTaskStore) List(_ context.Context, filter store.TaskFilter) (*store.TaskPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*domain.Task
	for _, task := range f.tasks {
		if !matchesFilter(task, filter) {
			continue
		}
		matched = append(matched, f.withTags(task))
	}

	sortTasks(matched, filter.SortBy, filter.SortDirection)

	total := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return store.NewTaskPage(matched[start:end], total, filter.Page, filter.PerPage), nil
}

func matchesFilter(task *domain.Task, f store.TaskFilter) bool {
	switch f.Visibility {
	case store.VisibilityDeletedOnly:
		if task.DeletedAt == nil {
			return false
		}
	case store.VisibilityAll:
	default:
		if task.DeletedAt != nil {
			return false
		}
	}
	if f.UserID != nil && task.UserID != *f.UserID {
		return false
	}
	if f.Status != nil && task.Status != *f.Status {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		inTitle := strings.Contains(strings.ToLower(task.Title), kw)
		inDesc := task.Description != nil && strings.Contains(strings.ToLower(*task.Description), kw)
		if !inTitle && !inDesc {
			return false
		}
	}
	if f.DueFrom != nil && (task.DueDate == nil || task.DueDate.Before(*f.DueFrom)) {
		return false
	}
	if f.DueTo != nil && (task.DueDate == nil || task.DueDate.After(*f.DueTo)) {
		return false
	}
	return true
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func sortTasks(tasks []*domain.Task, sortBy, dir string) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		var less, eq bool
		switch sortBy {
		case "id":
			less, eq = a.ID < b.ID, a.ID == b.ID
		case "title":
			less, eq = a.Title < b.Title, a.Title == b.Title
		case "status":
			less, eq = a.Status < b.Status, a.Status == b.Status
		case "due_date":
			at, bt := timeOrZero(a.DueDate), timeOrZero(b.DueDate)
			less, eq = at.Before(bt), at.Equal(bt)
		case "updated_at":
			less, eq = a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
		default:
			less, eq = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
		if eq {
			return a.ID < b.ID
		}
		if dir == store.SortDesc {
			return !less
		}
		return less
	})
}

func (f *fakeTaskStore) AttachTags(_ context.Context, taskID int64, tagIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tagID := range tagIDs {
		if _, ok := f.tags[tagID]; !ok {
			return store.ErrInvalidEntity
		}
	}
	if f.links[taskID] == nil {
		f.links[taskID] = make(map[int64]bool)
	}
	for _, tagID := range tagIDs {
		f.links[taskID][tagID] = true
	}
	return nil
}

func (f *fakeTaskStore) DetachTags(_ context.Context, taskID int64, tagIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tagID := range tagIDs {
		delete(f.links[taskID], tagID)
	}
	return nil
}

func (f *fakeTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return f }

// fakeTagStore is an in-memory store.TagStore.
type fakeTagStore struct {
	mu     sync.Mutex
	nextID int64
	tags   map[int64]*domain.Tag
}

var _ store.TagStore = (*fakeTagStore)(nil)

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{tags: make(map[int64]*domain.Tag)}
}

func cloneTag(t *domain.Tag) *domain.Tag {
	c := *t
	return &c
}

func (f *fakeTagStore) Create(_ context.Context, tag *domain.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	tag.ID = f.nextID
	f.tags[tag.ID] = cloneTag(tag)
	return nil
}

func (f *fakeTagStore) GetByID(_ context.Context, id int64) (*domain.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag, ok := f.tags[id]
	if !ok || tag.DeletedAt != nil {
		return nil, store.ErrTagNotFound
	}
	return cloneTag(tag), nil
}

func (f *fakeTagStore) List(_ context.Context, filter store.TagFilter) ([]*domain.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []*domain.Tag{}
	for _, tag := range f.tags {
		if tag.DeletedAt != nil {
			continue
		}
		if filter.UserID != nil && tag.UserID != *filter.UserID {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(tag.Name), strings.ToLower(filter.Keyword)) {
			continue
		}
		result = append(result, cloneTag(tag))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeTagStore) Update(_ context.Context, tag *domain.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.tags[tag.ID]
	if !ok || existing.DeletedAt != nil {
		return store.ErrTagNotFound
	}
	f.tags[tag.ID] = cloneTag(tag)
	return nil
}

func (f *fakeTagStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag, ok := f.tags[id]
	if !ok || tag.DeletedAt != nil {
		return store.ErrTagNotFound
	}
	now := time.Now().UTC()
	tag.DeletedAt = &now
	return nil
}

// fakeInvalidator counts eviction calls.
type fakeInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeInvalidator) Invalidate(_ context.Context) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeStatsStore counts aggregation scans and serves canned results.
type fakeStatsStore struct {
	mu      sync.Mutex
	calls   int
	results []store.UserTaskCount
	err     error
}

var _ store.StatsStore = (*fakeStatsStore)(nil)

func (f *fakeStatsStore) TaskCountByUser(_ context.Context, _ int) ([]store.UserTaskCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeStatsStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeCache is a map-backed store.Cache that records operations and can
// be made to fail.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes []string
	getErr  error
	setErr  error
}

var _ store.Cache = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return false, f.getErr
	}
	data, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = data
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeCache) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}
