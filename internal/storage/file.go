package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/yourname/sleepreport/internal"
)

type FileStorage struct {
	records     map[string]*internal.SleepRecord   // id -> record
	userIndex   map[string][]*internal.SleepRecord // login -> records (date descending)
	dayIndex    map[string]string                  // login|date -> id
	usersByTok  map[string]*internal.User
	usersByName map[string]*internal.User
	mu          sync.RWMutex
	writeMu     sync.Mutex
	usersFile   string
	sleepFile   string
	saveChan    chan struct{}
	shutdown    chan struct{}
	closeOnce   sync.Once
	saveDelay   time.Duration
	logger      internal.Logger
}

func NewFileStorage(usersFile, sleepFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		records:     make(map[string]*internal.SleepRecord),
		userIndex:   make(map[string][]*internal.SleepRecord),
		dayIndex:    make(map[string]string),
		usersByTok:  make(map[string]*internal.User),
		usersByName: make(map[string]*internal.User),
		usersFile:   usersFile,
		sleepFile:   sleepFile,
		saveChan:    make(chan struct{}, 1),
		shutdown:    make(chan struct{}),
		saveDelay:   500 * time.Millisecond,
		logger:      logger,
	}

	if err := s.loadUsers(); err != nil {
		logger.Errorf("storage: failed to load users: %v", err)
		return nil, err
	}
	if err := s.loadRecords(); err != nil {
		logger.Errorf("storage: failed to load sleep records: %v", err)
		return nil, err
	}

	go s.saveWorker()

	return s, nil
}

func (s *FileStorage) loadUsers() error {
	file, err := os.Open(s.usersFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var users []*internal.User
	if err := json.NewDecoder(file).Decode(&users); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if u.Role == "" {
			u.Role = internal.RoleUser
		}
		if u.Token != "" {
			s.usersByTok[u.Token] = u
		}
		if u.Login != "" {
			s.usersByName[u.Login] = u
		}
	}
	return nil
}

func (s *FileStorage) loadRecords() error {
	file, err := os.Open(s.sleepFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var recs []*internal.SleepRecord
	if err := json.NewDecoder(file).Decode(&recs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		key := dayKey(r.User, r.Date)
		if _, dup := s.dayIndex[key]; dup {
			s.logger.Warnf("storage: dropping duplicate record %s for %s on %s", r.ID, r.User, r.Date)
			continue
		}
		s.records[r.ID] = r
		s.dayIndex[key] = r.ID
		s.userIndex[r.User] = append(s.userIndex[r.User], r)
	}

	// ISO dates sort lexically
	for user := range s.userIndex {
		sort.Slice(s.userIndex[user], func(i, j int) bool {
			return s.userIndex[user][i].Date > s.userIndex[user][j].Date
		})
	}

	return nil
}

func dayKey(user, date string) string {
	return user + "|" + date
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveRecords() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	recs := make([]*internal.SleepRecord, 0, len(s.records))
	for _, r := range s.records {
		recs = append(recs, r)
	}
	s.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Date != recs[j].Date {
			return recs[i].Date < recs[j].Date
		}
		return recs[i].User < recs[j].User
	})
	return atomicWriteFileJSON(s.sleepFile, recs)
}

// saveWorker batches writes: each SaveRecord pushes the deadline back by saveDelay.
func (s *FileStorage) saveWorker() {
	timer := time.NewTimer(s.saveDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.saveRecords(); err != nil {
				s.logger.Errorf("storage: error saving sleep records: %v", err)
			}
		case <-s.shutdown:
			return
		}
	}
}

// Close stops the worker and flushes pending records synchronously.
func (s *FileStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdown)
		err = s.saveRecords()
	})
	return err
}

// --- RecordStore ---
func (s *FileStorage) SaveRecord(ctx context.Context, rec *internal.SleepRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey(rec.User, rec.Date)
	if _, exists := s.dayIndex[key]; exists {
		return ErrDuplicateEntry
	}
	stored := *rec
	s.records[stored.ID] = &stored
	s.dayIndex[key] = stored.ID

	recs := s.userIndex[stored.User]
	i := sort.Search(len(recs), func(i int) bool { return recs[i].Date < stored.Date })
	recs = append(recs, nil)
	copy(recs[i+1:], recs[i:])
	recs[i] = &stored
	s.userIndex[stored.User] = recs

	select {
	case s.saveChan <- struct{}{}:
	default:
	}
	return nil
}

func (s *FileStorage) FetchRecords(ctx context.Context, filter RecordFilter) ([]internal.SleepRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []internal.SleepRecord{}
	if filter.User != "" {
		for _, r := range s.userIndex[filter.User] {
			if matches(r, filter) {
				out = append(out, *r)
			}
		}
		return out, nil
	}
	for _, r := range s.records {
		if matches(r, filter) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *FileStorage) HasEntry(ctx context.Context, user, date string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dayIndex[dayKey(user, date)]
	return ok, nil
}

// --- UserRepository ---
func (s *FileStorage) GetUserByToken(ctx context.Context, token string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByTok[token]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *FileStorage) GetUserByLogin(ctx context.Context, login string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByName[login]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// --- Compile-time assertions ---
var _ Store = (*FileStorage)(nil)
