// Package store implements the holiday document: a single JSON file holding
// every request ever made, the profiles of everyone who interacted with the
// workflow, and the monotonic id counter. The store is the only component
// that touches the file; all reads and mutations go through its lock, and
// every mutation rewrites the whole document.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shopcrew/go-shop-bots/internal/dateutil"
	"github.com/shopcrew/go-shop-bots/internal/domain"
)

// document is the on-disk layout. Request and user keys are stringified ids.
type document struct {
	Requests map[string]*domain.HolidayRequest `json:"requests"`
	Users    map[string]*domain.UserProfile    `json:"users"`
	NextID   int                               `json:"next_id"`
}

func emptyDocument() document {
	return document{
		Requests: map[string]*domain.HolidayRequest{},
		Users:    map[string]*domain.UserProfile{},
		NextID:   1,
	}
}

// Holidays is the holiday request store. Safe for concurrent use; the two
// bots' handler loops share one instance.
type Holidays struct {
	path string

	mu  sync.RWMutex
	doc document
}

// Open loads the document at path. A missing, unreadable, or corrupt file is
// not fatal: the store starts from the empty default and logs what happened,
// so a wiped file costs history but never takes the bots down.
func Open(path string) *Holidays {
	h := &Holidays{path: path, doc: emptyDocument()}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("holiday store unreadable, starting empty")
		}
		return h
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("holiday store corrupt, starting empty")
		return h
	}
	if doc.Requests == nil {
		doc.Requests = map[string]*domain.HolidayRequest{}
	}
	if doc.Users == nil {
		doc.Users = map[string]*domain.UserProfile{}
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	h.doc = doc
	return h
}

// save rewrites the whole document. Written to a temp file and renamed so no
// reader ever observes a torn write. Callers hold the write lock.
func (h *Holidays) save() error {
	data, err := json.MarshalIndent(h.doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := h.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil && filepath.Dir(h.path) != "." {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, h.path)
}

// UpsertUser records (or refreshes) the profile of a user who interacted with
// the workflow. Best effort: a failed save is logged and the in-memory update
// stands.
func (h *Holidays) UpsertUser(id int64, username, firstName, lastName string, now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.doc.Users[strconv.FormatInt(id, 10)] = &domain.UserProfile{
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		LastUpdate: now.Format(time.RFC3339),
	}
	if err := h.save(); err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("holiday store: persist user failed")
	}
}

// CreateRequest allocates the next id, stores a new pending record, and
// persists. The id is returned even if persistence fails; the record then
// lives in memory until restart and the failure is logged.
func (h *Holidays) CreateRequest(userID int64, date time.Time, reason string, now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.doc.NextID
	h.doc.NextID++
	h.doc.Requests[strconv.Itoa(id)] = &domain.HolidayRequest{
		UserID:    userID,
		Date:      dateutil.ISODate(date),
		Reason:    reason,
		Status:    domain.HolidayPending,
		CreatedAt: now.Format(time.RFC3339),
	}
	if err := h.save(); err != nil {
		log.Error().Err(err).Int("request_id", id).Msg("holiday store: persist request failed")
	}
	return id
}

// UpdateRequestStatus sets the status and the processed-by/processed-at pair,
// then persists. Returns false for an unknown id or a failed save. It does
// not check the current status; the workflow layer guards the
// only-from-pending rule before calling.
func (h *Holidays) UpdateRequestStatus(id int, status domain.HolidayStatus, adminID int64, now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	req, ok := h.doc.Requests[strconv.Itoa(id)]
	if !ok {
		return false
	}
	req.Status = status
	req.ProcessedBy = adminID
	req.ProcessedAt = now.Format(time.RFC3339)
	if err := h.save(); err != nil {
		log.Error().Err(err).Int("request_id", id).Msg("holiday store: persist status failed")
		return false
	}
	return true
}

// Request returns a copy of the record with the given id.
func (h *Holidays) Request(id int) (domain.HolidayRequest, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	req, ok := h.doc.Requests[strconv.Itoa(id)]
	if !ok {
		return domain.HolidayRequest{}, false
	}
	out := *req
	out.ID = id
	return out, true
}

// User returns a copy of the stored profile for id.
func (h *Holidays) User(id int64) (domain.UserProfile, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	u, ok := h.doc.Users[strconv.FormatInt(id, 10)]
	if !ok {
		return domain.UserProfile{}, false
	}
	return *u, true
}

// UserRequests returns the user's requests, newest first. A non-empty status
// narrows the result.
func (h *Holidays) UserRequests(userID int64, status domain.HolidayStatus) []domain.HolidayRequest {
	out := h.collect(func(r domain.HolidayRequest) bool {
		return r.UserID == userID && (status == "" || r.Status == status)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// FutureApproved returns the user's approved requests dated today or later,
// soonest first.
func (h *Holidays) FutureApproved(userID int64, today time.Time) []domain.HolidayRequest {
	cutoff := dateutil.ISODate(dateutil.Midnight(today))
	out := h.collect(func(r domain.HolidayRequest) bool {
		return r.UserID == userID && r.Status == domain.HolidayApproved && r.Date >= cutoff
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// AllApproved returns every approved request of the user, latest date first.
func (h *Holidays) AllApproved(userID int64) []domain.HolidayRequest {
	out := h.collect(func(r domain.HolidayRequest) bool {
		return r.UserID == userID && r.Status == domain.HolidayApproved
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// IsDateAvailable reports whether no approved request exists for the date,
// across all users. Pending requests do not occupy a date; only approval is
// exclusive.
func (h *Holidays) IsDateAvailable(date time.Time) bool {
	iso := dateutil.ISODate(date)
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, r := range h.doc.Requests {
		if r.Status == domain.HolidayApproved && r.Date == iso {
			return false
		}
	}
	return true
}

// FreeDates scans forward day by day from tomorrow, skipping weekends,
// and collects the first n available dates. The scan gives up after horizon
// days so a fully booked calendar cannot loop unbounded.
func (h *Holidays) FreeDates(n int, today time.Time, horizon int) []time.Time {
	out := make([]time.Time, 0, n)
	d := dateutil.Midnight(today)
	for i := 0; i < horizon && len(out) < n; i++ {
		d = d.AddDate(0, 0, 1)
		if dateutil.IsWeekend(d) {
			continue
		}
		if h.IsDateAvailable(d) {
			out = append(out, d)
		}
	}
	return out
}

// ByStatus returns every request (all users) with the given status, newest
// id first. An empty status returns everything. Feeds the admin listing.
func (h *Holidays) ByStatus(status domain.HolidayStatus) []domain.HolidayRequest {
	out := h.collect(func(r domain.HolidayRequest) bool {
		return status == "" || r.Status == status
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// collect snapshots matching requests under the read lock, ids filled in.
func (h *Holidays) collect(match func(domain.HolidayRequest) bool) []domain.HolidayRequest {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []domain.HolidayRequest
	for key, r := range h.doc.Requests {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		rec := *r
		rec.ID = id
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out
}
