// internal/testutil/memory.go
package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	partitionstore "github.com/dalemusser/osprey/internal/app/store/partitions"
	reservationstore "github.com/dalemusser/osprey/internal/app/store/reservations"
	"github.com/dalemusser/osprey/internal/app/system/blobstore"
	"github.com/dalemusser/osprey/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// MemPartition is an in-memory identity partition. Records round-trip
// through BSON, so callers never share memory with the store and the same
// struct tags apply as with MongoDB.
type MemPartition struct {
	role models.Role

	mu   sync.Mutex
	recs []bson.M

	// Err, when set, is returned by every call.
	Err error
	// Delay holds every call until it elapses or the context ends.
	Delay time.Duration
	// UpdateErr, when set, is returned by UpdateFields only.
	UpdateErr error
}

func NewMemPartition(role models.Role) *MemPartition {
	return &MemPartition{role: role}
}

func (m *MemPartition) Role() models.Role { return m.role }

func (m *MemPartition) enter(ctx context.Context) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.Err
}

func (m *MemPartition) decode(doc bson.M) (models.Account, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	acct := models.NewAccount(m.role)
	if err := bson.Unmarshal(raw, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

func (m *MemPartition) findBy(ctx context.Context, field, value string) (models.Account, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.recs {
		if doc[field] == value {
			return m.decode(doc)
		}
	}
	return nil, nil
}

func (m *MemPartition) FindByUniqueID(ctx context.Context, uqid string) (models.Account, error) {
	return m.findBy(ctx, models.FieldUqID, uqid)
}

func (m *MemPartition) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	return m.findBy(ctx, models.FieldUsername, username)
}

func (m *MemPartition) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	return m.findBy(ctx, models.FieldEmail, email)
}

func (m *MemPartition) Search(ctx context.Context, query string, exact bool) ([]models.Account, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Account
	for _, doc := range m.recs {
		name, _ := doc[models.FieldUsername].(string)
		if (exact && name == query) || (!exact && strings.HasPrefix(name, query)) {
			acct, err := m.decode(doc)
			if err != nil {
				return nil, err
			}
			out = append(out, acct)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Base().Username < out[j].Base().Username })
	return out, nil
}

func (m *MemPartition) List(ctx context.Context) ([]models.Account, error) {
	if err := m.enter(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Account, 0, len(m.recs))
	for _, doc := range m.recs {
		acct, err := m.decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, nil
}

// collides reports whether doc shares a unique field with any record other
// than the one at index skip.
func (m *MemPartition) collides(doc bson.M, skip int) bool {
	for i, other := range m.recs {
		if i == skip {
			continue
		}
		for _, f := range []string{models.FieldUqID, models.FieldUsername, models.FieldEmail} {
			if doc[f] != nil && doc[f] == other[f] {
				return true
			}
		}
	}
	return false
}

func (m *MemPartition) Insert(ctx context.Context, acct models.Account) error {
	if err := m.enter(ctx); err != nil {
		return err
	}
	raw, err := bson.Marshal(acct)
	if err != nil {
		return err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collides(doc, -1) {
		return partitionstore.ErrDuplicate
	}
	m.recs = append(m.recs, doc)
	return nil
}

func (m *MemPartition) UpdateFields(ctx context.Context, uqid string, fields models.FieldSet) (bool, error) {
	if err := m.enter(ctx); err != nil {
		return false, err
	}
	if m.UpdateErr != nil {
		return false, m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, doc := range m.recs {
		if doc[models.FieldUqID] != uqid {
			continue
		}
		next := bson.M{}
		for k, v := range doc {
			next[k] = v
		}
		for k, v := range fields {
			switch k {
			case models.FieldID, models.FieldUqID, models.FieldRole, models.FieldCreatedAt:
				continue
			}
			next[k] = v
		}
		if m.collides(next, i) {
			return false, partitionstore.ErrDuplicate
		}
		m.recs[i] = next
		return true, nil
	}
	return false, nil
}

func (m *MemPartition) Delete(ctx context.Context, uqid string) (bool, error) {
	if err := m.enter(ctx); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, doc := range m.recs {
		if doc[models.FieldUqID] == uqid {
			m.recs = append(m.recs[:i], m.recs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of stored records.
func (m *MemPartition) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}

// MemCounters is an in-memory Sequencer.
type MemCounters struct {
	mu   sync.Mutex
	vals map[string]int64
	Err  error
}

func NewMemCounters() *MemCounters {
	return &MemCounters{vals: map[string]int64{}}
}

func (c *MemCounters) NextValue(ctx context.Context, name string) (int64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[name]++
	return c.vals[name], nil
}

func (c *MemCounters) Current(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vals[name]
}

// MemReservations mirrors the reservation store in memory.
type MemReservations struct {
	mu     sync.Mutex
	owners map[string]string
}

func NewMemReservations() *MemReservations {
	return &MemReservations{owners: map[string]string{}}
}

func (r *MemReservations) Reserve(ctx context.Context, kind, value, owner, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := kind + ":" + value
	if cur, ok := r.owners[k]; ok && cur != owner {
		return reservationstore.ErrTaken
	}
	r.owners[k] = owner
	return nil
}

func (r *MemReservations) Release(ctx context.Context, kind, value, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := kind + ":" + value
	if r.owners[k] == owner {
		delete(r.owners, k)
	}
	return nil
}

func (r *MemReservations) ReleaseOwner(ctx context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, o := range r.owners {
		if o == owner {
			delete(r.owners, k)
		}
	}
	return nil
}

// Owner returns who holds kind:value, or "".
func (r *MemReservations) Owner(kind, value string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owners[kind+":"+value]
}

// MemContent is an in-memory content source.
type MemContent struct {
	mu    sync.Mutex
	items []models.Content
}

func (m *MemContent) Add(c models.Content) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, c)
}

func (m *MemContent) ListByOwner(ctx context.Context, uqid, role string) ([]models.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Content
	for _, c := range m.items {
		if c.OwnerUqID == uqid && models.SameRole(c.OwnerRole, role) {
			out = append(out, c)
		}
	}
	return out, nil
}

// MemEvents is an in-memory event source.
type MemEvents struct {
	mu    sync.Mutex
	items []models.Event
}

func (m *MemEvents) Add(e models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, e)
}

func (m *MemEvents) ListByOwner(ctx context.Context, uqid, role string) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Event
	for _, e := range m.items {
		if e.OwnerUqID == uqid && models.SameRole(e.OwnerRole, role) {
			out = append(out, e)
		}
	}
	return out, nil
}

// MemBlobs is an in-memory blobstore.Store.
type MemBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemBlobs() *MemBlobs {
	return &MemBlobs{blobs: map[string][]byte{}}
}

func (b *MemBlobs) Put(ctx context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = data
	return nil
}

func (b *MemBlobs) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[key]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *MemBlobs) Delete(ctx context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[key]
	delete(b.blobs, key)
	return ok, nil
}

// Has reports whether key is stored.
func (b *MemBlobs) Has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[key]
	return ok
}
