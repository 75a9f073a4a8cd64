package service

import (
	"context"
	"fmt"
	"time"

	"moovyzoo/internal/model"

	"gorm.io/gorm"
)

// In-memory store fakes shared by the service tests. Counters track how many
// fetches each collaborator saw.

type fakeMemberStore struct {
	rows        map[string]map[string]*model.HabitatMember // habitatID -> userID
	listCalls   int
	existsCalls int
}

func newFakeMemberStore() *fakeMemberStore {
	return &fakeMemberStore{rows: map[string]map[string]*model.HabitatMember{}}
}

func (f *fakeMemberStore) Insert(ctx context.Context, m *model.HabitatMember) error {
	if f.rows[m.HabitatID] == nil {
		f.rows[m.HabitatID] = map[string]*model.HabitatMember{}
	}
	if _, ok := f.rows[m.HabitatID][m.UserID]; ok {
		return nil // conflict is a no-op, like the insert-ignore in the real repo
	}
	if m.ID == "" {
		m.ID = fmt.Sprintf("m-%d", len(f.rows[m.HabitatID])+1)
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	f.rows[m.HabitatID][m.UserID] = m
	return nil
}

func (f *fakeMemberStore) Delete(ctx context.Context, habitatID, userID string) error {
	delete(f.rows[habitatID], userID)
	return nil
}

func (f *fakeMemberStore) Exists(ctx context.Context, habitatID, userID string) (bool, error) {
	f.existsCalls++
	_, ok := f.rows[habitatID][userID]
	return ok, nil
}

func (f *fakeMemberStore) ListByHabitat(ctx context.Context, habitatID string) ([]model.HabitatMember, error) {
	f.listCalls++
	out := make([]model.HabitatMember, 0, len(f.rows[habitatID]))
	for _, m := range f.rows[habitatID] {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMemberStore) TouchLastActive(ctx context.Context, habitatID, userID string) error {
	if m, ok := f.rows[habitatID][userID]; ok {
		m.LastActive = time.Now()
	}
	return nil
}

type fakeHabitatStore struct {
	habitats     map[string]*model.Habitat
	members      *fakeMemberStore
	findCalls    int
	recountCalls int
}

func newFakeHabitatStore(members *fakeMemberStore) *fakeHabitatStore {
	return &fakeHabitatStore{habitats: map[string]*model.Habitat{}, members: members}
}

// add seeds a habitat plus its owner membership row.
func (f *fakeHabitatStore) add(h *model.Habitat) *model.Habitat {
	if h.ID == "" {
		h.ID = fmt.Sprintf("h-%d", len(f.habitats)+1)
	}
	f.habitats[h.ID] = h
	_ = f.members.Insert(context.Background(), &model.HabitatMember{
		HabitatID: h.ID,
		UserID:    h.CreatedBy,
	})
	h.MemberCount = 1
	return h
}

func (f *fakeHabitatStore) Create(ctx context.Context, h *model.Habitat) error {
	f.add(h)
	return nil
}

func (f *fakeHabitatStore) FindByID(ctx context.Context, id string) (*model.Habitat, error) {
	f.findCalls++
	h, ok := f.habitats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return h, nil
}

func (f *fakeHabitatStore) ListPublic(ctx context.Context, offset, limit int) ([]model.Habitat, error) {
	out := []model.Habitat{}
	for _, h := range f.habitats {
		if h.IsPublic {
			out = append(out, *h)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeHabitatStore) Update(ctx context.Context, h *model.Habitat) error {
	f.habitats[h.ID] = h
	return nil
}

func (f *fakeHabitatStore) RecountMembers(ctx context.Context, habitatID string) (int64, error) {
	f.recountCalls++
	h, ok := f.habitats[habitatID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	cnt := int64(len(f.members.rows[habitatID]))
	h.MemberCount = cnt
	return cnt, nil
}

type fakeCountCache struct {
	vals    map[string]int64
	sets    int
	deletes int
}

func newFakeCountCache() *fakeCountCache {
	return &fakeCountCache{vals: map[string]int64{}}
}

func (f *fakeCountCache) GetCached(ctx context.Context, habitatID string) (int64, bool, error) {
	v, ok := f.vals[habitatID]
	return v, ok, nil
}

func (f *fakeCountCache) Set(ctx context.Context, habitatID string, count int64) error {
	f.sets++
	f.vals[habitatID] = count
	return nil
}

func (f *fakeCountCache) DeleteCount(ctx context.Context, habitatID string, delay ...time.Duration) error {
	f.deletes++
	delete(f.vals, habitatID)
	return nil
}

type fakeDiscussionStore struct {
	discussions map[string]*model.Discussion
	stats       []model.DiscussionStats
	listCalls   int
	deleted     []string
	listErr     error
}

func newFakeDiscussionStore() *fakeDiscussionStore {
	return &fakeDiscussionStore{discussions: map[string]*model.Discussion{}}
}

func (f *fakeDiscussionStore) Create(ctx context.Context, d *model.Discussion) error {
	if d.ID == "" {
		d.ID = fmt.Sprintf("d-%d", len(f.discussions)+1)
	}
	d.IsActive = true
	f.discussions[d.ID] = d
	return nil
}

func (f *fakeDiscussionStore) FindByID(ctx context.Context, id string) (*model.Discussion, error) {
	d, ok := f.discussions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (f *fakeDiscussionStore) ListWithStats(ctx context.Context, habitatID string) ([]model.DiscussionStats, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.stats, nil
}

func (f *fakeDiscussionStore) SoftDelete(ctx context.Context, id, habitatID string) error {
	f.deleted = append(f.deleted, id)
	if d, ok := f.discussions[id]; ok {
		d.IsActive = false
	}
	return nil
}

type fakePollStore struct {
	polls     map[string]*model.Poll
	voteErr   error
	votes     map[string]map[string]string // pollID -> userID -> option
	listCalls int
	listErr   error
	deleted   []string
}

func newFakePollStore() *fakePollStore {
	return &fakePollStore{polls: map[string]*model.Poll{}, votes: map[string]map[string]string{}}
}

func (f *fakePollStore) Create(ctx context.Context, p *model.Poll, options []string) error {
	if p.ID == "" {
		p.ID = fmt.Sprintf("p-%d", len(f.polls)+1)
	}
	p.IsActive = true
	opts := "{"
	for i, o := range options {
		if i > 0 {
			opts += ","
		}
		opts += fmt.Sprintf("%q:0", o)
	}
	opts += "}"
	p.Options = opts
	f.polls[p.ID] = p
	return nil
}

func (f *fakePollStore) FindByID(ctx context.Context, id string) (*model.Poll, error) {
	p, ok := f.polls[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakePollStore) ListActive(ctx context.Context, habitatID string) ([]model.Poll, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Poll{}
	for _, p := range f.polls {
		if p.HabitatID == habitatID && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePollStore) Vote(ctx context.Context, pollID, userID, option string) error {
	if f.voteErr != nil {
		return f.voteErr
	}
	if f.votes[pollID] == nil {
		f.votes[pollID] = map[string]string{}
	}
	f.votes[pollID][userID] = option
	return nil
}

func (f *fakePollStore) SoftDelete(ctx context.Context, id, habitatID string) error {
	f.deleted = append(f.deleted, id)
	if p, ok := f.polls[id]; ok {
		p.IsActive = false
	}
	return nil
}

type fakeWatchPartyStore struct {
	parties      map[string]*model.WatchParty
	participants map[string]map[string]bool // streamID -> userID
	emails       []string
	listCalls    int
	joinedCalls  int
}

func newFakeWatchPartyStore() *fakeWatchPartyStore {
	return &fakeWatchPartyStore{parties: map[string]*model.WatchParty{}, participants: map[string]map[string]bool{}}
}

func (f *fakeWatchPartyStore) Create(ctx context.Context, wp *model.WatchParty) error {
	if wp.ID == "" {
		wp.ID = fmt.Sprintf("s-%d", len(f.parties)+1)
	}
	f.parties[wp.ID] = wp
	if f.participants[wp.ID] == nil {
		f.participants[wp.ID] = map[string]bool{}
	}
	f.participants[wp.ID][wp.CreatedBy] = true
	wp.ParticipantCount = 1
	return nil
}

func (f *fakeWatchPartyStore) FindByID(ctx context.Context, id string) (*model.WatchParty, error) {
	wp, ok := f.parties[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return wp, nil
}

func (f *fakeWatchPartyStore) ListUpcoming(ctx context.Context, habitatID string, now time.Time) ([]model.WatchParty, error) {
	f.listCalls++
	out := []model.WatchParty{}
	for _, wp := range f.parties {
		if wp.HabitatID == habitatID && wp.ScheduledTime.After(now) {
			out = append(out, *wp)
		}
	}
	return out, nil
}

func (f *fakeWatchPartyStore) ParticipantExists(ctx context.Context, streamID, userID string) (bool, error) {
	return f.participants[streamID][userID], nil
}

func (f *fakeWatchPartyStore) AddParticipant(ctx context.Context, streamID, habitatID, userID string) error {
	if f.participants[streamID] == nil {
		f.participants[streamID] = map[string]bool{}
	}
	f.participants[streamID][userID] = true
	return nil
}

func (f *fakeWatchPartyStore) RemoveParticipant(ctx context.Context, streamID, habitatID, userID string) error {
	delete(f.participants[streamID], userID)
	return nil
}

func (f *fakeWatchPartyStore) RecountParticipants(ctx context.Context, streamID string) (int64, error) {
	wp, ok := f.parties[streamID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	cnt := int64(len(f.participants[streamID]))
	wp.ParticipantCount = cnt
	return cnt, nil
}

func (f *fakeWatchPartyStore) ListJoinedStreamIDs(ctx context.Context, habitatID, userID string) ([]string, error) {
	f.joinedCalls++
	out := []string{}
	for id, users := range f.participants {
		if users[userID] && f.parties[id] != nil && f.parties[id].HabitatID == habitatID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeWatchPartyStore) ListParticipantEmails(ctx context.Context, streamID string) ([]string, error) {
	return f.emails, nil
}

type fakeMessageStore struct {
	messages []model.Message
}

func (f *fakeMessageStore) Create(ctx context.Context, m *model.Message) error {
	if m.ID == "" {
		m.ID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	}
	m.CreatedAt = time.Now()
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeMessageStore) ListByChatCursor(ctx context.Context, chatID string, lastID string, lastCreatedAt int64, limit int) ([]model.MessageWithAuthor, error) {
	out := []model.MessageWithAuthor{}
	for i := len(f.messages) - 1; i >= 0 && len(out) < limit; i-- {
		m := f.messages[i]
		if m.ChatID == chatID {
			out = append(out, model.MessageWithAuthor{Message: m})
		}
	}
	return out, nil
}

func memberRow(habitatID, userID string) *model.HabitatMember {
	return &model.HabitatMember{HabitatID: habitatID, UserID: userID}
}

// testWorld wires the habitat service against fresh fakes.
type testWorld struct {
	habitats *fakeHabitatStore
	members  *fakeMemberStore
	counts   *fakeCountCache
	svc      *HabitatService
}

func newTestWorld() *testWorld {
	members := newFakeMemberStore()
	habitats := newFakeHabitatStore(members)
	counts := newFakeCountCache()
	return &testWorld{
		habitats: habitats,
		members:  members,
		counts:   counts,
		svc:      NewHabitatService(habitats, members, counts),
	}
}

func (w *testWorld) seedHabitat(owner string, public bool) *model.Habitat {
	return w.habitats.add(&model.Habitat{
		Name:        "Test Habitat",
		Description: "a place to argue about movies",
		IsPublic:    public,
		CreatedBy:   owner,
	})
}
