// Package memory provides an in-memory transactional store implementing the
// domain repository ports. A single store mutex linearizes every mutation,
// so the registrar's two-record updates are atomic: no reader observes a
// decremented seat count without the matching profile entry.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/query"
)

// Store is an in-memory implementation of the conference, profile, session
// and speaker repositories plus the registrar. Safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	profiles    map[string]*domain.Profile
	conferences map[string]*domain.Conference
	sessions    map[string]*domain.Session
	speakers    map[string]*domain.Speaker
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		profiles:    make(map[string]*domain.Profile),
		conferences: make(map[string]*domain.Conference),
		sessions:    make(map[string]*domain.Session),
		speakers:    make(map[string]*domain.Speaker),
	}
}

// Per-entity repository views. The store itself implements
// domain.Registrar and domain.ConferenceRepository; the views adapt the
// remaining ports whose method names would otherwise collide.

func (s *Store) Conferences() domain.ConferenceRepository { return s }

func (s *Store) Profiles() domain.ProfileRepository { return profileView{s} }

func (s *Store) Sessions() domain.SessionRepository { return sessionView{s} }

func (s *Store) Speakers() domain.SpeakerRepository { return speakerView{s} }

type profileView struct{ s *Store }

func (v profileView) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return v.s.Get(ctx, userID)
}

func (v profileView) GetOrCreate(ctx context.Context, defaults *domain.Profile) (*domain.Profile, error) {
	return v.s.GetOrCreate(ctx, defaults)
}

func (v profileView) Update(ctx context.Context, profile *domain.Profile) error {
	return v.s.UpdateProfile(ctx, profile)
}

type sessionView struct{ s *Store }

func (v sessionView) Create(ctx context.Context, session *domain.Session) error {
	return v.s.CreateSession(ctx, session)
}

func (v sessionView) GetByKey(ctx context.Context, key domain.Key) (*domain.Session, error) {
	return v.s.GetSessionByKey(ctx, key)
}

func (v sessionView) ListByConference(ctx context.Context, confKey domain.Key) ([]*domain.Session, error) {
	return v.s.ListByConference(ctx, confKey)
}

func (v sessionView) ListByConferenceAndType(ctx context.Context, confKey domain.Key, t domain.SessionType) ([]*domain.Session, error) {
	return v.s.ListByConferenceAndType(ctx, confKey, t)
}

func (v sessionView) ListBySpeaker(ctx context.Context, speakerKey domain.Key) ([]*domain.Session, error) {
	return v.s.ListBySpeaker(ctx, speakerKey)
}

func (v sessionView) GetMulti(ctx context.Context, keys []domain.Key) ([]*domain.Session, error) {
	return v.s.GetSessionsMulti(ctx, keys)
}

type speakerView struct{ s *Store }

func (v speakerView) Create(ctx context.Context, speaker *domain.Speaker) error {
	return v.s.CreateSpeaker(ctx, speaker)
}

func (v speakerView) GetByKey(ctx context.Context, key domain.Key) (*domain.Speaker, error) {
	return v.s.GetSpeakerByKey(ctx, key)
}

// --- ConferenceRepository ---

func (s *Store) Create(ctx context.Context, conf *domain.Conference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conferences[conf.Key.Encode()] = cloneConference(conf)
	return nil
}

func (s *Store) GetByKey(ctx context.Context, key domain.Key) (*domain.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conf, ok := s.conferences[key.Encode()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneConference(conf), nil
}

func (s *Store) Update(ctx context.Context, conf *domain.Conference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := conf.Key.Encode()
	if _, ok := s.conferences[enc]; !ok {
		return domain.ErrNotFound
	}
	s.conferences[enc] = cloneConference(conf)
	return nil
}

func (s *Store) ListByOrganizer(ctx context.Context, userID string) ([]*domain.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Conference, 0)
	for _, conf := range s.conferences {
		if conf.OrganizerUserID == userID {
			out = append(out, cloneConference(conf))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetMulti(ctx context.Context, keys []domain.Key) ([]*domain.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Conference, len(keys))
	for i, key := range keys {
		if conf, ok := s.conferences[key.Encode()]; ok {
			out[i] = cloneConference(conf)
		}
	}
	return out, nil
}

func (s *Store) Query(ctx context.Context, plan *query.Plan) ([]*domain.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]*domain.Conference, 0)
	for _, conf := range s.conferences {
		if matchesPlan(conf, plan) {
			matched = append(matched, cloneConference(conf))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		for _, prop := range plan.OrderBy {
			switch c := compareProperty(matched[i], matched[j], prop); {
			case c < 0:
				return true
			case c > 0:
				return false
			}
		}
		return false
	})
	return matched, nil
}

func (s *Store) ListNearlySoldOut(ctx context.Context, maxSeats int) ([]*domain.Conference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Conference, 0)
	for _, conf := range s.conferences {
		if conf.SeatsAvailable > 0 && conf.SeatsAvailable <= maxSeats {
			out = append(out, cloneConference(conf))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- ProfileRepository ---

func (s *Store) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prof, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProfile(prof), nil
}

func (s *Store) GetOrCreate(ctx context.Context, defaults *domain.Profile) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProfile(s.getOrCreateLocked(defaults)), nil
}

func (s *Store) getOrCreateLocked(defaults *domain.Profile) *domain.Profile {
	if prof, ok := s.profiles[defaults.UserID]; ok {
		return prof
	}
	prof := cloneProfile(defaults)
	now := time.Now()
	prof.CreatedAt = now
	prof.UpdatedAt = now
	s.profiles[defaults.UserID] = prof
	return prof
}

func (s *Store) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.UserID]; !ok {
		return domain.ErrNotFound
	}
	updated := cloneProfile(profile)
	updated.UpdatedAt = time.Now()
	s.profiles[profile.UserID] = updated
	return nil
}

// --- Registrar ---

func (s *Store) Register(ctx context.Context, userID string, confKey domain.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conf, ok := s.conferences[confKey.Encode()]
	if !ok {
		return domain.ErrNotFound
	}
	prof := s.getOrCreateLocked(&domain.Profile{UserID: userID, TeeShirtSize: domain.TeeShirtSizeNotSpecified})

	if domain.ContainsKey(prof.ConferenceKeysToAttend, confKey) {
		return domain.ErrAlreadyRegistered
	}
	if conf.SeatsAvailable <= 0 {
		return domain.ErrNoSeatsAvailable
	}

	prof.ConferenceKeysToAttend = append(prof.ConferenceKeysToAttend, confKey)
	prof.UpdatedAt = time.Now()
	conf.SeatsAvailable--
	conf.UpdatedAt = time.Now()
	return nil
}

func (s *Store) Unregister(ctx context.Context, userID string, confKey domain.Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conf, ok := s.conferences[confKey.Encode()]
	if !ok {
		return false, domain.ErrNotFound
	}
	prof := s.getOrCreateLocked(&domain.Profile{UserID: userID, TeeShirtSize: domain.TeeShirtSizeNotSpecified})

	if !domain.ContainsKey(prof.ConferenceKeysToAttend, confKey) {
		return false, nil
	}

	prof.ConferenceKeysToAttend = domain.RemoveKey(prof.ConferenceKeysToAttend, confKey)
	prof.UpdatedAt = time.Now()
	conf.SeatsAvailable++
	conf.UpdatedAt = time.Now()
	return true, nil
}

// --- SessionRepository ---

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Key.Encode()] = cloneSession(session)
	return nil
}

func (s *Store) GetSessionByKey(ctx context.Context, key domain.Key) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key.Encode()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneSession(sess), nil
}

func (s *Store) ListByConference(ctx context.Context, confKey domain.Key) ([]*domain.Session, error) {
	return s.listSessions(func(sess *domain.Session) bool {
		return sess.ConferenceKey.Encode() == confKey.Encode()
	})
}

func (s *Store) ListByConferenceAndType(ctx context.Context, confKey domain.Key, t domain.SessionType) ([]*domain.Session, error) {
	return s.listSessions(func(sess *domain.Session) bool {
		return sess.ConferenceKey.Encode() == confKey.Encode() && sess.TypeOfSession == t
	})
}

func (s *Store) ListBySpeaker(ctx context.Context, speakerKey domain.Key) ([]*domain.Session, error) {
	return s.listSessions(func(sess *domain.Session) bool {
		return sess.SpeakerKey != nil && sess.SpeakerKey.Encode() == speakerKey.Encode()
	})
}

func (s *Store) listSessions(match func(*domain.Session) bool) ([]*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Session, 0)
	for _, sess := range s.sessions {
		if match(sess) {
			out = append(out, cloneSession(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetSessionsMulti(ctx context.Context, keys []domain.Key) ([]*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Session, len(keys))
	for i, key := range keys {
		if sess, ok := s.sessions[key.Encode()]; ok {
			out[i] = cloneSession(sess)
		}
	}
	return out, nil
}

// --- SpeakerRepository ---

func (s *Store) CreateSpeaker(ctx context.Context, speaker *domain.Speaker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speakers[speaker.Key.Encode()] = cloneSpeaker(speaker)
	return nil
}

func (s *Store) GetSpeakerByKey(ctx context.Context, key domain.Key) (*domain.Speaker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	speaker, ok := s.speakers[key.Encode()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneSpeaker(speaker), nil
}

// --- plan evaluation ---

func matchesPlan(conf *domain.Conference, plan *query.Plan) bool {
	for _, node := range plan.Nodes {
		if !matchesNode(conf, node) {
			return false
		}
	}
	return true
}

func matchesNode(conf *domain.Conference, node query.Node) bool {
	switch node.Property {
	case "topics":
		// Multi-valued property: the predicate holds when any element
		// satisfies the comparison.
		want, ok := node.Value.(string)
		if !ok {
			return false
		}
		for _, topic := range conf.Topics {
			if compareOrdered(topic, want, node.Op) {
				return true
			}
		}
		return false
	case "city":
		want, ok := node.Value.(string)
		if !ok {
			return false
		}
		return compareOrdered(conf.City, want, node.Op)
	case "month":
		want, ok := node.Value.(int)
		if !ok {
			return false
		}
		return compareOrdered(conf.Month, want, node.Op)
	case "maxAttendees":
		want, ok := node.Value.(int)
		if !ok {
			return false
		}
		return compareOrdered(conf.MaxAttendees, want, node.Op)
	default:
		return false
	}
}

func compareOrdered[T int | string](have, want T, op query.Operator) bool {
	switch op {
	case query.OpEqual:
		return have == want
	case query.OpGreater:
		return have > want
	case query.OpGreaterOrEqual:
		return have >= want
	case query.OpLess:
		return have < want
	case query.OpLessOrEqual:
		return have <= want
	case query.OpNotEqual:
		return have != want
	default:
		return false
	}
}

func compareProperty(a, b *domain.Conference, prop string) int {
	switch prop {
	case "name":
		return compareStrings(a.Name, b.Name)
	case "city":
		return compareStrings(a.City, b.City)
	case "month":
		return a.Month - b.Month
	case "maxAttendees":
		return a.MaxAttendees - b.MaxAttendees
	case "topics":
		return compareStrings(minTopic(a.Topics), minTopic(b.Topics))
	default:
		return 0
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func minTopic(topics []string) string {
	min := ""
	for i, t := range topics {
		if i == 0 || t < min {
			min = t
		}
	}
	return min
}

// --- cloning ---

func cloneConference(conf *domain.Conference) *domain.Conference {
	out := *conf
	out.Topics = append([]string(nil), conf.Topics...)
	if conf.StartDate != nil {
		start := *conf.StartDate
		out.StartDate = &start
	}
	if conf.EndDate != nil {
		end := *conf.EndDate
		out.EndDate = &end
	}
	return &out
}

func cloneProfile(prof *domain.Profile) *domain.Profile {
	out := *prof
	out.ConferenceKeysToAttend = append([]domain.Key(nil), prof.ConferenceKeysToAttend...)
	out.SessionsToAttend = append([]domain.Key(nil), prof.SessionsToAttend...)
	return &out
}

func cloneSession(sess *domain.Session) *domain.Session {
	out := *sess
	if sess.StartDateTime != nil {
		start := *sess.StartDateTime
		out.StartDateTime = &start
	}
	if sess.SpeakerKey != nil {
		speaker := *sess.SpeakerKey
		out.SpeakerKey = &speaker
	}
	return &out
}

func cloneSpeaker(speaker *domain.Speaker) *domain.Speaker {
	out := *speaker
	return &out
}
