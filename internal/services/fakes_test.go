package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"eldercare/internal/apperr"
	"eldercare/internal/models"
	"eldercare/internal/realtime"
)

type fakeUserDirectory struct {
	users map[string]*models.User
}

func newFakeUserDirectory(users ...*models.User) *fakeUserDirectory {
	d := &fakeUserDirectory{users: make(map[string]*models.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeUserDirectory) FindByID(id string) (*models.User, error) {
	if u, ok := d.users[id]; ok {
		return u, nil
	}
	return nil, &apperr.NotFoundError{Resource: "user", ID: id}
}

func (d *fakeUserDirectory) FindByEmail(email string) (*models.User, error) {
	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, &apperr.NotFoundError{Resource: "user", ID: email}
}

func (d *fakeUserDirectory) FindByIDs(ids []string) ([]models.User, error) {
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (d *fakeUserDirectory) FindCaregiverAccounts(emails, phones []string) ([]models.User, error) {
	emailSet := make(map[string]bool, len(emails))
	for _, e := range emails {
		emailSet[e] = true
	}
	phoneSet := make(map[string]bool, len(phones))
	for _, p := range phones {
		phoneSet[p] = true
	}
	out := make([]models.User, 0)
	for _, u := range d.users {
		if u.Role != models.RoleCaregiver {
			continue
		}
		if emailSet[u.Email] || (u.Phone != "" && phoneSet[u.Phone]) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeCaregiverDirectory struct {
	contacts []models.Caregiver
}

func (d *fakeCaregiverDirectory) ListByElderly(elderlyID string) ([]models.Caregiver, error) {
	out := make([]models.Caregiver, 0)
	for _, cg := range d.contacts {
		if cg.ElderlyID == elderlyID {
			out = append(out, cg)
		}
	}
	return out, nil
}

func (d *fakeCaregiverDirectory) FindAssignments(email, phone string) ([]models.Caregiver, error) {
	out := make([]models.Caregiver, 0)
	for _, cg := range d.contacts {
		if cg.Email == email || (phone != "" && cg.Phone == phone) {
			out = append(out, cg)
		}
	}
	return out, nil
}

type fakeReminderStore struct {
	mu        sync.Mutex
	reminders map[string]models.Reminder
	nextID    int
	saveErr   error
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{reminders: make(map[string]models.Reminder)}
}

func (s *fakeReminderStore) Create(r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		s.nextID++
		r.ID = fmt.Sprintf("rem-%d", s.nextID)
	}
	s.reminders[r.ID] = *r
	return nil
}

func (s *fakeReminderStore) FindByID(id string) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reminders[id]; ok {
		return &r, nil
	}
	return nil, &apperr.NotFoundError{Resource: "reminder", ID: id}
}

func (s *fakeReminderStore) FindDue(cutoff time.Time) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := make([]models.Reminder, 0)
	for _, r := range s.reminders {
		if r.Active && !r.Time.After(cutoff) {
			due = append(due, r)
		}
	}
	return due, nil
}

func (s *fakeReminderStore) Save(r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.reminders[r.ID] = *r
	return nil
}

func (s *fakeReminderStore) ListByCaregiver(caregiverID string) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Reminder, 0)
	for _, r := range s.reminders {
		if r.CaregiverID == caregiverID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeReminderStore) ListActiveByElderly(elderlyID string) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Reminder, 0)
	for _, r := range s.reminders {
		if r.ElderlyID == elderlyID && r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeReminderStore) get(id string) models.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders[id]
}

type fakeAlertStore struct {
	mu     sync.Mutex
	alerts map[string]models.EmergencyAlert
	nextID int
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{alerts: make(map[string]models.EmergencyAlert)}
}

func (s *fakeAlertStore) Create(a *models.EmergencyAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		s.nextID++
		a.ID = fmt.Sprintf("alert-%d", s.nextID)
	}
	s.alerts[a.ID] = *a
	return nil
}

func (s *fakeAlertStore) FindByID(id string) (*models.EmergencyAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.alerts[id]; ok {
		return &a, nil
	}
	return nil, &apperr.NotFoundError{Resource: "alert", ID: id}
}

func (s *fakeAlertStore) Save(a *models.EmergencyAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[a.ID] = *a
	return nil
}

func (s *fakeAlertStore) ListByElderlyIDs(ids []string, limit int) ([]models.EmergencyAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	out := make([]models.EmergencyAlert, 0)
	for _, a := range s.alerts {
		if idSet[a.ElderlyID] {
			out = append(out, a)
		}
	}
	return out, nil
}

type publishedEvent struct {
	Room    realtime.RoomKey
	Event   string
	Payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(room realtime.RoomKey, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Room: room, Event: event, Payload: payload})
}

func (p *fakePublisher) byEvent(event string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, 0)
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (p *fakePublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type fakeSMS struct {
	mu      sync.Mutex
	sent    []string
	bodies  []string
	failFor map[string]bool
}

func newFakeSMS() *fakeSMS {
	return &fakeSMS{failFor: make(map[string]bool)}
}

func (s *fakeSMS) Send(to, body string) (*SMSResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[to] {
		return nil, &apperr.GatewayError{To: to, Err: errors.New("unverified recipient")}
	}
	s.sent = append(s.sent, to)
	s.bodies = append(s.bodies, body)
	return &SMSResult{SID: "SM-" + to, Status: "queued"}, nil
}

func (s *fakeSMS) sentTo() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}
