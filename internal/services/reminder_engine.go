package services

import (
	"log"
	"os"
	"strings"
	"time"

	"eldercare/internal/apperr"
	"eldercare/internal/models"
	"eldercare/internal/realtime"

	"gorm.io/datatypes"
)

// duePollInterval is how often the scheduler scans for due reminders. The
// due-check looks ahead by the same interval so nothing lands between
// ticks.
const duePollInterval = time.Minute

// ReminderStore is the persistence surface the engine needs.
type ReminderStore interface {
	Create(reminder *models.Reminder) error
	FindByID(id string) (*models.Reminder, error)
	FindDue(cutoff time.Time) ([]models.Reminder, error)
	Save(reminder *models.Reminder) error
	ListByCaregiver(caregiverID string) ([]models.Reminder, error)
	ListActiveByElderly(elderlyID string) ([]models.Reminder, error)
}

// ReminderEngine owns reminders: scheduling, the periodic due-check that
// pushes them to the owner's room and advances recurrence, and
// acknowledgment.
type ReminderEngine struct {
	reminders ReminderStore
	users     UserDirectory
	hub       Publisher
	sms       SMSSender // optional family SMS, never used for caregivers

	interval      time.Duration
	now           func() time.Time
	stop          chan struct{}
	smsToContacts bool
}

func NewReminderEngine(reminders ReminderStore, users UserDirectory, hub Publisher, sms SMSSender) *ReminderEngine {
	return &ReminderEngine{
		reminders:     reminders,
		users:         users,
		hub:           hub,
		sms:           sms,
		interval:      duePollInterval,
		now:           time.Now,
		stop:          make(chan struct{}),
		smsToContacts: strings.EqualFold(os.Getenv("REMINDER_SMS"), "true"),
	}
}

// Start launches the single due-check loop. There is exactly one
// authoritative scheduler per process.
func (e *ReminderEngine) Start() {
	go e.run()
	log.Printf("reminder scheduler started (interval %s, family SMS %v)", e.interval, e.smsToContacts && e.sms != nil)
}

// Stop terminates the loop. Safe to call once.
func (e *ReminderEngine) Stop() {
	close(e.stop)
}

func (e *ReminderEngine) run() {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.dueCheck()
		case <-e.stop:
			return
		}
	}
}

// Schedule creates an active reminder on behalf of a caregiver. The target
// elderly user may be given by id or resolved from an email.
func (e *ReminderEngine) Schedule(caregiverID string, req models.CreateReminderRequest) (*models.Reminder, error) {
	caller, err := e.users.FindByID(caregiverID)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleCaregiver {
		return nil, apperr.Forbiddenf("only caregivers can create reminders")
	}

	targetID := req.ElderlyID
	if targetID == "" && req.ElderlyEmail != "" {
		elderly, err := e.users.FindByEmail(req.ElderlyEmail)
		if err != nil || elderly.Role != models.RoleElderly {
			return nil, apperr.Validationf("no elderly user with email %s", req.ElderlyEmail)
		}
		targetID = elderly.ID
	}

	if targetID == "" || strings.TrimSpace(req.Message) == "" || req.Time.IsZero() {
		return nil, apperr.Validationf("elderly_id or elderly_email, message and time required")
	}

	if target, err := e.users.FindByID(targetID); err != nil || target.Role != models.RoleElderly {
		return nil, apperr.Validationf("elderly user %s not found", targetID)
	}

	repeat := req.Repeat
	if repeat == "" {
		repeat = models.RepeatNone
	}
	switch repeat {
	case models.RepeatNone, models.RepeatDaily, models.RepeatWeekly:
	default:
		return nil, apperr.Validationf("invalid repeat value %q", repeat)
	}

	reminder := &models.Reminder{
		ElderlyID:   targetID,
		CaregiverID: caregiverID,
		Message:     req.Message,
		Time:        req.Time,
		Repeat:      repeat,
		Active:      true,
	}
	if req.Meta != nil {
		reminder.Meta = datatypes.NewJSONType(*req.Meta)
	}

	if err := e.reminders.Create(reminder); err != nil {
		return nil, err
	}
	log.Printf("reminder %s scheduled for elderly %s at %s (%s)", reminder.ID, targetID, reminder.Time.Format(time.RFC3339), repeat)
	return reminder, nil
}

// Acknowledge applies a "taken" or "snooze" action. Only the elderly target
// or the caregiver creator may act. "taken" runs the same recurrence rule
// the due-check uses; "snooze" pushes the fire time out and forces the
// reminder active regardless of prior recurrence.
func (e *ReminderEngine) Acknowledge(id, actorID string, req models.AcknowledgeReminderRequest) (*models.Reminder, error) {
	reminder, err := e.reminders.FindByID(id)
	if err != nil {
		return nil, err
	}

	if actorID != reminder.ElderlyID && actorID != reminder.CaregiverID {
		return nil, apperr.Forbiddenf("not authorized for this reminder")
	}

	switch req.Action {
	case models.AckTaken:
		reminder.Advance()

	case models.AckSnooze:
		minutes := req.SnoozeMinutes
		if minutes <= 0 {
			minutes = models.DefaultSnoozeMinutes
		}
		reminder.Time = e.now().Add(time.Duration(minutes) * time.Minute)
		reminder.Active = true

	default:
		return nil, apperr.Validationf("invalid action %q", req.Action)
	}

	if err := e.reminders.Save(reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// Trigger re-emits a reminder to the owner's room without touching its
// schedule. Used for manual testing of the push path.
func (e *ReminderEngine) Trigger(id string) (*models.Reminder, error) {
	reminder, err := e.reminders.FindByID(id)
	if err != nil {
		return nil, err
	}
	e.publish(reminder)
	return reminder, nil
}

func (e *ReminderEngine) ListForCaregiver(caregiverID string) ([]models.Reminder, error) {
	return e.reminders.ListByCaregiver(caregiverID)
}

func (e *ReminderEngine) ListForElderly(elderlyID string) ([]models.Reminder, error) {
	return e.reminders.ListActiveByElderly(elderlyID)
}

// dueCheck runs once per tick: select active reminders due within the
// lookahead window, push each to its owner's room, then advance recurrence
// and persist. Push and persist are not transactional; a persistence
// failure leaves the reminder due so the next poll re-emits it.
func (e *ReminderEngine) dueCheck() {
	now := e.now()
	cutoff := now.Add(e.interval)

	due, err := e.reminders.FindDue(cutoff)
	if err != nil {
		log.Printf("Error: due-check query failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}
	log.Printf("due-check: %d reminder(s) due at %s", len(due), now.Format(time.RFC3339))

	for i := range due {
		reminder := &due[i]
		e.publish(reminder)

		if e.smsToContacts && e.sms != nil {
			// Snapshot before Advance mutates the fire time; the sends
			// must never hold up this loop or the next tick.
			snapshot := *reminder
			go e.notifyContacts(&snapshot)
		}

		reminder.Advance()
		if err := e.reminders.Save(reminder); err != nil {
			log.Printf("Warning: failed to persist reminder %s after fire: %v (will retry next poll)", reminder.ID, err)
		}
	}
}

func (e *ReminderEngine) publish(reminder *models.Reminder) {
	e.hub.Publish(realtime.ElderlyRoom(reminder.ElderlyID), realtime.EventReminder, map[string]any{
		"id":      reminder.ID,
		"message": reminder.Message,
		"meta":    reminder.Meta.Data(),
		"time":    reminder.Time,
	})
}

// notifyContacts texts the elderly user's family emergency contacts.
// Failures are logged only; nobody waits on the reminder path.
func (e *ReminderEngine) notifyContacts(reminder *models.Reminder) {
	elderly, err := e.users.FindByID(reminder.ElderlyID)
	if err != nil {
		log.Printf("Warning: loading elderly %s for reminder SMS: %v", reminder.ElderlyID, err)
		return
	}

	body := "Reminder for " + elderly.Name + ": " + reminder.Message + " at " + reminder.Time.Format("Mon Jan 2, 3:04 PM")
	for _, contact := range elderly.EmergencyContacts {
		if contact.Phone == "" {
			continue
		}
		if _, err := e.sms.Send(contact.Phone, body); err != nil {
			log.Printf("Warning: reminder SMS to %s failed: %v", contact.Phone, err)
		}
	}
}
