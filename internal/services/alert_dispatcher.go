package services

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"eldercare/internal/apperr"
	"eldercare/internal/models"
	"eldercare/internal/realtime"
)

// smsBatchSize bounds how many provider calls run concurrently during
// fan-out. Batches run sequentially.
const smsBatchSize = 5

const alertListLimit = 200

// AlertStore is the persistence surface the dispatcher needs.
type AlertStore interface {
	Create(alert *models.EmergencyAlert) error
	FindByID(id string) (*models.EmergencyAlert, error)
	Save(alert *models.EmergencyAlert) error
	ListByElderlyIDs(elderlyIDs []string, limit int) ([]models.EmergencyAlert, error)
}

// Publisher is the realtime push surface.
type Publisher interface {
	Publish(room realtime.RoomKey, event string, payload any)
}

// AlertDispatcher owns emergency alerts: raising with multi-channel
// fan-out, role-scoped listing and forward-only status transitions.
type AlertDispatcher struct {
	alerts     AlertStore
	users      UserDirectory
	caregivers CaregiverDirectory
	resolver   *RecipientResolver
	hub        Publisher
	sms        SMSSender     // nil when the gateway is not configured
	email      *EmailService // nil when not configured
}

func NewAlertDispatcher(alerts AlertStore, users UserDirectory, caregivers CaregiverDirectory,
	resolver *RecipientResolver, hub Publisher, sms SMSSender, email *EmailService) *AlertDispatcher {
	return &AlertDispatcher{
		alerts:     alerts,
		users:      users,
		caregivers: caregivers,
		resolver:   resolver,
		hub:        hub,
		sms:        sms,
		email:      email,
	}
}

// smsEligible gates SMS fan-out: only real emergency sends trigger texts,
// pure in-app test sends do not. Unknown values never reach here (Raise
// validates), so the policy stays an explicit allow-list.
func smsEligible(v models.SentVia) bool {
	switch v {
	case models.SentViaVoice, models.SentViaButton, models.SentViaAuto:
		return true
	}
	return false
}

// Raise creates an open alert, publishes it to the owner's room and every
// resolved caregiver room, and fans out SMS in batches when the trigger
// warrants it. The caller waits for the full SMS batch because the delivery
// report is part of the contract.
func (d *AlertDispatcher) Raise(elderlyID string, req models.RaiseAlertRequest) (*models.EmergencyAlert, []models.DeliveryReport, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, nil, apperr.Validationf("message required")
	}
	sentVia := req.SentVia
	if sentVia == "" {
		sentVia = models.SentViaApp
	}
	if !models.ValidSentVia(sentVia) {
		return nil, nil, apperr.Validationf("unknown sent_via value %q", sentVia)
	}

	// A resolver failure here aborts the whole raise: without the owner
	// record there is nobody to notify.
	elderly, err := d.users.FindByID(elderlyID)
	if err != nil {
		return nil, nil, err
	}

	alert := &models.EmergencyAlert{
		ElderlyID: elderlyID,
		Message:   req.Message,
		Location:  req.Location,
		SentVia:   sentVia,
		Status:    models.AlertOpen,
		CreatedAt: time.Now(),
	}
	if err := d.alerts.Create(alert); err != nil {
		return nil, nil, err
	}

	payload := map[string]any{"alert": alert}
	d.hub.Publish(realtime.ElderlyRoom(elderlyID), realtime.EventEmergency, payload)

	recipients, err := d.resolver.ResolveFor(elderly)
	if err != nil {
		return nil, nil, err
	}

	// Room fan-out to caregiver accounts is independent of SMS; a push to
	// a room with no connected subscriber is not an error.
	if accounts, err := d.resolver.CaregiverAccountsFor(elderly); err != nil {
		log.Printf("Warning: resolving caregiver accounts for alert %s: %v", alert.ID, err)
	} else {
		for _, account := range accounts {
			d.hub.Publish(realtime.CaregiverRoom(account.ID), realtime.EventEmergency, payload)
		}
	}

	report := d.fanOutSMS(elderly, alert, recipients)
	if len(report) > 0 {
		alert.Notified = true
		if err := d.alerts.Save(alert); err != nil {
			log.Printf("Warning: failed to mark alert %s notified: %v", alert.ID, err)
		}
	}

	d.fanOutEmail(elderly, alert)

	return alert, report, nil
}

// fanOutSMS sends to the deduplicated, priority-sorted recipients in fixed
// batches: sends within a batch run concurrently, batches run sequentially.
// Each send is caught independently; one failure never aborts the others.
func (d *AlertDispatcher) fanOutSMS(elderly *models.User, alert *models.EmergencyAlert, recipients []Recipient) []models.DeliveryReport {
	report := make([]models.DeliveryReport, 0, len(recipients))
	if d.sms == nil || !smsEligible(alert.SentVia) {
		// An app send skips SMS by policy; report that even when the
		// gateway also happens to be unconfigured.
		if !smsEligible(alert.SentVia) {
			log.Printf("SMS skipped for alert %s: non-emergency send type %q", alert.ID, alert.SentVia)
		} else {
			log.Printf("SMS skipped for alert %s: gateway not configured", alert.ID)
		}
		return report
	}

	body := d.smsBody(elderly, alert)
	log.Printf("sending emergency SMS for alert %s to %d recipient(s)", alert.ID, len(recipients))

	var mu sync.Mutex
	for start := 0; start < len(recipients); start += smsBatchSize {
		end := start + smsBatchSize
		if end > len(recipients) {
			end = len(recipients)
		}

		var wg sync.WaitGroup
		for _, rec := range recipients[start:end] {
			wg.Add(1)
			go func(rec Recipient) {
				defer wg.Done()
				entry := models.DeliveryReport{To: rec.To, Name: rec.Name, Type: string(rec.Source)}
				if result, err := d.sms.Send(rec.To, body); err != nil {
					log.Printf("Warning: SMS to %s (%s) failed: %v", rec.Name, rec.To, err)
					entry.Status = "failed"
					entry.Error = err.Error()
				} else {
					entry.Status = "sent"
					entry.SID = result.SID
				}
				mu.Lock()
				report = append(report, entry)
				mu.Unlock()
			}(rec)
		}
		wg.Wait()
	}
	return report
}

// smsBody builds the alert text. A location with coordinates but no address
// is reverse-geocoded best effort.
func (d *AlertDispatcher) smsBody(elderly *models.User, alert *models.EmergencyAlert) string {
	var b strings.Builder
	b.WriteString("EMERGENCY ALERT\n")
	fmt.Fprintf(&b, "From: %s\n", elderly.Name)
	fmt.Fprintf(&b, "Message: %s\n", alert.Message)

	loc := alert.Location
	if loc != nil {
		address := loc.Address
		if address == "" && loc.HasCoords() {
			if resolved, err := ReverseGeocode(loc.Lat, loc.Lng); err == nil {
				address = resolved
			} else {
				log.Printf("Warning: reverse geocode for alert %s failed: %v", alert.ID, err)
			}
		}
		if address != "" {
			fmt.Fprintf(&b, "Location: %s\n", address)
		}
	}

	fmt.Fprintf(&b, "Time: %s\n", alert.CreatedAt.Format(time.RFC1123))
	if loc.HasCoords() {
		fmt.Fprintf(&b, "View on map: https://www.google.com/maps?q=%f,%f\n", loc.Lat, loc.Lng)
	}
	b.WriteString("Please respond when you receive this message.")
	return b.String()
}

// fanOutEmail notifies caregiver contacts that opted into email. Best
// effort and out-of-band: failures are logged, never reported to the
// caller.
func (d *AlertDispatcher) fanOutEmail(elderly *models.User, alert *models.EmergencyAlert) {
	if d.email == nil {
		return
	}
	contacts, err := d.caregivers.ListByElderly(elderly.ID)
	if err != nil {
		log.Printf("Warning: listing caregivers for alert email: %v", err)
		return
	}
	go func() {
		for _, cg := range contacts {
			if !cg.ReceiveEmail || cg.Email == "" {
				continue
			}
			if err := d.email.SendAlertEmail(cg.Email, cg.Name, elderly.Name, alert); err != nil {
				log.Printf("Warning: alert email to %s failed: %v", cg.Email, err)
			}
		}
	}()
}

// Acknowledge moves an open alert to acknowledged.
func (d *AlertDispatcher) Acknowledge(id string) (*models.EmergencyAlert, error) {
	return d.transition(id, models.AlertAcknowledged)
}

// Resolve closes an alert.
func (d *AlertDispatcher) Resolve(id string) (*models.EmergencyAlert, error) {
	return d.transition(id, models.AlertResolved)
}

// transition applies a forward-only status change and re-publishes the
// alert to the owner and every resolved caregiver room so all observers
// converge without polling.
func (d *AlertDispatcher) transition(id string, to models.AlertStatus) (*models.EmergencyAlert, error) {
	alert, err := d.alerts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !alert.Status.CanTransition(to) {
		return nil, apperr.Validationf("alert is %s, cannot move to %s", alert.Status, to)
	}

	alert.Status = to
	if err := d.alerts.Save(alert); err != nil {
		return nil, err
	}

	payload := map[string]any{"alert": alert}
	d.hub.Publish(realtime.ElderlyRoom(alert.ElderlyID), realtime.EventEmergencyUpdate, payload)

	if accounts, err := d.resolver.CaregiverAccounts(alert.ElderlyID); err != nil {
		log.Printf("Warning: resolving caregiver accounts for alert update %s: %v", alert.ID, err)
	} else {
		for _, account := range accounts {
			d.hub.Publish(realtime.CaregiverRoom(account.ID), realtime.EventEmergencyUpdate, payload)
		}
	}

	return alert, nil
}

// List returns alerts scoped by role: elderly users see their own,
// caregivers see only alerts of elderly they are assigned to.
func (d *AlertDispatcher) List(userID string) ([]models.EmergencyAlert, error) {
	user, err := d.users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user.Role != models.RoleCaregiver {
		return d.alerts.ListByElderlyIDs([]string{userID}, alertListLimit)
	}

	assignments, err := d.caregivers.FindAssignments(user.Email, user.Phone)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(assignments))
	elderlyIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if !seen[a.ElderlyID] {
			seen[a.ElderlyID] = true
			elderlyIDs = append(elderlyIDs, a.ElderlyID)
		}
	}
	return d.alerts.ListByElderlyIDs(elderlyIDs, alertListLimit)
}
