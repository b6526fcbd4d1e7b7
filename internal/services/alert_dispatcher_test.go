package services

import (
	"bytes"
	"log"
	"os"
	"testing"

	"eldercare/internal/apperr"
	"eldercare/internal/models"
	"eldercare/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatcherFixture struct {
	alerts     *fakeAlertStore
	users      *fakeUserDirectory
	caregivers *fakeCaregiverDirectory
	pub        *fakePublisher
	sms        *fakeSMS
	dispatcher *AlertDispatcher
}

func newDispatcherFixture(contacts ...models.Caregiver) *dispatcherFixture {
	f := &dispatcherFixture{
		alerts: newFakeAlertStore(),
		users: newFakeUserDirectory(
			&models.User{
				ID: "eld-1", Name: "Rose", Email: "rose@example.com", Role: models.RoleElderly,
				EmergencyContacts: models.ContactList{{Name: "Mary", Phone: "+15550001", Primary: true}},
			},
			&models.User{
				ID: "cg-user-1", Name: "Alice", Email: "alice@example.com",
				Phone: "+15550003", Role: models.RoleCaregiver,
			},
		),
		caregivers: &fakeCaregiverDirectory{contacts: contacts},
		pub:        &fakePublisher{},
		sms:        newFakeSMS(),
	}
	resolver := NewRecipientResolver(f.users, f.caregivers)
	f.dispatcher = NewAlertDispatcher(f.alerts, f.users, f.caregivers, resolver, f.pub, f.sms, nil)
	return f
}

func TestRaisePublishesAndSendsSMS(t *testing.T) {
	f := newDispatcherFixture(models.Caregiver{
		ID: "cg-1", ElderlyID: "eld-1", Name: "Alice",
		Email: "alice@example.com", Phone: "+15550003", IsPrimary: true, ReceiveSMS: true,
	})

	alert, report, err := f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{
		Message: "I fell in the kitchen",
		SentVia: models.SentViaButton,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AlertOpen, alert.Status)
	assert.True(t, alert.Notified)
	assert.True(t, f.alerts.alerts[alert.ID].Notified)

	// Owner room and the matched caregiver account room both get the push.
	events := f.pub.byEvent(realtime.EventEmergency)
	require.Len(t, events, 2)
	assert.Equal(t, realtime.ElderlyRoom("eld-1"), events[0].Room)
	assert.Equal(t, realtime.CaregiverRoom("cg-user-1"), events[1].Room)

	// Primary caregiver first, then the family contact.
	require.Len(t, report, 2)
	assert.ElementsMatch(t, []string{"+15550003", "+15550001"}, f.sms.sentTo())
	for _, entry := range report {
		assert.Equal(t, "sent", entry.Status)
		assert.NotEmpty(t, entry.SID)
	}
}

func TestRaiseAppSendNeverTexts(t *testing.T) {
	f := newDispatcherFixture(models.Caregiver{
		ID: "cg-1", ElderlyID: "eld-1", Name: "Alice",
		Phone: "+15550003", ReceiveSMS: true,
	})

	alert, report, err := f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{
		Message: "Test alert",
		SentVia: models.SentViaApp,
	})
	require.NoError(t, err)
	assert.Empty(t, report)
	assert.Empty(t, f.sms.sentTo())
	assert.False(t, alert.Notified)

	// The realtime push still happens for in-app sends.
	assert.NotEmpty(t, f.pub.byEvent(realtime.EventEmergency))
}

func TestSkipLogReportsSendTypeOverMissingGateway(t *testing.T) {
	// Gateway unconfigured AND an app send: the policy exclusion is the
	// reason that matters in the log.
	f := newDispatcherFixture()
	resolver := NewRecipientResolver(f.users, f.caregivers)
	f.dispatcher = NewAlertDispatcher(f.alerts, f.users, f.caregivers, resolver, f.pub, nil, nil)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	_, report, err := f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{
		Message: "Test alert",
		SentVia: models.SentViaApp,
	})
	require.NoError(t, err)
	assert.Empty(t, report)
	assert.Contains(t, buf.String(), "non-emergency send type")
	assert.NotContains(t, buf.String(), "gateway not configured")
}

func TestRaiseDefaultsToAppSend(t *testing.T) {
	f := newDispatcherFixture()

	alert, report, err := f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{Message: "Help"})
	require.NoError(t, err)
	assert.Equal(t, models.SentViaApp, alert.SentVia)
	assert.Empty(t, report)
}

func TestRaiseDedupsSharedPhone(t *testing.T) {
	// Alice is both the primary caregiver contact and a family emergency
	// contact under the same number; she must get exactly one text,
	// attributed to the caregiver entry.
	f := newDispatcherFixture(models.Caregiver{
		ID: "cg-1", ElderlyID: "eld-1", Name: "Alice",
		Phone: "+15550001", IsPrimary: true, ReceiveSMS: true,
	})

	_, report, err := f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{
		Message: "Chest pain",
		SentVia: models.SentViaVoice,
	})
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "+15550001", report[0].To)
	assert.Equal(t, string(SourceCaregiverContact), report[0].Type)
	assert.Len(t, f.sms.sentTo(), 1)
}

func TestRaiseToleratesPartialSMSFailure(t *testing.T) {
	f := newDispatcherFixture(models.Caregiver{
		ID: "cg-1", ElderlyID: "eld-1", Name: "Alice",
		Phone: "+15550003", IsPrimary: true, ReceiveSMS: true,
	})
	f.sms.failFor["+15550003"] = true

	alert, report, err := f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{
		Message: "Help",
		SentVia: models.SentViaAuto,
	})
	require.NoError(t, err)
	require.Len(t, report, 2)

	byTo := make(map[string]models.DeliveryReport, len(report))
	for _, entry := range report {
		byTo[entry.To] = entry
	}
	assert.Equal(t, "failed", byTo["+15550003"].Status)
	assert.NotEmpty(t, byTo["+15550003"].Error)
	assert.Equal(t, "sent", byTo["+15550001"].Status)

	// A partially delivered alert still counts as notified.
	assert.True(t, alert.Notified)
}

func TestRaiseBatchesLargeFanOut(t *testing.T) {
	elderly := &models.User{ID: "eld-1", Name: "Rose", Role: models.RoleElderly}
	for i := 0; i < 12; i++ {
		elderly.EmergencyContacts = append(elderly.EmergencyContacts, models.EmergencyContact{
			Name:  string(rune('A' + i)),
			Phone: "+1555100" + string(rune('0'+i%10)) + string(rune('0'+i/10)),
		})
	}
	f := newDispatcherFixture()
	f.users = newFakeUserDirectory(elderly)
	resolver := NewRecipientResolver(f.users, f.caregivers)
	f.dispatcher = NewAlertDispatcher(f.alerts, f.users, f.caregivers, resolver, f.pub, f.sms, nil)

	_, report, err := f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{
		Message: "Help",
		SentVia: models.SentViaVoice,
	})
	require.NoError(t, err)
	assert.Len(t, report, 12)
	assert.Len(t, f.sms.sentTo(), 12)
}

func TestRaiseValidation(t *testing.T) {
	f := newDispatcherFixture()

	_, _, err := f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{Message: "   "})
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)

	_, _, err = f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{Message: "Help", SentVia: "carrier-pigeon"})
	require.ErrorAs(t, err, &validation)

	_, _, err = f.dispatcher.Raise("missing", models.RaiseAlertRequest{Message: "Help"})
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestStatusMovesForwardOnly(t *testing.T) {
	f := newDispatcherFixture()
	alert, _, err := f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{Message: "Help"})
	require.NoError(t, err)

	acked, err := f.dispatcher.Acknowledge(alert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AlertAcknowledged, acked.Status)

	// Acknowledging twice is rejected.
	_, err = f.dispatcher.Acknowledge(alert.ID)
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)

	resolved, err := f.dispatcher.Resolve(alert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AlertResolved, resolved.Status)

	// Resolved is terminal.
	_, err = f.dispatcher.Acknowledge(alert.ID)
	require.ErrorAs(t, err, &validation)
	_, err = f.dispatcher.Resolve(alert.ID)
	require.ErrorAs(t, err, &validation)
}

func TestResolveDirectlyFromOpen(t *testing.T) {
	f := newDispatcherFixture()
	alert, _, err := f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{Message: "Help"})
	require.NoError(t, err)

	resolved, err := f.dispatcher.Resolve(alert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AlertResolved, resolved.Status)
}

func TestTransitionPublishesUpdate(t *testing.T) {
	f := newDispatcherFixture(models.Caregiver{
		ID: "cg-1", ElderlyID: "eld-1", Name: "Alice", Email: "alice@example.com",
	})
	alert, _, err := f.dispatcher.Raise("eld-1", models.RaiseAlertRequest{Message: "Help"})
	require.NoError(t, err)
	f.pub.reset()

	_, err = f.dispatcher.Acknowledge(alert.ID)
	require.NoError(t, err)

	events := f.pub.byEvent(realtime.EventEmergencyUpdate)
	require.Len(t, events, 2)
	assert.Equal(t, realtime.ElderlyRoom("eld-1"), events[0].Room)
	assert.Equal(t, realtime.CaregiverRoom("cg-user-1"), events[1].Room)
}

func TestTransitionUnknownAlert(t *testing.T) {
	f := newDispatcherFixture()

	_, err := f.dispatcher.Acknowledge("missing")
	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListScopesByRole(t *testing.T) {
	f := newDispatcherFixture(models.Caregiver{
		ID: "cg-1", ElderlyID: "eld-1", Name: "Alice", Email: "alice@example.com",
	})
	require.NoError(t, f.alerts.Create(&models.EmergencyAlert{ElderlyID: "eld-1", Message: "Mine", Status: models.AlertOpen}))
	require.NoError(t, f.alerts.Create(&models.EmergencyAlert{ElderlyID: "eld-other", Message: "Someone else", Status: models.AlertOpen}))

	own, err := f.dispatcher.List("eld-1")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Mine", own[0].Message)

	// The caregiver account matches the contact record by email, so it sees
	// eld-1's alerts and nothing else.
	scoped, err := f.dispatcher.List("cg-user-1")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "eld-1", scoped[0].ElderlyID)
}
