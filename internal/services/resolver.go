package services

import (
	"sort"

	"eldercare/internal/models"
)

// RecipientSource tags where a notification target came from. The same
// person can surface through more than one source; the tag decides priority.
type RecipientSource string

const (
	SourceEmergencyContact RecipientSource = "emergency_contact"
	SourceLinkedCaregiver  RecipientSource = "linked_caregiver"
	SourceCaregiverContact RecipientSource = "caregiver_contact"
)

// Recipient is a resolved notification target. It is derived fresh per
// alert and never persisted, so it always reflects the current roster.
type Recipient struct {
	To        string          `json:"to"`
	Name      string          `json:"name"`
	Source    RecipientSource `json:"type"`
	IsPrimary bool            `json:"is_primary,omitempty"`
	Rank      float64         `json:"-"`
	Reason    string          `json:"reason,omitempty"`
}

// recipientRank maps a tagged source to its priority. Primary caregiver
// contacts come first, family emergency contacts rank between primary and
// generic caregiver contacts, linked accounts come last.
func recipientRank(source RecipientSource, isPrimary bool) float64 {
	switch source {
	case SourceCaregiverContact:
		if isPrimary {
			return 0
		}
		return 1.5
	case SourceEmergencyContact:
		return 1
	default: // SourceLinkedCaregiver
		return 2
	}
}

// lessRecipient is the single tie-break comparator: priority rank, then
// display name. It makes the dedup pass deterministic for identical inputs.
func lessRecipient(a, b Recipient) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	return a.Name < b.Name
}

// UserDirectory is the account lookup surface the resolver and dispatcher
// need.
type UserDirectory interface {
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByIDs(ids []string) ([]models.User, error)
	FindCaregiverAccounts(emails, phones []string) ([]models.User, error)
}

// CaregiverDirectory is the contact-record lookup surface.
type CaregiverDirectory interface {
	ListByElderly(elderlyID string) ([]models.Caregiver, error)
	FindAssignments(email, phone string) ([]models.Caregiver, error)
}

// RecipientResolver derives the prioritized, deduplicated notification
// targets for an elderly user from three overlapping sources.
type RecipientResolver struct {
	users      UserDirectory
	caregivers CaregiverDirectory
}

func NewRecipientResolver(users UserDirectory, caregivers CaregiverDirectory) *RecipientResolver {
	return &RecipientResolver{users: users, caregivers: caregivers}
}

// Resolve loads the owner record and returns its sorted, unique recipients.
func (r *RecipientResolver) Resolve(elderlyID string) ([]Recipient, error) {
	elderly, err := r.users.FindByID(elderlyID)
	if err != nil {
		return nil, err
	}
	return r.ResolveFor(elderly)
}

// ResolveFor gathers emergency contacts, linked caregiver accounts and
// caregiver contact records, sorts them by (rank, name) and keeps the first
// occurrence per phone number. When the same number appears under multiple
// sources the highest-priority entry wins.
func (r *RecipientResolver) ResolveFor(elderly *models.User) ([]Recipient, error) {
	recipients := make([]Recipient, 0)

	for _, c := range elderly.EmergencyContacts {
		if c.Phone == "" {
			continue
		}
		name := c.Name
		if name == "" {
			name = "Emergency Contact"
		}
		recipients = append(recipients, Recipient{
			To:     c.Phone,
			Name:   name,
			Source: SourceEmergencyContact,
			Rank:   recipientRank(SourceEmergencyContact, false),
			Reason: "Family contact (" + name + ")",
		})
	}

	if len(elderly.CaregiverIDs) > 0 {
		linked, err := r.users.FindByIDs(elderly.CaregiverIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range linked {
			if u.Phone == "" {
				continue
			}
			name := u.Name
			if name == "" {
				name = u.Email
			}
			recipients = append(recipients, Recipient{
				To:     u.Phone,
				Name:   name,
				Source: SourceLinkedCaregiver,
				Rank:   recipientRank(SourceLinkedCaregiver, false),
				Reason: "Linked caregiver (" + u.Email + ")",
			})
		}
	}

	contacts, err := r.caregivers.ListByElderly(elderly.ID)
	if err != nil {
		return nil, err
	}
	for _, cg := range contacts {
		if !cg.ReceiveSMS || cg.Phone == "" {
			continue
		}
		recipients = append(recipients, Recipient{
			To:        cg.Phone,
			Name:      cg.Name,
			Source:    SourceCaregiverContact,
			IsPrimary: cg.IsPrimary,
			Rank:      recipientRank(SourceCaregiverContact, cg.IsPrimary),
			Reason:    "Caregiver (" + cg.Name + ")",
		})
	}

	sort.SliceStable(recipients, func(i, j int) bool {
		return lessRecipient(recipients[i], recipients[j])
	})

	return dedupByPhone(recipients), nil
}

// dedupByPhone keeps the first (highest-priority) entry per phone number.
// The input must already be sorted.
func dedupByPhone(sorted []Recipient) []Recipient {
	seen := make(map[string]bool, len(sorted))
	unique := sorted[:0]
	for _, rec := range sorted {
		if seen[rec.To] {
			continue
		}
		seen[rec.To] = true
		unique = append(unique, rec)
	}
	return unique
}

// CaregiverAccounts returns every caregiver user account that should
// observe the elderly user's alerts: linked accounts plus accounts matching
// a contact record by email or phone. Used for room fan-out, so entries
// without a phone still count.
func (r *RecipientResolver) CaregiverAccounts(elderlyID string) ([]models.User, error) {
	elderly, err := r.users.FindByID(elderlyID)
	if err != nil {
		return nil, err
	}
	return r.CaregiverAccountsFor(elderly)
}

func (r *RecipientResolver) CaregiverAccountsFor(elderly *models.User) ([]models.User, error) {
	byID := make(map[string]models.User)

	if len(elderly.CaregiverIDs) > 0 {
		linked, err := r.users.FindByIDs(elderly.CaregiverIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range linked {
			byID[u.ID] = u
		}
	}

	contacts, err := r.caregivers.ListByElderly(elderly.ID)
	if err != nil {
		return nil, err
	}
	var emails, phones []string
	for _, cg := range contacts {
		if cg.Email != "" {
			emails = append(emails, cg.Email)
		}
		if cg.Phone != "" {
			phones = append(phones, cg.Phone)
		}
	}
	matched, err := r.users.FindCaregiverAccounts(emails, phones)
	if err != nil {
		return nil, err
	}
	for _, u := range matched {
		byID[u.ID] = u
	}

	accounts := make([]models.User, 0, len(byID))
	for _, u := range byID {
		accounts = append(accounts, u)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}
