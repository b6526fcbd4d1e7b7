package realtime

// Events pushed over the realtime channel.
const (
	EventReminder        = "reminder"
	EventEmergency       = "emergency"
	EventEmergencyUpdate = "emergency-update"
)

// RoomKey identifies a publish/subscribe room. The role is part of the key:
// keying by bare user id would collide if the elderly and caregiver id
// spaces ever overlapped.
type RoomKey struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// ElderlyRoom is the personal room of an elderly user.
func ElderlyRoom(userID string) RoomKey {
	return RoomKey{UserID: userID, Role: "elderly"}
}

// CaregiverRoom is the personal room of a caregiver account.
func CaregiverRoom(userID string) RoomKey {
	return RoomKey{UserID: userID, Role: "caregiver"}
}

// Message is the wire envelope for every pushed event.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}
