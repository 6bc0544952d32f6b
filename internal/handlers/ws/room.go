package ws

import "fmt"

// Room identifiers. A private room is shared by exactly two users and its key
// is independent of who initiated the chat; a group room is keyed by the group
// ID; an inbox room carries per-user notifications and conversation updates.

func PrivateRoomID(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("dm:%d:%d", a, b)
}

func GroupRoomID(groupID uint) string {
	return fmt.Sprintf("group:%d", groupID)
}

func InboxRoomID(userID uint) string {
	return fmt.Sprintf("inbox:%d", userID)
}
