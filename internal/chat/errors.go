package chat

var (
	ErrNameTaken   = errorString("name_taken")
	ErrNameInvalid = errorString("name_invalid")
	ErrRoomExists  = errorString("room_exists")
	ErrRoomName    = errorString("invalid_room_name")
	ErrNoRoom      = errorString("room_not_found")
	ErrNotInRoom   = errorString("not_in_room")
	ErrInRoom      = errorString("already_in_room")
	ErrNodeExists  = errorString("node_id_in_use")
)

type errorString string

func (e errorString) Error() string { return string(e) }
