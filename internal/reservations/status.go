package reservations

// Status represents the lifecycle status of a reservation
type Status string

const (
	StatusEnquiry     Status = "ENQUIRY"
	StatusConfirmed   Status = "CONFIRMED"
	StatusSeated      Status = "SEATED"
	StatusBillDropped Status = "BILL_DROPPED"
	StatusCompleted   Status = "COMPLETED"
	StatusCancelled   Status = "CANCELLED"
	StatusNoShow      Status = "NO_SHOW"
)

// Command represents a staff-issued lifecycle command
type Command string

const (
	CommandConfirm    Command = "confirm"
	CommandSeat       Command = "seat"
	CommandDropBill   Command = "dropBill"
	CommandMarkLeft   Command = "markLeft"
	CommandCancel     Command = "cancel"
	CommandMarkNoShow Command = "markNoShow"
)

// transitions is the static transition table. A command absent from the
// current status row is an invalid transition; terminal statuses have no row.
var transitions = map[Status]map[Command]Status{
	StatusEnquiry: {
		CommandConfirm: StatusConfirmed,
		CommandCancel:  StatusCancelled,
	},
	StatusConfirmed: {
		CommandSeat:       StatusSeated,
		CommandCancel:     StatusCancelled,
		CommandMarkNoShow: StatusNoShow,
	},
	StatusSeated: {
		CommandDropBill: StatusBillDropped,
		CommandMarkLeft: StatusCompleted,
	},
	StatusBillDropped: {
		CommandMarkLeft: StatusCompleted,
	},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusEnquiry, StatusConfirmed, StatusSeated, StatusBillDropped,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are accepted
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// CanEdit reports whether reservation details may still be changed
func (s Status) CanEdit() bool {
	return s == StatusEnquiry || s == StatusConfirmed
}

// Next returns the status a command leads to from s. ok is false when the
// command is not legal from s; the caller maps that to InvalidTransition.
func (s Status) Next(cmd Command) (Status, bool) {
	row, ok := transitions[s]
	if !ok {
		return "", false
	}
	next, ok := row[cmd]
	return next, ok
}

// ReleasesTable reports whether applying cmd hands the held table back to the floor
func (cmd Command) ReleasesTable() bool {
	return cmd == CommandCancel || cmd == CommandMarkNoShow || cmd == CommandMarkLeft
}

func (cmd Command) IsValid() bool {
	switch cmd {
	case CommandConfirm, CommandSeat, CommandDropBill, CommandMarkLeft,
		CommandCancel, CommandMarkNoShow:
		return true
	}
	return false
}

func (cmd Command) String() string {
	return string(cmd)
}
