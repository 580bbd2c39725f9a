package form

// Status is the derived validity of a control.
type Status string

const (
	// Valid means the control and every enabled descendant passed validation.
	Valid Status = "VALID"
	// Invalid means the control or an enabled descendant has validation errors.
	Invalid Status = "INVALID"
	// Pending means asynchronous validation is scheduled or running on the
	// control or an enabled descendant.
	Pending Status = "PENDING"
	// Disabled means the control is exempt from validation.
	Disabled Status = "DISABLED"
)

func (s Status) String() string { return string(s) }
