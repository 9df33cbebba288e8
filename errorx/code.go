package errorx

type Code int

const (
	// Validation codes
	BadRequest    Code = 100001
	InvalidPoints Code = 100002

	// Lookup and state codes
	NotFound      Code = 100004
	AlreadyExists Code = 100006
	Conflict      Code = 100007
	InvalidState  Code = 100008

	// Infrastructure codes
	Internal    Code = 100010
	Unavailable Code = 100011
)

func (c Code) String() string {
	switch c {
	case BadRequest:
		return "bad_request"
	case InvalidPoints:
		return "invalid_points"
	case NotFound:
		return "not_found"
	case AlreadyExists:
		return "already_exists"
	case Conflict:
		return "conflict"
	case InvalidState:
		return "invalid_state"
	case Internal:
		return "internal"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}
