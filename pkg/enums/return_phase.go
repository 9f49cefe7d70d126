package enums

// ReturnPhase is the state of a terminal's returns desk.
type ReturnPhase string

const (
	ReturnPhaseIdle    ReturnPhase = "idle"
	ReturnPhaseLocated ReturnPhase = "located"
)

// String implements fmt.Stringer.
func (r ReturnPhase) String() string {
	return string(r)
}
