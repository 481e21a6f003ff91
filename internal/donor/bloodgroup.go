package donor

// BloodGroup is an ABO/Rh blood group as stored on a donor record.
type BloodGroup string

const (
	APos  BloodGroup = "A+"
	ANeg  BloodGroup = "A-"
	BPos  BloodGroup = "B+"
	BNeg  BloodGroup = "B-"
	ABPos BloodGroup = "AB+"
	ABNeg BloodGroup = "AB-"
	OPos  BloodGroup = "O+"
	ONeg  BloodGroup = "O-"
)

// BloodGroups lists every accepted value in display order.
var BloodGroups = []BloodGroup{APos, ANeg, BPos, BNeg, ABPos, ABNeg, OPos, ONeg}

// Valid reports whether g is one of the eight enumerated groups.
func (g BloodGroup) Valid() bool {
	for _, v := range BloodGroups {
		if g == v {
			return true
		}
	}
	return false
}

func (g BloodGroup) String() string { return string(g) }

// ParseBloodGroup validates a requested group. A blank value is a
// validation error rather than an empty-result query.
func ParseBloodGroup(s string) (BloodGroup, error) {
	if s == "" {
		return "", FieldErrors{FieldBloodGroup: MsgSelectBloodGroup}
	}
	g := BloodGroup(s)
	if !g.Valid() {
		return "", FieldErrors{FieldBloodGroup: MsgInvalidBloodGroup}
	}
	return g, nil
}
