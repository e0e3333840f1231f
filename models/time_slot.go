// models/time_slot.go
package models

// ShiftType defines the production schedule tier. Tiers are nested:
// REGULAR slots are part of EXTENDED, EXTENDED slots are part of OVERTIME.
type ShiftType string

const (
	ShiftRegular  ShiftType = "REGULAR"
	ShiftExtended ShiftType = "EXTENDED"
	ShiftOvertime ShiftType = "OVERTIME"
)

// ShiftCode returns the single-letter code used in form codes.
func (s ShiftType) ShiftCode() string {
	switch s {
	case ShiftExtended:
		return "E"
	case ShiftOvertime:
		return "O"
	default:
		return "R"
	}
}

// IsValid reports whether the value is a known shift type.
func (s ShiftType) IsValid() bool {
	switch s {
	case ShiftRegular, ShiftExtended, ShiftOvertime:
		return true
	}
	return false
}

// Hourly slot labels per tier, in schedule order.
var (
	RegularSlots = []string{
		"07:30-08:30",
		"08:30-09:30",
		"09:30-10:30",
		"10:30-11:30",
		"12:30-13:30",
		"13:30-14:30",
		"14:30-15:30",
		"15:30-16:30",
	}
	ExtendedSlots = []string{
		"16:30-17:00",
		"17:00-18:00",
	}
	OvertimeSlots = []string{
		"18:00-19:00",
		"19:00-20:00",
	}
)

// SlotsForShift returns the full ordered label set for a shift tier.
func SlotsForShift(shift ShiftType) []string {
	slots := make([]string, 0, len(RegularSlots)+len(ExtendedSlots)+len(OvertimeSlots))
	slots = append(slots, RegularSlots...)
	if shift == ShiftExtended || shift == ShiftOvertime {
		slots = append(slots, ExtendedSlots...)
	}
	if shift == ShiftOvertime {
		slots = append(slots, OvertimeSlots...)
	}
	return slots
}

// SlotOrder returns the schedule position of a label, or a large value for
// labels outside the catalog so they sort after known slots.
func SlotOrder(label string) int {
	all := SlotsForShift(ShiftOvertime)
	for i, l := range all {
		if l == label {
			return i
		}
	}
	return len(all) + 1
}

// ExpandSlotsForShift reconciles recorded hourly data with the target shift
// tier. Labels already present keep their value, labels newly required by the
// tier start at zero, and labels outside the tier are removed. Removed labels
// that held non-zero output are returned separately so callers can refuse the
// change instead of losing data silently.
func ExpandSlotsForShift(existing map[string]int, target ShiftType) (map[string]int, map[string]int) {
	wanted := SlotsForShift(target)

	slots := make(map[string]int, len(wanted))
	for _, label := range wanted {
		if v, ok := existing[label]; ok {
			slots[label] = v
		} else {
			slots[label] = 0
		}
	}

	dropped := map[string]int{}
	for label, v := range existing {
		if _, keep := slots[label]; !keep && v != 0 {
			dropped[label] = v
		}
	}

	return slots, dropped
}

// SumSlots totals the output recorded across all slots.
func SumSlots(slots map[string]int) int {
	total := 0
	for _, v := range slots {
		total += v
	}
	return total
}
