package model

import "fmt"

// PropertyClasses maps assessment class codes to their display names.
var PropertyClasses = map[int]string{
	1: "Residential",
	2: "Agricultural/Undeveloped",
	3: "Multi-Family",
	4: "Commercial",
	5: "Industrial",
	6: "Land Use (Deferred)",
	7: "Public Service",
	8: "Exempt",
	9: "Mineral",
}

// ClassName returns the display name for a class code, or "Class N" for
// codes outside the known enumeration.
func ClassName(code int) string {
	if name, ok := PropertyClasses[code]; ok {
		return name
	}
	return fmt.Sprintf("Class %d", code)
}

// DistrictUnknown is the aggregation bucket for records with no
// recognizable district marker.
const DistrictUnknown = "Unknown"

// Districts lists the canonical magisterial district names.
var Districts = []string{
	"Back Creek",
	"Gainesboro",
	"Opequon",
	"Red Bud",
	"Shawnee",
	"Stonewall",
	"Stephens City",
	"Middletown",
}
