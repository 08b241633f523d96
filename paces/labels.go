package paces

// Tempo labels used on training entries.
const (
	Label3K           = "3K"
	Label5K           = "5K"
	Label10K          = "10K"
	LabelHalfMarathon = "Half Marathon"
	LabelMarathon     = "Marathon"
	LabelAeroob       = "Aeroob"
	LabelAerobe       = "Aerobe"
	LabelRecovery     = "Recovery"
)

// Labels is the allow-list of tempo labels accepted on imported or edited entries.
var Labels = []string{Label3K, Label5K, Label10K, LabelHalfMarathon, LabelMarathon, LabelAerobe, LabelRecovery}

// labelAliases maps legacy labels onto the label that owns their pace.
var labelAliases = map[string]string{
	LabelAerobe:   LabelAeroob,
	LabelRecovery: LabelAeroob,
}

// IsKnownLabel reports whether label is in the allow-list.
func IsKnownLabel(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// FilterLabels keeps allow-listed labels in their original order, dropping
// blanks, unknown values and duplicates.
func FilterLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if !IsKnownLabel(l) || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
